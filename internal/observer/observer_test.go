package observer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/session"
)

func TestObserverDrainsEventsForPID(t *testing.T) {
	world := fake.NewWorld()
	bridge := world.Bridge()

	obs := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, obs.Start(ctx, bridge.ChangeEventSource))

	world.Emit(capability.ChangeEvent{PID: 100, Kind: "dom_change", At: time.Now()})
	world.Emit(capability.ChangeEvent{PID: 200, Kind: "dom_change", At: time.Now()})

	require.Eventually(t, func() bool {
		return len(obs.Drain(200)) == 1
	}, time.Second, 5*time.Millisecond)

	got := obs.Drain(100)
	assert.Len(t, got, 1)
	assert.Contains(t, got[0], "dom_change")
	assert.Empty(t, obs.Drain(100))
}

func TestObserverDebouncesRapidSameKindEvents(t *testing.T) {
	obs := New(nil)
	now := time.Now()
	obs.handle(capability.ChangeEvent{PID: 1, Kind: "dom_change", At: now})
	obs.handle(capability.ChangeEvent{PID: 1, Kind: "dom_change", At: now.Add(10 * time.Millisecond)})
	obs.handle(capability.ChangeEvent{PID: 1, Kind: "dom_change", At: now.Add(defaultDebounce + time.Millisecond)})

	assert.Len(t, obs.Drain(1), 2)
}

func TestObserverInvalidatesSessionOnEvent(t *testing.T) {
	sess := session.New(config.Config{})
	sess.SpatialPut(42, 50, []capability.Element{{Role: "button", Label: "Save"}})

	obs := New(sess)
	obs.handle(capability.ChangeEvent{PID: 42, Kind: "window_created", At: time.Now()})

	_, ok := sess.SpatialGet(42, 50)
	assert.False(t, ok)
}

func TestStartWithNilSourceIsNoop(t *testing.T) {
	obs := New(nil)
	assert.NoError(t, obs.Start(context.Background(), nil))
}

func TestReapDropsDeadProcessBookkeeping(t *testing.T) {
	obs := New(nil)
	obs.handle(capability.ChangeEvent{PID: 1, Kind: "dom_change", At: time.Now()})
	obs.handle(capability.ChangeEvent{PID: 2, Kind: "dom_change", At: time.Now()})

	obs.Reap(map[int]bool{1: true})

	assert.Contains(t, obs.lastSeen, "1:dom_change")
	assert.NotContains(t, obs.lastSeen, "2:dom_change")
}
