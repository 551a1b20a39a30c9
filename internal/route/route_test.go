package route

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
	"github.com/nexuscore/nexus/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(t.TempDir() + "/nexus.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db)
}

func TestRecordAndReplayRoundTrip(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{X: 0, Y: 0, W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save", Bounds: capability.Rect{X: 10, Y: 10, W: 50, H: 20}},
	})
	world.Focus(100)
	bridge := world.Bridge()

	st := newTestStore(t)
	engine := New(st, bridge)

	id, err := engine.StartRecording(context.Background(), "save file", "TextEdit")
	require.NoError(t, err)
	assert.Equal(t, "save-file", id)
	assert.True(t, engine.IsRecording())

	world.EmitRaw(capability.RawEvent{Kind: "click", At: capability.Point{X: 35, Y: 20}, Time: time.Now()})
	time.Sleep(50 * time.Millisecond)

	gotID, steps, err := engine.StopRecording(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 1, steps)
	assert.False(t, engine.IsRecording())

	summary, err := engine.Replay(context.Background(), "save file", 0)
	require.NoError(t, err)
	assert.Contains(t, summary, "1/1 steps ok")
	_ = gotID
}

func TestStartRecordingFailsWithoutRawEventTap(t *testing.T) {
	st := newTestStore(t)
	engine := New(st, capability.Bridge{})

	_, err := engine.StartRecording(context.Background(), "x", "App")
	assert.Error(t, err)
}

func TestStopRecordingWithoutStartFails(t *testing.T) {
	st := newTestStore(t)
	engine := New(st, capability.Bridge{})

	_, _, err := engine.StopRecording(context.Background())
	assert.Error(t, err)
}

func TestDeleteUnknownRouteIsNotOK(t *testing.T) {
	st := newTestStore(t)
	engine := New(st, capability.Bridge{})

	ok, err := engine.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplayFallsBackToAbsoluteCoordsWithoutAccessibility(t *testing.T) {
	world := fake.NewWorld()
	bridge := world.Bridge()
	bridge.Accessibility = nil
	bridge.WindowManager = nil

	st := newTestStore(t)
	require.NoError(t, st.RouteCreate(context.Background(), "r1", "r1", "App"))
	require.NoError(t, st.RouteStepInsert(context.Background(), "r1", store.RouteStep{
		StepNum: 1, Kind: "click", X: 42, Y: 7,
	}))
	require.NoError(t, st.RouteFinish(context.Background(), "r1", 10))

	engine := New(st, bridge)
	summary, err := engine.Replay(context.Background(), "r1", 0)
	require.NoError(t, err)
	assert.Contains(t, summary, "1/1 steps ok")
}
