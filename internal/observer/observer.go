// Package observer runs the background loop that consumes accessibility
// change notifications from capability.ChangeEventSource, debounces them
// per notification kind, and dirties the session's spatial cache so the
// next perceive call re-walks the tree instead of serving a stale one.
// Grounded on original_source/nexus/sense/observer.py's debounce windows
// and bounded-deque drain.
package observer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/session"
)

const bufferCapacity = 200

const defaultDebounce = 500 * time.Millisecond
const titleChangeDebounce = 2 * time.Second

// Observer buffers debounced change events and dirties the spatial cache as
// they arrive. One Observer serves every subscribed process on a single
// background goroutine, matching spec.md §4.10's "shared background loop".
type Observer struct {
	session *session.Session

	mu       sync.Mutex
	buf      []capability.ChangeEvent
	lastSeen map[string]time.Time
}

// New creates an Observer that dirties sess's spatial cache on every
// non-debounced event. sess may be nil in tests that only care about the
// buffered event text.
func New(sess *session.Session) *Observer {
	return &Observer{session: sess, lastSeen: make(map[string]time.Time)}
}

// Start subscribes to source and runs the consume loop until ctx is
// cancelled. A nil source is a no-op, matching the "zero-value Bridge"
// contract the rest of this module follows when a capability isn't wired.
func (o *Observer) Start(ctx context.Context, source capability.ChangeEventSource) error {
	if source == nil {
		return nil
	}
	events, err := source.Subscribe(ctx)
	if err != nil {
		return err
	}
	go o.consume(ctx, events)
	return nil
}

func (o *Observer) consume(ctx context.Context, events <-chan capability.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			o.handle(ev)
		}
	}
}

func (o *Observer) handle(ev capability.ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	o.mu.Lock()
	key := fmt.Sprintf("%d:%s", ev.PID, ev.Kind)
	window := defaultDebounce
	if ev.Kind == "title_change" {
		window = titleChangeDebounce
	}
	if last, seen := o.lastSeen[key]; seen && ev.At.Sub(last) < window {
		o.mu.Unlock()
		return
	}
	o.lastSeen[key] = ev.At
	o.buf = append(o.buf, ev)
	if len(o.buf) > bufferCapacity {
		o.buf = o.buf[len(o.buf)-bufferCapacity:]
	}
	o.mu.Unlock()

	if o.session != nil {
		o.session.Invalidate(ev.PID)
	}
}

// Drain removes and returns every buffered event for pid as human-readable
// description lines, for fusion.Render to append to a perceive() response.
// Drain is how the perception pipeline consumes this Observer — the
// buffer is shared across every subscribed process, so this call also
// leaves events belonging to other processes untouched.
func (o *Observer) Drain(pid int) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []string
	kept := o.buf[:0:0]
	for _, ev := range o.buf {
		if ev.PID == pid {
			out = append(out, formatEvent(ev))
		} else {
			kept = append(kept, ev)
		}
	}
	o.buf = kept
	return out
}

func formatEvent(ev capability.ChangeEvent) string {
	return fmt.Sprintf("[%s] %s at %s", ev.Kind, processLabel(ev.PID), ev.At.Format("15:04:05"))
}

func processLabel(pid int) string {
	return fmt.Sprintf("pid %d", pid)
}

// Reap drops debounce bookkeeping for any pid not present in alive, so a
// terminated process's notification history doesn't leak memory forever.
// Callers pass the current running-process set; nothing in this module
// calls it outside the package's tests.
func (o *Observer) Reap(alive map[int]bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for key := range o.lastSeen {
		var pid int
		var kind string
		if _, err := fmt.Sscanf(key, "%d:%s", &pid, &kind); err != nil {
			continue
		}
		if !alive[pid] {
			delete(o.lastSeen, key)
		}
	}
}
