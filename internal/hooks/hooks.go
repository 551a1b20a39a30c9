// Package hooks implements the five-event, priority-ordered pipeline every
// perceive/act call is wrapped in: before_perceive, after_perceive,
// before_act, after_act, on_error. Handlers are isolated — a panic or error
// inside one is captured in a bounded ring buffer and never breaks the
// pipeline, matching the source's try/except-around-every-hook discipline.
package hooks

import (
	"sort"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/crashlog"
)

// Event names the five lifecycle points hooks can register against.
type Event string

const (
	BeforePerceive Event = "before_perceive"
	AfterPerceive  Event = "after_perceive"
	BeforeAct      Event = "before_act"
	AfterAct       Event = "after_act"
	OnError        Event = "on_error"
)

// Ctx is the mutable context threaded through one event's handler chain.
// Handlers read and write keys by convention (documented per event in
// SPEC_FULL.md / spec.md §4.7); Fire returns the final context. Setting
// ctx["stop"] = true from a handler halts the chain immediately — used by
// the circuit breaker and the unsafe-dialog guard.
type Ctx map[string]any

// Stopped reports whether a context requested the pipeline halt.
func (c Ctx) Stopped() bool {
	v, _ := c["stop"].(bool)
	return v
}

// HookFunc is one registered handler. It may return nil to mean "no
// change", or a (possibly stopping) replacement context.
type HookFunc func(ctx Ctx) Ctx

type entry struct {
	priority int
	name     string
	fn       HookFunc
}

const errorRingCapacity = 20

// RecordedError is one suppressed handler failure.
type RecordedError struct {
	At     time.Time
	Source string
	Err    error
}

// Registry holds every registered hook plus the suppressed-error ring.
type Registry struct {
	mu    sync.Mutex
	hooks map[Event][]entry

	errMu sync.Mutex
	errs  []RecordedError
	errI  int
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make(map[Event][]entry),
		errs:  make([]RecordedError, 0, errorRingCapacity),
	}
}

// Register adds a named handler for event at the given priority (lower runs
// first). Re-sorts that event's list immediately, matching the source's
// register()-then-sort behavior.
func (r *Registry) Register(event Event, priority int, name string, fn HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[event] = append(r.hooks[event], entry{priority: priority, name: name, fn: fn})
	sort.SliceStable(r.hooks[event], func(i, j int) bool {
		return r.hooks[event][i].priority < r.hooks[event][j].priority
	})
}

// Fire runs every handler registered for event, in priority order, passing
// ctx through each in turn. A handler that panics or returns nil is treated
// as "no change"; only a panic is recorded in the error ring. A handler that sets
// ctx["stop"]=true halts the chain and that context is returned immediately.
func (r *Registry) Fire(event Event, ctx Ctx) Ctx {
	r.mu.Lock()
	list := make([]entry, len(r.hooks[event]))
	copy(list, r.hooks[event])
	r.mu.Unlock()

	for _, e := range list {
		var next Ctx
		err := crashlog.Guard("hook:"+e.name, func() error {
			next = e.fn(ctx)
			return nil
		})
		if err != nil {
			r.recordError("hook:"+e.name, err)
			continue
		}
		if next == nil {
			continue
		}
		if next.Stopped() {
			return next
		}
		ctx = next
	}
	return ctx
}

func (r *Registry) recordError(source string, err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	rec := RecordedError{At: time.Now(), Source: source, Err: err}
	if len(r.errs) < errorRingCapacity {
		r.errs = append(r.errs, rec)
		return
	}
	r.errs[r.errI] = rec
	r.errI = (r.errI + 1) % errorRingCapacity
}

// RecentErrors returns up to n most-recently recorded suppressed errors,
// newest first.
func (r *Registry) RecentErrors(n int) []RecordedError {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	total := len(r.errs)
	if n > total {
		n = total
	}
	out := make([]RecordedError, 0, n)
	for i := 0; i < total && len(out) < n; i++ {
		idx := (r.errI - 1 - i + total) % total
		out = append(out, r.errs[idx])
	}
	return out
}

// ClearErrors empties the error ring.
func (r *Registry) ClearErrors() {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errs = r.errs[:0]
	r.errI = 0
}

// Registered lists the names of the handlers registered for event, in run
// (priority) order — used for debugging/introspection.
func (r *Registry) Registered(event Event) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.hooks[event]))
	for _, e := range r.hooks[event] {
		out = append(out, e.name)
	}
	return out
}

// Clear removes every handler for event, or every handler for every event
// if event is "".
func (r *Registry) Clear(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event == "" {
		r.hooks = make(map[Event][]entry)
		return
	}
	delete(r.hooks, event)
}
