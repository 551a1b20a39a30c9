// Package route records raw input events into a replayable "route" and
// replays one later using the three-tier locator spec.md §4.11 describes:
// an accessibility role+label match first, current-window relative
// coordinates second, and the originally recorded absolute coordinates
// last. Grounded on original_source/nexus/via/recorder.py, player.py and
// tap.py, persisted through internal/store's routes/route_steps tables.
package route

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/nxerr"
	"github.com/nexuscore/nexus/internal/store"
)

const maxEventCapacity = 5000

// modifierOnlyKeys are filtered out of a recording the way tap.py drops a
// bare modifier key-down with no accompanying keystroke.
var modifierOnlyKeys = map[string]bool{
	"shift": true, "cmd": true, "command": true, "ctrl": true, "control": true,
	"opt": true, "option": true, "alt": true,
}

type recording struct {
	id, name, app string
	startedAt     time.Time
	cancelTap     context.CancelFunc
	mu            sync.Mutex
	steps         []store.RouteStep
}

// Engine owns the one live recording this session may have active at a
// time, and replays a saved route against the capability bridge directly —
// it bypasses the intent parser entirely, since a route is raw input, not
// a natural-language action string.
type Engine struct {
	store   *store.Store
	bridge  capability.Bridge
	dismiss func(ctx context.Context)

	mu  sync.Mutex
	rec *recording
}

// New wraps st and bridge for route recording/replay.
func New(st *store.Store, bridge capability.Bridge) *Engine {
	return &Engine{store: st, bridge: bridge}
}

// AttachDismiss installs a callback Replay invokes between steps to
// auto-dismiss any pending safe system dialog, matching spec.md §4.11's
// "between steps, any pending safe system dialog is auto-dismissed". Tests
// that don't care about dialogs can leave this unset.
func (e *Engine) AttachDismiss(fn func(ctx context.Context)) {
	e.dismiss = fn
}

var slugRe = strings.NewReplacer(" ", "-")

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugRe.Replace(s)
	if s == "" {
		return "route"
	}
	return s
}

func (e *Engine) uniqueSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		_, ok, err := e.store.RouteByName(ctx, slug)
		if err != nil {
			return "", err
		}
		if !ok {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// StartRecording begins capturing raw input events via the RawEventTap
// capability, enriching each with the frontmost app, the window bounds
// containing the event point, and (for clicks) an accessibility hit-test
// locator. Fails if a recording is already active or no tap is available.
func (e *Engine) StartRecording(ctx context.Context, name, app string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec != nil {
		return "", fmt.Errorf("route: already recording %q; stop it first", e.rec.id)
	}
	if e.bridge.RawEventTap == nil {
		return "", nxerr.New(nxerr.UnsupportedCapability, "route: no raw event tap available")
	}

	id, err := e.uniqueSlug(ctx, slugify(name))
	if err != nil {
		return "", err
	}
	if err := e.store.RouteCreate(ctx, id, name, app); err != nil {
		return "", err
	}

	tapCtx, cancel := context.WithCancel(context.Background())
	rec := &recording{id: id, name: name, app: app, startedAt: time.Now(), cancelTap: cancel}
	e.rec = rec

	events, err := e.bridge.RawEventTap.Tap(tapCtx)
	if err != nil {
		cancel()
		e.rec = nil
		return "", err
	}
	go e.consume(tapCtx, rec, events)
	return id, nil
}

func (e *Engine) consume(ctx context.Context, rec *recording, events <-chan capability.RawEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.enrichAndAppend(rec, ev)
		}
	}
}

func (e *Engine) enrichAndAppend(rec *recording, ev capability.RawEvent) {
	if ev.Kind == "key" && modifierOnlyKeys[strings.ToLower(ev.Key)] {
		return
	}

	background := context.Background()
	step := store.RouteStep{
		OffsetMS: int(time.Since(rec.startedAt).Milliseconds()),
		Kind:     ev.Kind,
		X:        ev.At.X,
		Y:        ev.At.Y,
		KeyLabel: ev.Key,
	}

	if e.bridge.Accessibility != nil {
		if pid, err := e.bridge.Accessibility.FocusedProcess(background); err == nil {
			step.PID = pid
		}
	}

	if e.bridge.WindowManager != nil {
		windows, err := e.bridge.WindowManager.ListWindows(background)
		if err == nil {
			if w, ok := windowContaining(windows, ev.At); ok {
				step.AppName = w.App
				step.WinX, step.WinY, step.WinW, step.WinH = w.Bounds.X, w.Bounds.Y, w.Bounds.W, w.Bounds.H
				if w.Bounds.W > 0 && w.Bounds.H > 0 {
					step.RelX = float64(ev.At.X-w.Bounds.X) / float64(w.Bounds.W)
					step.RelY = float64(ev.At.Y-w.Bounds.Y) / float64(w.Bounds.H)
				}
			}
		}
	}

	if ev.Kind == "click" && e.bridge.Accessibility != nil && step.PID != 0 {
		if elements, err := e.bridge.Accessibility.Snapshot(background, step.PID, 150); err == nil {
			if el, ok := elementAt(elements, ev.At); ok {
				step.AXRole, step.AXLabel = el.Role, el.Label
			}
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.steps) >= maxEventCapacity {
		return
	}
	step.StepNum = len(rec.steps) + 1
	rec.steps = append(rec.steps, step)
}

func windowContaining(windows []capability.Window, pt capability.Point) (capability.Window, bool) {
	for _, w := range windows {
		b := w.Bounds
		if pt.X >= b.X && pt.X <= b.X+b.W && pt.Y >= b.Y && pt.Y <= b.Y+b.H {
			return w, true
		}
	}
	return capability.Window{}, false
}

func elementAt(elements []capability.Element, pt capability.Point) (capability.Element, bool) {
	for _, e := range elements {
		b := e.Bounds
		if pt.X >= b.X && pt.X <= b.X+b.W && pt.Y >= b.Y && pt.Y <= b.Y+b.H {
			return e, true
		}
	}
	return capability.Element{}, false
}

// IsRecording reports whether a recording is currently active.
func (e *Engine) IsRecording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec != nil
}

// StopRecording ends the active recording, persists its steps, and returns
// its id and step count.
func (e *Engine) StopRecording(ctx context.Context) (id string, steps int, err error) {
	e.mu.Lock()
	rec := e.rec
	e.rec = nil
	e.mu.Unlock()

	if rec == nil {
		return "", 0, fmt.Errorf("route: not currently recording")
	}
	rec.cancelTap()

	rec.mu.Lock()
	stepsCopy := append([]store.RouteStep(nil), rec.steps...)
	rec.mu.Unlock()

	for _, st := range stepsCopy {
		if err := e.store.RouteStepInsert(ctx, rec.id, st); err != nil {
			return rec.id, len(stepsCopy), err
		}
	}
	durationMS := int(time.Since(rec.startedAt).Milliseconds())
	if err := e.store.RouteFinish(ctx, rec.id, durationMS); err != nil {
		return rec.id, len(stepsCopy), err
	}
	return rec.id, len(stepsCopy), nil
}

// List returns every recorded route with its step count, formatted as text.
func (e *Engine) List(ctx context.Context) (string, error) {
	routes, err := e.store.RouteList(ctx)
	if err != nil {
		return "", err
	}
	if len(routes) == 0 {
		return "no recorded routes", nil
	}
	var b strings.Builder
	for _, r := range routes {
		fmt.Fprintf(&b, "%s (%d steps, %dms)", r.Name, r.StepCount, r.DurationMS)
		if r.App != "" {
			fmt.Fprintf(&b, " [%s]", r.App)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Delete removes a route and its steps by name.
func (e *Engine) Delete(ctx context.Context, name string) (bool, error) {
	id, ok, err := e.store.RouteByName(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return e.store.RouteDelete(ctx, id)
}

// StepResult records which locator tier succeeded (or failed) for one
// replayed step.
type StepResult struct {
	StepNum int
	Method  string // ax_locator | relative_coords | absolute_coords | key | scroll
	OK      bool
	Err     error
}

// Replay looks up the route by name (falling back to id), then drives each
// step against the capability bridge directly using the three-tier click
// locator, pausing between steps by the recorded inter-event delay scaled
// by speed (0 disables delays).
func (e *Engine) Replay(ctx context.Context, name string, speed float64) (string, error) {
	id, ok, err := e.store.RouteByName(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		id = name
	}
	steps, err := e.store.RouteSteps(ctx, id)
	if err != nil {
		return "", err
	}
	if len(steps) == 0 {
		return "", fmt.Errorf("route: %q not found or has no steps", name)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepNum < steps[j].StepNum })

	var results []StepResult
	lastOffset := 0
	for i, st := range steps {
		if e.dismiss != nil {
			e.dismiss(ctx)
		}
		if speed > 0 && i > 0 {
			delta := time.Duration(float64(st.OffsetMS-lastOffset)/speed) * time.Millisecond
			if delta > 0 {
				select {
				case <-time.After(delta):
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
		}
		lastOffset = st.OffsetMS

		res := e.replayStep(ctx, st)
		results = append(results, res)
	}

	okCount := 0
	for _, r := range results {
		if r.OK {
			okCount++
		}
	}
	return fmt.Sprintf("replayed %q: %d/%d steps ok", name, okCount, len(results)), nil
}

func (e *Engine) replayStep(ctx context.Context, st store.RouteStep) StepResult {
	switch st.Kind {
	case "click":
		return e.replayClick(ctx, st)
	case "key":
		return e.replayKey(ctx, st)
	case "scroll":
		return e.replayScroll(ctx, st)
	default:
		return StepResult{StepNum: st.StepNum, Method: "unknown", OK: false, Err: fmt.Errorf("unknown step kind %q", st.Kind)}
	}
}

// replayClick implements the three-tier locator: accessibility role+label,
// then current-window relative coordinates, then absolute coordinates.
func (e *Engine) replayClick(ctx context.Context, st store.RouteStep) StepResult {
	if st.AXRole != "" && st.AXLabel != "" && e.bridge.Accessibility != nil {
		pid := st.PID
		if pid == 0 && st.AppName != "" {
			pid = e.resolvePID(ctx, st.AppName)
		}
		if pid != 0 {
			if elements, err := e.bridge.Accessibility.Snapshot(ctx, pid, 200); err == nil {
				for _, el := range elements {
					if strings.EqualFold(el.Role, st.AXRole) && strings.EqualFold(el.Label, st.AXLabel) {
						pt := capability.Point{X: el.Bounds.X + el.Bounds.W/2, Y: el.Bounds.Y + el.Bounds.H/2}
						err := e.click(ctx, pt)
						return StepResult{StepNum: st.StepNum, Method: "ax_locator", OK: err == nil, Err: err}
					}
				}
			}
		}
	}

	if st.AppName != "" && e.bridge.WindowManager != nil {
		windows, err := e.bridge.WindowManager.ListWindows(ctx)
		if err == nil {
			for _, w := range windows {
				if strings.EqualFold(w.App, st.AppName) && w.Bounds.W > 0 && w.Bounds.H > 0 {
					pt := capability.Point{
						X: w.Bounds.X + int(st.RelX*float64(w.Bounds.W)),
						Y: w.Bounds.Y + int(st.RelY*float64(w.Bounds.H)),
					}
					err := e.click(ctx, pt)
					return StepResult{StepNum: st.StepNum, Method: "relative_coords", OK: err == nil, Err: err}
				}
			}
		}
	}

	pt := capability.Point{X: st.X, Y: st.Y}
	err := e.click(ctx, pt)
	return StepResult{StepNum: st.StepNum, Method: "absolute_coords", OK: err == nil, Err: err}
}

func (e *Engine) click(ctx context.Context, pt capability.Point) error {
	if e.bridge.Input == nil {
		return nxerr.New(nxerr.UnsupportedCapability, "route: no input synthesis available")
	}
	button := "left"
	return e.bridge.Input.Click(ctx, pt, button, 1, nil)
}

func (e *Engine) replayKey(ctx context.Context, st store.RouteStep) StepResult {
	if e.bridge.Input == nil {
		return StepResult{StepNum: st.StepNum, Method: "key", OK: false, Err: nxerr.New(nxerr.UnsupportedCapability, "route: no input synthesis available")}
	}
	var mods []string
	if st.ModCmd {
		mods = append(mods, "cmd")
	}
	if st.ModShift {
		mods = append(mods, "shift")
	}
	if st.ModCtrl {
		mods = append(mods, "ctrl")
	}
	if st.ModOpt {
		mods = append(mods, "opt")
	}
	var err error
	if len(mods) > 0 {
		err = e.bridge.Input.Hotkey(ctx, append(mods, st.KeyLabel))
	} else if len(st.KeyLabel) == 1 {
		err = e.bridge.Input.TypeText(ctx, st.KeyLabel)
	} else {
		err = e.bridge.Input.Press(ctx, st.KeyLabel)
	}
	return StepResult{StepNum: st.StepNum, Method: "key", OK: err == nil, Err: err}
}

func (e *Engine) replayScroll(ctx context.Context, st store.RouteStep) StepResult {
	if e.bridge.Input == nil {
		return StepResult{StepNum: st.StepNum, Method: "scroll", OK: false, Err: nxerr.New(nxerr.UnsupportedCapability, "route: no input synthesis available")}
	}
	_ = e.bridge.Input.MoveTo(ctx, capability.Point{X: st.X, Y: st.Y})
	err := e.bridge.Input.Scroll(ctx, 0, -3)
	return StepResult{StepNum: st.StepNum, Method: "scroll", OK: err == nil, Err: err}
}

func (e *Engine) resolvePID(ctx context.Context, appName string) int {
	if e.bridge.WindowManager == nil {
		return 0
	}
	windows, err := e.bridge.WindowManager.ListWindows(ctx)
	if err != nil {
		return 0
	}
	for _, w := range windows {
		if strings.EqualFold(w.App, appName) {
			return w.PID
		}
	}
	return 0
}
