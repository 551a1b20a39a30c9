// Package fake is an in-memory capability.Bridge used by every test in this
// module and by the reference CLI demo. It reproduces the native adapters'
// observable behavior (fuzzy suggestion scoring, clipboard round-trip,
// window bookkeeping) without touching the OS.
package fake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/nxerr"
)

type handle struct {
	elem *capability.Element
}

func (h *handle) Release() {}

type menuHandle struct {
	item *capability.MenuItem
}

func (h *menuHandle) Release() {}

// Window is a mutable window record the fake world tracks.
type Window struct {
	capability.Window
	Elements []capability.Element
	MenuBar  []capability.MenuItem
	Content  []capability.ContentItem
}

// World is the fake OS state: a set of windows, each with its own element
// tree, plus clipboard and mouse position.
type World struct {
	mu        sync.Mutex
	windows   map[int]*Window
	focused   int
	clipboard string
	mouse     capability.Point
	screenW   int
	screenH   int
	changes   chan capability.ChangeEvent
	rawEvents chan capability.RawEvent
	untrusted bool
}

// NewWorld creates an empty fake world with a default screen size.
func NewWorld() *World {
	return &World{
		windows:   make(map[int]*Window),
		screenW:   1920,
		screenH:   1080,
		changes:   make(chan capability.ChangeEvent, 200),
		rawEvents: make(chan capability.RawEvent, 5000),
	}
}

// SetTrusted toggles whether IsTrusted reports accessibility permission as
// granted. Worlds start trusted.
func (w *World) SetTrusted(trusted bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.untrusted = !trusted
}

// SetMenuBar registers pid's flattened menu tree, read back by MenuBar and
// resolved by FindMenuItem.
func (w *World) SetMenuBar(pid int, items []capability.MenuItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if win, ok := w.windows[pid]; ok {
		win.MenuBar = items
	}
}

// SetContent registers pid's readable document/field content, read back by
// ReadContent.
func (w *World) SetContent(pid int, items []capability.ContentItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if win, ok := w.windows[pid]; ok {
		win.Content = items
	}
}

// AddWindow registers a window with pid as its focused flag target.
func (w *World) AddWindow(pid int, app, title string, bounds capability.Rect, elems []capability.Element) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.windows[pid] = &Window{
		Window: capability.Window{
			PID: pid, App: app, Title: title, Bounds: bounds, Active: false,
		},
		Elements: elems,
	}
}

// Focus sets the frontmost process.
func (w *World) Focus(pid int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, win := range w.windows {
		win.Active = p == pid
	}
	w.focused = pid
}

// Emit pushes a synthetic change event, non-blocking.
func (w *World) Emit(ev capability.ChangeEvent) {
	select {
	case w.changes <- ev:
	default:
	}
}

// EmitRaw pushes a synthetic raw input event to any active RawEventTap
// subscriber, non-blocking.
func (w *World) EmitRaw(ev capability.RawEvent) {
	select {
	case w.rawEvents <- ev:
	default:
	}
}

// Bridge returns a capability.Bridge backed by this world.
func (w *World) Bridge() capability.Bridge {
	return capability.Bridge{
		Accessibility:     &accessibility{w: w},
		ElementActuator:   &actuator{w: w},
		Input:             &input{w: w},
		ScreenCapture:     &capture{w: w},
		OCR:               &ocr{},
		WindowManager:     &windows{w: w},
		Scripting:         &scripting{w: w},
		Clipboard:         &clipboard{w: w},
		ChangeEventSource: &changeSource{w: w},
		RawEventTap:       &rawTap{w: w},
	}
}

type accessibility struct{ w *World }

func (a *accessibility) Snapshot(ctx context.Context, pid int, maxElements int) ([]capability.Element, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	win, ok := a.w.windows[pid]
	if !ok {
		return nil, nxerr.New(nxerr.BridgeUnavailable, fmt.Sprintf("no window for pid %d", pid))
	}
	out := make([]capability.Element, 0, len(win.Elements))
	for i := range win.Elements {
		if len(out) >= maxElements {
			break
		}
		e := win.Elements[i]
		e.Handle = &handle{elem: &win.Elements[i]}
		out = append(out, e)
	}
	return out, nil
}

func (a *accessibility) FocusedProcess(ctx context.Context) (int, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	if a.w.focused == 0 {
		return 0, nxerr.New(nxerr.BridgeUnavailable, "no focused process")
	}
	return a.w.focused, nil
}

func (a *accessibility) IsTrusted(ctx context.Context) (bool, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	return !a.w.untrusted, nil
}

func (a *accessibility) FocusedElement(ctx context.Context, pid int) (capability.Element, bool, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	win, ok := a.w.windows[pid]
	if !ok {
		return capability.Element{}, false, nil
	}
	for i := range win.Elements {
		if win.Elements[i].Focused {
			e := win.Elements[i]
			e.Handle = &handle{elem: &win.Elements[i]}
			return e, true, nil
		}
	}
	return capability.Element{}, false, nil
}

func (a *accessibility) MenuBar(ctx context.Context, pid int) ([]capability.MenuItem, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	win, ok := a.w.windows[pid]
	if !ok {
		return nil, nxerr.New(nxerr.ElementNotFound, fmt.Sprintf("no window for pid %d", pid))
	}
	return win.MenuBar, nil
}

func (a *accessibility) FindMenuItem(ctx context.Context, pid int, path []string) (capability.ElementHandle, bool, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	win, ok := a.w.windows[pid]
	if !ok {
		return nil, false, nxerr.New(nxerr.ElementNotFound, fmt.Sprintf("no window for pid %d", pid))
	}
	for i := range win.MenuBar {
		if samePath(win.MenuBar[i].Path, path) {
			if !win.MenuBar[i].Enabled {
				return nil, false, nil
			}
			return &menuHandle{item: &win.MenuBar[i]}, true, nil
		}
	}
	return nil, false, nil
}

func (a *accessibility) ReadContent(ctx context.Context, pid int) ([]capability.ContentItem, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	win, ok := a.w.windows[pid]
	if !ok {
		return nil, nil
	}
	return win.Content, nil
}

func samePath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

type actuator struct{ w *World }

func (a *actuator) ClickElement(ctx context.Context, h capability.ElementHandle) error {
	switch hh := h.(type) {
	case *handle:
		if hh.elem == nil {
			return nxerr.New(nxerr.ElementNotFound, "invalid handle")
		}
		return nil
	case *menuHandle:
		if hh.item == nil {
			return nxerr.New(nxerr.ElementNotFound, "invalid handle")
		}
		return nil
	default:
		return nxerr.New(nxerr.ElementNotFound, "invalid handle")
	}
}

func (a *actuator) FocusElement(ctx context.Context, h capability.ElementHandle) error {
	return a.ClickElement(ctx, h)
}

func (a *actuator) SetValue(ctx context.Context, h capability.ElementHandle, value string) error {
	hh, ok := h.(*handle)
	if !ok || hh.elem == nil {
		return nxerr.New(nxerr.ElementNotFound, "invalid handle")
	}
	hh.elem.Value = value
	return nil
}

type input struct{ w *World }

func (i *input) Click(ctx context.Context, at capability.Point, button string, clicks int, modifiers []string) error {
	i.w.mu.Lock()
	i.w.mouse = at
	i.w.mu.Unlock()
	return nil
}

func (i *input) ModifierClick(ctx context.Context, at capability.Point, modifiers []string) error {
	return i.Click(ctx, at, "left", 1, modifiers)
}

func (i *input) MoveTo(ctx context.Context, at capability.Point) error {
	i.w.mu.Lock()
	i.w.mouse = at
	i.w.mu.Unlock()
	return nil
}

func (i *input) Drag(ctx context.Context, from, to capability.Point) error {
	return i.MoveTo(ctx, to)
}

func (i *input) Scroll(ctx context.Context, dx, dy int) error { return nil }

func (i *input) Hotkey(ctx context.Context, keys []string) error { return nil }

func (i *input) Press(ctx context.Context, key string) error { return nil }

func (i *input) TypeText(ctx context.Context, text string) error { return nil }

// PasteText mirrors the source's save/set/paste/sleep/restore clipboard
// cycle so tests can assert the clipboard is left unchanged afterward.
func (i *input) PasteText(ctx context.Context, text string, settle time.Duration) error {
	i.w.mu.Lock()
	saved := i.w.clipboard
	i.w.clipboard = text
	i.w.mu.Unlock()

	if settle > 0 {
		select {
		case <-time.After(settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	i.w.mu.Lock()
	i.w.clipboard = saved
	i.w.mu.Unlock()
	return nil
}

func (i *input) MousePosition(ctx context.Context) (capability.Point, error) {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	return i.w.mouse, nil
}

func (i *input) ScreenSize(ctx context.Context) (int, int, error) {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	return i.w.screenW, i.w.screenH, nil
}

type capture struct{ w *World }

func (c *capture) CaptureRegion(ctx context.Context, r capability.Rect) ([]byte, int, int, error) {
	return make([]byte, r.W*r.H*4), r.W, r.H, nil
}

type ocr struct{}

func (o *ocr) Recognize(ctx context.Context, img []byte, width, height int) ([]capability.Element, error) {
	return nil, nil
}

type windows struct{ w *World }

func (w *windows) ListWindows(ctx context.Context) ([]capability.Window, error) {
	w.w.mu.Lock()
	defer w.w.mu.Unlock()
	out := make([]capability.Window, 0, len(w.w.windows))
	pids := make([]int, 0, len(w.w.windows))
	for p := range w.w.windows {
		pids = append(pids, p)
	}
	sort.Ints(pids)
	for _, p := range pids {
		out = append(out, w.w.windows[p].Window)
	}
	return out, nil
}

func (w *windows) ActivateWindow(ctx context.Context, pid int) error {
	w.w.Focus(pid)
	return nil
}

func (w *windows) CloseWindow(ctx context.Context, pid int) error {
	w.w.mu.Lock()
	defer w.w.mu.Unlock()
	delete(w.w.windows, pid)
	return nil
}

func (w *windows) MoveWindow(ctx context.Context, pid int, bounds capability.Rect) error {
	w.w.mu.Lock()
	defer w.w.mu.Unlock()
	win, ok := w.w.windows[pid]
	if !ok {
		return nxerr.New(nxerr.ElementNotFound, "no such window")
	}
	win.Bounds = bounds
	return nil
}

func (w *windows) ResizeWindow(ctx context.Context, pid int, width, height int) error {
	w.w.mu.Lock()
	defer w.w.mu.Unlock()
	win, ok := w.w.windows[pid]
	if !ok {
		return nxerr.New(nxerr.ElementNotFound, "no such window")
	}
	win.Bounds.W, win.Bounds.H = width, height
	return nil
}

func (w *windows) MinimizeWindow(ctx context.Context, pid int) error {
	w.w.mu.Lock()
	defer w.w.mu.Unlock()
	if win, ok := w.w.windows[pid]; ok {
		win.Minimized = true
	}
	return nil
}

func (w *windows) RestoreWindow(ctx context.Context, pid int) error {
	w.w.mu.Lock()
	defer w.w.mu.Unlock()
	if win, ok := w.w.windows[pid]; ok {
		win.Minimized = false
	}
	return nil
}

func (w *windows) FullscreenWindow(ctx context.Context, pid int) error { return nil }

type scripting struct{ w *World }

func (s *scripting) Run(ctx context.Context, script string, timeout time.Duration) (string, error) {
	return "", nil
}

func (s *scripting) Activate(ctx context.Context, appName string, timeout time.Duration) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for p, win := range s.w.windows {
		if strings.EqualFold(win.App, appName) {
			for _, w2 := range s.w.windows {
				w2.Active = false
			}
			win.Active = true
			s.w.focused = p
			return nil
		}
	}
	return nxerr.New(nxerr.BridgeUnavailable, fmt.Sprintf("app %q not running", appName))
}

func (s *scripting) Launch(ctx context.Context, appName string) error {
	return nil
}

type clipboard struct{ w *World }

func (c *clipboard) Read(ctx context.Context) (string, error) {
	c.w.mu.Lock()
	defer c.w.mu.Unlock()
	return c.w.clipboard, nil
}

func (c *clipboard) Write(ctx context.Context, text string) error {
	c.w.mu.Lock()
	c.w.clipboard = text
	c.w.mu.Unlock()
	return nil
}

type changeSource struct{ w *World }

func (c *changeSource) Subscribe(ctx context.Context) (<-chan capability.ChangeEvent, error) {
	out := make(chan capability.ChangeEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-c.w.changes:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

type rawTap struct{ w *World }

func (r *rawTap) Tap(ctx context.Context) (<-chan capability.RawEvent, error) {
	out := make(chan capability.RawEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-r.w.rawEvents:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Suggest reproduces the source's fuzzy app-name scoring: substring
// containment scores 3pts (candidate contains query) or 2pts (query
// contains candidate), shared-word overlap scores 2pts per shared word, and
// length-similarity is used only as a tiebreaker. Returns the best match and
// whether any candidate scored above zero.
func Suggest(query string, candidates []string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(candidates) == 0 {
		return "", false
	}
	qWords := strings.Fields(q)

	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		cl := strings.ToLower(c)
		score := 0.0
		if strings.Contains(cl, q) {
			score += 3
		} else if strings.Contains(q, cl) {
			score += 2
		}
		cWords := strings.Fields(cl)
		shared := 0
		for _, w := range qWords {
			for _, cw := range cWords {
				if w == cw {
					shared++
					break
				}
			}
		}
		score += float64(shared) * 2

		if score > 0 {
			lenSim := 1.0 - float64(abs(len(cl)-len(q)))/float64(max(len(cl), len(q), 1))
			score += lenSim * 0.01
		}

		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best, bestScore > 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func max(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
