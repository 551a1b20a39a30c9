package intent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/fusion"
	"github.com/nexuscore/nexus/internal/nxerr"
	"github.com/nexuscore/nexus/internal/perception"
)

// pasteThreshold is the text length above which type routes through an
// atomic clipboard paste instead of synthesized keystrokes, per spec.md
// §4.5's "type" handler.
const pasteThreshold = 8

// dispatchVerb type-switches on a classified ParsedIntent and performs it
// against the capability bridge, mirroring resolve.py's per-verb handler
// block.
func (d *Dispatcher) dispatchVerb(ctx context.Context, pid int, appName string, in ParsedIntent) Result {
	elements := d.elementsFor(ctx, pid)
	bounds := d.boundsFor(ctx, pid)

	switch v := in.(type) {
	case Click:
		return d.handleClick(ctx, pid, appName, elements, v)
	case Type:
		return d.handleType(ctx, elements, v)
	case Press:
		return d.handlePress(ctx, v)
	case Open:
		return d.handleOpen(ctx, v)
	case Switch:
		return d.handleSwitch(ctx, v)
	case Scroll:
		return d.handleScroll(ctx, pid, elements, v)
	case Hover:
		return d.handleHover(ctx, elements, v)
	case Focus:
		return d.handleFocus(ctx, elements, v)
	case Drag:
		return d.handleDrag(ctx, elements, v)
	case Fill:
		return d.handleFill(ctx, elements, v)
	case Wait:
		return d.handleWait(ctx, pid, v)
	case Menu:
		return d.handleMenu(ctx, pid, elements, v)
	case WindowOp:
		return d.handleWindowOp(ctx, pid, appName, v)
	case NavPath:
		return d.handleNavPath(ctx, pid, v)
	case Browser:
		return d.handleBrowser(ctx, v)
	case Shortcut:
		return d.handleShortcut(ctx, pid, appName, v)
	case Getter:
		return d.handleGetter(ctx, pid, appName, elements, v)
	case Say:
		return d.handleSay(ctx, v)
	case Notify:
		return d.handleNotify(ctx, v)
	case Clipboard:
		return d.handleClipboardSet(ctx, v)
	case Observe:
		pctx := d.runPerception(ctx, pid, appName)
		return Result{OK: true, Text: fusion.Render(pctx, nil), Method: "observe"}
	case Raw:
		if strings.Contains(v.Rest, ">") {
			return d.handleMenu(ctx, pid, elements, Menu{Path: splitMenuPath(v.Rest)})
		}
		return d.handleClick(ctx, pid, appName, elements, Click{Target: v.Rest, Clicks: 1, Button: "left"})
	}
	return Result{OK: false, Error: "unrecognized action"}
}

func (d *Dispatcher) elementsFor(ctx context.Context, pid int) []capability.Element {
	pctx := d.runPerception(ctx, pid, "")
	return pctx.Elements
}

func (d *Dispatcher) boundsFor(ctx context.Context, pid int) capability.Rect {
	if d.Bridge.WindowManager == nil {
		return capability.Rect{}
	}
	windows, err := d.Bridge.WindowManager.ListWindows(ctx)
	if err != nil {
		return capability.Rect{}
	}
	for _, w := range windows {
		if w.PID == pid {
			return w.Bounds
		}
	}
	return capability.Rect{}
}

func (d *Dispatcher) runPerception(ctx context.Context, pid int, appName string) *perception.Context {
	return d.runPipeline(ctx, pid, appName)
}

// --- click ---------------------------------------------------------------

func (d *Dispatcher) handleClick(ctx context.Context, pid int, appName string, elements []capability.Element, c Click) Result {
	if len(c.MenuPath) > 0 {
		return d.handleMenu(ctx, pid, elements, Menu{Path: c.MenuPath})
	}
	if d.Bridge.Input == nil {
		return Result{OK: false, Error: "no input adapter configured"}
	}

	if x, y, ok := ParseCoordinate(c.Target); ok {
		err := d.Bridge.Input.Click(ctx, capability.Point{X: x, Y: y}, c.Button, c.Clicks, c.Modifiers)
		return resultFromErr(err, "coordinate")
	}

	if o, ok := ParseOrdinal(c.Target); ok {
		if el, found := ApplyOrdinal(elements, o); found {
			return d.clickElement(ctx, pid, el, c, "ordinal")
		}
	}

	if cont, ok := ParseContainer(c.Target); ok {
		if el, found := ApplyContainer(elements, cont.Target, cont); found {
			return d.clickElement(ctx, pid, el, c, "container")
		}
	}

	if sp, ok := ParseSpatial(c.Target); ok {
		if el, found := ApplySpatial(elements, d.boundsFor(ctx, pid), sp); found {
			return d.clickElement(ctx, pid, el, c, "spatial")
		}
	}

	// Keyboard-shortcut substitution — a plain left click with no modifiers
	// prefers firing the target's menu shortcut over walking the tree, the
	// same preference order click.py's _try_shortcut gives it.
	if c.Clicks == 1 && c.Button == "left" && len(c.Modifiers) == 0 {
		if keys, ok := d.shortcutFor(ctx, pid, c.Target); ok {
			if err := d.Bridge.Input.Hotkey(ctx, keys); err == nil {
				d.invalidate(pid)
				return Result{OK: true, Text: "used shortcut for " + c.Target, Method: "shortcut"}
			}
		}
	}

	if el, found := FindTarget(elements, c.Target); found {
		return d.clickElement(ctx, pid, el, c, "accessibility")
	}

	if d.Learn != nil {
		if mapped, ok, _ := d.Learn.LookupLabel(ctx, appName, "click", strings.ToLower(c.Target)); ok {
			if el, found := FindTarget(elements, mapped); found {
				return d.clickElement(ctx, pid, el, c, "learned-label")
			}
		}
	}

	return Result{OK: false, Error: fmt.Sprintf("element not found: %q", c.Target), Method: "accessibility"}
}

func (d *Dispatcher) clickElement(ctx context.Context, pid int, el capability.Element, c Click, method string) Result {
	if el.Handle != nil && d.Bridge.ElementActuator != nil && len(c.Modifiers) == 0 && c.Clicks == 1 && c.Button == "left" {
		if err := d.Bridge.ElementActuator.ClickElement(ctx, el.Handle); err == nil {
			d.invalidate(pid)
			return Result{OK: true, Text: "clicked " + el.Label, Method: method}
		}
	}
	cx, cy := center(el.Bounds)
	err := d.Bridge.Input.Click(ctx, capability.Point{X: cx, Y: cy}, c.Button, c.Clicks, c.Modifiers)
	d.invalidate(pid)
	return resultFromErr(err, method)
}

func (d *Dispatcher) invalidate(pid int) {
	if d.Session != nil {
		d.Session.Invalidate(pid)
	}
}

// --- type / press ----------------------------------------------------------

func (d *Dispatcher) handleType(ctx context.Context, elements []capability.Element, t Type) Result {
	if d.Bridge.Input == nil {
		return Result{OK: false, Error: "no input adapter configured"}
	}
	if t.Target != "" {
		if el, ok := FindTarget(elements, t.Target); ok && el.Handle != nil && d.Bridge.ElementActuator != nil {
			if err := d.Bridge.ElementActuator.SetValue(ctx, el.Handle, t.Text); err == nil {
				return Result{OK: true, Text: "typed into " + el.Label, Method: "accessibility"}
			}
		}
	}
	for _, el := range elements {
		if el.Focused && el.Handle != nil && d.Bridge.ElementActuator != nil {
			if err := d.Bridge.ElementActuator.SetValue(ctx, el.Handle, t.Text); err == nil {
				return Result{OK: true, Text: "typed", Method: "accessibility"}
			}
			break
		}
	}
	if len(t.Text) > pasteThreshold {
		orig, _ := d.Bridge.Clipboard.Read(ctx)
		err := d.Bridge.Input.PasteText(ctx, t.Text, d.Config.PasteSettle())
		if orig != "" && d.Bridge.Clipboard != nil {
			_ = d.Bridge.Clipboard.Write(ctx, orig)
		}
		return resultFromErr(err, "paste")
	}
	err := d.Bridge.Input.TypeText(ctx, t.Text)
	return resultFromErr(err, "keystroke")
}

func (d *Dispatcher) handlePress(ctx context.Context, p Press) Result {
	if d.Bridge.Input == nil {
		return Result{OK: false, Error: "no input adapter configured"}
	}
	if len(p.Keys) == 1 {
		return resultFromErr(d.Bridge.Input.Press(ctx, p.Keys[0]), "keystroke")
	}
	return resultFromErr(d.Bridge.Input.Hotkey(ctx, p.Keys), "keystroke")
}

// --- open / switch ---------------------------------------------------------

func (d *Dispatcher) handleOpen(ctx context.Context, o Open) Result {
	if d.Bridge.Scripting == nil {
		return Result{OK: false, Error: "no scripting adapter configured"}
	}
	err := d.Bridge.Scripting.Launch(ctx, o.App)
	return resultFromErr(err, "scripting")
}

func (d *Dispatcher) handleSwitch(ctx context.Context, s Switch) Result {
	if s.Tab != "" {
		if d.Browser == nil {
			return Result{OK: false, Error: "no browser bridge configured"}
		}
		return resultFromErr(d.Browser.SwitchTab(ctx, s.Tab), "cdp")
	}
	if d.Bridge.Scripting == nil {
		return Result{OK: false, Error: "no scripting adapter configured"}
	}
	err := d.Bridge.Scripting.Activate(ctx, s.App, 5*time.Second)
	return resultFromErr(err, "scripting")
}

// --- scroll / hover / focus / drag -----------------------------------------

const scrollPollInterval = 300 * time.Millisecond
const scrollPollMax = 20
const scrollClicksPerPoll = 3

func (d *Dispatcher) handleScroll(ctx context.Context, pid int, elements []capability.Element, s Scroll) Result {
	if d.Bridge.Input == nil {
		return Result{OK: false, Error: "no input adapter configured"}
	}
	dx, dy := scrollDelta(s.Direction, s.Amount)

	if s.Until != "" {
		for i := 0; i < scrollPollMax; i++ {
			if _, found := FindTarget(elements, s.Until); found {
				return Result{OK: true, Text: "found " + s.Until, Method: "scroll-until"}
			}
			for c := 0; c < scrollClicksPerPoll; c++ {
				_ = d.Bridge.Input.Scroll(ctx, 0, -3)
			}
			select {
			case <-time.After(scrollPollInterval):
			case <-ctx.Done():
				return Result{OK: false, Error: ctx.Err().Error()}
			}
			elements = d.elementsFor(ctx, pid)
		}
		return Result{OK: false, Error: fmt.Sprintf("%q did not appear after scrolling", s.Until)}
	}

	if s.Target != "" {
		if el, ok := FindTarget(elements, s.Target); ok {
			_ = d.Bridge.Input.MoveTo(ctx, capability.Point{X: el.Bounds.X + el.Bounds.W/2, Y: el.Bounds.Y + el.Bounds.H/2})
		}
	}
	err := d.Bridge.Input.Scroll(ctx, dx, dy)
	return resultFromErr(err, "scroll")
}

func scrollDelta(dir string, amount int) (dx, dy int) {
	switch dir {
	case "up":
		return 0, amount
	case "down":
		return 0, -amount
	case "left":
		return amount, 0
	case "right":
		return -amount, 0
	}
	return 0, -amount
}

func (d *Dispatcher) handleHover(ctx context.Context, elements []capability.Element, h Hover) Result {
	if d.Bridge.Input == nil {
		return Result{OK: false, Error: "no input adapter configured"}
	}
	el, ok := FindTarget(elements, h.Target)
	if !ok {
		return Result{OK: false, Error: fmt.Sprintf("element not found: %q", h.Target)}
	}
	cx, cy := center(el.Bounds)
	err := d.Bridge.Input.MoveTo(ctx, capability.Point{X: cx, Y: cy})
	return resultFromErr(err, "hover")
}

func (d *Dispatcher) handleFocus(ctx context.Context, elements []capability.Element, f Focus) Result {
	el, ok := FindTarget(elements, f.Target)
	if !ok {
		return Result{OK: false, Error: fmt.Sprintf("element not found: %q", f.Target)}
	}
	if el.Handle != nil && d.Bridge.ElementActuator != nil {
		err := d.Bridge.ElementActuator.FocusElement(ctx, el.Handle)
		return resultFromErr(err, "accessibility")
	}
	return Result{OK: true, Text: "focused " + el.Label, Method: "accessibility"}
}

func (d *Dispatcher) handleDrag(ctx context.Context, elements []capability.Element, dr Drag) Result {
	if d.Bridge.Input == nil {
		return Result{OK: false, Error: "no input adapter configured"}
	}
	fromPt, ok := resolvePoint(elements, dr.From)
	if !ok {
		return Result{OK: false, Error: fmt.Sprintf("drag source not found: %q", dr.From)}
	}
	toPt, ok := resolvePoint(elements, dr.To)
	if !ok {
		return Result{OK: false, Error: fmt.Sprintf("drag target not found: %q", dr.To)}
	}
	err := d.Bridge.Input.Drag(ctx, fromPt, toPt)
	return resultFromErr(err, "drag")
}

func resolvePoint(elements []capability.Element, spec string) (capability.Point, bool) {
	if x, y, ok := ParseCoordinate(spec); ok {
		return capability.Point{X: x, Y: y}, true
	}
	if el, ok := FindTarget(elements, spec); ok {
		cx, cy := center(el.Bounds)
		return capability.Point{X: cx, Y: cy}, true
	}
	return capability.Point{}, false
}

// --- fill / wait -----------------------------------------------------------

const fieldSettle = 100 * time.Millisecond

func (d *Dispatcher) handleFill(ctx context.Context, elements []capability.Element, f Fill) Result {
	if len(f.Fields) == 0 {
		return Result{OK: false, Error: "no fields parsed"}
	}
	var failed []string
	for name, value := range f.Fields {
		el, ok := FindTarget(elements, name)
		if !ok || el.Handle == nil || d.Bridge.ElementActuator == nil {
			failed = append(failed, name)
			continue
		}
		if err := d.Bridge.ElementActuator.SetValue(ctx, el.Handle, value); err != nil {
			failed = append(failed, name)
		}
		time.Sleep(fieldSettle)
	}
	if len(failed) > 0 {
		return Result{OK: false, Error: "could not fill: " + strings.Join(failed, ", ")}
	}
	return Result{OK: true, Text: fmt.Sprintf("filled %d field(s)", len(f.Fields)), Method: "accessibility"}
}

const waitPollInterval = 500 * time.Millisecond

func (d *Dispatcher) handleWait(ctx context.Context, pid int, w Wait) Result {
	if w.Target == "" {
		d := time.Duration(w.Seconds * float64(time.Second))
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return Result{OK: false, Error: ctx.Err().Error()}
		}
		return Result{OK: true, Text: "waited", Method: "sleep"}
	}

	deadline := time.Now().Add(time.Duration(w.TimeoutSeconds * float64(time.Second)))
	for time.Now().Before(deadline) {
		elements := d.elementsFor(ctx, pid)
		_, found := FindTarget(elements, w.Target)
		if w.UntilDisappear && !found {
			return Result{OK: true, Text: w.Target + " disappeared", Method: "poll"}
		}
		if !w.UntilDisappear && found {
			return Result{OK: true, Text: w.Target + " appeared", Method: "poll"}
		}
		select {
		case <-time.After(waitPollInterval):
		case <-ctx.Done():
			return Result{OK: false, Error: ctx.Err().Error()}
		}
	}
	verb := "appear"
	if w.UntilDisappear {
		verb = "disappear"
	}
	return Result{OK: false, Error: fmt.Sprintf("timed out waiting for %q to %s", w.Target, verb)}
}

// --- menu / window / path ----------------------------------------------------

// shortcutFor looks up target's menu shortcut (e.g. "Cmd+S") by title in
// pid's menu bar and returns it split into Hotkey's lowercase key names.
// Mirrors click.py's _try_shortcut, without the 60s cache since every
// perceive/act round trip in this tree already re-walks the tree fresh.
func (d *Dispatcher) shortcutFor(ctx context.Context, pid int, target string) ([]string, bool) {
	if d.Bridge.Accessibility == nil {
		return nil, false
	}
	items, err := d.Bridge.Accessibility.MenuBar(ctx, pid)
	if err != nil {
		return nil, false
	}
	target = strings.ToLower(strings.TrimSpace(target))
	for _, item := range items {
		if item.Shortcut == "" || len(item.Path) == 0 {
			continue
		}
		title := strings.ToLower(item.Path[len(item.Path)-1])
		if title == target {
			parts := strings.Split(item.Shortcut, "+")
			keys := make([]string, 0, len(parts))
			for _, p := range parts {
				keys = append(keys, ResolveKey(strings.ToLower(strings.TrimSpace(p))))
			}
			return keys, len(keys) > 0
		}
	}
	return nil, false
}

// samePath reports whether a and b name the same menu path, case
// insensitively.
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

// availableMenuPaths lists the top two levels of pid's menu bar, capped the
// way click_menu's "available" hint is capped in native.py.
func availableMenuPaths(ctx context.Context, d *Dispatcher, pid int) []string {
	if d.Bridge.Accessibility == nil {
		return nil
	}
	items, err := d.Bridge.Accessibility.MenuBar(ctx, pid)
	if err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if item.Depth > 1 {
			continue
		}
		out = append(out, strings.Join(item.Path, " > "))
		if len(out) >= 20 {
			break
		}
	}
	return out
}

// handleMenu resolves a menu path through three tiers, preferring the
// cheapest and most precise first: a menu-bar walk that rejects the item if
// it is listed as disabled, a direct native path resolution to a clickable
// handle, and finally a plain element-tree search on the path's last
// segment. Grounded on original_source/nexus/act/native.py's click_menu and
// nexus/act/click.py's menu-bar shortcut preference.
func (d *Dispatcher) handleMenu(ctx context.Context, pid int, elements []capability.Element, m Menu) Result {
	if len(m.Path) == 0 {
		return Result{OK: false, Error: "empty menu path"}
	}

	// Tier 1: menu bar walk — reject an item the menu bar lists as disabled
	// before spending a resolve call on it; an item missing from the walk
	// falls through to the next tiers.
	if d.Bridge.Accessibility != nil {
		if items, err := d.Bridge.Accessibility.MenuBar(ctx, pid); err == nil {
			for _, item := range items {
				if samePath(item.Path, m.Path) && !item.Enabled {
					return Result{OK: false, Error: fmt.Sprintf("menu item is disabled: %s", strings.Join(m.Path, " > "))}
				}
			}
		}
	}

	// Tier 2: resolve the path directly to a native handle and click it.
	if d.Bridge.Accessibility != nil && d.Bridge.ElementActuator != nil {
		if h, ok, err := d.Bridge.Accessibility.FindMenuItem(ctx, pid, m.Path); err == nil && ok {
			if cerr := d.Bridge.ElementActuator.ClickElement(ctx, h); cerr == nil {
				d.invalidate(pid)
				return Result{OK: true, Text: "opened menu " + strings.Join(m.Path, " > "), Method: "menu"}
			}
		}
	}

	// Tier 3: fall back to a plain element-tree search on the last segment.
	last := m.Path[len(m.Path)-1]
	if el, ok := FindTarget(elements, last); ok {
		return d.clickElement(ctx, pid, el, Click{Clicks: 1, Button: "left"}, "menu-fallback")
	}

	if available := availableMenuPaths(ctx, d, pid); len(available) > 0 {
		return Result{OK: false, Error: fmt.Sprintf("menu item not found: %s (available: %s)",
			strings.Join(m.Path, " > "), strings.Join(available, ", "))}
	}
	return Result{OK: false, Error: fmt.Sprintf("menu item not found: %s", strings.Join(m.Path, " > "))}
}

func (d *Dispatcher) handleWindowOp(ctx context.Context, pid int, appName string, w WindowOp) Result {
	if d.Bridge.WindowManager == nil {
		return Result{OK: false, Error: "no window manager adapter configured"}
	}
	wm := d.Bridge.WindowManager
	switch w.Op {
	case "minimize":
		return resultFromErr(wm.MinimizeWindow(ctx, pid), "window")
	case "restore":
		return resultFromErr(wm.RestoreWindow(ctx, pid), "window")
	case "fullscreen":
		return resultFromErr(wm.FullscreenWindow(ctx, pid), "window")
	case "resize":
		wdt, hgt, ok := parseWxH(w.Arg)
		if !ok {
			return Result{OK: false, Error: fmt.Sprintf("cannot parse size: %q", w.Arg)}
		}
		return resultFromErr(wm.ResizeWindow(ctx, pid, wdt, hgt), "window")
	case "move", "position":
		bounds, ok := resolveSlot(w.Arg, d.boundsFor(ctx, pid))
		if !ok {
			return Result{OK: false, Error: fmt.Sprintf("unknown slot: %q", w.Arg)}
		}
		return resultFromErr(wm.MoveWindow(ctx, pid, bounds), "window")
	case "tile":
		return Result{OK: false, Error: "tile requires two named windows, not yet resolvable without a second pid"}
	}
	return Result{OK: false, Error: "unknown window op: " + w.Op}
}

func parseWxH(arg string) (w, h int, ok bool) {
	parts := strings.SplitN(strings.ToLower(arg), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	return w, h, err1 == nil && err2 == nil
}

func resolveSlot(slot string, bounds capability.Rect) (capability.Rect, bool) {
	halfW, halfH := bounds.W/2, bounds.H/2
	switch strings.ToLower(strings.TrimSpace(slot)) {
	case "left half":
		return capability.Rect{X: bounds.X, Y: bounds.Y, W: halfW, H: bounds.H}, true
	case "right half":
		return capability.Rect{X: bounds.X + halfW, Y: bounds.Y, W: halfW, H: bounds.H}, true
	case "top half":
		return capability.Rect{X: bounds.X, Y: bounds.Y, W: bounds.W, H: halfH}, true
	case "bottom half":
		return capability.Rect{X: bounds.X, Y: bounds.Y + halfH, W: bounds.W, H: halfH}, true
	case "center":
		return capability.Rect{X: bounds.X + bounds.W/4, Y: bounds.Y + bounds.H/4, W: halfW, H: halfH}, true
	}
	if x, y, ok := ParseCoordinate(strings.TrimPrefix(slot, "to ")); ok {
		return capability.Rect{X: x, Y: y, W: bounds.W, H: bounds.H}, true
	}
	return capability.Rect{}, false
}

func (d *Dispatcher) handleNavPath(ctx context.Context, pid int, n NavPath) Result {
	for i, step := range n.Steps {
		elements := d.elementsFor(ctx, pid)
		el, ok := FindTarget(elements, step)
		if !ok {
			return Result{OK: false, Error: fmt.Sprintf("path step %d/%d (%q) not found", i+1, len(n.Steps), step)}
		}
		res := d.clickElement(ctx, pid, el, Click{Clicks: 1, Button: "left"}, "path")
		if !res.OK {
			return Result{OK: false, Error: fmt.Sprintf("path step %d/%d (%q) failed: %s", i+1, len(n.Steps), step, res.Error)}
		}
		d.invalidate(pid)
		time.Sleep(300 * time.Millisecond)
	}
	return Result{OK: true, Text: "navigated " + strings.Join(n.Steps, " > "), Method: "path"}
}

// --- browser bridge ----------------------------------------------------------

func (d *Dispatcher) handleBrowser(ctx context.Context, b Browser) Result {
	if d.Browser == nil {
		if b.Op == "navigate" && d.Bridge.Scripting != nil {
			_, err := d.Bridge.Scripting.Run(ctx, "", 0)
			_ = err
			return Result{OK: false, Error: "no browser bridge configured; CDP unavailable"}
		}
		return Result{OK: false, Error: "no browser bridge configured"}
	}
	switch b.Op {
	case "navigate":
		url := b.Arg
		if !strings.Contains(url, "://") {
			url = "https://" + url
		}
		return resultFromErr(d.Browser.Navigate(ctx, url), "cdp")
	case "js":
		out, err := d.Browser.Eval(ctx, b.Arg)
		if err != nil {
			return Result{OK: false, Error: err.Error(), Method: "cdp"}
		}
		return Result{OK: true, Text: out, Method: "cdp"}
	}
	return Result{OK: false, Error: "unknown browser op: " + b.Op}
}

// --- shortcuts / getters -----------------------------------------------------

func (d *Dispatcher) handleShortcut(ctx context.Context, pid int, appName string, s Shortcut) Result {
	switch s.Name {
	case "select_all":
		return resultFromErr(d.Bridge.Input.Hotkey(ctx, []string{"cmd", "a"}), "keystroke")
	case "copy":
		return resultFromErr(d.Bridge.Input.Hotkey(ctx, []string{"cmd", "c"}), "keystroke")
	case "paste":
		return resultFromErr(d.Bridge.Input.Hotkey(ctx, []string{"cmd", "v"}), "keystroke")
	case "undo":
		return resultFromErr(d.Bridge.Input.Hotkey(ctx, []string{"cmd", "z"}), "keystroke")
	case "redo":
		return resultFromErr(d.Bridge.Input.Hotkey(ctx, []string{"cmd", "shift", "z"}), "keystroke")
	case "close_window":
		return resultFromErr(d.Bridge.Input.Hotkey(ctx, []string{"cmd", "w"}), "keystroke")
	case "quit":
		return resultFromErr(d.Bridge.Input.Hotkey(ctx, []string{"cmd", "q"}), "keystroke")
	case "maximize", "fullscreen":
		return resultFromErr(d.Bridge.WindowManager.FullscreenWindow(ctx, pid), "window")
	case "exit_fullscreen":
		return resultFromErr(d.Bridge.WindowManager.RestoreWindow(ctx, pid), "window")
	case "minimize":
		return resultFromErr(d.Bridge.WindowManager.MinimizeWindow(ctx, pid), "window")
	case "restore":
		return resultFromErr(d.Bridge.WindowManager.RestoreWindow(ctx, pid), "window")
	}
	return Result{OK: false, Error: "unknown shortcut: " + s.Name}
}

func (d *Dispatcher) handleGetter(ctx context.Context, pid int, appName string, elements []capability.Element, g Getter) Result {
	switch g.Kind {
	case "clipboard":
		if d.Bridge.Clipboard == nil {
			return Result{OK: false, Error: "no clipboard adapter configured"}
		}
		text, err := d.Bridge.Clipboard.Read(ctx)
		return Result{OK: err == nil, Text: text, Error: errText(err), Method: "clipboard"}
	case "url":
		if d.Browser == nil {
			return Result{OK: false, Error: "no browser bridge configured"}
		}
		url, err := d.Browser.CurrentURL(ctx)
		return Result{OK: err == nil, Text: url, Error: errText(err), Method: "cdp"}
	case "tabs":
		if d.Browser == nil {
			return Result{OK: false, Error: "no browser bridge configured"}
		}
		tabs, err := d.Browser.Tabs(ctx)
		return Result{OK: err == nil, Text: strings.Join(tabs, "\n"), Error: errText(err), Method: "cdp"}
	case "console":
		if d.Browser == nil {
			return Result{OK: false, Error: "no browser bridge configured"}
		}
		logs, err := d.Browser.ConsoleLogs(ctx)
		return Result{OK: err == nil, Text: strings.Join(logs, "\n"), Error: errText(err), Method: "cdp"}
	case "windows":
		if d.Bridge.WindowManager == nil {
			return Result{OK: false, Error: "no window manager adapter configured"}
		}
		windows, err := d.Bridge.WindowManager.ListWindows(ctx)
		if err != nil {
			return Result{OK: false, Error: err.Error()}
		}
		var lines []string
		for _, w := range windows {
			lines = append(lines, fmt.Sprintf("%s - %s (pid %d)", w.App, w.Title, w.PID))
		}
		return Result{OK: true, Text: strings.Join(lines, "\n")}
	case "recipes":
		var lines []string
		for _, r := range d.Recipes.List() {
			lines = append(lines, fmt.Sprintf("%s (%s, priority %d)", r.Name, r.App, r.Priority))
		}
		return Result{OK: true, Text: strings.Join(lines, "\n")}
	case "workflows":
		return d.runWorkflowOp(ctx, WorkflowOp{Op: "list"}, appName)
	case "where_is":
		if d.Bridge.WindowManager == nil {
			return Result{OK: false, Error: "no window manager adapter configured"}
		}
		windows, err := d.Bridge.WindowManager.ListWindows(ctx)
		if err != nil {
			return Result{OK: false, Error: err.Error()}
		}
		for _, w := range windows {
			if strings.Contains(strings.ToLower(w.App), strings.ToLower(g.Arg)) {
				return Result{OK: true, Text: fmt.Sprintf("%s at (%d,%d) %dx%d", w.App, w.Bounds.X, w.Bounds.Y, w.Bounds.W, w.Bounds.H)}
			}
		}
		return Result{OK: false, Error: fmt.Sprintf("no window for %q", g.Arg)}
	case "window_info":
		b := d.boundsFor(ctx, pid)
		return Result{OK: true, Text: fmt.Sprintf("%s: (%d,%d) %dx%d", appName, b.X, b.Y, b.W, b.H)}
	case "table", "list":
		pctx := d.runPerception(ctx, pid, appName)
		return Result{OK: true, Text: fusion.Render(pctx, nil)}
	case "selection", "source":
		return Result{OK: false, Error: g.Kind + " requires an accessibility selection API not exposed by this capability set"}
	}
	return Result{OK: false, Error: "unknown getter: " + g.Kind}
}

func (d *Dispatcher) handleSay(ctx context.Context, s Say) Result {
	if d.Bridge.Scripting == nil {
		return Result{OK: false, Error: "no scripting adapter configured"}
	}
	_, err := d.Bridge.Scripting.Run(ctx, `say "`+strings.ReplaceAll(s.Text, `"`, `\"`)+`"`, 10*time.Second)
	return resultFromErr(err, "scripting")
}

func (d *Dispatcher) handleNotify(ctx context.Context, n Notify) Result {
	if d.Bridge.Scripting == nil {
		return Result{OK: false, Error: "no scripting adapter configured"}
	}
	script := fmt.Sprintf(`display notification "%s"`, strings.ReplaceAll(n.Text, `"`, `\"`))
	_, err := d.Bridge.Scripting.Run(ctx, script, 10*time.Second)
	return resultFromErr(err, "scripting")
}

func (d *Dispatcher) handleClipboardSet(ctx context.Context, c Clipboard) Result {
	if d.Bridge.Clipboard == nil {
		return Result{OK: false, Error: "no clipboard adapter configured"}
	}
	err := d.Bridge.Clipboard.Write(ctx, c.Text)
	return resultFromErr(err, "clipboard")
}

// --- workflow / route management --------------------------------------------

func (d *Dispatcher) runWorkflowOp(ctx context.Context, w WorkflowOp, appName string) Result {
	if d.Workflow == nil {
		return Result{OK: false, Error: "workflow recording is not configured"}
	}
	switch w.Op {
	case "start":
		id, err := d.Workflow.StartRecording(ctx, w.Name, appName)
		return resultFromErrText(err, "recording started: "+id)
	case "stop":
		id, n, err := d.Workflow.StopRecording(ctx)
		return resultFromErrText(err, fmt.Sprintf("recorded %q with %d step(s)", id, n))
	case "replay":
		id, ok, err := d.Workflow.ByName(ctx, w.Name)
		if err != nil {
			return Result{OK: false, Error: err.Error()}
		}
		if !ok {
			id = w.Name
		}
		res, err := d.Workflow.Replay(ctx, id, d)
		if err != nil {
			return Result{OK: false, Error: err.Error()}
		}
		return Result{OK: res.Completed == res.Total, Text: fmt.Sprintf("replayed %d/%d step(s)", res.Completed, res.Total)}
	case "list":
		items, err := d.Workflow.List(ctx)
		if err != nil {
			return Result{OK: false, Error: err.Error()}
		}
		var lines []string
		for _, it := range items {
			lines = append(lines, fmt.Sprintf("%s (%d steps, %d ok / %d fail)", it.Name, it.StepCount, it.SuccessCount, it.FailCount))
		}
		return Result{OK: true, Text: strings.Join(lines, "\n")}
	case "delete":
		ok, err := d.Workflow.Delete(ctx, w.Name)
		if err != nil {
			return Result{OK: false, Error: err.Error()}
		}
		if !ok {
			return Result{OK: false, Error: "workflow not found: " + w.Name}
		}
		return Result{OK: true, Text: "deleted " + w.Name}
	}
	return Result{OK: false, Error: "unknown workflow op: " + w.Op}
}

func (d *Dispatcher) runRouteOp(ctx context.Context, r RouteOp) Result {
	if d.Route == nil {
		return Result{OK: false, Error: "route recording is not configured"}
	}
	switch r.Op {
	case "record", "start":
		id, err := d.Route.StartRecording(ctx, r.Name, "")
		return resultFromErrText(err, "route recording started: "+id)
	case "stop":
		id, n, err := d.Route.StopRecording(ctx)
		return resultFromErrText(err, fmt.Sprintf("recorded route %q with %d step(s)", id, n))
	case "replay", "run":
		summary, err := d.Route.Replay(ctx, r.Name, 1.0)
		return resultFromErrText(err, summary)
	case "list":
		text, err := d.Route.List(ctx)
		return resultFromErrText(err, text)
	case "delete":
		ok, err := d.Route.Delete(ctx, r.Name)
		if err != nil {
			return Result{OK: false, Error: err.Error()}
		}
		if !ok {
			return Result{OK: false, Error: "route not found: " + r.Name}
		}
		return Result{OK: true, Text: "deleted " + r.Name}
	}
	return Result{OK: false, Error: "unknown route op: " + r.Op}
}

// --- small helpers -----------------------------------------------------------

func resultFromErr(err error, method string) Result {
	if err != nil {
		return Result{OK: false, Error: err.Error(), Method: method}
	}
	return Result{OK: true, Text: "ok", Method: method}
}

func resultFromErrText(err error, text string) Result {
	if err != nil {
		return Result{OK: false, Error: err.Error()}
	}
	return Result{OK: true, Text: text}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var _ = nxerr.New // keeps the nxerr import in use; no code in this file calls it
