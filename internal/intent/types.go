package intent

// ParsedIntent is the sealed union of every dispatchable intent shape. The
// dispatcher type-switches on it; callers outside this package only ever
// see the interface, matching spec.md §9's sum-type recommendation.
type ParsedIntent interface {
	intentKind() string
}

// Click is "click <target>" plus any modifier/multiplicity already
// resolved from the verb token (shift-click, double-click, ...).
type Click struct {
	Target    string
	Modifiers []string
	Clicks    int
	Button    string
	MenuPath  []string // non-nil when Target contained a ">" menu path
}

func (Click) intentKind() string { return "click" }

// Type sets an element's value, falling back to synthesized keystrokes.
type Type struct {
	Target string // "" means the currently focused element
	Text   string
}

func (Type) intentKind() string { return "type" }

// Press synthesizes a single key or a modifier hotkey.
type Press struct {
	Keys []string
}

func (Press) intentKind() string { return "press" }

// Open launches or foregrounds an application by name.
type Open struct {
	App string
}

func (Open) intentKind() string { return "open" }

// Switch activates an already-running application, or a browser tab when
// Tab is set.
type Switch struct {
	App string
	Tab string // non-empty for "switch tab <n|query>"
}

func (Switch) intentKind() string { return "switch" }

// Scroll scrolls the focused or named element/window.
type Scroll struct {
	Direction string // up|down|left|right
	Amount    int
	Target    string
	Until     string // non-empty for "until <target> [appears]"
}

func (Scroll) intentKind() string { return "scroll" }

// Hover moves the pointer over a target without clicking.
type Hover struct {
	Target string
}

func (Hover) intentKind() string { return "hover" }

// Drag moves from one point/element to another.
type Drag struct {
	From, To string
}

func (Drag) intentKind() string { return "drag" }

// Fill sets multiple named fields in one step.
type Fill struct {
	Fields map[string]string
}

func (Fill) intentKind() string { return "fill" }

// Wait pauses, or polls for a target's appearance/disappearance.
type Wait struct {
	Seconds        float64
	Target         string
	UntilDisappear bool
	TimeoutSeconds float64
}

func (Wait) intentKind() string { return "wait" }

// Menu clicks a menu-bar path, e.g. File > Save.
type Menu struct {
	Path []string
}

func (Menu) intentKind() string { return "menu" }

// WindowOp is a window-management operation: tile, move, resize, minimize,
// restore, fullscreen.
type WindowOp struct {
	Op  string
	App string
	Arg string
}

func (WindowOp) intentKind() string { return "window" }

// NavPath clicks a ">"-separated sequence of UI steps, settling and
// invalidating the perception cache between each.
type NavPath struct {
	Steps []string
}

func (NavPath) intentKind() string { return "navpath" }

// Browser is a browser-bridge operation: Classify produces only "navigate"
// and "js". Tab switching is a Switch intent and console output a Getter;
// new-tab and close-tab commands are not classified.
type Browser struct {
	Op  string
	Arg string
}

func (Browser) intentKind() string { return "browser" }

// WorkflowOp manages named workflow recordings.
type WorkflowOp struct {
	Op   string // start|stop|replay|list|delete
	Name string
}

func (WorkflowOp) intentKind() string { return "workflow" }

// RouteOp manages raw recorded routes.
type RouteOp struct {
	Op   string
	Name string
}

func (RouteOp) intentKind() string { return "route" }

// Getter is a read-only query answered without a perception diff.
type Getter struct {
	Kind string // clipboard|url|tabs|selection|table|list|windows|recipes|workflows|window_info
	Arg  string
}

func (Getter) intentKind() string { return "getter" }

// Shortcut is a literal closed-set phrase mapped straight to one
// operation: select all, copy, paste, undo, redo, close window, quit.
type Shortcut struct {
	Name string
}

func (Shortcut) intentKind() string { return "shortcut" }

// Focus moves keyboard/AX focus to a target without clicking.
type Focus struct {
	Target string
}

func (Focus) intentKind() string { return "focus" }

// Observe requests a fresh perception pass be logged without returning a
// diff — used for "observe" as a standalone verb distinct from perceive().
type Observe struct{}

func (Observe) intentKind() string { return "observe" }

// Say speaks or writes a notification string; Notify posts a system
// notification. Both are thin scripting-capability calls.
type Say struct{ Text string }

func (Say) intentKind() string { return "say" }

type Notify struct{ Text string }

func (Notify) intentKind() string { return "notify" }

// Chain is a top-level ";"-separated sequence of raw action strings, each
// re-parsed and run independently by the dispatcher.
type Chain struct {
	Steps []string
}

func (Chain) intentKind() string { return "chain" }

// Clipboard sets the system clipboard directly ("set clipboard <text>").
type Clipboard struct{ Text string }

func (Clipboard) intentKind() string { return "clipboard" }

// Raw is the fallback for a verb this parser didn't specifically classify:
// the dispatcher still tries recipe routing and a bare click/menu-path
// fallback against it, matching resolve.py's final fallback branch.
type Raw struct {
	Verb string
	Rest string
}

func (Raw) intentKind() string { return "raw" }
