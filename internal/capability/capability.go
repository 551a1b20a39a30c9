// Package capability defines the narrow OS-facing interfaces every
// perception layer and action handler programs against. Nothing above this
// package imports a concrete OS binding directly — it imports capability and
// receives an implementation (real or fake) from internal/lifecycle or a
// test.
package capability

import (
	"context"
	"time"
)

// Rect is a pixel rectangle in screen coordinates.
type Rect struct {
	X, Y, W, H int
}

// Point is a pixel coordinate in screen coordinates.
type Point struct {
	X, Y int
}

// Element is one accessibility-tree node (or an OCR/template detection
// promoted to element shape by a higher perception layer).
type Element struct {
	Role    string
	Label   string
	Value   string
	Bounds  Rect
	Enabled bool
	Focused bool
	// Source names the perception layer that produced this element ("ax",
	// "ocr", "template"). Used for search-scoring preference and to pick the
	// right action method (AX actions vs. coordinate click).
	Source string
	// Group names the container (toolbar, sheet, sidebar section) this
	// element was read from, if the adapter tracked one. Empty for elements
	// with no meaningful container. Used to group the rendered element list
	// under a heading instead of a flat numbered run.
	Group string
	// Handle is an opaque reference a capability adapter can later resolve
	// back to the native element it was read from. Callers never inspect it.
	Handle ElementHandle
}

// ElementHandle is an opaque reference to a native UI element, owned by the
// Accessibility adapter that produced it. The caller is responsible for
// calling Release when finished; a handle outliving its owning snapshot is a
// caller bug, not a library concern.
type ElementHandle interface {
	Release()
}

// Window describes one top-level window known to the window manager.
type Window struct {
	PID      int
	App      string
	Title    string
	Bounds   Rect
	Active   bool
	Minimized bool
}

// MenuItem is one entry of a flattened, depth-first application menu bar
// walk. Path is the full menu path ("File", "Save As…"); Depth 0 is a
// top-level menu, Depth 1 its immediate items, and so on.
type MenuItem struct {
	Path     []string
	Shortcut string
	Enabled  bool
	Depth    int
}

// ContentItem is one piece of readable text pulled from a document, text
// area, or large field — the output of perceive(content=true), distinct
// from the structural element list.
type ContentItem struct {
	Role    string
	Label   string
	Content string
}

// Accessibility reads the accessibility tree of the focused or named
// application and resolves elements found there back to native handles a
// capability's other methods can act on.
type Accessibility interface {
	// Snapshot returns up to maxElements elements for the process, ordered by
	// the adapter's own layout heuristics (top-to-bottom, left-to-right).
	Snapshot(ctx context.Context, pid int, maxElements int) ([]Element, error)
	// FocusedProcess returns the pid of the frontmost application, or an
	// nxerr.BridgeUnavailable error if none can be determined.
	FocusedProcess(ctx context.Context) (int, error)
	// IsTrusted reports whether the accessibility permission has been
	// granted. When false, Snapshot/FocusedElement/MenuBar typically return
	// nothing and callers should say so rather than report an empty screen.
	IsTrusted(ctx context.Context) (bool, error)
	// FocusedElement returns the element currently holding keyboard focus
	// in pid, or ok=false if nothing is focused.
	FocusedElement(ctx context.Context, pid int) (Element, bool, error)
	// MenuBar returns the flattened menu tree for pid, depth-first.
	MenuBar(ctx context.Context, pid int) ([]MenuItem, error)
	// FindMenuItem resolves a menu path directly to a clickable handle
	// without the caller having to walk the full MenuBar result itself —
	// the adapter's native menu-item lookup API, when one exists.
	FindMenuItem(ctx context.Context, pid int, path []string) (ElementHandle, bool, error)
	// ReadContent returns text pulled from documents, text areas, and large
	// fields in pid, for perceive(content=true).
	ReadContent(ctx context.Context, pid int) ([]ContentItem, error)
}

// InputSynth synthesizes keyboard and mouse input.
type InputSynth interface {
	Click(ctx context.Context, at Point, button string, clicks int, modifiers []string) error
	ModifierClick(ctx context.Context, at Point, modifiers []string) error
	MoveTo(ctx context.Context, at Point) error
	Drag(ctx context.Context, from, to Point) error
	Scroll(ctx context.Context, dx, dy int) error
	Hotkey(ctx context.Context, keys []string) error
	Press(ctx context.Context, key string) error
	TypeText(ctx context.Context, text string) error
	PasteText(ctx context.Context, text string, settle time.Duration) error
	MousePosition(ctx context.Context) (Point, error)
	ScreenSize(ctx context.Context) (w, h int, err error)
}

// ElementActuator resolves a handle returned by Accessibility.Snapshot back
// to the native element and performs an action on it.
type ElementActuator interface {
	ClickElement(ctx context.Context, h ElementHandle) error
	FocusElement(ctx context.Context, h ElementHandle) error
	SetValue(ctx context.Context, h ElementHandle, value string) error
}

// ScreenCapture captures pixels for the OCR fallback layer.
type ScreenCapture interface {
	CaptureRegion(ctx context.Context, r Rect) (img []byte, width, height int, err error)
}

// OCR extracts text elements from a captured image.
type OCR interface {
	Recognize(ctx context.Context, img []byte, width, height int) ([]Element, error)
}

// WindowManager lists and manipulates windows.
type WindowManager interface {
	ListWindows(ctx context.Context) ([]Window, error)
	ActivateWindow(ctx context.Context, pid int) error
	CloseWindow(ctx context.Context, pid int) error
	MoveWindow(ctx context.Context, pid int, bounds Rect) error
	ResizeWindow(ctx context.Context, pid int, w, h int) error
	MinimizeWindow(ctx context.Context, pid int) error
	RestoreWindow(ctx context.Context, pid int) error
	FullscreenWindow(ctx context.Context, pid int) error
}

// Scripting runs native automation scripts and activates applications by
// name, used for recipe handlers and the wrong-app retry path.
type Scripting interface {
	Run(ctx context.Context, script string, timeout time.Duration) (string, error)
	Activate(ctx context.Context, appName string, timeout time.Duration) error
	Launch(ctx context.Context, appName string) error
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// ChangeEvent is one accessibility change notification.
type ChangeEvent struct {
	PID  int
	Kind string
	At   time.Time
}

// ChangeEventSource delivers accessibility change notifications on a
// channel, closed when ctx is done.
type ChangeEventSource interface {
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// RawEvent is one captured raw input event, used by route recording.
type RawEvent struct {
	Kind string
	At   Point
	Key  string
	Time time.Time
}

// RawEventTap delivers raw input events for route recording.
type RawEventTap interface {
	Tap(ctx context.Context) (<-chan RawEvent, error)
}

// Bridge bundles every capability a component might need. internal/lifecycle
// assembles the real one; tests assemble internal/capability/fake's.
type Bridge struct {
	Accessibility     Accessibility
	ElementActuator   ElementActuator
	Input             InputSynth
	ScreenCapture     ScreenCapture
	OCR               OCR
	WindowManager     WindowManager
	Scripting         Scripting
	Clipboard         Clipboard
	ChangeEventSource ChangeEventSource
	RawEventTap       RawEventTap
}
