package intent

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/fusion"
	"github.com/nexuscore/nexus/internal/graph"
	"github.com/nexuscore/nexus/internal/hooks"
	"github.com/nexuscore/nexus/internal/perception"
)

// maxScreenshotBytes bounds how large an encoded capture perceive() will
// embed, matching the source's screenshot_to_base64 size discipline — a
// capture over this size is dropped rather than sent rather than blowing
// up the response.
const maxScreenshotBytes = 4 * 1024 * 1024

// browserAppNames are the apps intent.Perceive enriches with CDP page text,
// matching the source's _BROWSER_NAMES.
var browserAppNames = map[string]bool{
	"google chrome": true, "chrome": true, "chromium": true,
}

// maxWebContentChars bounds how much page text perceive() embeds per call.
const maxWebContentChars = 4000

// PerceiveOptions mirrors perceive()'s optional arguments (spec.md §6).
// Empty strings and false booleans are treated as unset.
type PerceiveOptions struct {
	App        string
	Query      string
	Screenshot bool
	Menus      bool
	Diff       bool
	Content    bool
	Observe    bool
}

// PerceiveResult is perceive()'s return value: text is always populated,
// Image holds an optional screenshot.
type PerceiveResult struct {
	Text  string
	Image []byte
}

// Perceive runs the perception pipeline against opts.App (or the
// frontmost process), fires before_perceive/after_perceive the way
// resolve.py's see() fires before_see/after_see, and renders the result
// into the text block perceive() returns. An empty App and Query are both
// treated as absent.
func (d *Dispatcher) Perceive(ctx context.Context, opts PerceiveOptions) (PerceiveResult, error) {
	var pid int
	var err error
	if opts.App != "" {
		pid, err = d.resolveAppPID(ctx, opts.App)
	} else {
		pid, err = d.resolvePID(ctx, nil)
	}
	if err != nil {
		return PerceiveResult{}, err
	}
	appName := d.appNameFor(ctx, pid)

	fetchLimit := d.Config.Perception.MaxElements
	if fetchLimit == 0 {
		fetchLimit = 200
	}

	// Observation subscription itself runs continuously in internal/observer
	// for every process the bridge reports change events for;
	// perceive()'s observe flag is handled as "drain whatever has
	// accumulated" below, same as every other perceive() call — a
	// dedicated per-app subscribe step isn't needed since the observer's
	// loop is already shared across every process.
	beforeCtx := hooks.Ctx{"pid": pid, "app_info": appName, "query": opts.Query, "fetch_limit": fetchLimit}
	beforeCtx = d.Hooks.Fire(hooks.BeforePerceive, beforeCtx)

	var pctx *perception.Context
	fromCache := false
	if cached, ok := beforeCtx["cached_elements"].([]capability.Element); ok {
		pctx = &perception.Context{PID: pid, AppName: appName, Elements: cached}
		fromCache = true
	} else if opts.Query != "" {
		pctx = d.runQuery(ctx, pid, appName, opts.Query, fetchLimit)
	} else {
		pctx = d.runPipeline(ctx, pid, appName)
	}

	var extra []string
	if d.Observer != nil {
		extra = append(extra, d.Observer.Drain(pid)...)
	}

	afterCtx := hooks.Ctx{
		"pid": pid, "app_info": appName, "elements": pctx.Elements,
		"fetch_limit": fetchLimit, "from_cache": fromCache, "result_parts": extra,
	}
	afterCtx = d.Hooks.Fire(hooks.AfterPerceive, afterCtx)
	if parts, ok := afterCtx["result_parts"].([]string); ok {
		extra = parts
	}

	if opts.Diff {
		extra = append(extra, "", d.diffAgainstLast(pid, appName, pctx.Elements))
	} else {
		if d.lastSnapshots == nil {
			d.lastSnapshots = make(map[int]fusion.Snapshot)
		}
		d.lastSnapshots[pid] = fusion.Snap(pid, appName, pctx.Elements)
	}

	d.enrichContext(ctx, pid, appName, opts, pctx)

	text := fusion.Render(pctx, extra)

	var img []byte
	if opts.Screenshot && d.Bridge.ScreenCapture != nil {
		bounds := d.boundsFor(ctx, pid)
		if data, w, h, serr := d.Bridge.ScreenCapture.CaptureRegion(ctx, bounds); serr == nil {
			img = encodeScreenshot(data, w, h)
		}
	}

	return PerceiveResult{Text: text, Image: img}, nil
}

// encodeScreenshot turns a CaptureRegion's raw RGBA pixels into PNG-encoded
// bytes, matching the source's screen.screenshot_to_base64 (the PNG, not
// raw pixels, is what the transport layer then base64-encodes onto the
// wire). Returns nil if the pixel buffer doesn't match width*height*4 or
// the encoded result exceeds maxScreenshotBytes.
func encodeScreenshot(pixels []byte, width, height int) []byte {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil
	}
	img := &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	if buf.Len() == 0 || buf.Len() > maxScreenshotBytes {
		return nil
	}
	return buf.Bytes()
}

// enrichContext fills in the trusted-permission note, focused element,
// window list, document content, and browser page content that Render
// composes ahead of the element list — every piece see() gathers besides
// the perception-pipeline element walk itself.
func (d *Dispatcher) enrichContext(ctx context.Context, pid int, appName string, opts PerceiveOptions, pctx *perception.Context) {
	pctx.Trusted = true
	if d.Bridge.Accessibility == nil {
		pctx.Trusted = false
	} else {
		if trusted, terr := d.Bridge.Accessibility.IsTrusted(ctx); terr == nil {
			pctx.Trusted = trusted
		}
		if focus, ok, ferr := d.Bridge.Accessibility.FocusedElement(ctx, pid); ferr == nil && ok {
			pctx.Focus = &focus
		}
		if opts.Content {
			if items, cerr := d.Bridge.Accessibility.ReadContent(ctx, pid); cerr == nil {
				pctx.Content = items
			}
		}
	}

	if d.Bridge.WindowManager != nil {
		if wins, werr := d.Bridge.WindowManager.ListWindows(ctx); werr == nil {
			pctx.Windows = wins
		}
	}

	if d.Browser != nil && browserAppNames[strings.ToLower(appName)] {
		if text, werr := d.Browser.Eval(ctx, "document.body.innerText"); werr == nil && text != "" {
			if len(text) > maxWebContentChars {
				text = text[:maxWebContentChars] + "..."
			}
			pctx.WebContent = text
		}
	}
}

func (d *Dispatcher) runQuery(ctx context.Context, pid int, appName, query string, fetchLimit int) *perception.Context {
	pctx := d.runPipeline(ctx, pid, appName)
	query = strings.ToLower(query)
	matched := make([]capability.Element, 0, len(pctx.Elements))
	for _, e := range pctx.Elements {
		if strings.Contains(strings.ToLower(e.Label), query) || strings.Contains(strings.ToLower(e.Role), query) {
			matched = append(matched, e)
		}
	}
	pctx.Elements = matched
	return pctx
}

// runPipeline executes the registered perception layers for pid/appName
// through the one shared Pipeline, matching resolve.py's run_pipeline call
// inside see(). A nil Pipeline (zero-value Dispatcher, used by tests that
// don't exercise perception) degrades to an empty context instead of
// panicking.
func (d *Dispatcher) runPipeline(ctx context.Context, pid int, appName string) *perception.Context {
	if d.Pipeline == nil {
		return &perception.Context{PID: pid, AppName: appName}
	}
	bounds := d.boundsFor(ctx, pid)
	fetchLimit := d.Config.Perception.MaxElements
	if fetchLimit == 0 {
		fetchLimit = 200
	}
	return d.Pipeline.Run(ctx, pid, appName, bounds, fetchLimit)
}

// resolveAppPID resolves app to a PID: a bare integer is used directly,
// otherwise the window list is searched for an exact then substring
// case-insensitive app-name match.
func (d *Dispatcher) resolveAppPID(ctx context.Context, app string) (int, error) {
	if n, err := strconv.Atoi(app); err == nil {
		return n, nil
	}
	if d.Bridge.WindowManager == nil {
		return 0, fmt.Errorf("no window manager adapter configured")
	}
	windows, err := d.Bridge.WindowManager.ListWindows(ctx)
	if err != nil {
		return 0, err
	}
	lower := strings.ToLower(app)
	for _, w := range windows {
		if strings.ToLower(w.App) == lower {
			return w.PID, nil
		}
	}
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.App), lower) {
			return w.PID, nil
		}
	}
	return 0, fmt.Errorf("no running app matching %q", app)
}

// SuggestNext answers "what action got me from here to there": it resolves
// app to a pid (or falls back to the frontmost process), looks up that
// pid's most recently snapshotted layout fingerprint, and asks the
// navigation graph for the first step of the shortest known path to
// targetFingerprint. Surfaces internal/graph.SuggestAction on the MCP
// remember tool's "suggest" op.
func (d *Dispatcher) SuggestNext(ctx context.Context, app, targetFingerprint string) (graph.Step, bool, error) {
	if d.Graph == nil {
		return graph.Step{}, false, fmt.Errorf("navigation graph not configured")
	}

	var pid int
	var err error
	if app != "" {
		pid, err = d.resolveAppPID(ctx, app)
	} else {
		pid, err = d.resolvePID(ctx, nil)
	}
	if err != nil {
		return graph.Step{}, false, err
	}

	snap, ok := d.lastSnapshots[pid]
	if !ok {
		return graph.Step{}, false, fmt.Errorf("no prior snapshot for pid %d; call perceive first", pid)
	}

	return d.Graph.SuggestAction(ctx, snap.Fingerprint, targetFingerprint)
}

func (d *Dispatcher) diffAgainstLast(pid int, appName string, elements []capability.Element) string {
	current := fusion.Snap(pid, appName, elements)
	if d.lastSnapshots == nil {
		d.lastSnapshots = make(map[int]fusion.Snapshot)
	}
	prev, ok := d.lastSnapshots[pid]
	d.lastSnapshots[pid] = current
	if !ok {
		return "Changes: (no prior snapshot)"
	}
	if diff := fusion.Verify(prev, current); diff != "no visible change" {
		return "Changes: " + diff
	}
	return "Changes: (none detected)"
}
