package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/control"
	"github.com/nexuscore/nexus/internal/fusion"
	"github.com/nexuscore/nexus/internal/graph"
	"github.com/nexuscore/nexus/internal/hooks"
	"github.com/nexuscore/nexus/internal/learn"
	"github.com/nexuscore/nexus/internal/nxerr"
	"github.com/nexuscore/nexus/internal/perception"
	"github.com/nexuscore/nexus/internal/recipe"
	"github.com/nexuscore/nexus/internal/session"
	"github.com/nexuscore/nexus/internal/store"
	"github.com/nexuscore/nexus/internal/workflow"
)

// RouteOps is the narrow slice of internal/route.Engine the dispatcher
// drives for "via ..." commands, kept as an interface so intent doesn't
// import route directly and route can in turn use a Dispatcher as its own
// click/press primitive during replay.
type RouteOps interface {
	StartRecording(ctx context.Context, name, app string) (string, error)
	StopRecording(ctx context.Context) (id string, steps int, err error)
	Replay(ctx context.Context, id string, speed float64) (summary string, err error)
	List(ctx context.Context) (string, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// BrowserBridge is the narrow CDP-backed capability Browser{} intents are
// routed through, implemented by internal/capability/browserbridge.
type BrowserBridge interface {
	Navigate(ctx context.Context, url string) error
	Eval(ctx context.Context, expr string) (string, error)
	SwitchTab(ctx context.Context, query string) error
	NewTab(ctx context.Context, url string) error
	CloseTab(ctx context.Context, query string) error
	ConsoleLogs(ctx context.Context) ([]string, error)
	CurrentURL(ctx context.Context) (string, error)
	Tabs(ctx context.Context) ([]string, error)
}

// Dispatcher resolves normalized intents against the capability bridge,
// the recipe registry, and every supporting subsystem, satisfying
// workflow.Doer so recorded workflows can replay through the exact same
// path a live call takes. Grounded on
// original_source/nexus/act/resolve.py's do().
type Dispatcher struct {
	Bridge   capability.Bridge
	Pipeline *perception.Pipeline
	Hooks    *hooks.Registry
	Session  *session.Session
	Recipes  *recipe.Registry
	Learn    *learn.Learn
	Graph    *graph.Graph
	Control  *control.Channel
	Config   config.Config
	Workflow workflowDoer
	Route    RouteOps
	Browser  BrowserBridge
	Observer ChangeObserver

	lastSnapshots map[int]fusion.Snapshot
}

// ChangeObserver is the narrow slice of internal/observer.Observer that
// Perceive drains buffered change-notification lines from, per spec.md
// §4.10's "subsequent perceive calls automatically include buffered
// events".
type ChangeObserver interface {
	Drain(pid int) []string
}

// workflowDoer is the slice of internal/workflow.Engine the dispatcher
// needs for workflow management commands.
type workflowDoer interface {
	StartRecording(ctx context.Context, name, app string) (string, error)
	IsRecording() bool
	StopRecording(ctx context.Context) (id string, steps int, err error)
	List(ctx context.Context) ([]store.Workflow, error)
	Delete(ctx context.Context, id string) (bool, error)
	ByName(ctx context.Context, name string) (string, bool, error)
	Replay(ctx context.Context, id string, doer workflow.Doer) (workflow.ReplayResult, error)
}

// Result is the rich outcome of one dispatched action, used by
// internal/mcpserver to format the act() tool response.
type Result struct {
	OK         bool
	Text       string
	Method     string
	Error      string
	Diff       string
	BeforeHash string
	AfterHash  string
	Retried    bool
}

const settleBetweenSteps = 150 * time.Millisecond

// Execute runs action (possibly a ";"-separated chain) against the target
// process and returns the full formatted Result.
func (d *Dispatcher) Execute(ctx context.Context, action string, pid *int) Result {
	if d.Control != nil && d.Control.Paused() {
		return Result{OK: false, Error: "paused: the control channel has paused automation"}
	}

	steps := SplitChain(action)
	if len(steps) == 0 {
		return Result{OK: false, Error: "empty action"}
	}
	if len(steps) == 1 {
		return d.executeStep(ctx, steps[0], pid)
	}

	for i, step := range steps {
		res := d.executeStep(ctx, step, pid)
		if !res.OK {
			res.Error = fmt.Sprintf("step %d/%d (%q) failed: %s", i+1, len(steps), step, res.Error)
			return res
		}
		if strings.HasPrefix(strings.ToLower(step), "open ") {
			if newPID, err := d.resolvePID(ctx, nil); err == nil {
				pid = &newPID
			}
		}
		if i < len(steps)-1 {
			select {
			case <-time.After(settleBetweenSteps):
			case <-ctx.Done():
				return Result{OK: false, Error: ctx.Err().Error()}
			}
		}
	}
	return Result{OK: true, Text: "chain completed"}
}

// Do adapts Execute to workflow.Doer's narrower signature, used when a
// Dispatcher is passed to workflow.Engine.Replay or route replay.
func (d *Dispatcher) Do(ctx context.Context, action string, pid *int) (ok bool, detail string, err error) {
	res := d.Execute(ctx, action, pid)
	if !res.OK {
		return false, res.Error, nil
	}
	return true, res.Text, nil
}

func (d *Dispatcher) executeStep(ctx context.Context, action string, pidHint *int) Result {
	resolvedPID, err := d.resolvePID(ctx, pidHint)
	if err != nil {
		return Result{OK: false, Error: err.Error()}
	}
	appName := d.appNameFor(ctx, resolvedPID)

	normalized := strings.ToLower(strings.TrimSpace(action))

	if parsed, ok := matchShortcut(normalized); ok {
		return d.dispatchVerb(ctx, resolvedPID, appName, parsed)
	}
	if stepsExp, ok := matchBundle(normalized); ok {
		return d.Execute(ctx, strings.Join(stepsExp, ";"), &resolvedPID)
	}
	if strings.HasPrefix(normalized, "record ") || normalized == "record stop" ||
		strings.HasPrefix(normalized, "replay ") || normalized == "list workflows" ||
		strings.HasPrefix(normalized, "delete workflow ") {
		return d.runWorkflowOp(ctx, classifyWorkflowOp(normalized).(WorkflowOp), appName)
	}
	if strings.HasPrefix(normalized, "via ") {
		return d.runRouteOp(ctx, classifyRouteOp(strings.TrimPrefix(normalized, "via ")).(RouteOp))
	}

	normalized = NormalizeAction(normalized)

	beforeCtx := hooks.Ctx{"pid": resolvedPID, "app_info": appName, "action": normalized}
	beforeCtx = d.Hooks.Fire(hooks.BeforeAct, beforeCtx)
	if beforeCtx.Stopped() {
		errText, _ := beforeCtx["error"].(string)
		return Result{OK: false, Error: errText}
	}

	if rcp, match, ok := d.Recipes.Match(normalized, appName); ok {
		res := d.Recipes.Execute(ctx, rcp, match, resolvedPID)
		if res.OK {
			return d.finishAction(ctx, resolvedPID, appName, normalized, Result{
				OK: true, Text: res.Output, Method: "recipe(" + rcp.Name + ")",
			})
		}
	}

	before := d.snapshot(ctx, resolvedPID, appName)
	parsed := Classify(normalized)
	out := d.dispatchVerb(ctx, resolvedPID, appName, parsed)

	if !out.OK && pidHint == nil && appName != "" {
		if fg, ferr := d.Bridge.Accessibility.FocusedProcess(ctx); ferr == nil && fg != resolvedPID {
			if d.Bridge.Scripting != nil {
				_ = d.Bridge.Scripting.Activate(ctx, appName, 3*time.Second)
			}
			if d.Session != nil {
				d.Session.Invalidate(resolvedPID)
			}
			retry := d.dispatchVerb(ctx, resolvedPID, appName, parsed)
			retry.Retried = true
			out = retry
		}
	}

	after := d.snapshot(ctx, resolvedPID, appName)
	out.BeforeHash, out.AfterHash = before.Fingerprint, after.Fingerprint
	if out.OK {
		out.Diff = fusion.Verify(before, after)
	}

	return d.finishAction(ctx, resolvedPID, appName, normalized, out)
}

func (d *Dispatcher) finishAction(ctx context.Context, pid int, appName, action string, out Result) Result {
	verb, target := splitVerbTarget(action)
	afterCtx := hooks.Ctx{
		"pid": pid, "app_name": appName, "verb": verb, "target": target,
		"ok": out.OK, "method": out.Method, "error": out.Error,
		"before_hash": out.BeforeHash, "after_hash": out.AfterHash,
		"action": action,
	}
	d.Hooks.Fire(hooks.AfterAct, afterCtx)

	if !out.OK {
		onErrCtx := hooks.Ctx{"app_name": appName, "error": out.Error}
		onErrCtx = d.Hooks.Fire(hooks.OnError, onErrCtx)
		if hints, ok := onErrCtx["extra_hints"].([]string); ok && len(hints) > 0 {
			out.Text = strings.Join(append([]string{out.Text}, hints...), "\n")
		}
	}
	if d.Control != nil {
		d.Control.EndAction(appName, verb, out.OK)
	}
	return out
}

func splitVerbTarget(action string) (verb, target string) {
	fields := strings.SplitN(action, " ", 2)
	verb = fields[0]
	if len(fields) > 1 {
		target = fields[1]
	}
	return verb, target
}

func (d *Dispatcher) snapshot(ctx context.Context, pid int, appName string) fusion.Snapshot {
	if d.Pipeline == nil {
		return fusion.Snapshot{PID: pid, AppName: appName}
	}
	pctx := d.Pipeline.Run(ctx, pid, appName, capability.Rect{}, d.Config.Perception.MaxElements)
	return fusion.Snap(pid, appName, pctx.Elements)
}

func (d *Dispatcher) resolvePID(ctx context.Context, hint *int) (int, error) {
	if hint != nil && *hint != 0 {
		return *hint, nil
	}
	if d.Bridge.Accessibility == nil {
		return 0, nxerr.New(nxerr.BridgeUnavailable, "no accessibility adapter configured")
	}
	return d.Bridge.Accessibility.FocusedProcess(ctx)
}

func (d *Dispatcher) appNameFor(ctx context.Context, pid int) string {
	if d.Bridge.WindowManager == nil {
		return ""
	}
	windows, err := d.Bridge.WindowManager.ListWindows(ctx)
	if err != nil {
		return ""
	}
	for _, w := range windows {
		if w.PID == pid {
			return w.App
		}
	}
	return ""
}
