package hooks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/dialog"
	"github.com/nexuscore/nexus/internal/session"
	"github.com/nexuscore/nexus/internal/store"
)

type learner interface {
	LookupLabel(ctx context.Context, app, verb, target string) (string, bool, error)
	RecordFailure(app, verb, target string)
	RecordSuccess(ctx context.Context, app, verb, target string) error
	RecordMethod(ctx context.Context, app, method string, success bool) error
	HintsForApp(ctx context.Context, app string) (string, error)
}

type grapher interface {
	RecordTransition(ctx context.Context, from, to, app, action string, ok bool, elapsed time.Duration) error
}

type recorder interface {
	IsRecording() bool
	RecordStep(action, expectedHash string)
}

type skillFinder interface {
	FindForApp(appName string) (string, bool)
}

type actionRecorder interface {
	ActionInsert(ctx context.Context, a store.ActionRecord) error
}

// Deps bundles every dependency the built-in hooks need. internal/lifecycle
// constructs one from its Runtime; tests construct one directly against
// fakes.
type Deps struct {
	Session  *session.Session
	Learn    learner
	Graph    grapher
	Workflow recorder
	Skills   skillFinder
	Actions  actionRecorder
	Config   config.Config
	Bridge   capability.Bridge
}

// RegisterBuiltins registers every built-in hook at the priorities the
// source assigns them. Safe to call once per Registry.
func RegisterBuiltins(reg *Registry, deps Deps) {
	reg.Register(BeforePerceive, 10, "spatial_cache_read", spatialCacheRead(deps))
	reg.Register(AfterPerceive, 10, "spatial_cache_write", spatialCacheWrite(deps))
	reg.Register(AfterPerceive, 60, "system_dialog", systemDialogHook(deps))
	reg.Register(AfterPerceive, 70, "learning_hints", learningHintsHook(deps))
	reg.Register(BeforeAct, 10, "circuit_breaker", circuitBreakerHook(deps))
	reg.Register(BeforeAct, 20, "auto_dismiss", autoDismissDialogHook(deps))
	reg.Register(AfterAct, 10, "learning_record", learningRecordHook(deps))
	reg.Register(AfterAct, 20, "journal_record", journalRecordHook(deps))
	reg.Register(AfterAct, 30, "workflow_record", workflowRecordHook(deps))
	reg.Register(AfterAct, 40, "graph_record", graphRecordHook(deps))
	reg.Register(AfterAct, 50, "action_history_record", actionHistoryRecordHook(deps))
	reg.Register(OnError, 50, "skill_suggestion", skillSuggestionHook(deps))
}

// --- before_perceive / after_perceive -------------------------------------

func spatialCacheRead(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Session == nil {
			return nil
		}
		pid, _ := ctx["pid"].(int)
		limit, _ := ctx["fetch_limit"].(int)
		if limit == 0 {
			limit = 150
		}
		if cached, ok := deps.Session.SpatialGet(pid, limit); ok {
			ctx["cached_elements"] = cached
		}
		return ctx
	}
}

func spatialCacheWrite(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Session == nil {
			return nil
		}
		pid, _ := ctx["pid"].(int)
		limit, _ := ctx["fetch_limit"].(int)
		if limit == 0 {
			limit = 150
		}
		elements, _ := ctx["elements"].([]capability.Element)
		fromCache, _ := ctx["from_cache"].(bool)
		if len(elements) > 0 && !fromCache {
			deps.Session.SpatialPut(pid, limit, elements)
		}
		return ctx
	}
}

func systemDialogHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Bridge.WindowManager == nil {
			return nil
		}
		windows, err := deps.Bridge.WindowManager.ListWindows(context.Background())
		if err != nil {
			return nil
		}
		dialogs := dialog.Detect(windows)
		if len(dialogs) == 0 {
			return nil
		}
		parts, _ := ctx["result_parts"].([]string)
		text := dialog.Format(dialogs, nil)
		if text != "" {
			parts = append(parts, "", text)
			ctx["result_parts"] = parts
		}
		return ctx
	}
}

func learningHintsHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		appName, _ := ctx["app_info"].(string)
		if appName == "" || deps.Learn == nil {
			return nil
		}
		hints, err := deps.Learn.HintsForApp(context.Background(), appName)
		if err != nil || hints == "" {
			return nil
		}
		parts, _ := ctx["result_parts"].([]string)
		parts = append(parts, "", "Learned:")
		for _, line := range strings.Split(hints, "\n") {
			parts = append(parts, "  "+line)
		}
		ctx["result_parts"] = parts
		return ctx
	}
}

// --- before_act -------------------------------------------------------

const circuitBreakerThreshold = 3
const circuitBreakerWindow = 30 * time.Second

func circuitBreakerHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Session == nil {
			return nil
		}
		entries := deps.Session.JournalRecent(10)
		if len(entries) == 0 {
			return nil
		}

		now := time.Now()
		var consecutiveFails int
		var failActions []string
		var app string
		for i, e := range entries {
			if i == 0 {
				app = e.App
			}
			if e.App != app {
				continue
			}
			if now.Sub(e.At) > circuitBreakerWindow {
				break
			}
			if e.Success {
				break
			}
			consecutiveFails++
			action := e.Verb + " " + e.Target
			if len(action) > 40 {
				action = action[:37] + "..."
			}
			failActions = append(failActions, action)
		}

		if consecutiveFails >= circuitBreakerThreshold {
			reverse(failActions)
			ctx["stop"] = true
			ctx["error"] = fmt.Sprintf(
				"Circuit breaker: %d consecutive failures on %s in the last 30s. "+
					"Stopping to prevent unintended actions.\n"+
					"Failed actions: %s\n"+
					"Suggestion: try a different approach, use see() to check the current "+
					"state, or ask the user for help.",
				consecutiveFails, app, strings.Join(failActions, ", "))
		}
		return ctx
	}
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func autoDismissDialogHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Bridge.WindowManager == nil {
			return nil
		}
		background := context.Background()
		windows, err := deps.Bridge.WindowManager.ListWindows(background)
		if err != nil {
			return nil
		}
		dialogs := dialog.Detect(windows)
		if len(dialogs) == 0 {
			return nil
		}

		if !deps.Config.Dialogs.AutoDismiss {
			ctx["system_dialogs"] = len(dialogs)
			return ctx
		}

		for _, w := range dialogs {
			text := ocrDialogText(deps, background, w)
			cls := dialog.Classify(w.App, text)

			if dialog.Unsafe[cls.Type] {
				ctx["stop"] = true
				ctx["error"] = fmt.Sprintf(
					"System dialog blocking: %s. %s This dialog requires user intervention.",
					cls.Description, cls.SuggestedAction)
				return ctx
			}

			if key, ok := dialog.Safe[cls.Type]; ok {
				clickDialogButton(deps, background, w, key)
				time.Sleep(300 * time.Millisecond)
			}
		}
		return ctx
	}
}

// AutoDismissSafe unconditionally clicks through any pending safe-classified
// system dialog, ignoring the Dialogs.AutoDismiss preference and unsafe
// dialogs alike — used between route-replay steps (spec.md §4.11), which
// has no user in the loop to ask about an unsafe dialog and simply skips
// past one instead of blocking the whole replay.
func AutoDismissSafe(ctx context.Context, deps Deps) {
	if deps.Bridge.WindowManager == nil {
		return
	}
	windows, err := deps.Bridge.WindowManager.ListWindows(ctx)
	if err != nil {
		return
	}
	for _, w := range dialog.Detect(windows) {
		text := ocrDialogText(deps, ctx, w)
		cls := dialog.Classify(w.App, text)
		if key, ok := dialog.Safe[cls.Type]; ok {
			clickDialogButton(deps, ctx, w, key)
			time.Sleep(300 * time.Millisecond)
		}
	}
}

func ocrDialogText(deps Deps, ctx context.Context, w capability.Window) string {
	if deps.Bridge.ScreenCapture == nil || deps.Bridge.OCR == nil {
		return ""
	}
	img, width, height, err := deps.Bridge.ScreenCapture.CaptureRegion(ctx, w.Bounds)
	if err != nil {
		return ""
	}
	elements, err := deps.Bridge.OCR.Recognize(ctx, img, width, height)
	if err != nil {
		return ""
	}
	var labels []string
	for _, e := range elements {
		labels = append(labels, e.Label)
	}
	return strings.Join(labels, " ")
}

func clickDialogButton(deps Deps, ctx context.Context, w capability.Window, buttonKey string) bool {
	wanted := dialog.ButtonLabelsFor(buttonKey)

	if deps.Bridge.ScreenCapture != nil && deps.Bridge.OCR != nil {
		img, width, height, err := deps.Bridge.ScreenCapture.CaptureRegion(ctx, w.Bounds)
		if err == nil {
			elements, err := deps.Bridge.OCR.Recognize(ctx, img, width, height)
			if err == nil {
				if btn, ok := dialog.FindButton(elements, wanted); ok && deps.Bridge.Input != nil {
					center := capability.Point{
						X: btn.Bounds.X + btn.Bounds.W/2,
						Y: btn.Bounds.Y + btn.Bounds.H/2,
					}
					return deps.Bridge.Input.Click(ctx, center, "left", 1, nil) == nil
				}
			}
		}
	}

	text := ocrDialogText(deps, ctx, w)
	_, tmpl, ok := dialog.MatchTemplate(text, w.App)
	if !ok || deps.Bridge.Input == nil {
		return false
	}
	pt, ok := dialog.ResolveButton(tmpl, buttonKey, w.Bounds)
	if !ok {
		return false
	}
	return deps.Bridge.Input.Click(ctx, pt, "left", 1, nil) == nil
}

// --- after_act ----------------------------------------------------------

func learningRecordHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Learn == nil {
			return nil
		}
		background := context.Background()
		app, _ := ctx["app_name"].(string)
		verb, _ := ctx["verb"].(string)
		target, _ := ctx["target"].(string)
		ok, _ := ctx["ok"].(bool)
		method, _ := ctx["method"].(string)
		errText, _ := ctx["error"].(string)

		if ok {
			_ = deps.Learn.RecordSuccess(background, app, verb, target)
			if method != "" {
				_ = deps.Learn.RecordMethod(background, app, method, true)
			}
		} else {
			if strings.Contains(strings.ToLower(errText), "not found") {
				deps.Learn.RecordFailure(app, verb, target)
			}
			if method != "" {
				_ = deps.Learn.RecordMethod(background, app, method, false)
			}
		}
		return nil
	}
}

func journalRecordHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Session == nil {
			return nil
		}
		app, _ := ctx["app_name"].(string)
		verb, _ := ctx["verb"].(string)
		target, _ := ctx["target"].(string)
		method, _ := ctx["method"].(string)
		ok, _ := ctx["ok"].(bool)
		deps.Session.JournalAppend(session.JournalEntry{
			App:     app,
			Verb:    verb,
			Target:  target,
			Success: ok,
			Method:  method,
		})
		return nil
	}
}

func workflowRecordHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Workflow == nil || !deps.Workflow.IsRecording() {
			return nil
		}
		ok, _ := ctx["ok"].(bool)
		if !ok {
			return nil
		}
		action, _ := ctx["action"].(string)
		afterHash, _ := ctx["after_hash"].(string)
		deps.Workflow.RecordStep(action, afterHash)
		return nil
	}
}

func graphRecordHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Graph == nil {
			return nil
		}
		before, _ := ctx["before_hash"].(string)
		after, _ := ctx["after_hash"].(string)
		if before == "" || after == "" || before == after {
			return nil
		}
		ok, _ := ctx["ok"].(bool)
		if !ok {
			return nil
		}
		action, _ := ctx["action"].(string)
		app, _ := ctx["app_name"].(string)
		elapsed, _ := ctx["elapsed"].(time.Duration)
		_ = deps.Graph.RecordTransition(context.Background(), before, after, app, action, true, elapsed)
		return nil
	}
}

// actionHistoryRecordHook appends every act() outcome to the persistent,
// FIFO-capped actions table, matching mind/db.py's action_insert call
// inside _learning_record_hook — kept as its own hook here since it's a
// plain history append with no learning side effects of its own.
func actionHistoryRecordHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Actions == nil {
			return nil
		}
		app, _ := ctx["app_name"].(string)
		verb, _ := ctx["verb"].(string)
		target, _ := ctx["target"].(string)
		method, _ := ctx["method"].(string)
		action, _ := ctx["action"].(string)
		ok, _ := ctx["ok"].(bool)

		_ = deps.Actions.ActionInsert(context.Background(), store.ActionRecord{
			App:    app,
			Intent: action,
			OK:     ok,
			Verb:   verb,
			Target: target,
			Method: method,
		})
		return nil
	}
}

// --- on_error -------------------------------------------------------

func skillSuggestionHook(deps Deps) HookFunc {
	return func(ctx Ctx) Ctx {
		if deps.Skills == nil {
			return nil
		}
		app, _ := ctx["app_name"].(string)
		errText, _ := ctx["error"].(string)
		if app == "" || !strings.Contains(strings.ToLower(errText), "not found") {
			return nil
		}
		skillID, ok := deps.Skills.FindForApp(app)
		if !ok {
			return nil
		}
		hints, _ := ctx["extra_hints"].([]string)
		hints = append(hints, fmt.Sprintf("CLI alternative: read skill nexus://skills/%s", skillID))
		ctx["extra_hints"] = hints
		ctx["skill_hint"] = "nexus://skills/" + skillID
		return ctx
	}
}
