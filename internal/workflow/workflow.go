// Package workflow records a named sequence of actions while they're being
// performed and replays them later, one at a time, stopping at the first
// failure.
package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/store"
)

// Doer is whatever can run a single action string, satisfied by
// internal/intent.Dispatcher. Kept as an interface here so workflow doesn't
// import intent (which in turn wants to trigger workflow recording through
// a hook).
type Doer interface {
	Do(ctx context.Context, action string, pid *int) (ok bool, detail string, err error)
}

type pendingStep struct {
	action       string
	expectedHash string
}

type recording struct {
	id    string
	name  string
	app   string
	steps []pendingStep
}

// Engine records and replays workflows against the persistent store. At
// most one recording is active at a time, matching the single-user desktop
// session this module runs in.
type Engine struct {
	store *store.Store

	mu  sync.Mutex
	rec *recording
}

// New wraps st for workflow recording and replay.
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-"), "-")
	if slug == "" {
		return "unnamed"
	}
	return slug
}

func (e *Engine) uniqueSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for n := 2; ; n++ {
		_, ok, err := e.store.WorkflowGet(ctx, slug)
		if err != nil {
			return "", err
		}
		if !ok {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// StartRecording begins a new recording under a unique slug derived from
// name, returning the slug. Fails if a recording is already active.
func (e *Engine) StartRecording(ctx context.Context, name, app string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec != nil {
		return "", fmt.Errorf("workflow: already recording %q; stop it first", e.rec.id)
	}

	id, err := e.uniqueSlug(ctx, slugify(name))
	if err != nil {
		return "", err
	}
	if err := e.store.WorkflowCreate(ctx, id, name, app); err != nil {
		return "", err
	}
	e.rec = &recording{id: id, name: name, app: app}
	return id, nil
}

// IsRecording reports whether a recording is currently active.
func (e *Engine) IsRecording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec != nil
}

// RecordStep appends one step to the active recording. A no-op if nothing
// is being recorded — callers (the after_act hook) invoke this
// unconditionally after every successful action.
func (e *Engine) RecordStep(action, expectedHash string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return
	}
	e.rec.steps = append(e.rec.steps, pendingStep{action: action, expectedHash: expectedHash})
}

// StopRecording flushes the active recording's steps to the store and
// returns its id and step count.
func (e *Engine) StopRecording(ctx context.Context) (id string, steps int, err error) {
	e.mu.Lock()
	rec := e.rec
	e.rec = nil
	e.mu.Unlock()

	if rec == nil {
		return "", 0, fmt.Errorf(`workflow: not currently recording`)
	}
	for i, st := range rec.steps {
		if err := e.store.WorkflowStepInsert(ctx, rec.id, store.WorkflowStep{
			StepNum:      i + 1,
			Action:       st.action,
			ExpectedHash: st.expectedHash,
			TimeoutMS:    5000,
		}); err != nil {
			return rec.id, i, err
		}
	}
	return rec.id, len(rec.steps), nil
}

// List returns every saved workflow with its step count.
func (e *Engine) List(ctx context.Context) ([]store.Workflow, error) {
	return e.store.WorkflowList(ctx)
}

// WorkflowDetail is a workflow's metadata plus its ordered steps.
type WorkflowDetail struct {
	store.Workflow
	Steps []store.WorkflowStep
}

// Get returns a workflow's metadata and steps, or (nil, nil) if unknown.
func (e *Engine) Get(ctx context.Context, id string) (*WorkflowDetail, error) {
	wf, ok, err := e.store.WorkflowGet(ctx, id)
	if err != nil || !ok {
		return nil, err
	}
	steps, err := e.store.WorkflowSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WorkflowDetail{Workflow: wf, Steps: steps}, nil
}

// Delete removes a workflow and its steps.
func (e *Engine) Delete(ctx context.Context, id string) (bool, error) {
	return e.store.WorkflowDelete(ctx, id)
}

// StepResult is the outcome of replaying one step.
type StepResult struct {
	StepNum int
	Action  string
	Success bool
	Detail  string
	Err     error
}

// ReplayResult summarizes a full workflow replay.
type ReplayResult struct {
	Workflow  string
	Completed int
	Total     int
	Steps     []StepResult
}

const replayStepDelay = 150 * time.Millisecond

// Replay looks up the workflow by id and runs its steps through doer in
// order, stopping at the first failure, and updates the workflow's
// success/fail tally accordingly.
func (e *Engine) Replay(ctx context.Context, id string, doer Doer) (ReplayResult, error) {
	detail, err := e.Get(ctx, id)
	if err != nil {
		return ReplayResult{}, err
	}
	if detail == nil {
		return ReplayResult{}, fmt.Errorf("workflow: %q not found", id)
	}
	if len(detail.Steps) == 0 {
		return ReplayResult{}, fmt.Errorf("workflow: %q has no steps", id)
	}

	res := ReplayResult{Workflow: id, Total: len(detail.Steps)}
	for i, st := range detail.Steps {
		ok, detailStr, err := doer.Do(ctx, st.Action, nil)
		res.Steps = append(res.Steps, StepResult{StepNum: i + 1, Action: st.Action, Success: ok, Detail: detailStr, Err: err})
		if !ok || err != nil {
			_ = e.store.WorkflowUpdateStats(ctx, id, false)
			return res, nil
		}
		res.Completed++
		if i < len(detail.Steps)-1 {
			select {
			case <-time.After(replayStepDelay):
			case <-ctx.Done():
				return res, ctx.Err()
			}
		}
	}
	_ = e.store.WorkflowUpdateStats(ctx, id, true)
	return res, nil
}

// ByName finds the most recently updated workflow with the given name.
func (e *Engine) ByName(ctx context.Context, name string) (string, bool, error) {
	return e.store.WorkflowByName(ctx, name)
}
