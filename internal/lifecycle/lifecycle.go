// Package lifecycle constructs the process-wide Runtime: the single place
// every long-lived singleton is built and wired together. The exceptions are
// internal/recipe's scripting and shell helpers, which Init sets through
// recipe.Configure, and internal/logging's package logger.
package lifecycle

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os/exec"
	"time"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/browserbridge"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/control"
	"github.com/nexuscore/nexus/internal/graph"
	"github.com/nexuscore/nexus/internal/hooks"
	"github.com/nexuscore/nexus/internal/intent"
	"github.com/nexuscore/nexus/internal/learn"
	"github.com/nexuscore/nexus/internal/logging"
	"github.com/nexuscore/nexus/internal/observer"
	"github.com/nexuscore/nexus/internal/perception"
	"github.com/nexuscore/nexus/internal/recipe"
	"github.com/nexuscore/nexus/internal/recipe/builtin"
	"github.com/nexuscore/nexus/internal/route"
	"github.com/nexuscore/nexus/internal/session"
	"github.com/nexuscore/nexus/internal/skills"
	"github.com/nexuscore/nexus/internal/store"
	"github.com/nexuscore/nexus/internal/workflow"
)

// Runtime holds every singleton this process needs, constructed once by
// Init and passed by reference to every component that needs it. Tests
// construct their own Runtime against a temp DB instead of reaching for
// global state.
type Runtime struct {
	Config     config.Config
	DB         *sql.DB
	Store      *store.Store
	Session    *session.Session
	Learn      *learn.Learn
	Hooks      *hooks.Registry
	Recipes    *recipe.Registry
	Graph      *graph.Graph
	Skills     *skills.Library
	Workflow   *workflow.Engine
	Control    *control.Channel
	Bridge     capability.Bridge
	Pipeline   *perception.Pipeline
	Route      *route.Engine
	Observer   *observer.Observer
	Browser    *browserbridge.Bridge
	Dispatcher *intent.Dispatcher
}

// Init builds a Runtime from cfg: opens the database, runs migrations, and
// wires every component together. bridge supplies the OS-facing
// capabilities (window listing, screen capture, OCR, input synthesis); a
// zero-value Bridge is accepted and simply disables the hooks and layers
// that need those capabilities (system dialog detection, auto-dismiss,
// route recording). ctx bounds the background observer loop Init starts;
// callers must call Close when done.
func Init(ctx context.Context, cfg config.Config, bridge capability.Bridge) (*Runtime, error) {
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: open store: %w", err)
	}

	st := store.New(db)
	sess := session.New(cfg)
	lrn := learn.New(st)
	grp := graph.New(st)
	wf := workflow.New(st)
	ctrl := control.New(cfg.Control.StatePath)

	lib, err := skills.Load(cfg.Skills.BundledDir, cfg.Skills.UserDir)
	if err != nil {
		logging.Errorf("lifecycle: load skills: %v", err)
		lib = skills.Empty()
	}

	hookRegistry := hooks.NewRegistry()
	recipeRegistry := recipe.NewRegistry()
	recipe.Configure(bridge.Scripting, shellRunner)

	pipeline := perception.NewPipeline()
	perception.RegisterDefaults(pipeline, bridge)

	routeEngine := route.New(st, bridge)

	var browser *browserbridge.Bridge
	if cfg.Browser.Enabled {
		browser = browserbridge.New(cfg.Browser.Headless)
	}

	rt := &Runtime{
		Config:   cfg,
		DB:       db,
		Store:    st,
		Session:  sess,
		Learn:    lrn,
		Hooks:    hookRegistry,
		Recipes:  recipeRegistry,
		Graph:    grp,
		Skills:   lib,
		Workflow: wf,
		Control:  ctrl,
		Bridge:   bridge,
		Pipeline: pipeline,
		Route:    routeEngine,
		Observer: observer.New(sess),
		Browser:  browser,
	}

	hookDeps := rt.hookDeps()
	hooks.RegisterBuiltins(hookRegistry, hookDeps)
	builtin.RegisterAll(recipeRegistry)

	routeEngine.AttachDismiss(func(dismissCtx context.Context) {
		hooks.AutoDismissSafe(dismissCtx, hookDeps)
	})

	if err := rt.Observer.Start(ctx, bridge.ChangeEventSource); err != nil {
		logging.Errorf("lifecycle: start observer: %v", err)
	}

	dispatcher := &intent.Dispatcher{
		Bridge:   bridge,
		Pipeline: pipeline,
		Hooks:    hookRegistry,
		Session:  sess,
		Recipes:  recipeRegistry,
		Learn:    lrn,
		Graph:    grp,
		Control:  ctrl,
		Config:   cfg,
		Workflow: wf,
		Route:    routeEngine,
		Observer: rt.Observer,
	}
	if browser != nil {
		dispatcher.Browser = browser
	}
	rt.Dispatcher = dispatcher

	return rt, nil
}

// hookDeps adapts the Runtime into the narrow set of dependencies the
// built-in hook handlers need, so internal/hooks doesn't import
// internal/lifecycle back.
func (r *Runtime) hookDeps() hooks.Deps {
	return hooks.Deps{
		Session:  r.Session,
		Learn:    r.Learn,
		Graph:    r.Graph,
		Workflow: r.Workflow,
		Skills:   r.Skills,
		Actions:  r.Store,
		Config:   r.Config,
		Bridge:   r.Bridge,
	}
}

// shellRunner runs a shell command through the platform shell, matching
// the source's subprocess.run(command, shell=True, ...) used by recipe.cli.
func shellRunner(ctx context.Context, command string, timeout time.Duration) (stdout, stderr string, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// Close releases every resource the Runtime opened. The observer's
// background loop is stopped by cancelling the ctx passed to Init, not by
// Close, since it's a plain context.Context rather than an owned resource.
func (r *Runtime) Close() error {
	if r.Browser != nil {
		r.Browser.Close()
	}
	if r.Control != nil {
		r.Control.Close()
	}
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}
