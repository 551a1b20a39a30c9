// Package learn correlates a failed "element not found" action with a
// later success in the same app to infer label mappings, and tracks which
// resolution method (accessibility, ocr, shortcut, ...) succeeds how often.
package learn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nexuscore/nexus/internal/store"
)

const failureWindow = 30 * time.Second

const globalApp = "_global"

type failure struct {
	target string
	at     time.Time
}

// Learn is the in-memory fail/success correlator backed by the persistent
// label store. The correlation key is app+verb (so a failed "click Save"
// doesn't get matched against an unrelated "type something" success) but
// the verb is never itself persisted — only app and target identify a
// learned label once the mapping is stored.
type Learn struct {
	store *store.Store

	mu      sync.Mutex
	pending map[string]failure // key: app+"\x00"+verb
}

// New wraps st for label learning and method-stat tracking.
func New(st *store.Store) *Learn {
	return &Learn{store: st, pending: make(map[string]failure)}
}

func key(app, verb string) string { return app + "\x00" + verb }

// RecordFailure notes an "element not found" outcome so a later success
// within the 30s window can be correlated into a learned label.
func (l *Learn) RecordFailure(app, verb, target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	l.pending[key(app, verb)] = failure{target: target, at: time.Now()}
}

// RecordSuccess checks for a recent failure with the same app+verb but a
// different target; if found, it infers that the failed target and the
// successful one refer to the same element and stores the mapping both
// app-specific and in the "_global" aggregate. Identity mappings (failed
// target == successful target) are never stored — that's not a correction.
func (l *Learn) RecordSuccess(ctx context.Context, app, verb, target string) error {
	l.mu.Lock()
	l.prune()
	f, ok := l.pending[key(app, verb)]
	if ok {
		delete(l.pending, key(app, verb))
	}
	l.mu.Unlock()

	if !ok || f.target == target {
		return nil
	}

	if err := l.store.LabelUpsert(ctx, app, f.target, target); err != nil {
		return err
	}
	return l.store.LabelUpsert(ctx, globalApp, f.target, target)
}

// prune drops pending failures older than the correlation window. Caller
// must hold l.mu.
func (l *Learn) prune() {
	cutoff := time.Now().Add(-failureWindow)
	for k, f := range l.pending {
		if f.at.Before(cutoff) {
			delete(l.pending, k)
		}
	}
}

// LookupLabel returns the learned label for app+target, falling back to the
// global aggregate. verb is accepted for symmetry with RecordFailure but
// plays no part in lookup — labels are keyed on app+target only.
func (l *Learn) LookupLabel(ctx context.Context, app, verb, target string) (string, bool, error) {
	return l.store.LabelLookup(ctx, app, target)
}

// RecordMethod tallies a resolution method's outcome for app (accessibility,
// ocr, shortcut, coordinate, learned-label, ...).
func (l *Learn) RecordMethod(ctx context.Context, app, method string, success bool) error {
	return l.store.MethodStatBump(ctx, app, method, success)
}

// Stats summarizes method success rates for app, the response for
// memory(op="stats") — handled directly here rather than through the
// generic memory store, matching how the resolution stats were assembled
// from the learn module rather than the key/value memory table.
type Stats struct {
	Methods []store.MethodStat
}

// Stats returns the current method success/failure tallies for app.
func (l *Learn) Stats(ctx context.Context, app string) (Stats, error) {
	methods, err := l.store.MethodStatsForApp(ctx, app)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Methods: methods}, nil
}

// GlobalStats summarizes everything learned across every app.
type GlobalStats struct {
	LabelMappings  int
	GlobalMappings int
	ActionsRecord  int
	AppsTracked    int
}

// GlobalStats returns the system-wide learning summary.
func (l *Learn) GlobalStats(ctx context.Context) (GlobalStats, error) {
	labelMappings, err := l.store.LabelCount(ctx, true, false)
	if err != nil {
		return GlobalStats{}, err
	}
	globalMappings, err := l.store.LabelCount(ctx, false, true)
	if err != nil {
		return GlobalStats{}, err
	}
	actions, err := l.store.ActionCount(ctx)
	if err != nil {
		return GlobalStats{}, err
	}
	apps, err := l.store.MethodAppCount(ctx)
	if err != nil {
		return GlobalStats{}, err
	}
	return GlobalStats{
		LabelMappings:  labelMappings,
		GlobalMappings: globalMappings,
		ActionsRecord:  actions,
		AppsTracked:    apps,
	}, nil
}

const minMethodSampleSize = 3

// HintsForApp renders a compact multi-line summary of learned labels and
// preferred resolution methods for app, for inclusion in perceive() output.
// Returns "" if nothing has been learned for it yet.
func (l *Learn) HintsForApp(ctx context.Context, app string) (string, error) {
	if app == "" {
		return "", nil
	}
	appKey := strings.ToLower(app)

	var parts []string

	labels, err := l.store.LabelsForApp(ctx, appKey)
	if err != nil {
		return "", err
	}
	if len(labels) > 0 {
		n := len(labels)
		if n > 5 {
			n = 5
		}
		pairs := make([]string, 0, n)
		for _, lb := range labels[:n] {
			pairs = append(pairs, fmt.Sprintf("%s -> %s", lb.Target, lb.Mapped))
		}
		parts = append(parts, "Learned labels: "+strings.Join(pairs, ", "))
		if len(labels) > 5 {
			parts = append(parts, fmt.Sprintf("  ... and %d more", len(labels)-5))
		}
	}

	methods, err := l.store.MethodStatsForApp(ctx, appKey)
	if err != nil {
		return "", err
	}
	var prefs []string
	for _, m := range methods {
		total := m.OK + m.Fail
		if total < minMethodSampleSize {
			continue
		}
		rate := float64(m.OK) / float64(total) * 100
		prefs = append(prefs, fmt.Sprintf("%s: %.0f%% (%d actions)", m.Method, rate, total))
	}
	if len(prefs) > 0 {
		parts = append(parts, "Action methods: "+strings.Join(prefs, ", "))
	}

	return strings.Join(parts, "\n"), nil
}
