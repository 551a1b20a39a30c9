// Package store is the persistence layer for learned labels, action
// history, navigation graph, workflows and recorded routes, all on a single
// SQLite connection per the teacher's store pattern. Per spec.md §3's
// ownership rule, this is the only durable owner of this state — every
// in-memory cache elsewhere must be reconstructable from it plus a fresh
// perception call.
package store

import (
	"context"
	"database/sql"
	"time"
)

// Store wraps a *sql.DB with the query set this module's components need.
// Every method takes a context so callers on the intent-dispatch path can
// bound their db round trip.
type Store struct {
	db *sql.DB
}

// New wraps an already-opened, already-migrated database handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

// --- memory -----------------------------------------------------------

// MemoryGet returns the stored value for key, or ("", false) if unset.
func (s *Store) MemoryGet(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM memory WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// MemorySet upserts key/value.
func (s *Store) MemorySet(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// MemoryDelete removes key, reporting whether it existed.
func (s *Store) MemoryDelete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memory WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MemoryKeys returns every stored key, sorted.
func (s *Store) MemoryKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM memory ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// MemoryClear deletes every memory entry.
func (s *Store) MemoryClear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memory`)
	return err
}

// --- labels -------------------------------------------------------------

const globalApp = "_global"

// LabelUpsert records a learned label mapping for app+target, bumping hits
// when the mapping already exists. app == "_global" records the cross-app
// aggregate. Identity mappings (target == mapped) are the caller's concern
// to skip — this method always writes.
func (s *Store) LabelUpsert(ctx context.Context, app, target, mapped string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labels(app, target, mapped, hits, updated_at)
		VALUES(?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(app, target) DO UPDATE SET
			mapped = excluded.mapped,
			hits = labels.hits + 1,
			updated_at = CURRENT_TIMESTAMP`,
		app, target, mapped)
	return err
}

// Label is one learned app+target mapping.
type Label struct {
	Target string
	Mapped string
	Hits   int
}

// LabelLookup returns the learned label for app+target, falling back to the
// "_global" aggregate if no app-specific mapping exists.
func (s *Store) LabelLookup(ctx context.Context, app, target string) (string, bool, error) {
	mapped, ok, err := s.labelLookupScoped(ctx, app, target)
	if err != nil || ok {
		return mapped, ok, err
	}
	return s.labelLookupScoped(ctx, globalApp, target)
}

func (s *Store) labelLookupScoped(ctx context.Context, app, target string) (string, bool, error) {
	var mapped string
	err := s.db.QueryRowContext(ctx,
		`SELECT mapped FROM labels WHERE app = ? AND target = ?`, app, target).Scan(&mapped)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return mapped, true, nil
}

// LabelsForApp returns every label learned for app, most-used first.
func (s *Store) LabelsForApp(ctx context.Context, app string) ([]Label, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT target, mapped, hits FROM labels WHERE app = ? ORDER BY hits DESC`, app)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.Target, &l.Mapped, &l.Hits); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LabelCount counts label rows, optionally excluding or restricting to the
// "_global" aggregate app.
func (s *Store) LabelCount(ctx context.Context, excludeGlobal, globalOnly bool) (int, error) {
	var n int
	var err error
	switch {
	case globalOnly:
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labels WHERE app = ?`, globalApp).Scan(&n)
	case excludeGlobal:
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labels WHERE app != ?`, globalApp).Scan(&n)
	default:
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labels`).Scan(&n)
	}
	return n, err
}

// --- actions (history) ---------------------------------------------------

const actionsCap = 500

// ActionRecord is one history row.
type ActionRecord struct {
	ID       int64
	At       time.Time
	App      string
	Intent   string
	OK       bool
	Verb     string
	Target   string
	Method   string
	ViaLabel string
}

// ActionInsert appends a history row and trims the table back to the FIFO
// cap of 500 rows.
func (s *Store) ActionInsert(ctx context.Context, a ActionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions(app, intent, ok, verb, target, method, via_label, ts)
		VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		a.App, a.Intent, a.OK, nullable(a.Verb), nullable(a.Target), nullable(a.Method), nullable(a.ViaLabel))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM actions WHERE id NOT IN (
			SELECT id FROM actions ORDER BY id DESC LIMIT ?
		)`, actionsCap)
	return err
}

// ActionCount returns the total number of history rows.
func (s *Store) ActionCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n)
	return n, err
}

// ActionsRecent returns the most recent n history rows, newest first,
// optionally filtered by app.
func (s *Store) ActionsRecent(ctx context.Context, app string, n int) ([]ActionRecord, error) {
	var rows *sql.Rows
	var err error
	if app != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, ts, app, intent, ok, verb, target, method, via_label
			FROM actions WHERE app = ? ORDER BY id DESC LIMIT ?`, app, n)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, ts, app, intent, ok, verb, target, method, via_label
			FROM actions ORDER BY id DESC LIMIT ?`, n)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ActionRecord
	for rows.Next() {
		var a ActionRecord
		var verb, target, method, via sql.NullString
		if err := rows.Scan(&a.ID, &a.At, &a.App, &a.Intent, &a.OK, &verb, &target, &method, &via); err != nil {
			return nil, err
		}
		a.Verb, a.Target, a.Method, a.ViaLabel = verb.String, target.String, method.String, via.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// --- method_stats ---------------------------------------------------------

// MethodStatBump increments the ok or fail counter for app+method.
func (s *Store) MethodStatBump(ctx context.Context, app, method string, ok bool) error {
	okInc, failInc := 0, 1
	if ok {
		okInc, failInc = 1, 0
	}
	col := "fail_count"
	if ok {
		col = "ok_count"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO method_stats(app, method, ok_count, fail_count) VALUES(?, ?, ?, ?)
		ON CONFLICT(app, method) DO UPDATE SET `+col+` = method_stats.`+col+` + 1`,
		app, method, okInc, failInc)
	return err
}

// MethodStat is the ok/fail tally for one app+method pair.
type MethodStat struct {
	App    string
	Method string
	OK     int
	Fail   int
}

// MethodStatsForApp returns the tally for every method seen for app.
func (s *Store) MethodStatsForApp(ctx context.Context, app string) ([]MethodStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT app, method, ok_count, fail_count FROM method_stats WHERE app = ?`, app)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MethodStat
	for rows.Next() {
		var m MethodStat
		if err := rows.Scan(&m.App, &m.Method, &m.OK, &m.Fail); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MethodAppCount counts distinct apps with recorded method stats.
func (s *Store) MethodAppCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT app) FROM method_stats`).Scan(&n)
	return n, err
}

// --- workflows ------------------------------------------------------------

// Workflow is one saved action sequence plus its replay tally.
type Workflow struct {
	ID           string
	Name         string
	App          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SuccessCount int
	FailCount    int
	StepCount    int
}

// WorkflowStep is one step of a saved workflow.
type WorkflowStep struct {
	StepNum      int
	Action       string
	ExpectedHash string
	TimeoutMS    int
}

// WorkflowCreate records a new, empty workflow shell; steps are attached
// with WorkflowStepInsert as a recording accumulates them.
func (s *Store) WorkflowCreate(ctx context.Context, id, name, app string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflows(id, name, app) VALUES(?, ?, ?)`, id, name, nullable(app))
	return err
}

// WorkflowStepInsert appends one step to a workflow.
func (s *Store) WorkflowStepInsert(ctx context.Context, workflowID string, st WorkflowStep) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_steps(workflow_id, step_num, action, expected_hash, timeout_ms)
		VALUES(?, ?, ?, ?, ?)`,
		workflowID, st.StepNum, st.Action, nullable(st.ExpectedHash), st.TimeoutMS)
	return err
}

// WorkflowGet returns a workflow's metadata (without steps), or
// (Workflow{}, false) if unknown.
func (s *Store) WorkflowGet(ctx context.Context, id string) (Workflow, bool, error) {
	var w Workflow
	var app sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, app, created_at, updated_at, success_count, fail_count
		FROM workflows WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &app, &w.CreatedAt, &w.UpdatedAt, &w.SuccessCount, &w.FailCount)
	if err == sql.ErrNoRows {
		return Workflow{}, false, nil
	}
	if err != nil {
		return Workflow{}, false, err
	}
	w.App = app.String
	return w, true, nil
}

// WorkflowSteps returns the ordered steps recorded for a workflow.
func (s *Store) WorkflowSteps(ctx context.Context, id string) ([]WorkflowStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step_num, action, expected_hash, timeout_ms
		FROM workflow_steps WHERE workflow_id = ? ORDER BY step_num`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WorkflowStep
	for rows.Next() {
		var st WorkflowStep
		var hash sql.NullString
		if err := rows.Scan(&st.StepNum, &st.Action, &hash, &st.TimeoutMS); err != nil {
			return nil, err
		}
		st.ExpectedHash = hash.String
		out = append(out, st)
	}
	return out, rows.Err()
}

// WorkflowList returns every workflow with its step count, most recently
// updated first.
func (s *Store) WorkflowList(ctx context.Context) ([]Workflow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT w.id, w.name, w.app, w.created_at, w.updated_at, w.success_count, w.fail_count,
		       COUNT(st.id) AS step_count
		FROM workflows w LEFT JOIN workflow_steps st ON w.id = st.workflow_id
		GROUP BY w.id ORDER BY w.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Workflow
	for rows.Next() {
		var w Workflow
		var app sql.NullString
		if err := rows.Scan(&w.ID, &w.Name, &app, &w.CreatedAt, &w.UpdatedAt, &w.SuccessCount, &w.FailCount, &w.StepCount); err != nil {
			return nil, err
		}
		w.App = app.String
		out = append(out, w)
	}
	return out, rows.Err()
}

// WorkflowDelete removes a workflow and its steps (cascade), reporting
// whether it existed.
func (s *Store) WorkflowDelete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// WorkflowUpdateStats increments a workflow's success or fail counter.
func (s *Store) WorkflowUpdateStats(ctx context.Context, id string, ok bool) error {
	col := "fail_count"
	if ok {
		col = "success_count"
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE workflows SET `+col+` = `+col+` + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// WorkflowByName finds the most recently updated workflow with the given
// name, returning its id.
func (s *Store) WorkflowByName(ctx context.Context, name string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM workflows WHERE name = ? ORDER BY updated_at DESC LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	return id, err == nil, err
}

// --- graph ------------------------------------------------------------

// GraphNodeUpsert records a layout fingerprint node, bumping its visit
// count and keeping the first non-empty label seen.
func (s *Store) GraphNodeUpsert(ctx context.Context, hash, app, label string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO graph_nodes(hash, app, label, visit_count)
		VALUES(?, ?, ?, 1)
		ON CONFLICT(hash) DO UPDATE SET
			last_seen = CURRENT_TIMESTAMP,
			visit_count = graph_nodes.visit_count + 1,
			label = COALESCE(NULLIF(excluded.label, ''), graph_nodes.label)`,
		hash, app, nullable(label))
	return err
}

// GraphEdgeUpsert records or reinforces a transition edge, updating its
// running average elapsed time.
func (s *Store) GraphEdgeUpsert(ctx context.Context, from, to, action string, ok bool, elapsed time.Duration) error {
	var id int64
	var successCt, failCt int
	var avgElapsed float64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, success_count, fail_count, avg_elapsed FROM graph_edges
		WHERE from_hash = ? AND to_hash = ? AND action = ?`, from, to, action).
		Scan(&id, &successCt, &failCt, &avgElapsed)

	elapsedSec := elapsed.Seconds()
	if err == sql.ErrNoRows {
		successInc, failInc := 0, 1
		if ok {
			successInc, failInc = 1, 0
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO graph_edges(from_hash, to_hash, action, success_count, fail_count, avg_elapsed, last_used)
			VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			from, to, action, successInc, failInc, elapsedSec)
		return err
	}
	if err != nil {
		return err
	}

	total := successCt + failCt + 1
	newAvg := (avgElapsed*float64(successCt+failCt) + elapsedSec) / float64(total)
	col := "fail_count"
	if ok {
		col = "success_count"
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE graph_edges SET `+col+` = `+col+` + 1, avg_elapsed = ?, last_used = CURRENT_TIMESTAMP
		WHERE id = ?`, newAvg, id)
	return err
}

// GraphEdge is one transition edge.
type GraphEdge struct {
	From, To, Action string
	SuccessCount     int
	FailCount        int
	AvgElapsed       time.Duration
	LastUsed         time.Time
}

// GraphAllEdges returns every edge in the graph, used to build an in-memory
// adjacency map for BFS.
func (s *Store) GraphAllEdges(ctx context.Context) ([]GraphEdge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_hash, to_hash, action, success_count, fail_count, avg_elapsed, last_used FROM graph_edges`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGraphEdges(rows)
}

func scanGraphEdges(rows *sql.Rows) ([]GraphEdge, error) {
	var out []GraphEdge
	for rows.Next() {
		var e GraphEdge
		var avgSec float64
		if err := rows.Scan(&e.From, &e.To, &e.Action, &e.SuccessCount, &e.FailCount, &avgSec, &e.LastUsed); err != nil {
			return nil, err
		}
		e.AvgElapsed = time.Duration(avgSec * float64(time.Second))
		out = append(out, e)
	}
	return out, rows.Err()
}

// GraphStats returns the node and edge counts plus the distinct apps seen.
func (s *Store) GraphStats(ctx context.Context) (nodes, edges int, apps []string, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graph_nodes`).Scan(&nodes); err != nil {
		return 0, 0, nil, err
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM graph_edges`).Scan(&edges); err != nil {
		return 0, 0, nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT app FROM graph_nodes`)
	if err != nil {
		return 0, 0, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return 0, 0, nil, err
		}
		apps = append(apps, a)
	}
	return nodes, edges, apps, rows.Err()
}

// --- routes ------------------------------------------------------------

// RouteStep is one recorded step within a route, using whichever locator
// fields were captured at record time.
type RouteStep struct {
	StepNum            int
	OffsetMS           int
	Kind               string // click|key|scroll
	X, Y               int
	RelX, RelY         float64
	WinX, WinY         int
	WinW, WinH         int
	Button             string
	KeyCode            int
	KeyLabel           string
	ModCmd, ModShift   bool
	ModCtrl, ModOpt    bool
	AXRole, AXLabel    string
	PID                int
	AppName            string
}

// Route is a recorded route's metadata.
type Route struct {
	ID         string
	Name       string
	App        string
	DurationMS int
	StepCount  int
	CreatedAt  time.Time
}

// RouteCreate starts a new route recording shell.
func (s *Store) RouteCreate(ctx context.Context, id, name, app string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO routes(id, name, app) VALUES(?, ?, ?)`, id, name, nullable(app))
	return err
}

// RouteStepInsert appends one step to an in-progress route recording.
func (s *Store) RouteStepInsert(ctx context.Context, routeID string, st RouteStep) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO route_steps(
			route_id, step_num, offset_ms, kind, x, y, rel_x, rel_y,
			win_x, win_y, win_w, win_h, button, key_code, key_label,
			mod_cmd, mod_shift, mod_ctrl, mod_opt, ax_role, ax_label, pid, app_name)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		routeID, st.StepNum, st.OffsetMS, st.Kind, st.X, st.Y, st.RelX, st.RelY,
		st.WinX, st.WinY, st.WinW, st.WinH, nullable(st.Button), st.KeyCode, nullable(st.KeyLabel),
		st.ModCmd, st.ModShift, st.ModCtrl, st.ModOpt, nullable(st.AXRole), nullable(st.AXLabel), st.PID, nullable(st.AppName))
	return err
}

// RouteFinish records a completed recording's total duration and step
// count.
func (s *Store) RouteFinish(ctx context.Context, id string, durationMS int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE routes SET duration_ms = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, durationMS, id)
	return err
}

// RouteSteps returns every step of a route, in order.
func (s *Store) RouteSteps(ctx context.Context, routeID string) ([]RouteStep, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step_num, offset_ms, kind, x, y, rel_x, rel_y, win_x, win_y, win_w, win_h,
		       button, key_code, key_label, mod_cmd, mod_shift, mod_ctrl, mod_opt,
		       ax_role, ax_label, pid, app_name
		FROM route_steps WHERE route_id = ? ORDER BY step_num`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RouteStep
	for rows.Next() {
		var st RouteStep
		var x, y, winX, winY, winW, winH, keyCode, pid sql.NullInt64
		var relX, relY sql.NullFloat64
		var button, keyLabel, axRole, axLabel, appName sql.NullString
		if err := rows.Scan(&st.StepNum, &st.OffsetMS, &st.Kind, &x, &y, &relX, &relY,
			&winX, &winY, &winW, &winH, &button, &keyCode, &keyLabel,
			&st.ModCmd, &st.ModShift, &st.ModCtrl, &st.ModOpt,
			&axRole, &axLabel, &pid, &appName); err != nil {
			return nil, err
		}
		st.X, st.Y = int(x.Int64), int(y.Int64)
		st.RelX, st.RelY = relX.Float64, relY.Float64
		st.WinX, st.WinY, st.WinW, st.WinH = int(winX.Int64), int(winY.Int64), int(winW.Int64), int(winH.Int64)
		st.Button, st.KeyLabel = button.String, keyLabel.String
		st.KeyCode = int(keyCode.Int64)
		st.AXRole, st.AXLabel = axRole.String, axLabel.String
		st.PID = int(pid.Int64)
		st.AppName = appName.String
		out = append(out, st)
	}
	return out, rows.Err()
}

// RouteByName finds a route id by name.
func (s *Store) RouteByName(ctx context.Context, name string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM routes WHERE name = ? ORDER BY created_at DESC LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	return id, err == nil, err
}

// RouteList returns every recorded route with its step count, newest first.
func (s *Store) RouteList(ctx context.Context) ([]Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.app, r.duration_ms, r.created_at, COUNT(s.id) AS step_count
		FROM routes r LEFT JOIN route_steps s ON r.id = s.route_id
		GROUP BY r.id ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Route
	for rows.Next() {
		var r Route
		var app sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &app, &r.DurationMS, &r.CreatedAt, &r.StepCount); err != nil {
			return nil, err
		}
		r.App = app.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// RouteDelete removes a route and its steps (cascade), reporting whether it
// existed.
func (s *Store) RouteDelete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
