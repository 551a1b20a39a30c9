// Package graph builds a directed graph of layout-fingerprint transitions
// observed during use, so a later request can ask "how do I get from here
// to there" and get back the action sequence that worked before.
package graph

import (
	"context"
	"time"

	"github.com/nexuscore/nexus/internal/store"
)

// Graph records and queries the navigation graph. It keeps no in-memory
// copy of the graph across calls — every query reads the current edge set
// from the store, since the graph only grows at the pace of real user
// actions.
type Graph struct {
	store *store.Store
}

// New wraps st for navigation-graph recording and querying.
func New(st *store.Store) *Graph {
	return &Graph{store: st}
}

// RecordTransition records that performing action while at the layout
// identified by fromFingerprint led to the layout identified by
// toFingerprint, in app, with the given outcome and elapsed time.
func (g *Graph) RecordTransition(ctx context.Context, fromFingerprint, toFingerprint, app, action string, ok bool, elapsed time.Duration) error {
	if err := g.store.GraphNodeUpsert(ctx, fromFingerprint, app, ""); err != nil {
		return err
	}
	if err := g.store.GraphNodeUpsert(ctx, toFingerprint, app, ""); err != nil {
		return err
	}
	return g.store.GraphEdgeUpsert(ctx, fromFingerprint, toFingerprint, action, ok, elapsed)
}

// Step is one hop of a path: the action that was taken and the fingerprint
// it led to.
type Step struct {
	Action string
	To     string
}

// FindPath runs a breadth-first search from `from` to `to` over the
// recorded transition graph and returns the shortest action sequence, or
// (nil, false) if no path is known.
func (g *Graph) FindPath(ctx context.Context, from, to string) ([]Step, bool, error) {
	if from == to {
		return nil, true, nil
	}

	edges, err := g.store.GraphAllEdges(ctx)
	if err != nil {
		return nil, false, err
	}

	adj := make(map[string][]store.GraphEdge)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e)
	}

	type frame struct {
		node string
		path []Step
	}
	visited := map[string]bool{from: true}
	queue := []frame{{node: from}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range adj[cur.node] {
			if visited[e.To] {
				continue
			}
			path := append(append([]Step{}, cur.path...), Step{Action: e.Action, To: e.To})
			if e.To == to {
				return path, true, nil
			}
			visited[e.To] = true
			queue = append(queue, frame{node: e.To, path: path})
		}
	}

	return nil, false, nil
}

// SuggestAction returns the first step of the shortest known path from the
// current fingerprint to target, or ok=false if no path is known.
// Mirrors original_source/nexus/mind/graph.py's suggest_action(current_hash,
// target_hash), which is find_path's first hop, not a local best-edge pick.
func (g *Graph) SuggestAction(ctx context.Context, from, target string) (Step, bool, error) {
	path, ok, err := g.FindPath(ctx, from, target)
	if err != nil || !ok || len(path) == 0 {
		return Step{}, false, err
	}
	return path[0], true, nil
}

// Stats returns the total node and edge counts plus the distinct apps seen.
func (g *Graph) Stats(ctx context.Context) (nodes, edges int, apps []string, err error) {
	return g.store.GraphStats(ctx)
}
