package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(t.TempDir() + "/nexus.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db)
}

func TestFindPathSameNodeIsEmptyPath(t *testing.T) {
	g := New(newTestStore(t))
	path, ok, err := g.FindPath(context.Background(), "aaa", "aaa")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, path)
}

func TestFindPathDirectEdge(t *testing.T) {
	ctx := context.Background()
	g := New(newTestStore(t))
	require.NoError(t, g.RecordTransition(ctx, "a", "b", "TextEdit", "click Save", true, time.Second))

	path, ok, err := g.FindPath(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, path, 1)
	assert.Equal(t, "click Save", path[0].Action)
	assert.Equal(t, "b", path[0].To)
}

func TestFindPathMultiHopPrefersShortest(t *testing.T) {
	ctx := context.Background()
	g := New(newTestStore(t))
	// a -> b -> c (two hops) and a -> c (direct) both exist; BFS must
	// return the single-hop path, not wander through b.
	require.NoError(t, g.RecordTransition(ctx, "a", "b", "TextEdit", "open menu", true, time.Second))
	require.NoError(t, g.RecordTransition(ctx, "b", "c", "TextEdit", "click Save", true, time.Second))
	require.NoError(t, g.RecordTransition(ctx, "a", "c", "TextEdit", "press cmd+s", true, time.Second))

	path, ok, err := g.FindPath(ctx, "a", "c")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, path, 1)
	assert.Equal(t, "press cmd+s", path[0].Action)
}

func TestFindPathNoRouteIsNotOK(t *testing.T) {
	ctx := context.Background()
	g := New(newTestStore(t))
	require.NoError(t, g.RecordTransition(ctx, "a", "b", "TextEdit", "click Save", true, time.Second))

	path, ok, err := g.FindPath(ctx, "a", "z")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestSuggestActionReturnsFirstStepTowardTarget(t *testing.T) {
	ctx := context.Background()
	g := New(newTestStore(t))
	require.NoError(t, g.RecordTransition(ctx, "a", "b", "TextEdit", "open menu", true, time.Second))
	require.NoError(t, g.RecordTransition(ctx, "b", "c", "TextEdit", "click Save", true, time.Second))

	step, ok, err := g.SuggestAction(ctx, "a", "c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "open menu", step.Action)
	assert.Equal(t, "b", step.To)
}

func TestSuggestActionNoKnownPathIsNotOK(t *testing.T) {
	ctx := context.Background()
	g := New(newTestStore(t))
	require.NoError(t, g.RecordTransition(ctx, "a", "b", "TextEdit", "click Save", true, time.Second))

	_, ok, err := g.SuggestAction(ctx, "a", "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatsCountsNodesEdgesAndApps(t *testing.T) {
	ctx := context.Background()
	g := New(newTestStore(t))
	require.NoError(t, g.RecordTransition(ctx, "a", "b", "TextEdit", "click Save", true, time.Second))
	require.NoError(t, g.RecordTransition(ctx, "c", "d", "Calculator", "press 1", true, time.Second))

	nodes, edges, apps, err := g.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, nodes)
	assert.Equal(t, 2, edges)
	assert.ElementsMatch(t, []string{"TextEdit", "Calculator"}, apps)
}
