package learn

import (
	"context"
	"testing"

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

func TestRecordSuccessAfterFailureLearnsLabel(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	l.RecordFailure("TextEdit", "click", "Save")
	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "click", "Save Document"))

	mapped, ok, err := l.LookupLabel(ctx, "TextEdit", "click", "Save")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Save Document", mapped)
}

func TestRecordSuccessAlsoLearnsGlobalMapping(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	l.RecordFailure("TextEdit", "click", "Save")
	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "click", "Save Document"))

	mapped, ok, err := l.LookupLabel(ctx, "SomeOtherApp", "click", "Save")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Save Document", mapped)
}

func TestRecordSuccessWithoutPriorFailureLearnsNothing(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "click", "Save"))

	_, ok, err := l.LookupLabel(ctx, "TextEdit", "click", "Save")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordSuccessIdentityTargetIsNotACorrection(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	l.RecordFailure("TextEdit", "click", "Save")
	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "click", "Save"))

	_, ok, err := l.LookupLabel(ctx, "TextEdit", "click", "Save")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordSuccessDifferentVerbDoesNotCorrelate(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	l.RecordFailure("TextEdit", "click", "Save")
	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "type", "Save Document"))

	_, ok, err := l.LookupLabel(ctx, "TextEdit", "click", "Save")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordSuccessOutsideFailureWindowDoesNotCorrelate(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	l.RecordFailure("TextEdit", "click", "Save")
	l.mu.Lock()
	f := l.pending[key("TextEdit", "click")]
	f.at = f.at.Add(-failureWindow * 2)
	l.pending[key("TextEdit", "click")] = f
	l.mu.Unlock()

	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "click", "Save Document"))

	_, ok, err := l.LookupLabel(ctx, "TextEdit", "click", "Save")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordMethodAndStats(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, l.RecordMethod(ctx, "TextEdit", "accessibility", true))
	require.NoError(t, l.RecordMethod(ctx, "TextEdit", "accessibility", true))
	require.NoError(t, l.RecordMethod(ctx, "TextEdit", "accessibility", false))

	stats, err := l.Stats(ctx, "TextEdit")
	require.NoError(t, err)
	require.Len(t, stats.Methods, 1)
	assert.Equal(t, "accessibility", stats.Methods[0].Method)
	assert.Equal(t, 2, stats.Methods[0].OK)
	assert.Equal(t, 1, stats.Methods[0].Fail)
}

func TestHintsForAppEmptyWhenNothingLearned(t *testing.T) {
	l := New(newTestStore(t))
	hints, err := l.HintsForApp(context.Background(), "TextEdit")
	require.NoError(t, err)
	assert.Empty(t, hints)
}

func TestHintsForAppIncludesLearnedLabelAndMethodRate(t *testing.T) {
	l := New(newTestStore(t))
	ctx := context.Background()

	l.RecordFailure("TextEdit", "click", "Save")
	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "click", "Save Document"))

	for i := 0; i < minMethodSampleSize; i++ {
		require.NoError(t, l.RecordMethod(ctx, "TextEdit", "accessibility", true))
	}

	hints, err := l.HintsForApp(ctx, "TextEdit")
	require.NoError(t, err)
	assert.Contains(t, hints, "Save -> Save Document")
	assert.Contains(t, hints, "accessibility: 100%")
}

func TestGlobalStatsCountsActionsAndMappings(t *testing.T) {
	st := newTestStore(t)
	l := New(st)
	ctx := context.Background()

	l.RecordFailure("TextEdit", "click", "Save")
	require.NoError(t, l.RecordSuccess(ctx, "TextEdit", "click", "Save Document"))
	require.NoError(t, st.ActionInsert(ctx, store.ActionRecord{App: "TextEdit", Intent: "click Save", OK: true}))

	stats, err := l.GlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.LabelMappings)
	assert.Equal(t, 1, stats.GlobalMappings)
	assert.Equal(t, 1, stats.ActionsRecord)
}
