package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordAndRecentRuns(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	require.NoError(t, store.RecordRun(ctx, RunRecord{
		RunID:     "run-1",
		Target:    "cov",
		Outcome:   "success",
		Duration:  1500 * time.Millisecond,
		StartedAt: base,
	}))
	require.NoError(t, store.RecordRun(ctx, RunRecord{
		RunID:     "run-2",
		Target:    "publish",
		Outcome:   "failed",
		Duration:  3 * time.Second,
		StartedAt: base.Add(10 * time.Minute),
	}))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "publish", runs[0].Target)
	assert.Equal(t, "failed", runs[0].Outcome)
	assert.Equal(t, 3*time.Second, runs[0].Duration)
	assert.Equal(t, "run-1", runs[1].RunID)
}

func TestStoreRecordRunUpsert(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := RunRecord{RunID: "run-1", Target: "docs", Outcome: "failed", StartedAt: time.Now()}
	require.NoError(t, store.RecordRun(ctx, rec))

	rec.Outcome = "success"
	require.NoError(t, store.RecordRun(ctx, rec))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "success", runs[0].Outcome)
}

func TestStoreAppendAndQueryEvents(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.AppendEvent(ctx, "run-1", "run.started", nil))
	require.NoError(t, store.AppendEvent(ctx, "run-1", "step.completed", []byte(`{"step":"run-tests"}`)))
	require.NoError(t, store.AppendEvent(ctx, "run-2", "run.started", nil))

	events, err := store.EventsForRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "run.started", events[0].EventType)
	assert.Equal(t, "step.completed", events[1].EventType)
	assert.Equal(t, []byte(`{"step":"run-tests"}`), events[1].Payload)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.RecordRun(context.Background(), RunRecord{
		RunID:     "run-1",
		Target:    "cov",
		Outcome:   "success",
		StartedAt: time.Now(),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
}
