package daemon

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/shipyard/internal/config"
	"git.home.luguber.info/inful/shipyard/internal/history"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
)

func testDaemonConfig() *config.Config {
	return &config.Config{
		Daemon: config.DaemonConfig{
			Listen: ":0",
			Schedules: []config.Schedule{
				{Name: "nightly-coverage", Target: "cov", Interval: "24h"},
			},
		},
	}
}

func noopRunner(ctx context.Context, target string) (*pipeline.RunResult, error) {
	return &pipeline.RunResult{
		RunID:   "run-1",
		Target:  target,
		Outcome: pipeline.OutcomeSuccess,
	}, nil
}

func TestHealthzEndpoint(t *testing.T) {
	d, err := New(testDaemonConfig(), noopRunner)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	store, err := history.NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordRun(context.Background(), history.RunRecord{
		RunID:     "run-1",
		Target:    "cov",
		Outcome:   "success",
		Duration:  time.Second,
		StartedAt: time.Now(),
	}))

	d, err := New(testDaemonConfig(), noopRunner, WithHistory(store))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.handler().ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))
	require.Equal(t, 200, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, "nightly-coverage", resp.Schedules[0].Name)
	assert.Equal(t, "cov", resp.Schedules[0].Target)
	require.Len(t, resp.RecentRuns, 1)
	assert.Equal(t, "run-1", resp.RecentRuns[0].RunID)
}

func TestMetricsEndpointDisabledByDefault(t *testing.T) {
	d, err := New(testDaemonConfig(), noopRunner)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	d.handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestSchedulerRegistersJobs(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer s.Stop()

	id, err := s.ScheduleTarget(config.Schedule{
		Name:     "nightly",
		Target:   "cov",
		Interval: "1h",
	}, func() {})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, s.Jobs())
}

func TestRunScheduledRecordsHistory(t *testing.T) {
	store, err := history.NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	d, err := New(testDaemonConfig(), noopRunner, WithHistory(store))
	require.NoError(t, err)

	d.runScheduled(context.Background(), d.cfg.Daemon.Schedules[0])

	runs, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "cov", runs[0].Target)
	assert.Equal(t, "success", runs[0].Outcome)
}
