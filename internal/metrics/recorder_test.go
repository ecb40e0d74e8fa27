package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// TestNoopRecorderSafe verifies all noop methods are callable without panic.
func TestNoopRecorderSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStepDuration("cov", "test", time.Second)
	r.ObserveRunDuration("cov", time.Second)
	r.IncStepResult("cov", "test", ResultSuccess)
	r.IncRunOutcome("cov", "success")
	r.IncStepRetry("publish", "upload")
	r.ObserveCoveragePercent(83.2)
}

func TestPrometheusRecorder_NilReceiverSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveStepDuration("cov", "test", time.Second)
	p.ObserveRunDuration("cov", time.Second)
	p.IncStepResult("cov", "test", ResultFailed)
	p.IncRunOutcome("cov", "failed")
	p.IncStepRetry("publish", "upload")
	p.ObserveCoveragePercent(0)
}

func TestPrometheusRecorder_Registers(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewPrometheusRecorder(reg)

	p.ObserveStepDuration("publish", "upload", 250*time.Millisecond)
	p.ObserveRunDuration("publish", time.Second)
	p.IncStepResult("publish", "upload", ResultSuccess)
	p.IncRunOutcome("publish", "success")
	p.IncStepRetry("publish", "upload")
	p.ObserveCoveragePercent(91.4)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	if len(families) < 6 {
		t.Fatalf("expected at least 6 metric families, got %d", len(families))
	}

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"shipyard_step_duration_seconds",
		"shipyard_run_duration_seconds",
		"shipyard_step_results_total",
		"shipyard_run_outcomes_total",
		"shipyard_step_retries_total",
		"shipyard_coverage_percent",
	} {
		if !names[want] {
			t.Errorf("missing metric family %s", want)
		}
	}
}
