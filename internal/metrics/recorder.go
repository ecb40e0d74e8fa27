package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for run and step metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveStepDuration(target, step string, d time.Duration)
	ObserveRunDuration(target string, d time.Duration)
	IncStepResult(target, step string, result ResultLabel)
	IncRunOutcome(target, outcome string) // outcome: success|failed|canceled
	IncStepRetry(target, step string)
	ObserveCoveragePercent(pct float64)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(string, time.Duration)          {}
func (NoopRecorder) IncStepResult(string, string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(string, string)                      {}
func (NoopRecorder) IncStepRetry(string, string)                       {}
func (NoopRecorder) ObserveCoveragePercent(float64)                    {}
