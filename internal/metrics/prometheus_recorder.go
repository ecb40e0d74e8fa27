package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	stepDuration    *prom.HistogramVec
	runDuration     *prom.HistogramVec
	stepResults     *prom.CounterVec
	runOutcome      *prom.CounterVec
	stepRetries     *prom.CounterVec
	coveragePercent prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "shipyard",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual pipeline steps",
			Buckets:   prom.DefBuckets,
		}, []string{"target", "step"})
		pr.runDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "shipyard",
			Name:      "run_duration_seconds",
			Help:      "Total target run duration",
			Buckets:   prom.DefBuckets,
		}, []string{"target"})
		pr.stepResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "shipyard",
			Name:      "step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"target", "step", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "shipyard",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"target", "outcome"})
		pr.stepRetries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "shipyard",
			Name:      "step_retries_total",
			Help:      "Retries of retryable steps after transient failures",
		}, []string{"target", "step"})
		pr.coveragePercent = prom.NewGauge(prom.GaugeOpts{
			Namespace: "shipyard",
			Name:      "coverage_percent",
			Help:      "Total statement coverage from the most recent cov run",
		})
		reg.MustRegister(pr.stepDuration, pr.runDuration, pr.stepResults, pr.runOutcome, pr.stepRetries, pr.coveragePercent)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(target, step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(target, step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(target string, d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(target, step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(target, step, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(target, outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(target, outcome).Inc()
}

func (p *PrometheusRecorder) IncStepRetry(target, step string) {
	if p == nil || p.stepRetries == nil {
		return
	}
	p.stepRetries.WithLabelValues(target, step).Inc()
}

func (p *PrometheusRecorder) ObserveCoveragePercent(pct float64) {
	if p == nil || p.coveragePercent == nil {
		return
	}
	p.coveragePercent.Set(pct)
}
