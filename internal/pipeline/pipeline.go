// Package pipeline models targets as ordered step sequences and executes them
// with shell-like abort-on-first-failure semantics.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
	"git.home.luguber.info/inful/shipyard/internal/metrics"
	"git.home.luguber.info/inful/shipyard/internal/retry"
)

// Outcome enumerates terminal run states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StepFunc is the unit of work within a target.
type StepFunc func(ctx context.Context) error

// Step is a named, sequential unit of a target. Retryable steps are retried
// per policy when they fail with a retryable error (uploads); all other
// failures abort the target immediately.
type Step struct {
	Name      string
	Run       StepFunc
	Retryable bool
}

// Target is an ordered list of steps executed strictly sequentially.
type Target struct {
	Name  string
	Steps []Step
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name     string
	Outcome  Outcome
	Duration time.Duration
	Err      error
}

// RunResult records the outcome of a full target run.
type RunResult struct {
	RunID    string
	Target   string
	Outcome  Outcome
	Duration time.Duration
	Steps    []StepResult
	Err      error
}

// Executor runs targets, publishing events and recording metrics.
type Executor struct {
	bus      *Bus
	recorder metrics.Recorder
	policy   retry.Policy
}

// ExecutorOption configures executor behavior.
type ExecutorOption func(*Executor)

// WithBus attaches an event bus.
func WithBus(b *Bus) ExecutorOption {
	return func(e *Executor) { e.bus = b }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r metrics.Recorder) ExecutorOption {
	return func(e *Executor) { e.recorder = r }
}

// WithRetryPolicy sets the policy applied to retryable steps.
func WithRetryPolicy(p retry.Policy) ExecutorOption {
	return func(e *Executor) { e.policy = p }
}

// NewExecutor creates an executor. Without options it runs silently with
// default retry policy and no event persistence.
func NewExecutor(options ...ExecutorOption) *Executor {
	e := &Executor{
		bus:      NewBus(),
		recorder: metrics.NoopRecorder{},
		policy:   retry.DefaultPolicy(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Bus exposes the executor's event bus for subscription.
func (e *Executor) Bus() *Bus { return e.bus }

// Execute runs the target's steps in declared order. The first failing step
// aborts the remainder. The returned RunResult is non-nil even on failure.
func (e *Executor) Execute(ctx context.Context, target Target) (*RunResult, error) {
	runID := uuid.NewString()
	result := &RunResult{RunID: runID, Target: target.Name, Outcome: OutcomeSuccess}

	slog.Info("Starting target run",
		logfields.RunID(runID),
		logfields.Target(target.Name),
		slog.Int("steps", len(target.Steps)))

	_ = e.bus.Publish(RunEvent{E: EventRunStarted, RunID: runID, Target: target.Name})

	runStart := time.Now()
	for _, step := range target.Steps {
		if err := ctx.Err(); err != nil {
			result.Outcome = OutcomeCanceled
			result.Err = err
			break
		}

		sr := e.executeStep(ctx, runID, target.Name, step)
		result.Steps = append(result.Steps, sr)

		if sr.Err != nil {
			result.Outcome = sr.Outcome
			result.Err = sr.Err
			break
		}
	}
	result.Duration = time.Since(runStart)

	e.recorder.ObserveRunDuration(target.Name, result.Duration)
	e.recorder.IncRunOutcome(target.Name, string(result.Outcome))

	_ = e.bus.Publish(RunEvent{E: EventRunCompleted, RunID: runID, Target: target.Name, Outcome: result.Outcome})

	slog.Info("Target run finished",
		logfields.RunID(runID),
		logfields.Target(target.Name),
		logfields.Outcome(string(result.Outcome)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))

	return result, result.Err
}

// executeStep runs a single step, applying the retry policy for retryable failures.
func (e *Executor) executeStep(ctx context.Context, runID, target string, step Step) StepResult {
	_ = e.bus.Publish(StepEvent{E: EventStepStarted, RunID: runID, Target: target, Step: step.Name})

	start := time.Now()
	err := step.Run(ctx)

	if err != nil && step.Retryable && serrors.IsRetryable(err) {
		for attempt := 1; attempt <= e.policy.MaxRetries; attempt++ {
			delay := e.policy.Delay(attempt)
			slog.Warn("Retrying step after failure",
				logfields.Step(step.Name),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", delay),
				logfields.Error(err))
			e.recorder.IncStepRetry(target, step.Name)

			select {
			case <-ctx.Done():
				err = ctx.Err()
			case <-time.After(delay):
				err = step.Run(ctx)
			}
			if err == nil || !serrors.IsRetryable(err) {
				break
			}
		}
	}

	dur := time.Since(start)
	sr := StepResult{Name: step.Name, Duration: dur, Err: err}
	switch {
	case err == nil:
		sr.Outcome = OutcomeSuccess
	case ctx.Err() != nil:
		sr.Outcome = OutcomeCanceled
	default:
		sr.Outcome = OutcomeFailed
	}

	e.recorder.ObserveStepDuration(target, step.Name, dur)
	e.recorder.IncStepResult(target, step.Name, resultLabel(sr.Outcome))

	_ = e.bus.Publish(StepEvent{E: EventStepCompleted, RunID: runID, Target: target, Step: step.Name, Err: err})

	if err != nil {
		slog.Error("Step failed",
			logfields.Step(step.Name),
			logfields.Target(target),
			logfields.DurationMS(float64(dur.Milliseconds())),
			logfields.Error(err))
	}
	return sr
}

func resultLabel(o Outcome) metrics.ResultLabel {
	switch o {
	case OutcomeSuccess:
		return metrics.ResultSuccess
	case OutcomeCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFailed
	}
}
