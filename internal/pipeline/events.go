package pipeline

// Event is a domain event published during target runs and consumed by handlers.
type Event interface{ Name() string }

// SimpleEvent is a lightweight event implementation for scaffolding.
type SimpleEvent struct{ E string }

func (s SimpleEvent) Name() string { return s.E }

// Event names used in the pipeline.
const (
	EventRunStarted    = "RunStarted"
	EventRunCompleted  = "RunCompleted"
	EventStepStarted   = "StepStarted"
	EventStepCompleted = "StepCompleted"
)

// RunEvent carries run-level context.
type RunEvent struct {
	E       string
	RunID   string
	Target  string
	Outcome Outcome
}

func (e RunEvent) Name() string     { return e.E }
func (e RunEvent) GetRunID() string { return e.RunID }

// StepEvent carries step-level context.
type StepEvent struct {
	E      string
	RunID  string
	Target string
	Step   string
	Err    error
}

func (e StepEvent) Name() string     { return e.E }
func (e StepEvent) GetRunID() string { return e.RunID }
