package daemon

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/shipyard/internal/config"
)

// Scheduler wraps gocron for periodic target runs.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleTarget registers a periodic task for the given schedule entry.
// Returns the job ID for later management.
func (s *Scheduler) ScheduleTarget(sched config.Schedule, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(sched.IntervalDuration()),
		gocron.NewTask(task),
		gocron.WithName(sched.Name),
	)
	if err != nil {
		return "", fmt.Errorf("create job %q: %w", sched.Name, err)
	}
	return job.ID().String(), nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
