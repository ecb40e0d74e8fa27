// Package daemon runs scheduled pipeline targets and exposes a status API.
package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/shipyard/internal/config"
	"git.home.luguber.info/inful/shipyard/internal/history"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
	"git.home.luguber.info/inful/shipyard/internal/metrics"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
	"git.home.luguber.info/inful/shipyard/internal/version"
	"git.home.luguber.info/inful/shipyard/internal/workspace"
)

// TargetRunner executes one named target and returns its result.
type TargetRunner func(ctx context.Context, target string) (*pipeline.RunResult, error)

// Daemon schedules periodic target runs and serves status over HTTP.
type Daemon struct {
	cfg       *config.Config
	run       TargetRunner
	scheduler *Scheduler
	startTime time.Time

	history   *history.Store // optional
	registry  *prom.Registry // optional, enables /metrics
	publisher *RunPublisher  // optional
	httpSrv   *http.Server
}

// Option configures optional daemon collaborators.
type Option func(*Daemon)

// WithHistory records scheduled run summaries in the given store.
func WithHistory(store *history.Store) Option {
	return func(d *Daemon) { d.history = store }
}

// WithMetricsRegistry exposes the registry on /metrics.
func WithMetricsRegistry(reg *prom.Registry) Option {
	return func(d *Daemon) { d.registry = reg }
}

// WithRunPublisher publishes run completions to NATS.
func WithRunPublisher(p *RunPublisher) Option {
	return func(d *Daemon) { d.publisher = p }
}

// New creates a daemon for the given configuration and target runner.
func New(cfg *config.Config, run TargetRunner, opts ...Option) (*Daemon, error) {
	scheduler, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	d := &Daemon{
		cfg:       cfg,
		run:       run,
		scheduler: scheduler,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run starts the scheduler and HTTP server and blocks until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if dir := d.cfg.Daemon.DataDir; dir != "" {
		if err := workspace.NewManager(dir).Ensure(); err != nil {
			return err
		}
	}

	for _, sched := range d.cfg.Daemon.Schedules {
		sched := sched
		id, err := d.scheduler.ScheduleTarget(sched, func() {
			d.runScheduled(ctx, sched)
		})
		if err != nil {
			return err
		}
		slog.Info("Schedule registered",
			logfields.ScheduleID(id),
			logfields.ScheduleName(sched.Name),
			logfields.Target(sched.Target),
			slog.String("interval", sched.Interval))
	}
	d.scheduler.Start()

	d.httpSrv = &http.Server{
		Addr:              d.cfg.Daemon.Listen,
		Handler:           d.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("Daemon listening", slog.String("addr", d.cfg.Daemon.Listen))
		if err := d.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Daemon HTTP server error", logfields.Error(err))
		}
	}()

	<-ctx.Done()
	return d.shutdown()
}

func (d *Daemon) shutdown() error {
	slog.Info("Shutting down daemon")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	if err := d.scheduler.Stop(); err != nil {
		slog.Warn("Scheduler shutdown error", logfields.Error(err))
	}
	if d.publisher != nil {
		_ = d.publisher.Close()
	}
	return nil
}

// runScheduled executes one scheduled target run, then records and publishes
// the result. Failures are logged; a failing schedule keeps running.
func (d *Daemon) runScheduled(ctx context.Context, sched config.Schedule) {
	slog.Info("Executing scheduled target",
		logfields.ScheduleName(sched.Name),
		logfields.Target(sched.Target))

	result, err := d.run(ctx, sched.Target)
	if err != nil {
		slog.Error("Scheduled target failed",
			logfields.ScheduleName(sched.Name),
			logfields.Target(sched.Target),
			logfields.Error(err))
	}
	if result == nil {
		return
	}

	if d.history != nil {
		rec := history.RunRecord{
			RunID:     result.RunID,
			Target:    result.Target,
			Outcome:   string(result.Outcome),
			Duration:  result.Duration,
			StartedAt: time.Now().Add(-result.Duration),
		}
		if herr := d.history.RecordRun(ctx, rec); herr != nil {
			slog.Warn("Could not record run", logfields.RunID(result.RunID), logfields.Error(herr))
		}
	}
	if d.publisher != nil {
		if perr := d.publisher.PublishRun(result); perr != nil {
			slog.Warn("Could not publish run event", logfields.RunID(result.RunID), logfields.Error(perr))
		}
	}
}

// statusResponse is the JSON body served on /status.
type statusResponse struct {
	Version       string              `json:"version"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	Schedules     []scheduleStatus    `json:"schedules"`
	RecentRuns    []history.RunRecord `json:"recent_runs,omitempty"`
}

type scheduleStatus struct {
	Name     string `json:"name"`
	Target   string `json:"target"`
	Interval string `json:"interval"`
}

func (d *Daemon) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/status", d.handleStatus)
	if d.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(d.registry))
	}
	return mux
}

func (d *Daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version:       version.Version,
		UptimeSeconds: int64(time.Since(d.startTime).Seconds()),
	}
	for _, sched := range d.cfg.Daemon.Schedules {
		resp.Schedules = append(resp.Schedules, scheduleStatus{
			Name:     sched.Name,
			Target:   sched.Target,
			Interval: sched.Interval,
		})
	}
	if d.history != nil {
		runs, err := d.history.RecentRuns(r.Context(), 20)
		if err != nil {
			slog.Warn("Could not query run history", logfields.Error(err))
		} else {
			resp.RecentRuns = runs
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("Could not encode status response", logfields.Error(err))
	}
}
