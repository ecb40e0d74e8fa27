package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/shipyard/internal/config"
	"git.home.luguber.info/inful/shipyard/internal/coverage"
	"git.home.luguber.info/inful/shipyard/internal/daemon"
	"git.home.luguber.info/inful/shipyard/internal/docsite"
	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
	"git.home.luguber.info/inful/shipyard/internal/history"
	"git.home.luguber.info/inful/shipyard/internal/metrics"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
	"git.home.luguber.info/inful/shipyard/internal/preview"
	"git.home.luguber.info/inful/shipyard/internal/publish"
	"git.home.luguber.info/inful/shipyard/internal/retry"
	"git.home.luguber.info/inful/shipyard/internal/storage"
	"git.home.luguber.info/inful/shipyard/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"shipyard.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Cov struct {
		HTML bool    `help:"Generate an HTML coverage report"`
		Min  float64 `help:"Fail when total coverage is below this percentage"`
	} `cmd:"" help:"Run the test suite with coverage and check the threshold"`

	Docs struct {
		Open  bool `help:"Open the built site in a browser"`
		Watch bool `short:"w" help:"Serve the site locally and rebuild on changes"`
		Port  int  `short:"p" help:"Preview server port" default:"8000"`
	} `cmd:"" help:"Build the documentation site"`

	Publish struct {
		SkipUpload    bool `help:"Build archives but skip the registry upload"`
		KeepArtifacts bool `help:"Keep the build and dist directories after publishing"`
	} `cmd:"" help:"Package, upload, and clean up release artifacts"`

	Run struct{} `cmd:"" help:"Run the full pipeline: coverage, docs, publish"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Clean struct{} `cmd:"" help:"Remove build, dist, and site directories"`

	Daemon struct {
		DataDir string `short:"d" help:"Data directory for daemon state" default:"./daemon-data"`
	} `cmd:"" help:"Start daemon mode for scheduled pipeline runs"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	adapter := serrors.NewCLIErrorAdapter(CLI.Verbose, logger)

	switch ctx.Command() {
	case "cov":
		adapter.HandleError(runCov())
	case "docs":
		adapter.HandleError(runDocs())
	case "publish":
		adapter.HandleError(runPublish())
	case "run":
		adapter.HandleError(runAll())
	case "init":
		adapter.HandleError(config.Init(CLI.Config, CLI.Init.Force))
	case "clean":
		adapter.HandleError(runClean())
	case "daemon":
		adapter.HandleError(runDaemon())
	case "version":
		fmt.Printf("shipyard %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, "", err
	}
	root := cfg.Project.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, "", serrors.InternalError("resolve project root", err)
	}
	return cfg, absRoot, nil
}

// newExecutor assembles an executor with the configured retry policy and,
// when a history path is set, run-event persistence. The returned store is
// nil when history is disabled; the caller owns closing it.
func newExecutor(cfg *config.Config, recorder metrics.Recorder) (*pipeline.Executor, *history.Store, error) {
	bus := pipeline.NewBus()
	var store *history.Store
	if cfg.History.Path != "" {
		var err error
		store, err = history.NewStore(cfg.History.Path)
		if err != nil {
			return nil, nil, serrors.InternalError("open run history", err)
		}
		bus = pipeline.NewBusWithHistory(store)
	}
	exec := pipeline.NewExecutor(
		pipeline.WithBus(bus),
		pipeline.WithRecorder(recorder),
		pipeline.WithRetryPolicy(retry.FromConfig(cfg.Retry)),
	)
	return exec, store, nil
}

// executeTarget runs one target and records the run summary when history is on.
func executeTarget(ctx context.Context, cfg *config.Config, target pipeline.Target) error {
	exec, store, err := newExecutor(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	result, err := exec.Execute(ctx, target)
	if store != nil && result != nil {
		rec := history.RunRecord{
			RunID:     result.RunID,
			Target:    result.Target,
			Outcome:   string(result.Outcome),
			Duration:  result.Duration,
			StartedAt: time.Now().Add(-result.Duration),
		}
		if herr := store.RecordRun(ctx, rec); herr != nil {
			slog.Warn("Could not record run", "error", herr)
		}
	}
	return err
}

// buildTarget assembles a named pipeline target from configuration.
// The "run" target chains coverage, docs, and publish into one run.
func buildTarget(cfg *config.Config, root, name string) (pipeline.Target, error) {
	switch name {
	case "cov":
		return coverage.NewService(root, cfg.Coverage, metrics.NoopRecorder{}).Target(), nil
	case "docs":
		return docsite.NewService(root, cfg.Docs, false).Target(), nil
	case "publish":
		return newPublishService(cfg, root).Target(), nil
	case "run":
		var steps []pipeline.Step
		for _, sub := range []string{"cov", "docs", "publish"} {
			t, err := buildTarget(cfg, root, sub)
			if err != nil {
				return pipeline.Target{}, err
			}
			steps = append(steps, t.Steps...)
		}
		return pipeline.Target{Name: "run", Steps: steps}, nil
	default:
		return pipeline.Target{}, serrors.ValidationFailed("target", "unknown target "+name)
	}
}

func newPublishService(cfg *config.Config, root string) *publish.Service {
	var opts []publish.Option
	if CLI.Publish.SkipUpload {
		opts = append(opts, publish.WithSkipUpload())
	}
	if CLI.Publish.KeepArtifacts {
		opts = append(opts, publish.WithKeepArtifacts())
	}
	if cfg.Publish.ArchiveStore != "" {
		store, err := storage.NewFSStore(cfg.Publish.ArchiveStore)
		if err != nil {
			slog.Warn("Could not open archive store; retention disabled", "error", err)
		} else {
			opts = append(opts, publish.WithArchiveStore(store))
		}
	}
	return publish.NewService(root, cfg.Project, cfg.Publish, opts...)
}

func runCov() error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	if CLI.Cov.HTML {
		cfg.Coverage.HTML = true
	}
	if CLI.Cov.Min > 0 {
		cfg.Coverage.MinPercent = CLI.Cov.Min
	}

	svc := coverage.NewService(root, cfg.Coverage, metrics.NoopRecorder{})
	return executeTarget(context.Background(), cfg, svc.Target())
}

func runDocs() error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	svc := docsite.NewService(root, cfg.Docs, CLI.Docs.Open)
	if !CLI.Docs.Watch {
		return executeTarget(context.Background(), cfg, svc.Target())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source := cfg.Docs.Source
	if !filepath.IsAbs(source) {
		source = filepath.Join(root, source)
	}
	return preview.NewServer(source, svc, CLI.Docs.Port).Run(ctx)
}

func runPublish() error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	svc := newPublishService(cfg, root)
	return executeTarget(context.Background(), cfg, svc.Target())
}

func runAll() error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := buildTarget(cfg, root, "run")
	if err != nil {
		return err
	}
	return executeTarget(context.Background(), cfg, target)
}

func runClean() error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.Publish.BuildDir, cfg.Publish.DistDir, cfg.Docs.Output} {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return serrors.WorkspaceError("clean", err)
		}
		slog.Info("Removed directory", "path", dir)
	}
	return nil
}

func runDaemon() error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	if CLI.Daemon.DataDir != "" {
		cfg.Daemon.DataDir = CLI.Daemon.DataDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prom.Registry
	if cfg.Metrics.Enabled {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	exec, store, err := newExecutor(cfg, recorder)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	runner := func(ctx context.Context, name string) (*pipeline.RunResult, error) {
		target, err := buildTarget(cfg, root, name)
		if err != nil {
			return nil, err
		}
		return exec.Execute(ctx, target)
	}

	var opts []daemon.Option
	if store != nil {
		opts = append(opts, daemon.WithHistory(store))
	}
	if registry != nil {
		opts = append(opts, daemon.WithMetricsRegistry(registry))
	}
	if cfg.Daemon.NATS.Enabled {
		publisher, err := daemon.NewRunPublisher(cfg.Daemon.NATS)
		if err != nil {
			return serrors.Wrap(err, serrors.CategoryDaemon, serrors.SeverityFatal, "NATS connection failed")
		}
		opts = append(opts, daemon.WithRunPublisher(publisher))
	}

	d, err := daemon.New(cfg, runner, opts...)
	if err != nil {
		return serrors.Wrap(err, serrors.CategoryDaemon, serrors.SeverityFatal, "daemon startup failed")
	}

	slog.Info("Daemon starting",
		"data_dir", cfg.Daemon.DataDir,
		"schedules", len(cfg.Daemon.Schedules))
	return d.Run(ctx)
}
