package coverage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/shipyard/internal/config"
	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
	"git.home.luguber.info/inful/shipyard/internal/metrics"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
	"git.home.luguber.info/inful/shipyard/internal/runner"
)

// Service wires the cov target: test run, profile parsing, optional HTML
// report, threshold enforcement.
type Service struct {
	cfg      config.CoverageConfig
	root     string
	run      *runner.Runner
	recorder metrics.Recorder

	summary *Summary // set by the parse step, read by later steps
}

// NewService creates a coverage service for the given project root.
func NewService(root string, cfg config.CoverageConfig, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Service{
		cfg:      cfg,
		root:     root,
		run:      runner.New(root),
		recorder: recorder,
	}
}

// Summary returns the parsed coverage summary (nil before the target ran).
func (s *Service) Summary() *Summary { return s.summary }

// Target assembles the cov pipeline target. Steps run in order; the first
// failure aborts the remainder.
func (s *Service) Target() pipeline.Target {
	steps := []pipeline.Step{
		{Name: "run-tests", Run: s.runTests},
		{Name: "parse-profile", Run: s.parseProfile},
	}
	if s.cfg.HTML {
		steps = append(steps, pipeline.Step{Name: "html-report", Run: s.htmlReport})
	}
	if s.cfg.MinPercent > 0 {
		steps = append(steps, pipeline.Step{Name: "check-threshold", Run: s.checkThreshold})
	}
	return pipeline.Target{Name: "cov", Steps: steps}
}

// runTests invokes the configured test command.
func (s *Service) runTests(ctx context.Context) error {
	if err := s.run.RunArgv(ctx, s.cfg.Command); err != nil {
		return serrors.Wrap(err, serrors.CategoryCoverage, serrors.SeverityFatal, "test command failed")
	}
	return nil
}

// parseProfile reads the cover profile the test command wrote.
func (s *Service) parseProfile(ctx context.Context) error {
	profilePath := s.profilePath()
	if _, err := os.Stat(profilePath); err != nil {
		return serrors.Wrap(err, serrors.CategoryCoverage, serrors.SeverityFatal, "cover profile not found").
			WithContext("path", profilePath)
	}

	summary, err := ParseProfile(profilePath)
	if err != nil {
		return serrors.Wrap(err, serrors.CategoryCoverage, serrors.SeverityFatal, "cover profile unreadable")
	}
	s.summary = summary
	s.recorder.ObserveCoveragePercent(summary.Percent())

	for _, pc := range summary.Packages {
		slog.Info("Package coverage",
			slog.String("package", pc.Package),
			slog.String("coverage", fmt.Sprintf("%.1f%%", pc.Percent())))
	}
	slog.Info("Total coverage",
		slog.String("coverage", fmt.Sprintf("%.1f%%", summary.Percent())),
		slog.Int64("covered", summary.Covered),
		slog.Int64("statements", summary.Total))
	return nil
}

// htmlReport renders the profile with the external cover tool.
func (s *Service) htmlReport(ctx context.Context) error {
	out := s.cfg.HTMLOutput
	if !filepath.IsAbs(out) {
		out = filepath.Join(s.root, out)
	}
	if err := s.run.Run(ctx, "go", "tool", "cover", "-html="+s.profilePath(), "-o", out); err != nil {
		return serrors.Wrap(err, serrors.CategoryCoverage, serrors.SeverityError, "html report generation failed")
	}
	slog.Info("Coverage report written", logfields.Path(out))
	return nil
}

// checkThreshold fails the target when total coverage is below the configured minimum.
func (s *Service) checkThreshold(ctx context.Context) error {
	if s.summary == nil {
		return serrors.InternalError("threshold check before profile parse", nil)
	}
	got := s.summary.Percent()
	if got < s.cfg.MinPercent {
		return serrors.CoverageBelowThreshold(got, s.cfg.MinPercent)
	}
	return nil
}

func (s *Service) profilePath() string {
	if filepath.IsAbs(s.cfg.Profile) {
		return s.cfg.Profile
	}
	return filepath.Join(s.root, s.cfg.Profile)
}
