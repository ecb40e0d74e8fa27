// Package docsite implements the docs target: discover Markdown sources,
// render a static HTML site, verify links, and open the result in a browser.
package docsite

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/shipyard/internal/config"
	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
)

// Service wires the docs target.
type Service struct {
	cfg  config.DocsConfig
	root string
	open bool

	pages []Page // set by the discover step
}

// NewService creates a docs service for the given project root.
// When open is true, the built site is opened in a browser as a final step.
func NewService(root string, cfg config.DocsConfig, open bool) *Service {
	if !filepath.IsAbs(cfg.Source) {
		cfg.Source = filepath.Join(root, cfg.Source)
	}
	if !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(root, cfg.Output)
	}
	return &Service{cfg: cfg, root: root, open: open}
}

// Pages returns the discovered pages (nil before the target ran).
func (s *Service) Pages() []Page { return s.pages }

// OutputDir returns the resolved site output directory.
func (s *Service) OutputDir() string { return s.cfg.Output }

// Target assembles the docs pipeline target.
func (s *Service) Target() pipeline.Target {
	steps := []pipeline.Step{
		{Name: "discover", Run: s.discover},
		{Name: "render-site", Run: s.renderSite},
	}
	if s.cfg.VerifyLinks {
		steps = append(steps, pipeline.Step{Name: "verify-links", Run: s.verifyLinks})
	}
	if s.open {
		steps = append(steps, pipeline.Step{Name: "open-browser", Run: s.openBrowser})
	}
	return pipeline.Target{Name: "docs", Steps: steps}
}

// Build runs discovery and rendering directly, outside a pipeline run.
// The preview rebuild loop uses this to avoid re-running browser/link steps.
func (s *Service) Build(ctx context.Context) error {
	if err := s.discover(ctx); err != nil {
		return err
	}
	return s.renderSite(ctx)
}

func (s *Service) discover(ctx context.Context) error {
	pages, err := NewDiscovery(s.cfg.Source).DiscoverPages()
	if err != nil {
		return serrors.DocsBuildError(err)
	}
	s.pages = pages
	return nil
}

func (s *Service) renderSite(ctx context.Context) error {
	gen, err := NewGenerator(s.cfg)
	if err != nil {
		return serrors.DocsBuildError(err)
	}
	if err := gen.GenerateSite(s.pages); err != nil {
		return serrors.DocsBuildError(err)
	}
	return nil
}

func (s *Service) verifyLinks(ctx context.Context) error {
	broken, err := VerifyInternalLinks(s.cfg.Output, s.cfg.BaseURL)
	if err != nil {
		return serrors.DocsBuildError(err)
	}
	for _, l := range broken {
		slog.Warn("Broken internal link", logfields.URL(l.URL), slog.String("tag", l.Tag))
	}
	if len(broken) > 0 {
		return serrors.New(serrors.CategoryDocs, serrors.SeverityFatal, "site contains broken internal links").
			WithContext("count", len(broken))
	}
	return nil
}

func (s *Service) openBrowser(ctx context.Context) error {
	index := filepath.Join(s.cfg.Output, "index.html")
	if err := OpenBrowser(ctx, index); err != nil {
		// A missing browser should not fail an otherwise successful build.
		slog.Warn("Could not open browser", logfields.Error(err))
	}
	return nil
}
