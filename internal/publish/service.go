// Package publish implements the release pipeline: stage the build tree,
// produce versioned archives with checksums, upload them to the registry,
// and clean up the build and dist directories afterwards.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/shipyard/internal/config"
	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
	"git.home.luguber.info/inful/shipyard/internal/gitmeta"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
	"git.home.luguber.info/inful/shipyard/internal/storage"
	"git.home.luguber.info/inful/shipyard/internal/workspace"
)

// Service wires the publish target.
type Service struct {
	cfg     config.PublishConfig
	project config.ProjectConfig
	root    string

	skipUpload    bool
	keepArtifacts bool
	store         storage.ArchiveStore // optional archive retention
	uploader      *Uploader

	buildWS *workspace.Manager
	distWS  *workspace.Manager
	// excluded lists directories staging must never copy: the build and
	// dist trees themselves, and the archive store. Without this an
	// include of "." packs the previous run's artifacts into the next one.
	excluded []string

	version  string   // set by derive-version
	archives []string // archive paths in dist, set by the archive step
}

// Option customizes a publish service.
type Option func(*Service)

// WithSkipUpload disables the upload step.
func WithSkipUpload() Option { return func(s *Service) { s.skipUpload = true } }

// WithKeepArtifacts disables the final cleanup step.
func WithKeepArtifacts() Option { return func(s *Service) { s.keepArtifacts = true } }

// WithArchiveStore retains uploaded archives in a content-addressable store.
func WithArchiveStore(store storage.ArchiveStore) Option {
	return func(s *Service) { s.store = store }
}

// WithUploader overrides the default registry uploader.
func WithUploader(u *Uploader) Option { return func(s *Service) { s.uploader = u } }

// NewService creates a publish service for the given project root.
func NewService(root string, project config.ProjectConfig, cfg config.PublishConfig, opts ...Option) *Service {
	if !filepath.IsAbs(cfg.BuildDir) {
		cfg.BuildDir = filepath.Join(root, cfg.BuildDir)
	}
	if !filepath.IsAbs(cfg.DistDir) {
		cfg.DistDir = filepath.Join(root, cfg.DistDir)
	}
	s := &Service{
		cfg:      cfg,
		project:  project,
		root:     root,
		buildWS:  workspace.NewManager(cfg.BuildDir),
		distWS:   workspace.NewManager(cfg.DistDir),
		excluded: []string{cfg.BuildDir, cfg.DistDir},
	}
	if cfg.ArchiveStore != "" {
		storeDir := cfg.ArchiveStore
		if !filepath.IsAbs(storeDir) {
			storeDir = filepath.Join(root, storeDir)
		}
		s.excluded = append(s.excluded, storeDir)
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.uploader == nil {
		s.uploader = NewUploader(cfg.RegistryURL, cfg.Token)
	}
	if s.keepArtifacts || cfg.KeepArtifacts {
		s.keepArtifacts = true
	}
	return s
}

// Version returns the derived release version (empty before the target ran).
func (s *Service) Version() string { return s.version }

// Archives returns the produced archive paths (nil before the target ran).
func (s *Service) Archives() []string { return s.archives }

// Target assembles the publish pipeline target.
func (s *Service) Target() pipeline.Target {
	steps := []pipeline.Step{
		{Name: "derive-version", Run: s.deriveVersion},
		{Name: "stage", Run: s.stage},
		{Name: "archive", Run: s.archive},
		{Name: "checksum", Run: s.checksum},
	}
	if !s.skipUpload && s.cfg.RegistryURL != "" {
		steps = append(steps, pipeline.Step{Name: "upload", Run: s.upload, Retryable: true})
	}
	if s.store != nil {
		steps = append(steps, pipeline.Step{Name: "store-artifacts", Run: s.storeArtifacts})
	}
	if !s.keepArtifacts {
		steps = append(steps, pipeline.Step{Name: "clean", Run: s.clean})
	}
	return pipeline.Target{Name: "publish", Steps: steps}
}

func (s *Service) deriveVersion(ctx context.Context) error {
	if s.project.Version != "" {
		s.version = s.project.Version
		slog.Info("Using configured version", logfields.Version(s.version))
		return nil
	}
	info, err := gitmeta.Describe(s.root)
	if err != nil {
		return serrors.GitMetadataError(err)
	}
	s.version = info.Version
	slog.Info("Derived version from git",
		logfields.Version(s.version),
		slog.String("commit", info.ShortCommit()),
		slog.Bool("dirty", info.Dirty))
	return nil
}

// stage copies the configured include paths into a fresh build directory.
func (s *Service) stage(ctx context.Context) error {
	if len(s.cfg.Include) == 0 {
		return serrors.ConfigRequired("publish.include")
	}

	if err := s.buildWS.Reset(); err != nil {
		return serrors.WorkspaceError("stage", err)
	}

	for _, rel := range s.cfg.Include {
		src := filepath.Join(s.root, rel)
		dst := filepath.Join(s.cfg.BuildDir, rel)
		if err := copyTree(src, dst, s.excludedDir); err != nil {
			return serrors.PublishError("stage", fmt.Errorf("stage %s: %w", rel, err))
		}
		slog.Debug("Staged path", logfields.Path(rel))
	}
	return nil
}

// excludedDir reports whether dir is one of the trees staging must skip.
func (s *Service) excludedDir(dir string) bool {
	clean := filepath.Clean(dir)
	for _, ex := range s.excluded {
		if clean == filepath.Clean(ex) {
			return true
		}
	}
	return false
}

// archive packs the staged tree into one archive per configured format.
func (s *Service) archive(ctx context.Context) error {
	if err := s.distWS.Reset(); err != nil {
		return serrors.WorkspaceError("archive", err)
	}

	s.archives = nil
	base := fmt.Sprintf("%s-%s", s.project.Name, s.version)
	for _, format := range s.cfg.Formats {
		out := filepath.Join(s.cfg.DistDir, base+"."+format)
		var err error
		switch format {
		case "tar.gz":
			err = writeTarGz(s.cfg.BuildDir, out)
		case "zip":
			err = writeZip(s.cfg.BuildDir, out)
		default:
			err = fmt.Errorf("unsupported format %q", format)
		}
		if err != nil {
			return serrors.PublishError("archive", err)
		}
		s.archives = append(s.archives, out)
		slog.Info("Archive created", logfields.Artifact(filepath.Base(out)))
	}
	return nil
}

// checksum writes a SHA256SUMS file next to the archives.
func (s *Service) checksum(ctx context.Context) error {
	path, err := WriteChecksums(s.cfg.DistDir, s.archives)
	if err != nil {
		return serrors.PublishError("checksum", err)
	}
	slog.Info("Checksums written", logfields.File(filepath.Base(path)))
	return nil
}

func (s *Service) upload(ctx context.Context) error {
	files := append([]string{}, s.archives...)
	files = append(files, filepath.Join(s.cfg.DistDir, ChecksumFileName))
	for _, path := range files {
		if err := s.uploader.Upload(ctx, path, s.project.Name, s.version); err != nil {
			return err
		}
		slog.Info("Artifact uploaded",
			logfields.Artifact(filepath.Base(path)),
			logfields.URL(s.cfg.RegistryURL))
	}
	return nil
}

func (s *Service) storeArtifacts(ctx context.Context) error {
	for _, path := range s.archives {
		data, err := os.ReadFile(path)
		if err != nil {
			return serrors.PublishError("store-artifacts", err)
		}
		hash, err := s.store.Put(ctx, &storage.Archive{
			Name:    filepath.Base(path),
			Version: s.version,
			Data:    data,
		})
		if err != nil {
			return serrors.PublishError("store-artifacts", err)
		}
		slog.Debug("Archive retained", logfields.Artifact(filepath.Base(path)), slog.String("hash", hash))
	}
	return nil
}

// clean removes the build and dist directories.
func (s *Service) clean(ctx context.Context) error {
	for _, ws := range []*workspace.Manager{s.buildWS, s.distWS} {
		if err := ws.Cleanup(); err != nil {
			return serrors.WorkspaceError("clean", err)
		}
	}
	return nil
}

// copyTree copies a file or directory tree from src to dst, skipping
// directories for which skip returns true.
func copyTree(src, dst string, skip func(string) bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}
	return filepath.Walk(src, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() && skip != nil && skip(path) {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if fi.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, fi.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode.Perm())
}
