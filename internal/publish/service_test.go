package publish

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/shipyard/internal/config"
	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
	"git.home.luguber.info/inful/shipyard/internal/pipeline"
	"git.home.luguber.info/inful/shipyard/internal/storage"
)

func testProjectRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# demo\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.md"), []byte("guide\n"), 0o644))
	return root
}

func testPublishConfig() config.PublishConfig {
	return config.PublishConfig{
		BuildDir: "build",
		DistDir:  "dist",
		Include:  []string{"README.md", "docs"},
		Formats:  []string{"tar.gz", "zip"},
	}
}

func TestPublishTargetProducesArchives(t *testing.T) {
	root := testProjectRoot(t)
	project := config.ProjectConfig{Name: "demo", Version: "v1.2.3"}

	svc := NewService(root, project, testPublishConfig(),
		WithSkipUpload(), WithKeepArtifacts())

	result, err := pipeline.NewExecutor().Execute(context.Background(), svc.Target())
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomeSuccess, result.Outcome)
	assert.Equal(t, "v1.2.3", svc.Version())

	dist := filepath.Join(root, "dist")
	for _, name := range []string{"demo-v1.2.3.tar.gz", "demo-v1.2.3.zip", ChecksumFileName} {
		_, err := os.Stat(filepath.Join(dist, name))
		assert.NoError(t, err, name)
	}
	assert.Len(t, svc.Archives(), 2)
}

func TestPublishTargetCleansArtifacts(t *testing.T) {
	root := testProjectRoot(t)
	project := config.ProjectConfig{Name: "demo", Version: "v1.0.0"}

	svc := NewService(root, project, testPublishConfig(), WithSkipUpload())

	_, err := pipeline.NewExecutor().Execute(context.Background(), svc.Target())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "build"))
	assert.True(t, os.IsNotExist(err), "build dir should be removed")
	_, err = os.Stat(filepath.Join(root, "dist"))
	assert.True(t, os.IsNotExist(err), "dist dir should be removed")
}

func tarEntries(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	return names
}

func TestPublishTargetStagingExcludesOwnArtifacts(t *testing.T) {
	root := testProjectRoot(t)
	project := config.ProjectConfig{Name: "demo", Version: "v1.0.0"}

	cfg := testPublishConfig()
	cfg.Include = []string{"."}
	cfg.Formats = []string{"tar.gz"}

	// Two consecutive runs with kept artifacts: the second must not pack
	// the first run's build or dist trees into the new archive.
	for i := 0; i < 2; i++ {
		svc := NewService(root, project, cfg, WithSkipUpload(), WithKeepArtifacts())
		_, err := pipeline.NewExecutor().Execute(context.Background(), svc.Target())
		require.NoError(t, err)
	}

	_, err := os.Stat(filepath.Join(root, "build", "build"))
	assert.True(t, os.IsNotExist(err), "staging copied the build tree into itself")

	names := tarEntries(t, filepath.Join(root, "dist", "demo-v1.0.0.tar.gz"))
	for _, name := range names {
		assert.False(t, strings.HasPrefix(name, "build/"), "archive contains %s", name)
		assert.False(t, strings.HasPrefix(name, "dist/"), "archive contains %s", name)
	}
	assert.Contains(t, names, "README.md")
	assert.Contains(t, names, "docs/guide.md")
}

func TestPublishTargetUploadsToRegistry(t *testing.T) {
	root := testProjectRoot(t)
	project := config.ProjectConfig{Name: "demo", Version: "v2.0.0"}

	var uploads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cfg := testPublishConfig()
	cfg.RegistryURL = srv.URL
	cfg.Formats = []string{"tar.gz"}

	svc := NewService(root, project, cfg, WithKeepArtifacts())
	_, err := pipeline.NewExecutor().Execute(context.Background(), svc.Target())
	require.NoError(t, err)

	// One archive plus the checksum manifest.
	assert.Equal(t, int32(2), uploads.Load())
}

func TestPublishTargetRetainsArchives(t *testing.T) {
	root := testProjectRoot(t)
	project := config.ProjectConfig{Name: "demo", Version: "v1.0.0"}

	store, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	cfg := testPublishConfig()
	cfg.Formats = []string{"tar.gz"}

	svc := NewService(root, project, cfg,
		WithSkipUpload(), WithArchiveStore(store))
	_, err = pipeline.NewExecutor().Execute(context.Background(), svc.Target())
	require.NoError(t, err)

	hashes, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, hashes, 1)
}

func TestPublishTargetEmptyIncludeFails(t *testing.T) {
	root := testProjectRoot(t)
	project := config.ProjectConfig{Name: "demo", Version: "v1.0.0"}

	cfg := testPublishConfig()
	cfg.Include = nil

	svc := NewService(root, project, cfg, WithSkipUpload())
	_, err := pipeline.NewExecutor().Execute(context.Background(), svc.Target())
	require.Error(t, err)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryConfig))
}

func TestPublishTargetKeepArtifactsFromConfig(t *testing.T) {
	root := testProjectRoot(t)
	project := config.ProjectConfig{Name: "demo", Version: "v1.0.0"}

	cfg := testPublishConfig()
	cfg.KeepArtifacts = true

	svc := NewService(root, project, cfg, WithSkipUpload())
	for _, step := range svc.Target().Steps {
		assert.NotEqual(t, "clean", step.Name)
	}
}
