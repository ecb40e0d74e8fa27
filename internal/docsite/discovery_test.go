package docsite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverPages(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "index.md", "---\ntitle: Home\nweight: 1\n---\nWelcome.\n")
	writeDoc(t, src, "guide.md", "---\ntitle: Guide\nweight: 2\n---\n# Guide\n")
	writeDoc(t, src, "api/reference.md", "# API Reference\n")
	writeDoc(t, src, "_partials/skip.md", "# Not a page\n")
	writeDoc(t, src, ".hidden.md", "# Hidden\n")
	writeDoc(t, src, "notes.txt", "not markdown")

	pages, err := NewDiscovery(src).DiscoverPages()
	require.NoError(t, err)
	require.Len(t, pages, 3)

	// Sorted by weight, then title; weightless pages come first by weight 0.
	assert.Equal(t, "API Reference", pages[0].Title)
	assert.Equal(t, "api/reference", pages[0].Slug)
	assert.Equal(t, "Home", pages[1].Title)
	assert.Equal(t, "index", pages[1].Slug)
	assert.Equal(t, "Guide", pages[2].Title)
}

func TestDiscoverPages_SkipsDrafts(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "published.md", "# Published\n")
	writeDoc(t, src, "wip.md", "---\ndraft: true\n---\n# WIP\n")

	pages, err := NewDiscovery(src).DiscoverPages()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Published", pages[0].Title)
}

func TestDiscoverPages_TitleFallbacks(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "from-heading.md", "# Heading Title\nbody\n")
	writeDoc(t, src, "bare-file.md", "no headings here\n")

	pages, err := NewDiscovery(src).DiscoverPages()
	require.NoError(t, err)
	require.Len(t, pages, 2)

	titles := map[string]bool{}
	for _, p := range pages {
		titles[p.Title] = true
	}
	assert.True(t, titles["Heading Title"], "frontmatter-less page takes first heading")
	assert.True(t, titles["bare-file"], "heading-less page takes filename")
}

func TestDiscoverPages_ReadmeIsIndex(t *testing.T) {
	src := t.TempDir()
	writeDoc(t, src, "setup/README.md", "# Setup\n")

	pages, err := NewDiscovery(src).DiscoverPages()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "setup/index", pages[0].Slug)
}

func TestDiscoverPages_MissingSource(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "nope")).DiscoverPages()
	require.Error(t, err)
}
