package docsite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<html><body>
<a href="/guide.html">guide</a>
<a href="https://example.com/external">external</a>
<a href="mailto:team@example.com">mail</a>
<img src="/img/logo.png">
<link href="/style.css" rel="stylesheet">
<script src="https://cdn.example.net/lib.js"></script>
</body></html>`

func TestExtractLinksFromReader(t *testing.T) {
	links, err := ExtractLinksFromReader(strings.NewReader(sampleHTML), "https://docs.example.com/")
	require.NoError(t, err)
	require.Len(t, links, 6)

	byURL := map[string]Link{}
	for _, l := range links {
		byURL[l.URL] = l
	}

	assert.True(t, byURL["/guide.html"].IsInternal)
	assert.Equal(t, "a", byURL["/guide.html"].Tag)
	assert.False(t, byURL["https://example.com/external"].IsInternal)
	assert.False(t, byURL["mailto:team@example.com"].IsInternal)
	assert.True(t, byURL["/img/logo.png"].IsInternal)
	assert.Equal(t, "src", byURL["/img/logo.png"].Attribute)
	assert.True(t, byURL["/style.css"].IsInternal)
	assert.False(t, byURL["https://cdn.example.net/lib.js"].IsInternal)
}

func TestExtractLinks_SameHostIsInternal(t *testing.T) {
	html := `<a href="https://docs.example.com/page.html">x</a>`
	links, err := ExtractLinksFromReader(strings.NewReader(html), "https://docs.example.com/")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, links[0].IsInternal)
}

func TestVerifyInternalLinks(t *testing.T) {
	site := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(site, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("index.html", `<a href="/guide.html">ok</a><a href="/missing.html">broken</a>`)
	write("guide.html", `<a href="/">root ok</a>`)

	broken, err := VerifyInternalLinks(site, "/")
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, "/missing.html", broken[0].URL)
}

func TestVerifyInternalLinks_DirectoryIndex(t *testing.T) {
	site := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(site, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(site, "api", "index.html"), []byte("<p>api</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte(`<a href="/api">api</a>`), 0o644))

	broken, err := VerifyInternalLinks(site, "/")
	require.NoError(t, err)
	assert.Empty(t, broken)
}
