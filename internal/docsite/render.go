package docsite

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// newMarkdown constructs the shared goldmark instance. GFM extensions cover
// the tables and autolinks commonly used in project documentation.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// RenderMarkdown converts a Markdown body (frontmatter already removed) to HTML.
func RenderMarkdown(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := newMarkdown().Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("markdown conversion failed: %w", err)
	}
	return buf.Bytes(), nil
}
