package docsite

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/shipyard/internal/config"
	"git.home.luguber.info/inful/shipyard/internal/logfields"
)

// pageTemplate is the built-in site layout: a nav sidebar plus rendered content.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.SiteTitle}}</title>
<style>
body { display: flex; margin: 0; font-family: system-ui, sans-serif; }
nav { min-width: 220px; padding: 1rem; background: #f6f8fa; height: 100vh; overflow-y: auto; box-sizing: border-box; }
nav a { display: block; padding: 0.2rem 0; color: #0969da; text-decoration: none; }
nav a.active { font-weight: 600; }
main { padding: 2rem; max-width: 52rem; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; }
code { font-family: ui-monospace, monospace; }
</style>
</head>
<body>
<nav>
<strong>{{.SiteTitle}}</strong>
{{range .Nav}}<a href="{{$.BaseURL}}{{.Href}}"{{if eq .Href $.Current}} class="active"{{end}}>{{.Title}}</a>
{{end}}</nav>
<main>
{{.Content}}
</main>
</body>
</html>
`

// NavItem is one entry in the generated site navigation.
type NavItem struct {
	Title string
	Href  string
}

// Generator renders discovered pages into a static HTML site.
type Generator struct {
	cfg    config.DocsConfig
	tmpl   *template.Template
	output string
}

// NewGenerator creates a site generator writing to the configured output directory.
func NewGenerator(cfg config.DocsConfig) (*Generator, error) {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &Generator{cfg: cfg, tmpl: tmpl, output: cfg.Output}, nil
}

// GenerateSite renders all pages and writes the static site. The output
// directory is recreated from scratch on every build.
func (g *Generator) GenerateSite(pages []Page) error {
	if len(pages) == 0 {
		return fmt.Errorf("no documentation pages to render")
	}

	if err := os.RemoveAll(g.output); err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(g.output, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	nav := buildNav(pages)

	for _, page := range pages {
		if err := g.renderPage(page, nav); err != nil {
			return err
		}
	}

	// Without a root index, promote the first page so the site has an entry point.
	rootIndex := filepath.Join(g.output, "index.html")
	if _, err := os.Stat(rootIndex); os.IsNotExist(err) {
		first := pages[0]
		if err := g.writePage(rootIndex, first, nav, hrefFor(first.Slug)); err != nil {
			return err
		}
	}

	slog.Info("Documentation site generated",
		logfields.Path(g.output),
		slog.Int("pages", len(pages)))
	return nil
}

func (g *Generator) renderPage(page Page, nav []NavItem) error {
	outPath := filepath.Join(g.output, filepath.FromSlash(page.Slug)+".html")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	return g.writePage(outPath, page, nav, hrefFor(page.Slug))
}

func (g *Generator) writePage(outPath string, page Page, nav []NavItem, current string) error {
	content, err := RenderMarkdown(page.Body)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", page.RelativePath, err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer f.Close()

	data := struct {
		SiteTitle string
		Title     string
		BaseURL   string
		Current   string
		Nav       []NavItem
		Content   template.HTML
	}{
		SiteTitle: g.cfg.Title,
		Title:     page.Title,
		BaseURL:   strings.TrimSuffix(g.cfg.BaseURL, "/"),
		Current:   current,
		Nav:       nav,
		Content:   template.HTML(content),
	}

	if err := g.tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template for %s: %w", page.RelativePath, err)
	}
	return nil
}

// buildNav assembles the navigation from pages, already sorted by discovery.
func buildNav(pages []Page) []NavItem {
	nav := make([]NavItem, 0, len(pages))
	for _, p := range pages {
		nav = append(nav, NavItem{Title: p.Title, Href: hrefFor(p.Slug)})
	}
	return nav
}

func hrefFor(slug string) string {
	return "/" + slug + ".html"
}
