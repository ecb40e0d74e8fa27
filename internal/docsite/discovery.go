package docsite

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/shipyard/internal/logfields"
)

// Page represents a discovered documentation source file.
type Page struct {
	Path         string // Absolute path to the file
	RelativePath string // Path relative to the docs source directory
	Title        string
	Slug         string
	Weight       int
	Draft        bool
	Body         []byte // Markdown body with frontmatter removed
}

// Discovery walks a docs source tree and loads Markdown pages.
type Discovery struct {
	source string
}

// NewDiscovery creates a discovery rooted at the docs source directory.
func NewDiscovery(source string) *Discovery {
	return &Discovery{source: source}
}

// DiscoverPages finds all Markdown files under the source directory.
// Hidden files and directories (dot or underscore prefixed) are skipped,
// as are pages marked draft in their frontmatter.
func (d *Discovery) DiscoverPages() ([]Page, error) {
	info, err := os.Stat(d.source)
	if err != nil {
		return nil, fmt.Errorf("docs source directory not found: %s", d.source)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docs source is not a directory: %s", d.source)
	}

	var pages []Page
	err = filepath.WalkDir(d.source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}

		page, err := d.loadPage(path)
		if err != nil {
			slog.Warn("Skipping unreadable page", logfields.File(path), logfields.Error(err))
			return nil
		}
		if page.Draft {
			slog.Debug("Skipping draft page", logfields.File(path))
			return nil
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs source: %w", err)
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Weight != pages[j].Weight {
			return pages[i].Weight < pages[j].Weight
		}
		return pages[i].Title < pages[j].Title
	})

	slog.Info("Documentation discovery completed", slog.Int("pages", len(pages)))
	return pages, nil
}

func (d *Discovery) loadPage(path string) (Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Page{}, err
	}

	meta, body, _, err := SplitFrontmatter(content)
	if err != nil {
		return Page{}, err
	}

	rel, err := filepath.Rel(d.source, path)
	if err != nil {
		return Page{}, err
	}

	title := meta.Title
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	slug := slugForPage(rel, title)

	return Page{
		Path:         path,
		RelativePath: rel,
		Title:        title,
		Slug:         slug,
		Weight:       meta.Weight,
		Draft:        meta.Draft,
		Body:         body,
	}, nil
}

// slugForPage derives the output slug from the relative path. index.md and
// README.md map to the directory index.
func slugForPage(rel, title string) string {
	base := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	dir := filepath.Dir(rel)

	if strings.EqualFold(base, "index") || strings.EqualFold(base, "readme") {
		if dir == "." {
			return "index"
		}
		return slugifyPath(dir) + "/index"
	}

	slug := Slugify(base)
	if slug == "" {
		slug = Slugify(title)
	}
	if dir == "." {
		return slug
	}
	return slugifyPath(dir) + "/" + slug
}

// slugifyPath slugifies each path element separately, preserving the hierarchy.
func slugifyPath(p string) string {
	parts := strings.Split(filepath.ToSlash(p), "/")
	for i := range parts {
		parts[i] = Slugify(parts[i])
	}
	return strings.Join(parts, "/")
}

// firstHeading returns the text of the first level-1 ATX heading, if any.
func firstHeading(body []byte) string {
	for _, line := range bytes.Split(body, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("# ")) {
			return string(bytes.TrimSpace(trimmed[2:]))
		}
	}
	return ""
}
