package docsite

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link represents an extracted link from generated HTML content.
type Link struct {
	URL        string // The URL or path
	Tag        string // HTML tag (a, img, link, script)
	Attribute  string // Attribute containing the link (href, src)
	IsInternal bool   // True if link is internal to the site
}

// ExtractLinksFromReader extracts all links from an HTML reader.
func ExtractLinksFromReader(r io.Reader, baseURL string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	var links []Link
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if l, ok := elementLink(n, base); ok {
				links = append(links, l)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return links, nil
}

func elementLink(n *html.Node, base *url.URL) (Link, bool) {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script":
		attr = "src"
	default:
		return Link{}, false
	}

	val := getAttr(n, attr)
	if val == "" {
		return Link{}, false
	}
	return Link{
		URL:        val,
		Tag:        n.Data,
		Attribute:  attr,
		IsInternal: isInternalLink(val, base),
	}, true
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func isInternalLink(href string, base *url.URL) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Scheme == "mailto" || u.Scheme == "tel" {
		return false
	}
	if u.Host == "" {
		return true
	}
	return base.Host != "" && u.Host == base.Host
}

// VerifyInternalLinks walks the generated site and checks that every internal
// link target exists on disk. It returns the broken links found.
func VerifyInternalLinks(siteDir, baseURL string) ([]Link, error) {
	var broken []Link

	err := filepath.WalkDir(siteDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}

		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return err
		}
		links, lerr := ExtractLinksFromReader(f, baseURL)
		_ = f.Close()
		if lerr != nil {
			return lerr
		}

		for _, l := range links {
			if !l.IsInternal {
				continue
			}
			if !linkTargetExists(siteDir, l.URL) {
				broken = append(broken, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("link verification walk failed: %w", err)
	}
	return broken, nil
}

func linkTargetExists(siteDir, href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" || p == "/" {
		p = "/index.html"
	}
	target := filepath.Join(siteDir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	if _, err := os.Stat(target); err == nil {
		return true
	}
	// Directory-style links resolve to their index page.
	if _, err := os.Stat(filepath.Join(target, "index.html")); err == nil {
		return true
	}
	return false
}
