package docsite

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta holds the recognized frontmatter fields of a documentation page.
type Meta struct {
	Title  string `yaml:"title,omitempty"`
	Weight int    `yaml:"weight,omitempty"`
	Draft  bool   `yaml:"draft,omitempty"`
}

// ErrMissingClosingDelimiter reports an opened but unterminated frontmatter block.
var ErrMissingClosingDelimiter = errors.New("frontmatter: missing closing delimiter")

// SplitFrontmatter separates YAML frontmatter (`---` delimited) from the
// Markdown body. If the document does not start with a frontmatter delimiter,
// had is false and body is the full input.
func SplitFrontmatter(content []byte) (meta Meta, body []byte, had bool, err error) {
	// Windows-authored files use CRLF; normalize so the delimiters match.
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	open := []byte("---\n")
	if !bytes.HasPrefix(content, open) {
		return Meta{}, content, false, nil
	}

	rest := content[len(open):]
	closeSeq := []byte("\n---\n")

	if bytes.HasPrefix(rest, []byte("---\n")) {
		// Empty frontmatter block.
		return Meta{}, rest[len("---\n"):], true, nil
	}

	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return Meta{}, nil, false, ErrMissingClosingDelimiter
	}

	raw := rest[:idx+1]
	body = rest[idx+len(closeSeq):]

	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return Meta{}, nil, false, fmt.Errorf("frontmatter: invalid YAML: %w", err)
	}
	return meta, body, true, nil
}
