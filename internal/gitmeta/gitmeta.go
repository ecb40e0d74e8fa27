// Package gitmeta derives release version metadata from the project's git
// repository: nearest tag, HEAD commit, and working-tree dirtiness.
package gitmeta

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info captures the repository state used for version derivation.
type Info struct {
	Commit  string // Full HEAD commit SHA
	Tag     string // Tag pointing at HEAD ("" when untagged)
	Dirty   bool   // True when the working tree has uncommitted changes
	Version string // Derived version string
}

// Describe inspects the git repository at repoPath and derives a version.
//
// Versioning rules:
//   - HEAD exactly at a tag, clean tree: the tag itself (v1.2.3)
//   - otherwise: 0.0.0-dev+<short-sha>, with a ".dirty" suffix for
//     uncommitted changes
func Describe(repoPath string) (*Info, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit := head.Hash().String()

	tag, err := tagAt(repo, head.Hash())
	if err != nil {
		return nil, err
	}

	dirty, err := isDirty(repo)
	if err != nil {
		return nil, err
	}

	info := &Info{Commit: commit, Tag: tag, Dirty: dirty}
	info.Version = deriveVersion(info)
	return info, nil
}

// tagAt returns the name of a tag pointing at the given commit, if any.
func tagAt(repo *git.Repository, hash plumbing.Hash) (string, error) {
	tags, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}
	defer tags.Close()

	var found string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		// Annotated tags point at a tag object; resolve to the commit.
		if obj, terr := repo.TagObject(ref.Hash()); terr == nil {
			target = obj.Target
		}
		if target == hash {
			found = ref.Name().Short()
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("iterate tags: %w", err)
	}
	return found, nil
}

func isDirty(repo *git.Repository) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("read worktree status: %w", err)
	}
	return !status.IsClean(), nil
}

func deriveVersion(info *Info) string {
	if info.Tag != "" && !info.Dirty {
		return info.Tag
	}

	short := info.Commit
	if len(short) > 8 {
		short = short[:8]
	}
	v := "0.0.0-dev+" + short
	if info.Dirty {
		v += ".dirty"
	}
	return v
}

// ShortCommit returns the abbreviated commit SHA.
func (i *Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// String renders a human-readable summary.
func (i *Info) String() string {
	parts := []string{i.Version, i.ShortCommit()}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, " ")
}
