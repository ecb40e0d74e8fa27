// Package storage provides content-addressable retention for published
// release archives. Archives are stored by SHA-256 so re-publishing an
// identical artifact never duplicates data.
package storage

import (
	"context"
	"time"
)

// ArchiveStore retains release archives by content hash.
type ArchiveStore interface {
	// Put stores an archive and returns its content hash.
	// If the archive already exists, it returns the existing hash without writing.
	Put(ctx context.Context, a *Archive) (hash string, err error)

	// Get retrieves an archive by its content hash.
	// Returns ErrNotFound if the archive doesn't exist.
	Get(ctx context.Context, hash string) (*Archive, error)

	// Exists checks if an archive with the given hash exists.
	Exists(ctx context.Context, hash string) (bool, error)

	// Delete removes an archive by its content hash.
	Delete(ctx context.Context, hash string) error

	// List returns all stored archive hashes.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Archive represents a stored release artifact with its metadata.
type Archive struct {
	// Hash is the content hash (SHA256) of the data.
	Hash string

	// Name is the original artifact filename (myproject-v1.2.3.tar.gz).
	Name string

	// Version is the release version the archive was published under.
	Version string

	// Size is the size of the data in bytes.
	Size int64

	// Data is the archive content.
	Data []byte

	// CreatedAt is when the archive was first stored.
	CreatedAt time.Time
}

// ErrNotFound is returned when an archive doesn't exist.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	return "archive not found: " + e.Hash
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
