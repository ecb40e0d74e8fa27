package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FSStore is a filesystem-backed archive store.
//
// Layout:
//
//	<root>/
//	  objects/
//	    ab/
//	      cdef0123...          archive data
//	      cdef0123....meta.json archive metadata
type FSStore struct {
	root string
	mu   sync.RWMutex
}

type archiveMeta struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFSStore creates a filesystem store rooted at the given directory.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "objects"), 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Put stores an archive, keyed by the SHA-256 of its data. Storing the
// same content twice is a no-op that returns the existing hash.
func (s *FSStore) Put(ctx context.Context, a *Archive) (string, error) {
	if a == nil {
		return "", fmt.Errorf("nil archive")
	}

	sum := sha256.Sum256(a.Data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	dataPath := s.objectPath(hash)
	if _, err := os.Stat(dataPath); err == nil {
		slog.Debug("archive already stored", "hash", hash, "name", a.Name)
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	tmp := dataPath + ".tmp"
	if err := os.WriteFile(tmp, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write archive data: %w", err)
	}
	if err := os.Rename(tmp, dataPath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize archive data: %w", err)
	}

	meta := archiveMeta{
		Name:      a.Name,
		Version:   a.Version,
		Size:      int64(len(a.Data)),
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(dataPath+".meta.json", raw, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	slog.Debug("archive stored", "hash", hash, "name", a.Name, "size", meta.Size)
	return hash, nil
}

// Get retrieves an archive by hash.
func (s *FSStore) Get(ctx context.Context, hash string) (*Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dataPath := s.objectPath(hash)
	data, err := os.ReadFile(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Hash: hash}
		}
		return nil, fmt.Errorf("read archive data: %w", err)
	}

	var meta archiveMeta
	raw, err := os.ReadFile(dataPath + ".meta.json")
	if err == nil {
		if uerr := json.Unmarshal(raw, &meta); uerr != nil {
			return nil, fmt.Errorf("parse metadata: %w", uerr)
		}
	}

	return &Archive{
		Hash:      hash,
		Name:      meta.Name,
		Version:   meta.Version,
		Size:      int64(len(data)),
		Data:      data,
		CreatedAt: meta.CreatedAt,
	}, nil
}

// Exists reports whether an archive with the given hash is stored.
func (s *FSStore) Exists(ctx context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.objectPath(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat archive: %w", err)
}

// Delete removes an archive and its metadata.
func (s *FSStore) Delete(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dataPath := s.objectPath(hash)
	if err := os.Remove(dataPath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound{Hash: hash}
		}
		return fmt.Errorf("remove archive data: %w", err)
	}
	// Metadata is best-effort; the object itself is gone.
	os.Remove(dataPath + ".meta.json")
	return nil
}

// List returns the hashes of all stored archives.
func (s *FSStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hashes []string
	objectsDir := filepath.Join(s.root, "objects")
	err := filepath.WalkDir(objectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".meta.json") || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(objectsDir, path)
		if err != nil {
			return err
		}
		hashes = append(hashes, strings.ReplaceAll(rel, string(filepath.Separator), ""))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk objects: %w", err)
	}
	return hashes, nil
}

// Close is a no-op for the filesystem store.
func (s *FSStore) Close() error {
	return nil
}

func (s *FSStore) objectPath(hash string) string {
	if len(hash) < 2 {
		return filepath.Join(s.root, "objects", hash)
	}
	return filepath.Join(s.root, "objects", hash[:2], hash[2:])
}
