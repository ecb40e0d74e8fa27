package workspace

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/shipyard/internal/logfields"
)

// Manager owns a directory that pipeline runs write into, such as the
// staging and dist trees of a publish run or the daemon's data directory.
type Manager struct {
	dir string
}

// NewManager creates a manager for the given directory. The directory is
// not touched until Reset or Ensure is called.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Reset wipes and recreates the directory so a run starts from a clean tree.
func (m *Manager) Reset() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to reset workspace directory: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	slog.Debug("Workspace reset", logfields.Path(m.dir))
	return nil
}

// Ensure creates the directory if it is missing, keeping existing contents.
func (m *Manager) Ensure() error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return nil
}

// GetPath returns the managed directory.
func (m *Manager) GetPath() string {
	return m.dir
}

// Cleanup removes the directory and everything in it.
func (m *Manager) Cleanup() error {
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Info("Cleaned up workspace", logfields.Path(m.dir))
	return nil
}
