package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pixelart/internal/logging"
)

// Workspace is the scoped temp directory holding a run's intermediates.
type Workspace struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// New creates a fresh temp directory under base (or the system temp dir when
// base is empty).
func New(base string) (*Workspace, error) {
	dir, err := os.MkdirTemp(base, "pixelart-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	logging.Debug("Workspace created: %s", dir)
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the path of a named artifact inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// MkdirAll creates a named subdirectory inside the workspace and returns its
// path.
func (w *Workspace) MkdirAll(name string) (string, error) {
	p := w.Path(name)
	if err := os.MkdirAll(p, 0755); err != nil {
		return "", fmt.Errorf("creating workspace subdirectory: %w", err)
	}
	return p, nil
}

// Close removes the workspace directory and everything in it. Safe to call
// more than once.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	logging.Debug("Cleaning up intermediate files in %s", w.dir)
	if err := os.RemoveAll(w.dir); err != nil {
		logging.Warn("failed to remove workspace %s: %v", w.dir, err)
		return err
	}
	return nil
}
