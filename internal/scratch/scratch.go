package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Manager hands out per-request workspace directories under a single root.
type Manager struct {
	root string
}

// NewManager ensures root exists and returns a Manager for it.
func NewManager(root string) (*Manager, error) {
	if root == "" {
		return nil, errors.New("scratch root required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scratch root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}
	return &Manager{root: abs}, nil
}

// Root returns the absolute scratch root.
func (m *Manager) Root() string {
	return m.root
}

// Acquire creates a fresh workspace directory owned by one request.
func (m *Manager) Acquire() (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.root, id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// Workspace is a directory holding one upload and everything derived from it.
type Workspace struct {
	ID  string
	Dir string

	once sync.Once
	err  error
}

// Path joins name onto the workspace directory. name must already be sanitized.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, filepath.Base(name))
}

// Release removes the workspace and its contents. Safe to call more than once.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.Dir); err != nil {
			w.err = fmt.Errorf("remove workspace %s: %w", w.ID, err)
		}
	})
	return w.err
}
