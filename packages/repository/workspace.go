package repository

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const workspacePrefix = "repo-analyzer-"

// Workspace is a uniquely named temporary directory owned by one request.
// Callers defer Close immediately after NewWorkspace.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh directory under baseDir, or under the system
// temp dir when baseDir is empty.
func NewWorkspace(baseDir string) (*Workspace, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating workspace base: %w", err)
		}
	}
	dir, err := os.MkdirTemp(baseDir, workspacePrefix)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("removing workspace %s: %w", w.Dir, err)
	}
	slog.Debug("Cleaned up workspace", "dir", w.Dir)
	return nil
}

// Key returns the object key for path: its slash-separated location
// relative to the workspace root.
func (w *Workspace) Key(path string) (string, error) {
	return RelativeKey(w.Dir, path)
}

// RelativeKey returns path relative to root with forward slashes.
func RelativeKey(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relativizing %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}
