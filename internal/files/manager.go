package files

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager handles file operations on generated artifacts
type Manager struct {
	basePath string
}

// NewManager creates a new file manager rooted at basePath
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// FileExists checks if a regular file exists
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(m.resolvePath(path))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDirectory ensures a directory exists
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
	}
	return nil
}

// RemoveMatching deletes the files in dir matching a glob pattern and
// returns how many were removed. A missing dir removes nothing.
func (m *Manager) RemoveMatching(dir, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(m.resolvePath(dir), pattern))
	if err != nil {
		return 0, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	removed := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if err := os.Remove(match); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", match, err)
		}
		removed++
	}
	return removed, nil
}

func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.basePath == "" {
		return path
	}
	return filepath.Join(m.basePath, path)
}
