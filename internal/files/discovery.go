package files

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCharts lists the PNG chart attachments in dir, sorted by name.
func (d *Discovery) FindCharts(dir string) ([]FileInfo, error) {
	return d.FindByExtensions(dir, ".png")
}

// FindInputs lists the exports the loader can read, sorted by name.
func (d *Discovery) FindInputs(dir string) ([]FileInfo, error) {
	return d.FindByExtensions(dir, ".csv", ".txt", ".xlsx", ".xlsm")
}

// FindByExtensions lists regular files in dir whose extension matches one
// of exts, case-insensitively, sorted by name.
func (d *Discovery) FindByExtensions(dir string, exts ...string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !slices.Contains(exts, strings.ToLower(filepath.Ext(name))) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// CaptionFor returns the message caption for a chart file name: the group-by
// part of {kind}_{group_by}_{indicator}.png.
func CaptionFor(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return base
	}
	return parts[1]
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
