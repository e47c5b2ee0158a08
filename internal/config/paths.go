package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths, resolved to absolute form.
type Paths struct {
	BaseDir     string
	DataDir     string
	OutputDir   string
	LogsDir     string
	DBFile      string
	CatalogFile string
}

// GetPaths resolves the configured paths against BaseDir, falling back to
// the current working directory when BaseDir is empty.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:     base,
		DataDir:     resolve(cfg.DataDir, DefaultDataDir),
		OutputDir:   resolve(cfg.OutputDir, DefaultOutputDir),
		LogsDir:     resolve(cfg.LogsDir, DefaultLogsDir),
		DBFile:      resolve(cfg.DBFile, DefaultDBFile),
		CatalogFile: resolve(cfg.CatalogFile, DefaultCatalogFile),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.OutputDir,
		p.LogsDir,
		filepath.Dir(p.DBFile),
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetDataPath returns the path of an input export inside the data directory
func (p *Paths) GetDataPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.DataDir, filename)
}

// GetOutputPath returns the path of a generated artifact
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("db_file", p.DBFile),
		slog.String("catalog_file", p.CatalogFile))
}
