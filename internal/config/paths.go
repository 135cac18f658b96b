package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved output locations of a session
type Paths struct {
	BaseDir   string
	OutputDir string
	PlotsDir  string
	LogsDir   string
}

// ResolvePaths makes every configured directory absolute, relative to base.
// An empty base uses the working directory.
func (c *Config) ResolvePaths(base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}
	return &Paths{
		BaseDir:   base,
		OutputDir: abs(c.Paths.OutputDir),
		PlotsDir:  abs(c.Paths.PlotsDir),
		LogsDir:   abs(c.Paths.LogsDir),
	}, nil
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.PlotsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns the file for an export base name and extension. The
// base name may not leave the output directory.
func (p *Paths) ExportPath(base, ext string) (string, error) {
	return within(p.OutputDir, base, ext)
}

// PlotPath returns the PNG file for a plot name
func (p *Paths) PlotPath(name string) (string, error) {
	return within(p.PlotsDir, name, ".png")
}

func within(dir, base, ext string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("file name cannot be empty")
	}
	if filepath.IsAbs(base) {
		return base + ext, nil
	}
	full := filepath.Join(dir, base+ext)
	rel, err := filepath.Rel(dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file name %q escapes %s", base, dir)
	}
	return full, nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Debug("paths_resolved",
		slog.String("base_dir", p.BaseDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("plots_dir", p.PlotsDir),
		slog.String("logs_dir", p.LogsDir))
}
