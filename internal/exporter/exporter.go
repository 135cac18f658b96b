package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// Format is an export file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names
var ErrUnknownFormat = errors.New("unknown export format")

// Extension returns the file extension written for the format
func (f Format) Extension() string {
	if f == FormatExcel {
		return ".xlsx"
	}
	return ".csv"
}

// ParseFormat accepts a format name or extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Exporter writes datasets into the configured output directory
type Exporter struct {
	paths *config.Paths
	cfg   config.ExportConfig
	csv   *CSVWriter
	excel *ExcelWriter
}

// New creates an exporter writing under paths.OutputDir
func New(paths *config.Paths, cfg config.ExportConfig) *Exporter {
	return &Exporter{
		paths: paths,
		cfg:   cfg,
		csv:   NewCSVWriter(),
		excel: NewExcelWriter(cfg.Sheet),
	}
}

// Export writes ds as base name plus the format's extension and returns the
// written path
func (e *Exporter) Export(ctx context.Context, ds *dataset.Dataset, format Format, base string) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("no dataset to export")
	}
	path, err := e.paths.ExportPath(base, format.Extension())
	if err != nil {
		return "", err
	}

	switch format {
	case FormatCSV:
		headers, records := ds.Records()
		err = e.csv.WriteCSV(path, WriteOptions{
			Headers:   headers,
			Records:   records,
			BOMPrefix: e.cfg.BOM,
		})
	case FormatExcel:
		err = e.excel.WriteDataset(path, ds)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", path, err)
	}

	slog.InfoContext(ctx, "dataset_exported",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", ds.NumRows()),
		slog.Int("columns", ds.NumColumns()))
	return path, nil
}
