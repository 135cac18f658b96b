// Package ingest loads tabular datasets from CSV, Excel and SQLite files.
//
// Every reader yields a *dataset.Dataset whose cells are typed by
// dataset.Parse, so "35" becomes an integer, "7.25" a float and any of the
// configured missing markers a missing cell, whatever the source format.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// Format is a supported source format
type Format string

const (
	FormatCSV    Format = "csv"
	FormatExcel  Format = "excel"
	FormatSQLite Format = "sqlite"
)

var (
	// ErrNotFound is returned when the source file does not exist
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned for an unknown file extension
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmpty is returned when a source holds no header row
	ErrEmpty = errors.New("source has no columns")
)

// Options controls how sources are read
type Options struct {
	MissingMarkers []string
	Delimiter      rune
	// Sheet is the Excel sheet to read; empty means the first sheet
	Sheet string
	// Table is the SQLite table to read; empty means ask ChooseTable
	Table string
	// ChooseTable picks one of the listed SQLite tables
	ChooseTable func(tables []string) (string, error)
}

// DefaultOptions returns comma-separated reading with the default markers
func DefaultOptions() Options {
	return Options{
		MissingMarkers: dataset.DefaultMissingMarkers,
		Delimiter:      ',',
	}
}

// OptionsFrom builds reading options from the application settings
func OptionsFrom(c config.IngestConfig) Options {
	opts := DefaultOptions()
	if c.MissingMarkers != nil {
		opts.MissingMarkers = c.MissingMarkers
	}
	if r := []rune(c.Delimiter); len(r) > 0 {
		opts.Delimiter = r[0]
	}
	opts.Sheet = c.Sheet
	opts.Table = c.Table
	return opts
}

func (o Options) markers() []string {
	if o.MissingMarkers == nil {
		return dataset.DefaultMissingMarkers
	}
	return o.MissingMarkers
}

// DetectFormat maps a file extension onto a format
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the file at path, choosing the reader from its extension
func Load(ctx context.Context, path string, opts Options) (*dataset.Dataset, Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, format, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, format, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var ds *dataset.Dataset
	switch format {
	case FormatCSV:
		ds, err = LoadCSV(path, opts)
	case FormatExcel:
		ds, err = LoadExcel(path, opts)
	case FormatSQLite:
		ds, err = LoadSQLite(ctx, path, opts)
	}
	if err != nil {
		return nil, format, err
	}

	slog.InfoContext(ctx, "source_read",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", ds.NumRows()),
		slog.Int("columns", ds.NumColumns()))
	return ds, format, nil
}

// build turns a header and raw string rows into a dataset. Short rows are
// padded with missing cells; blank and repeated header names are made
// unique.
func build(header []string, rows [][]string, markers []string) (*dataset.Dataset, error) {
	if len(header) == 0 {
		return nil, ErrEmpty
	}
	names := uniqueNames(header)
	cells := make([][]dataset.Value, len(rows))
	for i, raw := range rows {
		if len(raw) > len(names) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(raw), len(names))
		}
		row := make([]dataset.Value, len(names))
		for j := range names {
			if j < len(raw) {
				row[j] = dataset.Parse(raw[j], markers)
			} else {
				row[j] = dataset.Missing()
			}
		}
		cells[i] = row
	}
	return dataset.New(names, cells)
}

func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
