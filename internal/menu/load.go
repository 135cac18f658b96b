package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/sofiagarciap/preprocesador-datos/internal/ingest"
)

func (m *Menu) load(ctx context.Context) error {
	m.p.header("Load Data")
	path, err := m.p.ask("Enter the file path (.csv, .xlsx, .db): ")
	if err != nil {
		return err
	}
	if path == "" {
		m.p.println("No file path given.")
		return nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if path, err = m.chooseFile(path); err != nil || path == "" {
			return err
		}
	}

	opts := ingest.OptionsFrom(m.Config.Ingest)
	opts.ChooseTable = m.chooseTable
	ds, format, err := ingest.Load(ctx, path, opts)
	if err != nil {
		if errors.Is(err, errInputClosed) {
			return err
		}
		slog.WarnContext(ctx, "load_failed", slog.String("path", path), slog.String("error", err.Error()))
		switch {
		case errors.Is(err, ingest.ErrNotFound):
			m.p.println("File not found.")
		case errors.Is(err, ingest.ErrUnsupportedFormat):
			m.p.println("Unsupported file format. Use .csv, .xlsx or .db files.")
		default:
			m.p.printf("Error loading %s data: %v\n", format, err)
		}
		return nil
	}

	replaced := m.Manager.Loaded()
	if err := m.Manager.Load(ctx, path, ds); err != nil {
		m.p.println(explain(err))
		return nil
	}
	if replaced {
		m.p.println("The previous dataset and its preprocessing were discarded.")
	}
	m.visualized, m.exported = false, false
	m.Metrics.RecordLoad(ctx, string(format))

	return ingest.Describe(path, format, ds, m.Config.Ingest.PreviewRows).Render(m.p.out)
}

func (m *Menu) chooseTable(tables []string) (string, error) {
	m.p.println("Tables available in the database:")
	for i, t := range tables {
		m.p.printf("  [%d] %s\n", i+1, t)
	}
	answer, err := m.p.ask("Select a table: ")
	if err != nil {
		return "", inputErr(err)
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(tables) {
		return "", fmt.Errorf("invalid table selection %q", answer)
	}
	return tables[n-1], nil
}

// chooseFile lists the data files in dir and returns the one picked, or ""
// when there is nothing to pick or the answer is not a listed number
func (m *Menu) chooseFile(dir string) (string, error) {
	files, err := ingest.Discover(dir)
	if err != nil {
		m.p.printf("Error reading directory: %v\n", err)
		return "", nil
	}
	if len(files) == 0 {
		m.p.println("No supported data files found in that directory.")
		return "", nil
	}
	m.p.printf("Data files in %s:\n", dir)
	for i, f := range files {
		m.p.printf("  [%d] %s (%s)\n", i+1, f.Name, f.Format)
	}
	answer, err := m.p.ask("Select a file: ")
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(files) {
		m.p.println("Invalid file selection.")
		return "", nil
	}
	return files[n-1].Path, nil
}
