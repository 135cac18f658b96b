package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// ExcelWriter writes a dataset as a single-sheet workbook with typed cells
type ExcelWriter struct {
	sheet string
}

// NewExcelWriter creates a writer for the named sheet
func NewExcelWriter(sheet string) *ExcelWriter {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &ExcelWriter{sheet: sheet}
}

// WriteDataset writes ds to fullPath. Integers and floats are stored as
// numbers, missing cells are left empty.
func (w *ExcelWriter) WriteDataset(fullPath string, ds *dataset.Dataset) error {
	slog.Debug("excel_write",
		slog.String("full_path", fullPath),
		slog.String("sheet", w.sheet),
		slog.Int("record_count", ds.NumRows()))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if w.sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", w.sheet, err)
		}
	}

	sw, err := f.NewStreamWriter(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", w.sheet, err)
	}

	names := ds.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i := 0; i < ds.NumRows(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, excelRow(ds.Row(i))); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func excelRow(values []dataset.Value) []interface{} {
	row := make([]interface{}, len(values))
	for j, v := range values {
		switch v.Kind() {
		case dataset.KindInt:
			n, _ := v.Int64()
			row[j] = n
		case dataset.KindFloat:
			n, _ := v.Number()
			row[j] = n
		case dataset.KindText:
			row[j] = v.String()
		default:
			row[j] = nil
		}
	}
	return row
}
