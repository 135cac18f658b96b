// Package exporter writes processed datasets to disk.
//
// CSVWriter produces plain CSV with an optional UTF-8 BOM. ExcelWriter
// produces a single-sheet workbook through excelize, keeping numbers numeric.
// Exporter ties both to the session's output directory:
//
//	exp := exporter.New(paths, cfg.Export)
//	path, err := exp.Export(ctx, view.Processed, exporter.FormatCSV, "titanic_clean")
package exporter
