package exporter_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/exporter"
	"github.com/sofiagarciap/preprocesador-datos/internal/ingest"
)

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[]string{"Age", "Sex_male", "Fare", "Embarked"},
		[][]dataset.Value{
			{dataset.Float(0.5), dataset.Int(1), dataset.Float(7.25), dataset.Text("S")},
			{dataset.Float(1), dataset.Int(0), dataset.Float(71.2833), dataset.Missing()},
		},
	)
	require.NoError(t, err)
	return ds
}

func newExporter(t *testing.T, cfg config.ExportConfig) (*exporter.Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	paths := &config.Paths{BaseDir: dir, OutputDir: filepath.Join(dir, "output")}
	return exporter.New(paths, cfg), paths.OutputDir
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want exporter.Format
		err  bool
	}{
		{"csv", exporter.FormatCSV, false},
		{" CSV ", exporter.FormatCSV, false},
		{".xlsx", exporter.FormatExcel, false},
		{"excel", exporter.FormatExcel, false},
		{"json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := exporter.ParseFormat(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, exporter.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportCSV(t *testing.T) {
	exp, out := newExporter(t, config.ExportConfig{Sheet: "Data"})

	path, err := exp.Export(context.Background(), sample(t), exporter.FormatCSV, "clean")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "clean.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Age,Sex_male,Fare,Embarked\n0.5,1,7.25,S\n1,0,71.2833,\n", string(content))
}

func TestExportCSVWithBOM(t *testing.T) {
	exp, _ := newExporter(t, config.ExportConfig{Sheet: "Data", BOM: true})

	path, err := exp.Export(context.Background(), sample(t), exporter.FormatCSV, "clean")
	require.NoError(t, err)

	back, _, err := ingest.Load(context.Background(), path, ingest.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Sex_male", "Fare", "Embarked"}, back.Names())
}

func TestExportExcel(t *testing.T) {
	exp, out := newExporter(t, config.ExportConfig{Sheet: "Processed"})

	path, err := exp.Export(context.Background(), sample(t), exporter.FormatExcel, "clean")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "clean.xlsx"), path)

	sheets, err := ingest.SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Processed"}, sheets)

	back, _, err := ingest.Load(context.Background(), path, ingest.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, back.NumRows())

	sex, ok := back.Column("Sex_male")
	require.True(t, ok)
	assert.Equal(t, dataset.DTypeInt, sex.DType())

	fare, ok := back.Column("Fare")
	require.True(t, ok)
	assert.Equal(t, []float64{7.25, 71.2833}, fare.Numbers())

	embarked, ok := back.Column("Embarked")
	require.True(t, ok)
	assert.True(t, embarked.Values[1].IsMissing())
}

func TestExportRejectsBadNames(t *testing.T) {
	exp, _ := newExporter(t, config.ExportConfig{Sheet: "Data"})
	ctx := context.Background()

	_, err := exp.Export(ctx, sample(t), exporter.FormatCSV, "  ")
	assert.Error(t, err)

	_, err = exp.Export(ctx, sample(t), exporter.FormatCSV, "../escape")
	assert.Error(t, err)

	_, err = exp.Export(ctx, nil, exporter.FormatCSV, "clean")
	assert.Error(t, err)

	_, err = exp.Export(ctx, sample(t), exporter.Format("parquet"), "clean")
	assert.ErrorIs(t, err, exporter.ErrUnknownFormat)
}
