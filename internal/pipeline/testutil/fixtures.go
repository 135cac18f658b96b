package testutil

import (
	"context"
	"testing"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
)

// TitanicColumns is the column order of Titanic, numbered from 1 the way the
// selection prompt shows it
var TitanicColumns = []string{
	"PassengerId", "Survived", "Pclass", "Name", "Sex", "Age",
	"SibSp", "Parch", "Ticket", "Fare", "Cabin", "Embarked",
}

// Titanic returns seven passengers with one missing Age, four missing
// Cabins and a Fare of 1000 that sits far outside the IQR fences
func Titanic(t *testing.T) *dataset.Dataset {
	t.Helper()
	raw := [][]string{
		{"1", "0", "3", "Braund, Mr. Owen Harris", "male", "22", "1", "0", "A/5 21171", "7.25", "", "S"},
		{"2", "1", "1", "Cumings, Mrs. John Bradley (Florence Briggs Thayer)", "female", "38", "1", "0", "PC 17599", "71.2833", "C85", "C"},
		{"3", "1", "3", "Heikkinen, Miss. Laina", "female", "26", "0", "0", "STON/O2. 3101282", "7.925", "", "S"},
		{"4", "1", "1", "Futrelle, Mrs. Jacques Heath (Lily May Peel)", "female", "35", "1", "0", "113803", "53.1", "C123", "S"},
		{"5", "0", "3", "Allen, Mr. William Henry", "male", "35", "0", "0", "373450", "8.05", "", "S"},
		{"6", "0", "3", "Moran, Mr. James", "male", "", "0", "0", "330877", "8.4583", "", "Q"},
		{"7", "0", "1", "McCarthy, Mr. Timothy J", "male", "54", "0", "0", "17463", "1000", "E46", "S"},
	}
	return FromStrings(t, TitanicColumns, raw)
}

// FromStrings builds a dataset from raw cells using the default missing
// markers
func FromStrings(t *testing.T, names []string, raw [][]string) *dataset.Dataset {
	t.Helper()
	rows := make([][]dataset.Value, len(raw))
	for i, r := range raw {
		rows[i] = make([]dataset.Value, len(r))
		for j, cell := range r {
			rows[i][j] = dataset.Parse(cell, dataset.DefaultMissingMarkers)
		}
	}
	ds, err := dataset.New(names, rows)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

// LoadedManager returns a manager holding Titanic
func LoadedManager(t *testing.T) *pipeline.Manager {
	t.Helper()
	m := pipeline.NewManager(nil, nil)
	if err := m.Load(context.Background(), "titanic.csv", Titanic(t)); err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	return m
}

// CompletedView runs every stage on Titanic with features Sex and Age and
// target Fare: mean fill, one-hot, min-max, outliers kept
func CompletedView(t *testing.T) *pipeline.View {
	t.Helper()
	ctx := context.Background()
	m := LoadedManager(t)
	steps := []func() (*pipeline.Report, error){
		func() (*pipeline.Report, error) { return m.SelectColumns(ctx, "5,6", "10") },
		func() (*pipeline.Report, error) { return m.HandleMissing(ctx, dataprep.MissingMean, "") },
		func() (*pipeline.Report, error) { return m.HandleCategoricals(ctx, dataprep.EncodingOneHot) },
		func() (*pipeline.Report, error) { return m.HandleScaling(ctx, dataprep.ScalingMinMax) },
		func() (*pipeline.Report, error) { return m.HandleOutliers(ctx, dataprep.OutlierKeep) },
	}
	for i, step := range steps {
		if _, err := step(); err != nil {
			t.Fatalf("stage %d failed: %v", i+1, err)
		}
	}
	view, err := m.View()
	if err != nil {
		t.Fatalf("failed to get view: %v", err)
	}
	return view
}

// Numbers returns the numeric cells of a column, failing the test if the
// column is absent
func Numbers(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	col, ok := ds.Column(name)
	if !ok {
		t.Fatalf("column %q not found", name)
	}
	return col.Numbers()
}
