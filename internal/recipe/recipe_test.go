package recipe

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/exporter"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline/testutil"
	"github.com/sofiagarciap/preprocesador-datos/internal/visualize"
)

const validRecipe = `
input:
  path: titanic.csv
features: [Sex, Age]
target: Fare
missing: mean
encoding: onehot
scaling: minmax
outliers: keep
export:
  format: csv
  name: titanic_clean
plots: [summary, histograms]
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(validRecipe))
	require.NoError(t, err)
	assert.Equal(t, "titanic.csv", r.Input.Path)
	assert.Equal(t, []string{"Sex", "Age"}, r.Features)
	assert.Equal(t, "Fare", r.Target)
	require.NotNil(t, r.Export)
	assert.Equal(t, "titanic_clean", r.Export.Name)
	assert.True(t, r.Wants("summary"))
	assert.False(t, r.Wants("heatmap"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
	}{
		{"no target", [2]string{"target: Fare\n", ""}, "Recipe.Target failed required"},
		{"unknown encoding", [2]string{"encoding: onehot", "encoding: ordinal"}, "Recipe.Encoding failed oneof"},
		{"constant without value", [2]string{"missing: mean", "missing: constant"}, "Recipe.Constant failed required_if"},
		{"unknown plot", [2]string{"[summary, histograms]", "[summary, pie]"}, "Recipe.Plots[1] failed oneof"},
		{"duplicate plot", [2]string{"[summary, histograms]", "[summary, summary]"}, "Recipe.Plots failed unique"},
		{"no features", [2]string{"[Sex, Age]", "[]"}, "Recipe.Features failed min"},
		{"unknown export format", [2]string{"format: csv", "format: parquet"}, "Recipe.Export.Format failed oneof"},
		{"unknown key", [2]string{"outliers: keep", "outliers: keep\nshuffle: true"}, "failed to parse recipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(validRecipe, tt.replace[0], tt.replace[1], 1)
			_, err := Parse([]byte(data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingRecipe(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSelection(t *testing.T) {
	columns := testutil.TitanicColumns

	r := &Recipe{Features: []string{"Sex", "6"}, Target: "Fare"}
	features, target, err := r.selection(columns)
	require.NoError(t, err)
	assert.Equal(t, "5,6", features)
	assert.Equal(t, "10", target)

	r = &Recipe{Features: []string{"Nope"}, Target: "Fare"}
	_, _, err = r.selection(columns)
	assert.EqualError(t, err, `column "Nope" not found`)
}

type runEnv struct {
	dir    string
	paths  *config.Paths
	runner *Runner
	out    *bytes.Buffer
}

func newRunEnv(t *testing.T) *runEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Visualize.Width, cfg.Visualize.Height = 200, 150
	paths, err := cfg.ResolvePaths(dir)
	require.NoError(t, err)

	headers, records := testutil.Titanic(t).Records()
	require.NoError(t, exporter.NewCSVWriter().WriteCSV(filepath.Join(dir, "titanic.csv"), exporter.WriteOptions{
		Headers: headers,
		Records: records,
	}))

	out := &bytes.Buffer{}
	return &runEnv{
		dir:   dir,
		paths: paths,
		out:   out,
		runner: &Runner{
			Manager:  pipeline.NewManager(nil, pipeline.ConfigFrom(cfg.Pipeline)),
			Config:   cfg,
			Exporter: exporter.New(paths, cfg.Export),
			Renderer: visualize.NewRenderer(cfg.Visualize, paths),
			Out:      out,
		},
	}
}

func (e *runEnv) recipe(t *testing.T, data string) *Recipe {
	t.Helper()
	r, err := Parse([]byte(data))
	require.NoError(t, err)
	r.Input.Path = filepath.Join(e.dir, r.Input.Path)
	return r
}

func TestRun(t *testing.T) {
	env := newRunEnv(t)
	res, err := env.runner.Run(context.Background(), env.recipe(t, validRecipe))
	require.NoError(t, err)

	assert.Equal(t, 7, res.Info.Rows)
	require.Len(t, res.Reports, len(pipeline.Order))
	for i, r := range res.Reports {
		assert.Equal(t, pipeline.Order[i], r.Stage)
		assert.True(t, r.Outcome.Satisfies(), "stage %s", r.Stage)
	}
	assert.True(t, env.runner.Manager.Complete())

	assert.Equal(t, filepath.Join(env.paths.OutputDir, "titanic_clean.csv"), res.Exported)
	data, err := os.ReadFile(res.Exported)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PassengerId,Survived,Pclass,Name,Sex_male,Sex_female,Age,"))

	require.NotEmpty(t, res.Plots)
	for _, p := range res.Plots {
		assert.FileExists(t, p)
	}

	out := env.out.String()
	assert.Contains(t, out, "Data loaded successfully.")
	assert.Contains(t, out, "Numeric variables:")
	assert.Contains(t, out, "Data exported to ")
}

func TestRunStopsAtRefusedStage(t *testing.T) {
	env := newRunEnv(t)
	rec := env.recipe(t, strings.Replace(validRecipe, "target: Fare", "target: \"99\"", 1))

	res, err := env.runner.Run(context.Background(), rec)
	require.Error(t, err)
	testutil.AssertErrorType(t, err, pipeline.ErrorTypeValidation)
	assert.Empty(t, res.Reports)
	assert.Empty(t, res.Exported)
	assert.False(t, env.runner.Manager.Complete())
}

func TestRunMissingInput(t *testing.T) {
	env := newRunEnv(t)
	rec := env.recipe(t, strings.Replace(validRecipe, "path: titanic.csv", "path: nothing.csv", 1))

	_, err := env.runner.Run(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}
