// Package recipe describes a whole preprocessing run in YAML and executes
// it against the same pipeline the interactive menu drives.
//
//	input:
//	  path: data/titanic.csv
//	features: [Sex, Age]
//	target: Fare
//	missing: mean
//	encoding: onehot
//	scaling: minmax
//	outliers: median
//	export:
//	  format: csv
//	  name: titanic_clean
//	plots: [summary, histograms]
package recipe

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/sofiagarciap/preprocesador-datos/internal/validation"
)

// Recipe is one non-interactive run
type Recipe struct {
	Input    Input    `yaml:"input"`
	Features []string `yaml:"features" validate:"min=1,dive,required"`
	Target   string   `yaml:"target" validate:"required"`
	Missing  string   `yaml:"missing" validate:"required,oneof=drop mean median mode constant"`
	Constant string   `yaml:"constant" validate:"required_if=Missing constant"`
	Encoding string   `yaml:"encoding" validate:"required,oneof=onehot label"`
	Scaling  string   `yaml:"scaling" validate:"required,oneof=minmax zscore"`
	Outliers string   `yaml:"outliers" validate:"required,oneof=drop median keep"`
	Export   *Export  `yaml:"export,omitempty"`
	Plots    []string `yaml:"plots" validate:"unique,dive,oneof=summary histograms scatter heatmap"`
}

// Input names the source file and, for workbooks and databases, which
// sheet or table to read
type Input struct {
	Path  string `yaml:"path" validate:"required"`
	Sheet string `yaml:"sheet"`
	Table string `yaml:"table"`
}

// Export is where the processed dataset is written
type Export struct {
	Format string `yaml:"format" validate:"required,oneof=csv excel xlsx"`
	Name   string `yaml:"name" validate:"required"`
}

// Load reads and validates the recipe at path
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a YAML recipe. Unknown keys are rejected.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.UnmarshalStrict(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks every field
func (r *Recipe) Validate() error {
	return validation.Struct("recipe", r)
}

// Wants reports whether the recipe asks for the named plot
func (r *Recipe) Wants(plot string) bool {
	for _, p := range r.Plots {
		if p == plot {
			return true
		}
	}
	return false
}

// selection turns the feature and target references into the 1-based index
// text the selection stage reads. A reference is a column name or, when no
// column has that name, a 1-based index.
func (r *Recipe) selection(columns []string) (features, target string, err error) {
	idx := make([]string, len(r.Features))
	for i, f := range r.Features {
		n, err := indexOf(columns, f)
		if err != nil {
			return "", "", err
		}
		idx[i] = strconv.Itoa(n)
	}
	t, err := indexOf(columns, r.Target)
	if err != nil {
		return "", "", err
	}
	return strings.Join(idx, ","), strconv.Itoa(t), nil
}

func indexOf(columns []string, ref string) (int, error) {
	for i, c := range columns {
		if c == ref {
			return i + 1, nil
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("column %q not found", ref)
}
