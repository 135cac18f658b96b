package taxonomy_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/taxonomy"
)

var columns = []string{"PassengerId", "Survived", "Pclass", "Name", "Sex", "Age"}

func titanic(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.FromColumns(
		dataset.NewColumn("PassengerId", []dataset.Value{dataset.Int(1), dataset.Int(2), dataset.Int(3)}),
		dataset.NewColumn("Survived", []dataset.Value{dataset.Int(0), dataset.Int(1), dataset.Int(1)}),
		dataset.NewColumn("Pclass", []dataset.Value{dataset.Int(3), dataset.Int(1), dataset.Int(3)}),
		dataset.NewColumn("Name", []dataset.Value{dataset.Text("Braund"), dataset.Text("Cumings"), dataset.Text("Heikkinen")}),
		dataset.NewColumn("Sex", []dataset.Value{dataset.Text("male"), dataset.Text("female"), dataset.Text("female")}),
		dataset.NewColumn("Age", []dataset.Value{dataset.Int(22), dataset.Missing(), dataset.Int(26)}),
	)
	require.NoError(t, err)
	return d
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name         string
		features     string
		target       string
		wantFeatures []string
		wantTarget   string
		wantErr      error
	}{
		{
			name:         "valid selection",
			features:     "1,3",
			target:       "4",
			wantFeatures: []string{"PassengerId", "Pclass"},
			wantTarget:   "Name",
		},
		{
			name:         "spaces and duplicates",
			features:     " 5 , 6,5",
			target:       "2",
			wantFeatures: []string{"Sex", "Age"},
			wantTarget:   "Survived",
		},
		{name: "target in features", features: "1,4", target: "4", wantErr: taxonomy.ErrTargetInFeatures},
		{name: "feature out of range", features: "15,2", target: "1", wantErr: taxonomy.ErrIndexOutOfRange},
		{name: "zero index", features: "0", target: "1", wantErr: taxonomy.ErrIndexOutOfRange},
		{name: "target out of range", features: "1", target: "7", wantErr: taxonomy.ErrIndexOutOfRange},
		{name: "letters", features: "a,b", target: "2", wantErr: taxonomy.ErrParse},
		{name: "two targets", features: "1,2", target: "3, 4", wantErr: taxonomy.ErrParse},
		{name: "empty features", features: "", target: "1", wantErr: taxonomy.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features, target, err := taxonomy.Select(columns, tt.features, tt.target)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				var selErr *taxonomy.SelectionError
				assert.True(t, errors.As(err, &selErr))
				assert.Empty(t, features)
				assert.Empty(t, target)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFeatures, features)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}

func TestSelectProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 12).Draw(t, "columns")
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("c%d", i)
		}
		idx := rapid.SliceOfNDistinct(rapid.IntRange(1, n), 1, n, rapid.ID[int]).Draw(t, "features")
		target := rapid.IntRange(1, n).Draw(t, "target")

		parts := make([]string, len(idx))
		for i, v := range idx {
			parts[i] = fmt.Sprint(v)
		}
		features, got, err := taxonomy.Select(names, strings.Join(parts, ","), fmt.Sprint(target))

		inFeatures := false
		for _, v := range idx {
			if v == target {
				inFeatures = true
			}
		}
		if inFeatures {
			if !errors.Is(err, taxonomy.ErrTargetInFeatures) {
				t.Fatalf("expected TargetInFeatures, got %v", err)
			}
			if len(features) != 0 || got != "" {
				t.Fatalf("rejected selection must be empty, got %v / %q", features, got)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, f := range features {
			if f == got {
				t.Fatalf("target %q found among features %v", got, features)
			}
		}
		if len(features) != len(idx) {
			t.Fatalf("got %d features, want %d", len(features), len(idx))
		}
	})
}

func TestClassify(t *testing.T) {
	ds := titanic(t)
	tax, err := taxonomy.Classify(ds, []string{"PassengerId", "Pclass"}, "Name")
	require.NoError(t, err)

	assert.Equal(t, []string{"PassengerId", "Pclass"}, tax.Numeric)
	assert.Equal(t, []string{"Name"}, tax.Categorical)
	assert.Equal(t, []string{"PassengerId", "Pclass", "Name"}, tax.Selected())
	assert.NoError(t, tax.Validate(ds))

	_, err = taxonomy.Classify(ds, []string{"Name"}, "Name")
	assert.ErrorIs(t, err, taxonomy.ErrTargetInFeatures)

	_, err = taxonomy.Classify(ds, []string{"Nope"}, "Name")
	assert.Error(t, err)
}

func TestFeatureKinds(t *testing.T) {
	ds := titanic(t)
	tax, err := taxonomy.Classify(ds, []string{"Age", "Sex", "Pclass"}, "Name")
	require.NoError(t, err)

	assert.Equal(t, []string{"Age", "Pclass"}, tax.NumericFeatures())
	assert.Equal(t, []string{"Sex"}, tax.CategoricalFeatures())
	assert.True(t, tax.IsFeature("Sex"))
	assert.False(t, tax.IsFeature("Name"))
	assert.True(t, tax.IsCategorical("Name"))
}

func TestExpandFeatures(t *testing.T) {
	tax := taxonomy.Taxonomy{
		Features:    []string{"Age", "Sex", "Pclass"},
		Target:      "Fare",
		Numeric:     []string{"Age", "Pclass", "Fare"},
		Categorical: []string{"Sex"},
	}
	next := tax.ExpandFeatures(map[string][]string{"Sex": {"Sex_male", "Sex_female"}})

	assert.Equal(t, []string{"Age", "Sex_male", "Sex_female", "Pclass"}, next.Features)
	assert.Equal(t, []string{"Sex_male", "Sex_female"}, next.Categorical)
	assert.Equal(t, []string{"Age", "Pclass", "Fare"}, next.Numeric)
	assert.Equal(t, "Fare", next.Target)
	assert.Equal(t, []string{"Age", "Sex", "Pclass"}, tax.Features, "receiver is unchanged")
}

func TestRetype(t *testing.T) {
	tax := taxonomy.Taxonomy{
		Features:    []string{"Sex", "Age"},
		Target:      "Name",
		Numeric:     []string{"Age"},
		Categorical: []string{"Sex", "Name"},
	}
	next := tax.Retype([]string{"Sex"}, taxonomy.KindNumeric)
	assert.Equal(t, []string{"Sex", "Age"}, next.Numeric)
	assert.Equal(t, []string{"Name"}, next.Categorical)
	assert.Equal(t, tax.Features, next.Features)
}

func TestValidate(t *testing.T) {
	ds := titanic(t)
	bad := taxonomy.Taxonomy{Features: []string{"Age"}, Target: "Name", Numeric: []string{"Pclass"}}
	assert.Error(t, bad.Validate(ds))

	overlap := taxonomy.Taxonomy{Features: []string{"Age"}, Target: "Name", Numeric: []string{"Age"}, Categorical: []string{"Age"}}
	assert.Error(t, overlap.Validate(ds))

	gone := taxonomy.Taxonomy{Features: []string{"Sex_male"}, Target: "Name"}
	assert.Error(t, gone.Validate(ds))

	assert.True(t, taxonomy.Taxonomy{}.IsEmpty())
}
