// Package taxonomy tracks which dataset columns are features or the target
// and which of those are numeric or categorical.
//
// A Taxonomy is a value: every update returns a new one, so a stage can build
// the next taxonomy completely before the pipeline commits it together with
// the dataset it describes.
package taxonomy

import (
	"fmt"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// Kind is the analytical kind of a column
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Taxonomy partitions the selected columns into roles and kinds
type Taxonomy struct {
	Features    []string `json:"features"`
	Target      string   `json:"target"`
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// Classify builds the taxonomy for a selection, deriving each column's kind
// from its current dtype
func Classify(ds *dataset.Dataset, features []string, target string) (Taxonomy, error) {
	t := Taxonomy{
		Features: append([]string(nil), features...),
		Target:   target,
	}
	if err := t.checkRoles(ds); err != nil {
		return Taxonomy{}, err
	}
	return t.Reclassify(ds), nil
}

// IsEmpty reports whether nothing has been selected
func (t Taxonomy) IsEmpty() bool {
	return len(t.Features) == 0 && t.Target == ""
}

// Selected returns the features followed by the target
func (t Taxonomy) Selected() []string {
	out := append([]string(nil), t.Features...)
	if t.Target != "" {
		out = append(out, t.Target)
	}
	return out
}

// Clone returns a copy that shares no slices with t
func (t Taxonomy) Clone() Taxonomy {
	return Taxonomy{
		Features:    append([]string(nil), t.Features...),
		Target:      t.Target,
		Numeric:     append([]string(nil), t.Numeric...),
		Categorical: append([]string(nil), t.Categorical...),
	}
}

// IsFeature reports whether name is a feature
func (t Taxonomy) IsFeature(name string) bool {
	return contains(t.Features, name)
}

// IsNumeric reports whether name is classified numeric
func (t Taxonomy) IsNumeric(name string) bool {
	return contains(t.Numeric, name)
}

// IsCategorical reports whether name is classified categorical
func (t Taxonomy) IsCategorical(name string) bool {
	return contains(t.Categorical, name)
}

// NumericFeatures returns numeric features in feature order
func (t Taxonomy) NumericFeatures() []string {
	var out []string
	for _, f := range t.Features {
		if t.IsNumeric(f) {
			out = append(out, f)
		}
	}
	return out
}

// CategoricalFeatures returns categorical features in feature order
func (t Taxonomy) CategoricalFeatures() []string {
	var out []string
	for _, f := range t.Features {
		if t.IsCategorical(f) {
			out = append(out, f)
		}
	}
	return out
}

// Reclassify recomputes both kind lists from the dataset's dtypes
func (t Taxonomy) Reclassify(ds *dataset.Dataset) Taxonomy {
	next := Taxonomy{
		Features: append([]string(nil), t.Features...),
		Target:   t.Target,
	}
	for _, name := range next.Selected() {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		if col.DType().IsNumeric() {
			next.Numeric = append(next.Numeric, name)
		} else {
			next.Categorical = append(next.Categorical, name)
		}
	}
	return next
}

// ExpandFeatures replaces each expanded feature by its generated columns at
// the same position. The categorical list becomes exactly the generated
// columns; the numeric list keeps its entries.
func (t Taxonomy) ExpandFeatures(expansions map[string][]string) Taxonomy {
	next := Taxonomy{Target: t.Target}
	for _, f := range t.Features {
		generated, ok := expansions[f]
		if !ok {
			next.Features = append(next.Features, f)
			continue
		}
		next.Features = append(next.Features, generated...)
		next.Categorical = append(next.Categorical, generated...)
	}
	for _, n := range t.Numeric {
		if _, expanded := expansions[n]; !expanded {
			next.Numeric = append(next.Numeric, n)
		}
	}
	return next
}

// Retype moves the named columns to the given kind, keeping selection order
func (t Taxonomy) Retype(names []string, kind Kind) Taxonomy {
	next := t.Clone()
	next.Numeric, next.Categorical = nil, nil
	for _, name := range t.Selected() {
		switch {
		case contains(names, name):
			if kind == KindNumeric {
				next.Numeric = append(next.Numeric, name)
			} else {
				next.Categorical = append(next.Categorical, name)
			}
		case t.IsNumeric(name):
			next.Numeric = append(next.Numeric, name)
		case t.IsCategorical(name):
			next.Categorical = append(next.Categorical, name)
		}
	}
	return next
}

// Validate checks the taxonomy against a dataset: a single target outside
// the features, every selected column present, kind lists drawn from the
// selection
func (t Taxonomy) Validate(ds *dataset.Dataset) error {
	if err := t.checkRoles(ds); err != nil {
		return err
	}
	selected := t.Selected()
	for _, n := range append(append([]string(nil), t.Numeric...), t.Categorical...) {
		if !contains(selected, n) {
			return fmt.Errorf("kind list references unselected column %q", n)
		}
	}
	for _, n := range t.Numeric {
		if contains(t.Categorical, n) {
			return fmt.Errorf("column %q is both numeric and categorical", n)
		}
	}
	return nil
}

func (t Taxonomy) checkRoles(ds *dataset.Dataset) error {
	if t.Target == "" {
		return fmt.Errorf("no target column selected")
	}
	if contains(t.Features, t.Target) {
		return &SelectionError{Kind: TargetInFeatures, Column: t.Target}
	}
	for _, name := range t.Selected() {
		if !ds.Has(name) {
			return fmt.Errorf("column %q not found in dataset", name)
		}
	}
	return nil
}

func contains(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
