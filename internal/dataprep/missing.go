package dataprep

import (
	"fmt"
	"math"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/stats"
)

// ColumnFill records the value written into one column's gaps
type ColumnFill struct {
	Column string        `json:"column"`
	Filled int           `json:"filled"`
	Value  dataset.Value `json:"-"`
}

// MissingResult summarizes a missing-value pass
type MissingResult struct {
	Strategy    MissingStrategy
	RowsDropped int
	Fills       []ColumnFill
	Warnings    []error
}

// MissingCounts returns the columns among names that have gaps, in the given
// order
func MissingCounts(ds *dataset.Dataset, names []string) []ColumnCount {
	var out []ColumnCount
	for _, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		if n := col.MissingCount(); n > 0 {
			out = append(out, ColumnCount{Column: name, Count: n})
		}
	}
	return out
}

// HandleMissing applies strategy to the named columns of ds in place.
// Columns a fill strategy cannot serve are skipped and reported in
// Warnings; the remaining columns are still filled.
func HandleMissing(ds *dataset.Dataset, names []string, strategy MissingStrategy, constant string) (MissingResult, error) {
	res := MissingResult{Strategy: strategy}
	cols := make([]*dataset.Column, 0, len(names))
	for _, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			return res, fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, col)
	}

	switch strategy {
	case MissingDropRows:
		res.RowsDropped = ds.FilterRows(func(row int) bool {
			for _, c := range cols {
				if c.Values[row].IsMissing() {
					return false
				}
			}
			return true
		})
		return res, nil
	case MissingConstant:
		if constant == "" {
			return res, fmt.Errorf("constant fill requires a value")
		}
	case MissingMean, MissingMedian, MissingMode:
	default:
		return res, fmt.Errorf("unsupported missing-value strategy %s", strategy)
	}

	for _, col := range cols {
		if col.MissingCount() == 0 {
			continue
		}
		fill, err := fillValue(col, strategy, constant)
		if err != nil {
			res.Warnings = append(res.Warnings, err)
			continue
		}
		n := 0
		for i, v := range col.Values {
			if v.IsMissing() {
				col.Values[i] = fill
				n++
			}
		}
		res.Fills = append(res.Fills, ColumnFill{Column: col.Name, Filled: n, Value: fill})
	}
	return res, nil
}

func fillValue(col *dataset.Column, strategy MissingStrategy, constant string) (dataset.Value, error) {
	switch strategy {
	case MissingConstant:
		return dataset.Text(constant), nil
	case MissingMode:
		return modeValue(col)
	}

	if !col.DType().IsNumeric() {
		return dataset.Missing(), &UnsupportedColumnTypeError{Column: col.Name, DType: col.DType(), Strategy: strategy.String()}
	}
	x := col.Numbers()
	if len(x) == 0 {
		return dataset.Missing(), fmt.Errorf("%w: %q", ErrNoValues, col.Name)
	}
	if strategy == MissingMean {
		return dataset.Float(stats.Mean(x)), nil
	}
	return dataset.Float(stats.Median(x)), nil
}

// modeValue picks the most frequent cell; ties go to the smallest value in
// the column's sorted order
func modeValue(col *dataset.Column) (dataset.Value, error) {
	counts := make(map[string]int)
	for _, v := range col.Values {
		if !v.IsMissing() {
			counts[v.String()]++
		}
	}
	best, bestCount := dataset.Missing(), 0
	for _, v := range col.SortedDistinct() {
		if c := counts[v.String()]; c > bestCount {
			best, bestCount = v, c
		}
	}
	if bestCount == 0 {
		return dataset.Missing(), fmt.Errorf("%w: %q", ErrNoValues, col.Name)
	}
	return best, nil
}

// integral converts f to an Int cell when it has no fractional part
func integral(f float64) dataset.Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return dataset.Int(int64(f))
	}
	return dataset.Float(f)
}
