package dataprep

import (
	"fmt"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/stats"
)

// OutlierBounds are the IQR fences of one column and how many cells fall
// outside them
type OutlierBounds struct {
	Column string  `json:"column"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Count  int     `json:"count"`
}

// OutlierResult summarizes an outlier pass
type OutlierResult struct {
	Strategy    OutlierStrategy
	RowsDropped int
	Replaced    []ColumnCount
}

// Outside reports whether f lies strictly outside the fences
func (b OutlierBounds) Outside(f float64) bool {
	return f < b.Lower || f > b.Upper
}

// ColumnBounds computes the fences of one column using factor k. Missing
// cells are ignored and never counted.
func ColumnBounds(col *dataset.Column, k float64) (OutlierBounds, bool) {
	x := col.Numbers()
	if len(x) == 0 {
		return OutlierBounds{}, false
	}
	lo, hi := stats.Bounds(x, k)
	b := OutlierBounds{Column: col.Name, Lower: lo, Upper: hi}
	for _, f := range x {
		if b.Outside(f) {
			b.Count++
		}
	}
	return b, true
}

// DetectOutliers returns the fences of every named column holding at least
// one outlier, in the given order
func DetectOutliers(ds *dataset.Dataset, names []string, k float64) []OutlierBounds {
	var out []OutlierBounds
	for _, name := range names {
		col, ok := ds.Column(name)
		if !ok || !col.DType().IsNumeric() {
			continue
		}
		if b, ok := ColumnBounds(col, k); ok && b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}

// HandleOutliers applies strategy to the columns flagged by DetectOutliers
func HandleOutliers(ds *dataset.Dataset, names []string, strategy OutlierStrategy, k float64, mode FilterMode) (OutlierResult, error) {
	res := OutlierResult{Strategy: strategy}
	flagged := DetectOutliers(ds, names, k)

	switch strategy {
	case OutlierKeep:
		return res, nil
	case OutlierDropRows:
		res.RowsDropped = dropOutlierRows(ds, flagged, k, mode)
		return res, nil
	case OutlierReplaceMedian:
		for _, b := range flagged {
			col, _ := ds.Column(b.Column)
			n := replaceWithMedian(col, k)
			res.Replaced = append(res.Replaced, ColumnCount{Column: b.Column, Count: n})
		}
		return res, nil
	default:
		return res, fmt.Errorf("unsupported outlier strategy %s", strategy)
	}
}

func dropOutlierRows(ds *dataset.Dataset, flagged []OutlierBounds, k float64, mode FilterMode) int {
	dropped := 0
	if mode == FilterSnapshot {
		return ds.FilterRows(func(row int) bool {
			for _, b := range flagged {
				col, _ := ds.Column(b.Column)
				if f, ok := col.Values[row].Number(); ok && b.Outside(f) {
					return false
				}
			}
			return true
		})
	}
	for _, b := range flagged {
		col, _ := ds.Column(b.Column)
		current, ok := ColumnBounds(col, k)
		if !ok {
			continue
		}
		dropped += ds.FilterRows(func(row int) bool {
			f, ok := col.Values[row].Number()
			return !ok || !current.Outside(f)
		})
	}
	return dropped
}

// replaceWithMedian overwrites outliers with the column median computed
// before replacement. Integer columns keep integer cells when the median is
// whole.
func replaceWithMedian(col *dataset.Column, k float64) int {
	b, ok := ColumnBounds(col, k)
	if !ok {
		return 0
	}
	median := stats.Median(col.Numbers())
	fill := dataset.Float(median)
	if col.DType() == dataset.DTypeInt {
		fill = integral(median)
	}
	n := 0
	for i, cell := range col.Values {
		if f, ok := cell.Number(); ok && b.Outside(f) {
			col.Values[i] = fill
			n++
		}
	}
	return n
}
