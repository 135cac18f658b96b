package dataprep

import (
	"fmt"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/stats"
)

// ColumnScale records the parameters used to rescale one column
type ColumnScale struct {
	Column     string  `json:"column"`
	Offset     float64 `json:"offset"`
	Spread     float64 `json:"spread"`
	Degenerate bool    `json:"degenerate"`
}

// Scale rescales the named numeric columns in place. Min-max maps each
// column onto [0, 1]; z-score centers on the mean with unit population
// standard deviation. A column with zero spread maps to 0. Missing cells
// stay missing.
func Scale(ds *dataset.Dataset, names []string, strategy ScalingStrategy) ([]ColumnScale, error) {
	if strategy != ScalingMinMax && strategy != ScalingZScore {
		return nil, fmt.Errorf("unsupported scaling strategy %s", strategy)
	}
	var out []ColumnScale
	for _, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		if !col.DType().IsNumeric() {
			return nil, &UnsupportedColumnTypeError{Column: name, DType: col.DType(), Strategy: strategy.String()}
		}
		x := col.Numbers()
		if len(x) == 0 {
			continue
		}

		var offset, spread float64
		if strategy == ScalingMinMax {
			lo, hi := stats.MinMax(x)
			offset, spread = lo, hi-lo
		} else {
			offset, spread = stats.Mean(x), stats.Std(x)
		}
		degenerate := spread == 0
		for i, cell := range col.Values {
			f, ok := cell.Number()
			if !ok {
				continue
			}
			if degenerate {
				col.Values[i] = dataset.Float(0)
				continue
			}
			col.Values[i] = dataset.Float((f - offset) / spread)
		}
		out = append(out, ColumnScale{Column: name, Offset: offset, Spread: spread, Degenerate: degenerate})
	}
	return out, nil
}
