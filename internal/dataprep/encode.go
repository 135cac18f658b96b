package dataprep

import (
	"fmt"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// OneHot replaces each named column by one 0/1 column per distinct value,
// named <column>_<value>, inserted at the original position in
// first-appearance order. A missing cell is 0 in every indicator. It returns
// the generated names per source column.
func OneHot(ds *dataset.Dataset, names []string) (map[string][]string, error) {
	generated := make(map[string][]string, len(names))
	for _, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		distinct := col.Distinct()
		dummies := make([]*dataset.Column, 0, len(distinct))
		for _, v := range distinct {
			key := v.String()
			values := make([]dataset.Value, col.Len())
			for i, cell := range col.Values {
				if !cell.IsMissing() && cell.String() == key {
					values[i] = dataset.Int(1)
				} else {
					values[i] = dataset.Int(0)
				}
			}
			dummies = append(dummies, dataset.NewColumn(name+"_"+key, values))
		}
		if err := ds.ReplaceColumn(name, dummies...); err != nil {
			return nil, fmt.Errorf("one-hot %q: %w", name, err)
		}
		out := make([]string, len(dummies))
		for i, d := range dummies {
			out[i] = d.Name
		}
		generated[name] = out
	}
	return generated, nil
}

// Label replaces each named column's values by integer codes 0..k-1 assigned
// in sorted order of the distinct values. Missing cells stay missing. It
// returns the value-to-code mapping per column.
func Label(ds *dataset.Dataset, names []string) (map[string]map[string]int, error) {
	mappings := make(map[string]map[string]int, len(names))
	for _, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		codes := make(map[string]int)
		for i, v := range col.SortedDistinct() {
			codes[v.String()] = i
		}
		for i, cell := range col.Values {
			if cell.IsMissing() {
				continue
			}
			col.Values[i] = dataset.Int(int64(codes[cell.String()]))
		}
		mappings[name] = codes
	}
	return mappings, nil
}
