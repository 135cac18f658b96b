package dataset

import (
	"fmt"
)

// ColumnInfo describes one column for ingestion and rendering layers
type ColumnInfo struct {
	Name  string `json:"name"`
	DType DType  `json:"dtype"`
}

// Dataset is an ordered collection of equally long named columns
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates a dataset from column names and row-major cells
func New(names []string, rows [][]Value) (*Dataset, error) {
	cols := make([]*Column, len(names))
	for j, name := range names {
		values := make([]Value, len(rows))
		for i, row := range rows {
			if len(row) != len(names) {
				return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(names))
			}
			values[i] = row[j]
		}
		cols[j] = NewColumn(name, values)
	}
	return FromColumns(cols...)
}

// FromColumns creates a dataset from columns of equal length and unique names
func FromColumns(cols ...*Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), d.rows)
		}
		d.index[c.Name] = i
		d.columns = append(d.columns, c)
	}
	return d, nil
}

// NumRows returns the row count
func (d *Dataset) NumRows() int { return d.rows }

// NumColumns returns the column count
func (d *Dataset) NumColumns() int { return len(d.columns) }

// Names returns the column names in order
func (d *Dataset) Names() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns name and dtype of every column in order
func (d *Dataset) Schema() []ColumnInfo {
	info := make([]ColumnInfo, len(d.columns))
	for i, c := range d.columns {
		info[i] = ColumnInfo{Name: c.Name, DType: c.DType()}
	}
	return info
}

// Has reports whether a column exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a column by name
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// Row returns the cells of one row in column order
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.columns))
	for j, c := range d.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy
func (d *Dataset) Clone() *Dataset {
	clone := &Dataset{
		columns: make([]*Column, len(d.columns)),
		index:   make(map[string]int, len(d.index)),
		rows:    d.rows,
	}
	for i, c := range d.columns {
		clone.columns[i] = c.Clone()
	}
	for k, v := range d.index {
		clone.index[k] = v
	}
	return clone
}

// FilterRows keeps the rows for which keep returns true and reports how many
// were dropped
func (d *Dataset) FilterRows(keep func(row int) bool) int {
	kept := make([]int, 0, d.rows)
	for i := 0; i < d.rows; i++ {
		if keep(i) {
			kept = append(kept, i)
		}
	}
	for _, c := range d.columns {
		values := make([]Value, len(kept))
		for k, i := range kept {
			values[k] = c.Values[i]
		}
		c.Values = values
	}
	dropped := d.rows - len(kept)
	d.rows = len(kept)
	return dropped
}

// ReplaceColumn swaps the named column for zero or more columns inserted at
// its position. Replacement names must not collide with other columns.
func (d *Dataset) ReplaceColumn(name string, replacements ...*Column) error {
	pos, ok := d.index[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	for _, r := range replacements {
		if r.Len() != d.rows {
			return fmt.Errorf("replacement %q has %d rows, want %d", r.Name, r.Len(), d.rows)
		}
		if i, exists := d.index[r.Name]; exists && i != pos {
			return fmt.Errorf("column %q already exists", r.Name)
		}
	}

	cols := make([]*Column, 0, len(d.columns)-1+len(replacements))
	cols = append(cols, d.columns[:pos]...)
	cols = append(cols, replacements...)
	cols = append(cols, d.columns[pos+1:]...)

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c.Name]; dup {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		index[c.Name] = i
	}
	d.columns = cols
	d.index = index
	return nil
}

// Records returns the header and every row formatted as text
func (d *Dataset) Records() ([]string, [][]string) {
	records := make([][]string, d.rows)
	for i := 0; i < d.rows; i++ {
		rec := make([]string, len(d.columns))
		for j, c := range d.columns {
			rec[j] = c.Values[i].String()
		}
		records[i] = rec
	}
	return d.Names(), records
}

// Head returns up to n formatted rows
func (d *Dataset) Head(n int) [][]string {
	_, records := d.Records()
	if n < len(records) {
		records = records[:n]
	}
	return records
}
