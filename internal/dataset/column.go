package dataset

import (
	"sort"
)

// DType is the storage type derived from a column's cells
type DType string

const (
	DTypeInt   DType = "int"
	DTypeFloat DType = "float"
	DTypeText  DType = "text"
)

// IsNumeric reports whether the dtype holds numbers
func (t DType) IsNumeric() bool {
	return t == DTypeInt || t == DTypeFloat
}

// Column is a named sequence of cells
type Column struct {
	Name   string
	Values []Value
}

// NewColumn creates a column from cells
func NewColumn(name string, values []Value) *Column {
	return &Column{Name: name, Values: values}
}

// Len returns the number of cells
func (c *Column) Len() int { return len(c.Values) }

// DType derives the column type. A column with no values besides missing
// ones is float, the same way numeric libraries treat an all-null column.
func (c *Column) DType() DType {
	allInt := true
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		if _, ok := v.Number(); !ok {
			return DTypeText
		}
		if !v.IsInteger() {
			allInt = false
		}
	}
	if allInt && c.nonMissing() > 0 {
		return DTypeInt
	}
	return DTypeFloat
}

func (c *Column) nonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	return len(c.Values) - c.nonMissing()
}

// Numbers returns the numeric readings of non-missing cells in row order
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Number(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Distinct returns the distinct non-missing cells in first-appearance order,
// keyed by their formatted text
func (c *Column) Distinct() []Value {
	seen := make(map[string]struct{})
	var out []Value
	for _, v := range c.Values {
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SortedDistinct returns the distinct non-missing cells ordered numerically
// when every one is a number, lexically otherwise
func (c *Column) SortedDistinct() []Value {
	values := c.Distinct()
	numeric := true
	for _, v := range values {
		if _, ok := v.Number(); !ok {
			numeric = false
			break
		}
	}
	sort.SliceStable(values, func(i, j int) bool {
		if numeric {
			a, _ := values[i].Number()
			b, _ := values[j].Number()
			return a < b
		}
		return values[i].String() < values[j].String()
	})
	return values
}

// Clone returns a deep copy
func (c *Column) Clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Values: values}
}
