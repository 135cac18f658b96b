package dataprep

import (
	"errors"
	"fmt"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// ErrUnsupportedColumnType marks a column a strategy cannot operate on
var ErrUnsupportedColumnType = errors.New("unsupported column type")

// UnsupportedColumnTypeError is reported as a warning when a strategy skips
// a column it cannot handle
type UnsupportedColumnTypeError struct {
	Column   string
	DType    dataset.DType
	Strategy string
}

// Error implements the error interface
func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("%s: %s cannot be applied to %s column %q", ErrUnsupportedColumnType, e.Strategy, e.DType, e.Column)
}

// Unwrap returns ErrUnsupportedColumnType
func (e *UnsupportedColumnTypeError) Unwrap() error {
	return ErrUnsupportedColumnType
}

// ErrNoValues is reported when a column has nothing to compute a statistic from
var ErrNoValues = errors.New("column has no non-missing values")

// ColumnCount pairs a column with a per-column count
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}
