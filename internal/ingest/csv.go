package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

const utf8BOM = "\ufeff"

// LoadCSV reads a delimited text file whose first record is the header
func LoadCSV(path string, opts Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV reads delimited text from r
func ReadCSV(r io.Reader, opts Options) (*dataset.Dataset, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return build(header, rows, opts.markers())
}
