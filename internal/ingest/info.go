package ingest

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
)

// Info summarizes a loaded dataset for the user
type Info struct {
	Source  string               `json:"source"`
	Format  Format               `json:"format"`
	Rows    int                  `json:"rows"`
	Columns int                  `json:"columns"`
	Schema  []dataset.ColumnInfo `json:"schema"`
	Header  []string             `json:"header"`
	Preview [][]string           `json:"preview"`
}

// Describe builds the summary of ds with up to previewRows rows
func Describe(source string, format Format, ds *dataset.Dataset, previewRows int) Info {
	return Info{
		Source:  source,
		Format:  format,
		Rows:    ds.NumRows(),
		Columns: ds.NumColumns(),
		Schema:  ds.Schema(),
		Header:  ds.Names(),
		Preview: ds.Head(previewRows),
	}
}

// Render writes the row and column counts followed by the preview table
func (i Info) Render(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintln(&b, "Data loaded successfully.")
	fmt.Fprintf(&b, "Rows: %d\n", i.Rows)
	fmt.Fprintf(&b, "Columns: %d\n", i.Columns)
	if len(i.Preview) > 0 {
		fmt.Fprintf(&b, "First %d rows:\n", len(i.Preview))
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if len(i.Preview) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(i.Header, "\t"))
	for n, row := range i.Preview {
		cells := make([]string, len(row))
		for j, c := range row {
			if c == "" {
				c = "NaN"
			}
			cells[j] = c
		}
		fmt.Fprintf(tw, "%d\t%s\n", n, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
