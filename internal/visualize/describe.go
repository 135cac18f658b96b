package visualize

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/stats"
)

// NumericSummary holds the descriptive statistics of one numeric column.
// Std uses n-1 degrees of freedom.
type NumericSummary struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"q25"`
	Q50   float64 `json:"q50"`
	Q75   float64 `json:"q75"`
	Max   float64 `json:"max"`
}

// ValueCount is one category and how often it occurs
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalSummary holds the value counts of one categorical column,
// most frequent first
type CategoricalSummary struct {
	Name   string       `json:"name"`
	Count  int          `json:"count"`
	Counts []ValueCount `json:"counts"`
}

// Top returns the most frequent value and its count
func (c CategoricalSummary) Top() (string, int) {
	if len(c.Counts) == 0 {
		return "", 0
	}
	return c.Counts[0].Value, c.Counts[0].Count
}

// Summary describes the numeric and categorical columns of a dataset
type Summary struct {
	Numeric     []NumericSummary     `json:"numeric"`
	Categorical []CategoricalSummary `json:"categorical"`
}

// Describe summarizes the listed columns of ds. Names not present in ds are
// ignored.
func Describe(ds *dataset.Dataset, numeric, categorical []string) Summary {
	var s Summary
	for _, name := range numeric {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		s.Numeric = append(s.Numeric, describeNumeric(col))
	}
	for _, name := range categorical {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		s.Categorical = append(s.Categorical, describeCategorical(col))
	}
	return s
}

func describeNumeric(col *dataset.Column) NumericSummary {
	x := col.Numbers()
	if len(x) == 0 {
		nan := math.NaN()
		return NumericSummary{Name: col.Name, Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	}
	lo, hi := stats.MinMax(x)
	return NumericSummary{
		Name:  col.Name,
		Count: len(x),
		Mean:  stats.Mean(x),
		Std:   stats.SampleStd(x),
		Min:   lo,
		Q25:   stats.Percentile(x, 25),
		Q50:   stats.Percentile(x, 50),
		Q75:   stats.Percentile(x, 75),
		Max:   hi,
	}
}

func describeCategorical(col *dataset.Column) CategoricalSummary {
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
		total++
	}
	out := make([]ValueCount, len(order))
	for i, key := range order {
		out[i] = ValueCount{Value: key, Count: counts[key]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return CategoricalSummary{Name: col.Name, Count: total, Counts: out}
}

// Render writes the numeric statistics as one table with a column per
// variable, then the value counts of each categorical variable
func (s Summary) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if len(s.Numeric) > 0 {
		fmt.Fprintln(w, "Numeric variables:")
		names := make([]string, len(s.Numeric))
		for i, n := range s.Numeric {
			names[i] = n.Name
		}
		fmt.Fprintf(tw, "\t%s\t\n", strings.Join(names, "\t"))

		rows := []struct {
			label string
			get   func(NumericSummary) float64
		}{
			{"mean", func(n NumericSummary) float64 { return n.Mean }},
			{"std", func(n NumericSummary) float64 { return n.Std }},
			{"min", func(n NumericSummary) float64 { return n.Min }},
			{"25%", func(n NumericSummary) float64 { return n.Q25 }},
			{"50%", func(n NumericSummary) float64 { return n.Q50 }},
			{"75%", func(n NumericSummary) float64 { return n.Q75 }},
			{"max", func(n NumericSummary) float64 { return n.Max }},
		}
		cells := make([]string, len(s.Numeric))
		for i, n := range s.Numeric {
			cells[i] = strconv.Itoa(n.Count)
		}
		fmt.Fprintf(tw, "count\t%s\t\n", strings.Join(cells, "\t"))
		for _, row := range rows {
			for i, n := range s.Numeric {
				cells[i] = formatStat(row.get(n))
			}
			fmt.Fprintf(tw, "%s\t%s\t\n", row.label, strings.Join(cells, "\t"))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Categorical) > 0 {
		if len(s.Numeric) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "Categorical variables:")
	}
	for _, c := range s.Categorical {
		fmt.Fprintf(w, "\n%s:\n", c.Name)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, vc := range c.Counts {
			fmt.Fprintf(tw, "%s\t%d\n", vc.Value, vc.Count)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func formatStat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}
