// Package stats provides the descriptive statistics used by the
// preprocessing stages. Moments and extrema come from gonum; percentiles use
// linear interpolation between closest ranks.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean computes the arithmetic mean. Empty input yields 0.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Variance computes the population variance
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(x, nil)
	return v
}

// Std computes the population standard deviation
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// SampleStd computes the standard deviation with n-1 degrees of freedom.
// Fewer than two values yield NaN.
func SampleStd(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// MinMax returns the minimum and maximum values in the slice
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return floats.Min(x), floats.Max(x)
}

// Median returns the median value of the slice (allocates a copy)
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// Percentile returns the p-th percentile (0 <= p <= 100), interpolating
// linearly between the two closest ranks of the sorted data
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return cp[lower]
	}
	return cp[lower]*(1-weight) + cp[upper]*weight
}

// Quartiles returns Q1 and Q3
func Quartiles(x []float64) (q1, q3 float64) {
	return Percentile(x, 25), Percentile(x, 75)
}

// Correlation computes the Pearson correlation coefficient. Degenerate input
// (mismatched lengths, fewer than two points, zero variance) yields 0.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Bounds returns the interquartile fences [Q1 - k*IQR, Q3 + k*IQR]
func Bounds(x []float64, k float64) (lower, upper float64) {
	q1, q3 := Quartiles(x)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
