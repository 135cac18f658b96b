package dataprep

import (
	"fmt"
	"strings"
)

// Option is one numbered entry offered to the user for a stage
type Option struct {
	Number int
	Key    string
	Label  string
}

// MissingStrategy is how gaps in the reviewed columns are handled
type MissingStrategy int

const (
	MissingDropRows MissingStrategy = iota + 1
	MissingMean
	MissingMedian
	MissingMode
	MissingConstant
	MissingCancel
)

// EncodingStrategy is how categorical features are encoded
type EncodingStrategy int

const (
	EncodingOneHot EncodingStrategy = iota + 1
	EncodingLabel
	EncodingCancel
)

// ScalingStrategy is how numeric features are rescaled
type ScalingStrategy int

const (
	ScalingMinMax ScalingStrategy = iota + 1
	ScalingZScore
	ScalingCancel
)

// OutlierStrategy is how values outside the IQR fences are handled
type OutlierStrategy int

const (
	OutlierDropRows OutlierStrategy = iota + 1
	OutlierReplaceMedian
	OutlierKeep
	OutlierCancel
)

// FilterMode selects how bounds are computed when dropping outlier rows
type FilterMode string

const (
	// FilterSequential recomputes each column's bounds on the frame left by
	// the previous column's filter pass
	FilterSequential FilterMode = "sequential"
	// FilterSnapshot computes every column's bounds on the pre-filter frame
	FilterSnapshot FilterMode = "snapshot"
)

// DefaultIQRFactor is the fence multiplier applied to the interquartile range
const DefaultIQRFactor = 1.5

var (
	missingOptions = []Option{
		{int(MissingDropRows), "drop", "Drop rows with missing values"},
		{int(MissingMean), "mean", "Fill with the column mean"},
		{int(MissingMedian), "median", "Fill with the column median"},
		{int(MissingMode), "mode", "Fill with the most frequent value"},
		{int(MissingConstant), "constant", "Fill with a constant value"},
		{int(MissingCancel), "cancel", "Go back"},
	}
	encodingOptions = []Option{
		{int(EncodingOneHot), "onehot", "One-hot encoding"},
		{int(EncodingLabel), "label", "Label encoding"},
		{int(EncodingCancel), "cancel", "Go back"},
	}
	scalingOptions = []Option{
		{int(ScalingMinMax), "minmax", "Min-max scaling to [0, 1]"},
		{int(ScalingZScore), "zscore", "Z-score normalization"},
		{int(ScalingCancel), "cancel", "Go back"},
	}
	outlierOptions = []Option{
		{int(OutlierDropRows), "drop", "Drop rows with outliers"},
		{int(OutlierReplaceMedian), "median", "Replace outliers with the median"},
		{int(OutlierKeep), "keep", "Keep outliers unchanged"},
		{int(OutlierCancel), "cancel", "Go back"},
	}
)

// MissingOptions lists the missing-value strategies in menu order
func MissingOptions() []Option { return append([]Option(nil), missingOptions...) }

// EncodingOptions lists the encoding strategies in menu order
func EncodingOptions() []Option { return append([]Option(nil), encodingOptions...) }

// ScalingOptions lists the scaling strategies in menu order
func ScalingOptions() []Option { return append([]Option(nil), scalingOptions...) }

// OutlierOptions lists the outlier strategies in menu order
func OutlierOptions() []Option { return append([]Option(nil), outlierOptions...) }

func (s MissingStrategy) String() string  { return keyOf(missingOptions, int(s)) }
func (s EncodingStrategy) String() string { return keyOf(encodingOptions, int(s)) }
func (s ScalingStrategy) String() string  { return keyOf(scalingOptions, int(s)) }
func (s OutlierStrategy) String() string  { return keyOf(outlierOptions, int(s)) }

// Valid reports whether s is a known strategy
func (s MissingStrategy) Valid() bool { return s >= MissingDropRows && s <= MissingCancel }

// Valid reports whether s is a known strategy
func (s EncodingStrategy) Valid() bool { return s >= EncodingOneHot && s <= EncodingCancel }

// Valid reports whether s is a known strategy
func (s ScalingStrategy) Valid() bool { return s >= ScalingMinMax && s <= ScalingCancel }

// Valid reports whether s is a known strategy
func (s OutlierStrategy) Valid() bool { return s >= OutlierDropRows && s <= OutlierCancel }

// ParseMissingStrategy accepts a menu number or a key such as "mean"
func ParseMissingStrategy(s string) (MissingStrategy, error) {
	n, err := parseOption(missingOptions, s)
	return MissingStrategy(n), err
}

// ParseEncodingStrategy accepts a menu number or a key such as "onehot"
func ParseEncodingStrategy(s string) (EncodingStrategy, error) {
	n, err := parseOption(encodingOptions, s)
	return EncodingStrategy(n), err
}

// ParseScalingStrategy accepts a menu number or a key such as "minmax"
func ParseScalingStrategy(s string) (ScalingStrategy, error) {
	n, err := parseOption(scalingOptions, s)
	return ScalingStrategy(n), err
}

// ParseOutlierStrategy accepts a menu number or a key such as "median"
func ParseOutlierStrategy(s string) (OutlierStrategy, error) {
	n, err := parseOption(outlierOptions, s)
	return OutlierStrategy(n), err
}

func parseOption(options []Option, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, o := range options {
		if s == o.Key || s == fmt.Sprint(o.Number) {
			return o.Number, nil
		}
	}
	return 0, fmt.Errorf("unknown option %q", s)
}

func keyOf(options []Option, n int) string {
	for _, o := range options {
		if o.Number == n {
			return o.Key
		}
	}
	return fmt.Sprintf("unknown(%d)", n)
}
