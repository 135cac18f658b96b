package taxonomy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SelectionErrorKind classifies a rejected column selection
type SelectionErrorKind string

const (
	TargetInFeatures SelectionErrorKind = "target_in_features"
	IndexOutOfRange  SelectionErrorKind = "index_out_of_range"
	ParseError       SelectionErrorKind = "parse_error"
)

// Sentinels matched by errors.Is against a *SelectionError
var (
	ErrTargetInFeatures = errors.New("target column cannot also be a feature")
	ErrIndexOutOfRange  = errors.New("column index out of range")
	ErrParse            = errors.New("malformed column index")
)

// SelectionError describes why a feature/target selection was rejected
type SelectionError struct {
	Kind   SelectionErrorKind
	Input  string
	Index  int
	Column string
}

// Error implements the error interface
func (e *SelectionError) Error() string {
	switch e.Kind {
	case TargetInFeatures:
		return fmt.Sprintf("%s: %q", ErrTargetInFeatures, e.Column)
	case IndexOutOfRange:
		return fmt.Sprintf("%s: %d", ErrIndexOutOfRange, e.Index)
	default:
		return fmt.Sprintf("%s: %q", ErrParse, e.Input)
	}
}

// Unwrap returns the sentinel for the error kind
func (e *SelectionError) Unwrap() error {
	switch e.Kind {
	case TargetInFeatures:
		return ErrTargetInFeatures
	case IndexOutOfRange:
		return ErrIndexOutOfRange
	default:
		return ErrParse
	}
}

// ParseIndices reads comma-separated 1-based indices. Duplicates are kept
// once, in first-seen order.
func ParseIndices(text string) ([]int, error) {
	parts := strings.Split(text, ",")
	seen := make(map[int]struct{}, len(parts))
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, &SelectionError{Kind: ParseError, Input: text}
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out, nil
}

// ParseIndex reads exactly one 1-based index
func ParseIndex(text string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, &SelectionError{Kind: ParseError, Input: text}
	}
	return i, nil
}

// Select maps user-typed 1-based indices onto column names
func Select(columns []string, featureText, targetText string) ([]string, string, error) {
	featureIdx, err := ParseIndices(featureText)
	if err != nil {
		return nil, "", err
	}
	targetIdx, err := ParseIndex(targetText)
	if err != nil {
		return nil, "", err
	}
	return SelectIndices(columns, featureIdx, targetIdx)
}

// SelectIndices maps already parsed 1-based indices onto column names
func SelectIndices(columns []string, featureIdx []int, targetIdx int) ([]string, string, error) {
	if len(featureIdx) == 0 {
		return nil, "", &SelectionError{Kind: ParseError}
	}
	for _, i := range append(append([]int(nil), featureIdx...), targetIdx) {
		if i < 1 || i > len(columns) {
			return nil, "", &SelectionError{Kind: IndexOutOfRange, Index: i}
		}
	}

	target := columns[targetIdx-1]
	features := make([]string, 0, len(featureIdx))
	for _, i := range featureIdx {
		name := columns[i-1]
		if name == target {
			return nil, "", &SelectionError{Kind: TargetInFeatures, Index: targetIdx, Column: target}
		}
		features = append(features, name)
	}
	return features, target, nil
}
