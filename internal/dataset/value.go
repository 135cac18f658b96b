package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the type of a single cell
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindInt
	KindFloat
	KindText
)

// String returns the kind name
func (k ValueKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// DefaultMissingMarkers are the raw strings read as a missing cell
var DefaultMissingMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// Value is one immutable cell of a dataset
type Value struct {
	kind ValueKind
	num  float64
	i    int64
	text string
}

// Missing returns the missing-value marker
func Missing() Value {
	return Value{kind: KindMissing}
}

// Int returns an integer cell
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Float returns a floating point cell. NaN is stored as missing.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{kind: KindFloat, num: f}
}

// Text returns a text cell
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Parse converts a raw string into a typed cell. Any string listed in markers
// (after trimming) is missing. Infinity literals stay text.
func Parse(raw string, markers []string) Value {
	s := strings.TrimSpace(raw)
	for _, m := range markers {
		if s == m {
			return Missing()
		}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return Float(f)
	}
	return Text(raw)
}

// Kind returns the cell kind
func (v Value) Kind() ValueKind { return v.kind }

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// IsInteger reports whether the cell is an integer
func (v Value) IsInteger() bool { return v.kind == KindInt }

// Number returns the numeric reading of the cell. Text cells holding a
// number literal are readable as numbers.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int64 returns the exact value of an integer cell
func (v Value) Int64() (int64, bool) {
	return v.i, v.kind == KindInt
}

// String formats the cell the way it is exported
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}
