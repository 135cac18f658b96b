package dataset

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	d, err := FromColumns(
		NewColumn("Age", []Value{Int(22), Int(38), Missing(), Int(35)}),
		NewColumn("Sex", []Value{Text("male"), Text("female"), Text("female"), Text("male")}),
		NewColumn("Fare", []Value{Float(7.25), Float(71.2833), Float(7.925), Float(53.1)}),
	)
	require.NoError(t, err)
	return d
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"22", Int(22)},
		{" 7.25 ", Float(7.25)},
		{"", Missing()},
		{"NaN", Missing()},
		{"NA", Missing()},
		{"male", Text("male")},
		{"1e3", Float(1000)},
		{"inf", Text("inf")},
		{"-Infinity", Text("-Infinity")},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw, DefaultMissingMarkers)
			assert.Equal(t, tt.want, got, "Parse(%q) kind %s", tt.raw, got.Kind())
		})
	}
}

func TestValueNumber(t *testing.T) {
	f, ok := Text("99").Number()
	assert.True(t, ok)
	assert.Equal(t, 99.0, f)

	_, ok = Text("abc").Number()
	assert.False(t, ok)

	_, ok = Missing().Number()
	assert.False(t, ok)

	assert.Equal(t, Float(0), Float(0))
	assert.NotEqual(t, Int(1), Float(1))
}

func TestLargeIntegersKeepTheirDigits(t *testing.T) {
	for _, raw := range []string{"9007199254740993", "1234567890123456789", "-9223372036854775808"} {
		v := Parse(raw, DefaultMissingMarkers)
		require.Equal(t, KindInt, v.Kind(), raw)
		assert.Equal(t, raw, v.String())
		n, ok := v.Int64()
		assert.True(t, ok)
		assert.Equal(t, raw, strconv.FormatInt(n, 10))
	}

	_, ok := Float(2.5).Int64()
	assert.False(t, ok)
}

func TestInfinityIsNotNumeric(t *testing.T) {
	_, ok := Text("inf").Number()
	assert.False(t, ok)

	col := NewColumn("c", []Value{
		Parse("1", DefaultMissingMarkers),
		Parse("2", DefaultMissingMarkers),
		Parse("inf", DefaultMissingMarkers),
	})
	assert.Equal(t, DTypeText, col.DType())
	assert.Equal(t, 0, col.MissingCount())
}

func TestColumnDType(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		want   DType
	}{
		{"ints", []Value{Int(1), Missing(), Int(3)}, DTypeInt},
		{"mixed numbers", []Value{Int(1), Float(2.5)}, DTypeFloat},
		{"all missing", []Value{Missing(), Missing()}, DTypeFloat},
		{"text", []Value{Int(1), Text("x")}, DTypeText},
		{"numeric text", []Value{Int(1), Text("99")}, DTypeFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewColumn("c", tt.values).DType())
		})
	}
}

func TestColumnDistinct(t *testing.T) {
	c := NewColumn("Embarked", []Value{Text("S"), Text("C"), Missing(), Text("S"), Text("Q")})
	var got []string
	for _, v := range c.Distinct() {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"S", "C", "Q"}, got)

	got = got[:0]
	for _, v := range c.SortedDistinct() {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"C", "Q", "S"}, got)

	n := NewColumn("n", []Value{Int(10), Int(9), Int(100)})
	first := n.SortedDistinct()[0]
	assert.Equal(t, "9", first.String())
}

func TestFromColumnsValidation(t *testing.T) {
	_, err := FromColumns(
		NewColumn("a", []Value{Int(1)}),
		NewColumn("a", []Value{Int(2)}),
	)
	assert.Error(t, err)

	_, err = FromColumns(
		NewColumn("a", []Value{Int(1)}),
		NewColumn("b", []Value{Int(2), Int(3)}),
	)
	assert.Error(t, err)
}

func TestNewFromRows(t *testing.T) {
	d, err := New([]string{"x", "y"}, [][]Value{{Int(1), Text("a")}, {Int(2), Text("b")}})
	require.NoError(t, err)
	assert.Equal(t, 2, d.NumRows())
	assert.Equal(t, []ColumnInfo{{Name: "x", DType: DTypeInt}, {Name: "y", DType: DTypeText}}, d.Schema())

	_, err = New([]string{"x", "y"}, [][]Value{{Int(1)}})
	assert.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	d := sample(t)
	clone := d.Clone()
	col, _ := clone.Column("Age")
	col.Values[0] = Int(99)

	orig, _ := d.Column("Age")
	assert.Equal(t, Int(22), orig.Values[0])
}

func TestFilterRows(t *testing.T) {
	d := sample(t)
	age, _ := d.Column("Age")
	dropped := d.FilterRows(func(i int) bool { return !age.Values[i].IsMissing() })

	assert.Equal(t, 1, dropped)
	assert.Equal(t, 3, d.NumRows())
	sex, _ := d.Column("Sex")
	assert.Equal(t, 3, sex.Len())
	assert.Equal(t, "male", d.Row(2)[1].String())
}

func TestReplaceColumn(t *testing.T) {
	d := sample(t)
	err := d.ReplaceColumn("Sex",
		NewColumn("Sex_male", []Value{Int(1), Int(0), Int(0), Int(1)}),
		NewColumn("Sex_female", []Value{Int(0), Int(1), Int(1), Int(0)}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Sex_male", "Sex_female", "Fare"}, d.Names())
	assert.False(t, d.Has("Sex"))

	c, ok := d.Column("Fare")
	require.True(t, ok)
	assert.Equal(t, "Fare", c.Name)

	assert.Error(t, d.ReplaceColumn("missing"))
	assert.Error(t, d.ReplaceColumn("Age", NewColumn("Fare", make([]Value, 4))))
	assert.Error(t, d.ReplaceColumn("Age", NewColumn("short", make([]Value, 1))))
}

func TestRecords(t *testing.T) {
	d := sample(t)
	header, records := d.Records()
	assert.Equal(t, []string{"Age", "Sex", "Fare"}, header)
	assert.Equal(t, []string{"", "female", "7.925"}, records[2])
	assert.Len(t, d.Head(2), 2)
	assert.Len(t, d.Head(10), 4)
}
