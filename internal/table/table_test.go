package table

import (
	"math"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name string
		cols []*Column
		ok   bool
	}{
		{"empty", nil, true},
		{"single", []*Column{NewColumn("n", KindInt, 1, 2, nil)}, true},
		{"ragged", []*Column{NewColumn("a", KindInt, 1, 2), NewColumn("b", KindInt, 1)}, false},
		{"duplicate", []*Column{NewColumn("a", KindInt, 1), NewColumn("a", KindText, "x")}, false},
		{"unnamed", []*Column{NewColumn("", KindInt, 1)}, false},
		{"type mismatch", []*Column{NewColumn("a", KindInt, "x")}, false},
		{"object accepts anything", []*Column{NewColumn("o", KindObject, 1, "x", 2.5, []int{1})}, true},
		{"nan in float", []*Column{NewColumn("f", KindFloat, 1.5, math.NaN())}, true},
		{"nil column", []*Column{nil}, false},
		{"unknown kind", []*Column{{Name: "k", Kind: Kind(42)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.cols...)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestNewColumnNormalizesWidths(t *testing.T) {
	c := NewColumn("x", KindInt, int(1), int32(2), uint8(3))
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, c.Values)

	f := NewColumn("y", KindFloat, float32(1.5))
	assert.Equal(t, []any{1.5}, f.Values)
}

func TestColumnLookup(t *testing.T) {
	tbl := MustNewTable(
		NewColumn("LapTime", KindFloat, 90.1),
		NewColumn("Driver", KindText, "VER"),
	)

	c, err := tbl.Column("Driver")
	require.NoError(t, err)
	assert.Equal(t, KindText, c.Kind)

	_, err = tbl.Column("Drivr")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), `did you mean "Driver"`)

	_, err = tbl.Column("Compound")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestSuggest(t *testing.T) {
	tbl := MustNewTable(
		NewColumn("LapNumber", KindInt),
		NewColumn("Stint", KindInt),
	)

	tests := []struct {
		name     string
		expected string
	}{
		{"lapnumber", "LapNumber"},
		{"LapNumbr", "LapNumber"},
		{"Stnt", "Stint"},
		{"Position", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tbl.Suggest(tt.name))
		})
	}
}

func TestTake(t *testing.T) {
	tbl := MustNewTable(
		NewColumn("a", KindInt, 1, 2, 3),
		NewColumn("b", KindText, "x", "y", "z"),
	)

	out, err := tbl.Take([]int{2, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, []any{int64(3), int64(1), int64(1)}, out.Columns()[0].Values)
	assert.Equal(t, []any{"z", "x", "x"}, out.Columns()[1].Values)

	out.Columns()[1].Values[0] = "changed"
	assert.Equal(t, "z", tbl.Columns()[1].Values[2])

	_, err = tbl.Take([]int{3})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestIsMissing(t *testing.T) {
	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(math.NaN()))
	assert.True(t, IsMissing(float32(math.NaN())))
	assert.True(t, IsMissing(time.Time{}))
	assert.False(t, IsMissing(""))
	assert.False(t, IsMissing(int64(0)))
	assert.False(t, IsMissing(0.0))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in       any
		expected string
	}{
		{"café", "café"},
		{int64(-7), "-7"},
		{2.5, "2.5"},
		{1e21, "1e+21"},
		{time.Date(2022, 3, 20, 15, 0, 0, 0, time.UTC), "2022-03-20 15:00:00"},
		{time.Date(2022, 3, 20, 15, 0, 0, 500000000, time.UTC), "2022-03-20 15:00:00.5"},
		{true, "true"},
		{[]int{1, 2}, "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.in))
		})
	}
}

func TestKeyTimeOutsideNanoRange(t *testing.T) {
	early := time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2084, 7, 20, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, Key(early), Key(later))
	assert.NotEqual(t, Key(early), Key(early.Add(time.Nanosecond)))

	// 同一时刻不同时区视为同一值
	assert.Equal(t, Key(later), Key(later.In(time.FixedZone("CET", 3600))))
}

func TestJSONValue(t *testing.T) {
	assert.Equal(t, "+Inf", JSONValue(math.Inf(1)))
	assert.Equal(t, "-Inf", JSONValue(math.Inf(-1)))
	assert.Equal(t, 2.5, JSONValue(2.5))
	assert.Nil(t, JSONValue(nil))
}

func TestCompare(t *testing.T) {
	c, ok := Compare(int64(1), int64(2))
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = Compare("b", "a")
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = Compare(int64(1), "a")
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		parsed, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("decimal")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
