package profiler

import (
	"bytes"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"table-profiler/internal/table"
)

func newProfiler() *Profiler {
	return NewProfiler(zerolog.Nop())
}

func intp(n int) *int { return &n }

func TestProfileIntegerColumn(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("n", table.KindInt, 1, 2, 2, 3, nil))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	n, ok := s.Get("n")
	require.True(t, ok)
	assert.Equal(t, table.KindInt, n.Type)
	assert.Equal(t, 4, n.Count)
	assert.True(t, n.IsNull)
	assert.Equal(t, int64(1), n.Min)
	assert.Equal(t, int64(3), n.Max)
	assert.Equal(t, int64(2), n.Mode)
	assert.Equal(t, intp(2), n.ModeCount)
	assert.Equal(t, intp(3), n.UniqueCount)
	assert.Nil(t, n.IsUnicode)
	assert.Equal(t, int64(40), n.Size)
}

func TestProfileUnicodeText(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("s", table.KindText, "café", "abc"))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	col, ok := s.Get("s")
	require.True(t, ok)
	require.NotNil(t, col.IsUnicode)
	assert.True(t, *col.IsUnicode)
	assert.Equal(t, int64(3), col.Min)
	assert.Equal(t, int64(4), col.Max)
	assert.False(t, col.IsNull)
	assert.Nil(t, col.Mode)
	assert.Equal(t, intp(1), col.ModeCount)
	assert.Equal(t, intp(2), col.UniqueCount)
	// 2 个槽位 + (16+5) + (16+3)
	assert.Equal(t, int64(56), col.Size)
}

func TestProfileAllMissingColumn(t *testing.T) {
	tbl := table.MustNewTable(
		table.NewColumn("empty", table.KindText, nil, nil),
		table.NewColumn("nan", table.KindFloat, math.NaN(), nil),
	)

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	for _, col := range s.Columns {
		t.Run(col.Name, func(t *testing.T) {
			assert.True(t, col.IsNull)
			assert.Equal(t, 0, col.Count)
			assert.False(t, col.HasStats())
			assert.Nil(t, col.IsUnicode)
			assert.Nil(t, col.Min)
			assert.Nil(t, col.Max)
			assert.Nil(t, col.Mode)
			assert.Nil(t, col.ModeCount)
			assert.Nil(t, col.UniqueCount)
		})
	}
}

func TestProfileUniqueColumnHasNoMode(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("id", table.KindInt, 10, 20, 30, nil))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	id, _ := s.Get("id")
	assert.Nil(t, id.Mode)
	assert.Equal(t, intp(1), id.ModeCount)
	assert.Equal(t, intp(id.Count), id.UniqueCount)
}

func TestProfileFloatTruncates(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("lap", table.KindFloat, -2.7, 91.9, 91.9, math.NaN()))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	lap, _ := s.Get("lap")
	assert.Equal(t, int64(-2), lap.Min)
	assert.Equal(t, int64(91), lap.Max)
	assert.Equal(t, 91.9, lap.Mode)
	assert.Equal(t, 3, lap.Count)
	assert.True(t, lap.IsNull)
}

func TestProfileFloatBeyondInt64(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("f", table.KindFloat, 1e20, 2.5e19, -1e30))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	f, _ := s.Get("f")
	wantMax, _ := new(big.Int).SetString("100000000000000000000", 10)
	wantMin, _ := new(big.Float).SetFloat64(-1e30).Int(nil)
	require.IsType(t, (*big.Int)(nil), f.Max)
	require.IsType(t, (*big.Int)(nil), f.Min)
	assert.Zero(t, wantMax.Cmp(f.Max.(*big.Int)))
	assert.Zero(t, wantMin.Cmp(f.Min.(*big.Int)))
	assert.Equal(t, -1, f.Min.(*big.Int).Cmp(f.Max.(*big.Int)))

	data, err := s.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"max": 100000000000000000000`)
}

func TestTruncateBounds(t *testing.T) {
	assert.Equal(t, int64(math.MinInt64), truncate(-9223372036854775808.0))
	assert.IsType(t, (*big.Int)(nil), truncate(9223372036854775808.0))
	assert.Equal(t, int64(-3), truncate(-3.9))
	assert.Equal(t, math.Inf(1), truncate(math.Inf(1)))
}

func TestProfileTimeOutsideNanoRange(t *testing.T) {
	early := time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)
	later := early.Add(time.Duration(1 << 62)).Add(time.Duration(1 << 62)).
		Add(time.Duration(1 << 62)).Add(time.Duration(1 << 62))
	tbl := table.MustNewTable(table.NewColumn("ts", table.KindTime, early, later))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	ts, _ := s.Get("ts")
	assert.Equal(t, intp(2), ts.UniqueCount)
	assert.Equal(t, intp(1), ts.ModeCount)
	assert.Nil(t, ts.Mode)
	assert.Equal(t, early, ts.Min)
	assert.Equal(t, later, ts.Max)
}

func TestProfileTimeAndCategory(t *testing.T) {
	t0 := time.Date(2022, 3, 20, 15, 0, 0, 0, time.UTC)
	t1 := t0.Add(90 * time.Second)
	tbl := table.MustNewTable(
		table.NewColumn("ts", table.KindTime, t1, t0, t1),
		table.NewColumn("compound", table.KindCategory, "SOFT", "HARD", "SOFT"),
	)

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	ts, _ := s.Get("ts")
	assert.Equal(t, t0, ts.Min)
	assert.Equal(t, t1, ts.Max)
	assert.Equal(t, t1, ts.Mode)
	assert.Equal(t, int64(24), ts.Size)

	compound, _ := s.Get("compound")
	assert.Equal(t, "HARD", compound.Min)
	assert.Equal(t, "SOFT", compound.Max)
	assert.Equal(t, "SOFT", compound.Mode)
	assert.Equal(t, intp(2), compound.ModeCount)
	assert.Nil(t, compound.IsUnicode)
	// 3 个编码 + (16+4) + (16+4)
	assert.Equal(t, int64(52), compound.Size)
}

func TestProfileObjectColumn(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("o", table.KindObject, "ñ", 12345, 12345, nil))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	o, _ := s.Get("o")
	require.NotNil(t, o.IsUnicode)
	assert.True(t, *o.IsUnicode)
	assert.Equal(t, int64(1), o.Min)
	assert.Equal(t, int64(5), o.Max)
	assert.Equal(t, int64(12345), o.Mode)
	assert.Equal(t, intp(2), o.ModeCount)
}

func TestProfileNonStringObjectIsNotUnicode(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("o", table.KindObject, 1.5, int64(2)))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	o, _ := s.Get("o")
	require.NotNil(t, o.IsUnicode)
	assert.False(t, *o.IsUnicode)
}

func TestProfileModeTieBreak(t *testing.T) {
	tbl := table.MustNewTable(
		table.NewColumn("n", table.KindInt, 3, 1, 3, 1, 2),
		table.NewColumn("s", table.KindText, "b", "a", "b", "a"),
	)

	for i := 0; i < 3; i++ {
		s, err := newProfiler().Profile(tbl, false)
		require.NoError(t, err)
		n, _ := s.Get("n")
		assert.Equal(t, int64(1), n.Mode)
		str, _ := s.Get("s")
		assert.Equal(t, "a", str.Mode)
	}
}

func TestProfilePreservesColumnOrder(t *testing.T) {
	tbl := table.MustNewTable(
		table.NewColumn("z", table.KindInt, 1),
		table.NewColumn("a", table.KindText, "x"),
		table.NewColumn("m", table.KindFloat, 1.0),
	)

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)
	require.Len(t, s.Columns, 3)
	assert.Equal(t, "z", s.Columns[0].Name)
	assert.Equal(t, "a", s.Columns[1].Name)
	assert.Equal(t, "m", s.Columns[2].Name)
}

func TestProfileEmptyTables(t *testing.T) {
	s, err := newProfiler().Profile(table.MustNewTable(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	s, err = newProfiler().Profile(table.MustNewTable(table.NewColumn("n", table.KindInt)), false)
	require.NoError(t, err)
	n, _ := s.Get("n")
	assert.False(t, n.IsNull)
	assert.Equal(t, 0, n.Count)
	assert.Equal(t, int64(0), n.Size)
}

func TestProfileIsIdempotent(t *testing.T) {
	tbl := table.MustNewTable(
		table.NewColumn("n", table.KindInt, 1, 2, 2, nil),
		table.NewColumn("s", table.KindText, " a ", "b", "b", ""),
	)

	first, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)
	second, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProfileInvalidInput(t *testing.T) {
	_, err := newProfiler().Profile(nil, false)
	assert.True(t, errors.Is(err, table.ErrInvalidInput))

	tbl := table.MustNewTable(
		table.NewColumn("a", table.KindInt, 1, 2),
		table.NewColumn("b", table.KindText, " x ", "y"),
	)
	tbl.Columns()[0].Values = append(tbl.Columns()[0].Values, int64(3))

	_, err = newProfiler().Profile(tbl, false)
	assert.True(t, errors.Is(err, table.ErrInvalidInput))

	_, err = newProfiler().Profile(tbl, true)
	assert.True(t, errors.Is(err, table.ErrInvalidInput))
	assert.Equal(t, " x ", tbl.Columns()[1].Values[0], "failed clean must not touch the table")
}

func TestProfileCleanMutatesInPlace(t *testing.T) {
	tbl := table.MustNewTable(
		table.NewColumn("s", table.KindText, "  VER ", "", "   ", nil, "HAM"),
		table.NewColumn("f", table.KindFloat, math.NaN(), 1.5, 1.5, 2.0, nil),
		table.NewColumn("o", table.KindObject, " x", 7, "", nil, 7),
	)

	s, err := newProfiler().Profile(tbl, true)
	require.NoError(t, err)

	assert.Equal(t, []any{"VER", nil, nil, nil, "HAM"}, tbl.Columns()[0].Values)
	assert.Nil(t, tbl.Columns()[1].Values[0])
	assert.Equal(t, []any{"x", int64(7), nil, nil, int64(7)}, tbl.Columns()[2].Values)

	str, _ := s.Get("s")
	assert.Equal(t, 2, str.Count)
	assert.Equal(t, int64(3), str.Min)
	assert.Equal(t, int64(3), str.Max)

	o, _ := s.Get("o")
	assert.Equal(t, 3, o.Count)
	assert.Equal(t, int64(7), o.Mode)
}

func TestProfileLogsElapsed(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(zerolog.New(&buf))

	_, err := p.Profile(table.MustNewTable(table.NewColumn("n", table.KindInt, 1)), false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"elapsed"`)
	assert.Contains(t, buf.String(), `"columns":1`)
	assert.Contains(t, buf.String(), "profile completed")
}

func TestSummaryToJSON(t *testing.T) {
	tbl := table.MustNewTable(
		table.NewColumn("n", table.KindInt, 1, 1),
		table.NewColumn("e", table.KindText, nil, nil),
	)

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	data, err := s.ToJSON()
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"type": "int64"`)
	assert.Contains(t, out, `"mode_cnt": 2`)
	assert.Contains(t, out, `"isnull": true`)
	assert.Equal(t, 1, bytes.Count(data, []byte(`"min"`)), "all-missing column must omit min")
}

func TestSummaryToJSONInfinity(t *testing.T) {
	tbl := table.MustNewTable(table.NewColumn("gap", table.KindFloat, math.Inf(-1), 1.5, math.Inf(1), math.Inf(1)))

	s, err := newProfiler().Profile(tbl, false)
	require.NoError(t, err)

	data, err := s.ToJSON()
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"min": "-Inf"`)
	assert.Contains(t, out, `"max": "+Inf"`)
	assert.Contains(t, out, `"mode": "+Inf"`)

	gap, _ := s.Get("gap")
	assert.Equal(t, math.Inf(1), gap.Max, "summary keeps the float value")
}
