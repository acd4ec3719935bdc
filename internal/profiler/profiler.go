package profiler

import (
	"math"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"

	"table-profiler/internal/table"
)

const (
	slotSize     = 8  // 定长值或引用槽位
	codeSize     = 4  // category 编码
	stringHeader = 16 // 字符串头
)

// Profiler 列定义分析器
type Profiler struct {
	logger zerolog.Logger
}

// NewProfiler 创建分析器
func NewProfiler(logger zerolog.Logger) *Profiler {
	return &Profiler{logger: logger.With().Str("component", "profiler").Logger()}
}

// Profile 逐列统计；clean 为 true 时先原地清洗输入表
func (p *Profiler) Profile(t *table.Table, clean bool) (*Summary, error) {
	start := time.Now()

	if t == nil {
		return nil, errors.Wrap(table.ErrInvalidInput, "nil table")
	}
	if clean {
		if err := Clean(t); err != nil {
			return nil, errors.Wrap(err, "clean")
		}
	} else if err := t.Validate(); err != nil {
		return nil, err
	}

	cols := t.Columns()
	summary := &Summary{Columns: make([]ColumnSummary, 0, len(cols))}
	for _, c := range cols {
		summary.Columns = append(summary.Columns, summarize(c))
	}

	p.logger.Info().
		Int("columns", len(cols)).
		Int("rows", t.NumRows()).
		Bool("clean", clean).
		Dur("elapsed", time.Since(start)).
		Msg("profile completed")

	return summary, nil
}

// bucket 值频次
type bucket struct {
	value any
	count int
}

// fold 单列一次遍历累积的统计
type fold struct {
	kind    table.Kind
	size    int64
	nulls   int
	count   int
	unicode bool

	min, max       any
	minLen, maxLen int

	buckets map[any]*bucket
	order   []*bucket // 首次出现顺序
}

func summarize(c *table.Column) ColumnSummary {
	f := &fold{kind: c.Kind, buckets: make(map[any]*bucket)}
	for _, v := range c.Values {
		f.add(v)
	}
	return f.result(c.Name)
}

func (f *fold) add(v any) {
	if f.kind == table.KindCategory {
		f.size += codeSize
	} else {
		f.size += slotSize
	}

	if table.IsMissing(v) {
		f.nulls++
		return
	}
	f.count++

	key := table.Key(v)
	b, ok := f.buckets[key]
	if !ok {
		b = &bucket{value: v}
		f.buckets[key] = b
		f.order = append(f.order, b)
		if f.kind == table.KindCategory {
			f.size += stringHeader + int64(len(v.(string)))
		}
	}
	b.count++

	if f.kind.IsVariable() {
		f.addVariable(v)
		return
	}
	if f.count == 1 {
		f.min, f.max = v, v
		return
	}
	if c, ok := table.Compare(v, f.min); ok && c < 0 {
		f.min = v
	}
	if c, ok := table.Compare(v, f.max); ok && c > 0 {
		f.max = v
	}
}

// addVariable text/object 列：长度、unicode、深度内存
func (f *fold) addVariable(v any) {
	s := table.Format(v)
	f.size += stringHeader + int64(len(s))

	if str, ok := v.(string); ok && utf8.RuneCountInString(str) != len(str) {
		f.unicode = true
	}

	n := utf8.RuneCountInString(s)
	if f.count == 1 || n < f.minLen {
		f.minLen = n
	}
	if f.count == 1 || n > f.maxLen {
		f.maxLen = n
	}
}

func (f *fold) result(name string) ColumnSummary {
	s := ColumnSummary{
		Name:   name,
		Type:   f.kind,
		Size:   f.size,
		IsNull: f.nulls > 0,
		Count:  f.count,
	}
	if f.count == 0 {
		return s
	}

	switch f.kind {
	case table.KindText, table.KindObject:
		unicode := f.unicode
		s.IsUnicode = &unicode
		s.Min, s.Max = int64(f.minLen), int64(f.maxLen)
	case table.KindFloat:
		s.Min, s.Max = truncate(f.min.(float64)), truncate(f.max.(float64))
	default:
		s.Min, s.Max = f.min, f.max
	}

	mode := f.mode()
	modeCount := mode.count
	uniqueCount := len(f.order)
	s.ModeCount = &modeCount
	s.UniqueCount = &uniqueCount
	if uniqueCount < f.count {
		s.Mode = mode.value
	}
	return s
}

// mode 频次最高的值；并列时取自然序最小的，不可比较时取先出现的
func (f *fold) mode() *bucket {
	best := f.order[0]
	for _, b := range f.order[1:] {
		if b.count > best.count {
			best = b
			continue
		}
		if b.count == best.count {
			if c, ok := table.Compare(b.value, best.value); ok && c < 0 {
				best = b
			}
		}
	}
	return best
}

// truncate 向零截断为整数：int64 范围内返回 int64，超出范围返回 *big.Int，无穷值原样保留
func truncate(v float64) any {
	if math.IsInf(v, 0) {
		return v
	}
	t := math.Trunc(v)
	if t >= -(1<<63) && t < 1<<63 {
		return int64(t)
	}
	n, _ := new(big.Float).SetFloat64(t).Int(nil)
	return n
}
