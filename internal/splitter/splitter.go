package splitter

import (
	"strings"

	"github.com/go-faster/errors"

	"table-profiler/internal/table"
)

// DefaultSep 默认分隔符
const DefaultSep = "|"

// Options 拆分选项
type Options struct {
	Sep  string // 分隔符，不能为空
	Keep bool   // 是否保留拆分前的原值作为单独一行
}

// DefaultOptions 默认选项
func DefaultOptions() Options {
	return Options{Sep: DefaultSep}
}

// SplitRows 将 column 列按 Sep 拆分为多行，其他列原样复制。
// 该列缺失的行被丢弃；输出中该列类型为 text。输入表不会被修改。
func SplitRows(t *table.Table, column string, opts Options) (*table.Table, error) {
	if t == nil {
		return nil, errors.Wrap(table.ErrInvalidInput, "nil table")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if opts.Sep == "" {
		return nil, errors.Wrap(table.ErrInvalidInput, "empty separator")
	}
	target, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	var rows []int
	var values []any
	for i, v := range target.Values {
		if table.IsMissing(v) {
			continue
		}
		presplit := table.Format(v)
		parts := strings.Split(presplit, opts.Sep)
		if opts.Keep && len(parts) > 1 {
			rows = append(rows, i)
			values = append(values, presplit)
		}
		for _, part := range parts {
			rows = append(rows, i)
			values = append(values, part)
		}
	}

	out, err := t.Take(rows)
	if err != nil {
		return nil, err
	}
	split, err := out.Column(column)
	if err != nil {
		return nil, err
	}
	split.Kind = table.KindText
	split.Values = values
	return out, nil
}
