package profiler

import (
	"strings"

	"table-profiler/internal/table"
)

// Clean 原地清洗表：缺失哨兵统一为 nil，字符串去首尾空白，空串视为缺失。
// 先为所有列计算清洗结果再整体替换，失败时表保持不变。
func Clean(t *table.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	cols := t.Columns()
	cleaned := make([][]any, len(cols))
	for i, c := range cols {
		cleaned[i] = cleanValues(c.Values)
	}

	for i, c := range cols {
		c.Values = cleaned[i]
	}
	return nil
}

func cleanValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if table.IsMissing(v) {
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			v = s
		}
		out[i] = v
	}
	return out
}
