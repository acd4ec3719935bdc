package profiler

import (
	"encoding/json"

	"table-profiler/internal/table"
)

// ColumnSummary 单列统计结果，指针/nil 字段表示该统计不适用
type ColumnSummary struct {
	Name   string     `json:"name"`
	Type   table.Kind `json:"type"`
	Size   int64      `json:"size"`   // 深度统计的内存占用（字节）
	IsNull bool       `json:"isnull"` // 至少一个缺失值
	Count  int        `json:"count"`  // 非缺失值个数

	// IsUnicode 仅 text/object 列：存在多字节字符
	IsUnicode *bool `json:"isunicode,omitempty"`

	// Min/Max 对 text/object 列是字符串长度（字符数），不是字典序最小/最大值；
	// float 列截断为整数（超出 int64 时为 *big.Int）；其他列为原值。
	Min any `json:"min,omitempty"`
	Max any `json:"max,omitempty"`

	// Mode 仅在列中存在重复值时给出
	Mode        any  `json:"mode,omitempty"`
	ModeCount   *int `json:"mode_cnt,omitempty"`
	UniqueCount *int `json:"uniq_cnt,omitempty"`
}

// HasStats 列中至少有一个非缺失值
func (c *ColumnSummary) HasStats() bool {
	return c.Count > 0
}

// Summary 每个输入列一行，保持输入列顺序
type Summary struct {
	Columns []ColumnSummary `json:"columns"`
}

// Get 按列名获取统计
func (s *Summary) Get(name string) (*ColumnSummary, bool) {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i], true
		}
	}
	return nil, false
}

// Len 行数
func (s *Summary) Len() int {
	return len(s.Columns)
}

// ToJSON 导出为JSON，±Inf 输出为字符串
func (s *Summary) ToJSON() ([]byte, error) {
	out := Summary{Columns: make([]ColumnSummary, len(s.Columns))}
	for i, c := range s.Columns {
		c.Min, c.Max, c.Mode = table.JSONValue(c.Min), table.JSONValue(c.Max), table.JSONValue(c.Mode)
		out.Columns[i] = c
	}
	return json.MarshalIndent(out, "", "  ")
}
