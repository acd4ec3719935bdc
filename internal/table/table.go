package table

import (
	"github.com/go-faster/errors"
)

// Column 列：名称、类型和按行排列的值，nil 表示缺失
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// NewColumn 创建列，整数/浮点统一为 int64/float64
func NewColumn(name string, kind Kind, values ...any) *Column {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = normalize(v)
	}
	return &Column{Name: name, Kind: kind, Values: vals}
}

// Len 行数
func (c *Column) Len() int {
	return len(c.Values)
}

// Table 共享行索引的有序列集合
type Table struct {
	columns []*Column
	index   map[string]int
}

// NewTable 创建表并校验结构
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{
		columns: cols,
		index:   make(map[string]int, len(cols)),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return t, nil
}

// MustNewTable 创建表，结构不合法时 panic
func MustNewTable(cols ...*Column) *Table {
	t, err := NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate 校验列名唯一、列长度一致、值类型与列类型匹配
func (t *Table) Validate() error {
	if t == nil {
		return errors.Wrap(ErrInvalidInput, "nil table")
	}
	seen := make(map[string]bool, len(t.columns))
	rows := -1
	for i, c := range t.columns {
		if c == nil {
			return errors.Wrapf(ErrInvalidInput, "column %d is nil", i)
		}
		if c.Name == "" {
			return errors.Wrapf(ErrInvalidInput, "column %d has no name", i)
		}
		if seen[c.Name] {
			return errors.Wrapf(ErrInvalidInput, "duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if _, ok := kindNames[c.Kind]; !ok {
			return errors.Wrapf(ErrInvalidInput, "column %q: unknown kind %d", c.Name, int(c.Kind))
		}
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return errors.Wrapf(ErrInvalidInput, "column %q has %d rows, expected %d", c.Name, c.Len(), rows)
		}
		for row, v := range c.Values {
			if !conforms(c.Kind, v) {
				return errors.Wrapf(ErrInvalidInput, "column %q row %d: %T is not %s", c.Name, row, v, c.Kind)
			}
		}
	}
	return nil
}

// Columns 按顺序返回所有列
func (t *Table) Columns() []*Column {
	return t.columns
}

// Names 列名列表
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// NumRows 行数
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// Column 按名称查找列
func (t *Table) Column(name string) (*Column, error) {
	if i, ok := t.index[name]; ok {
		return t.columns[i], nil
	}
	if hint := t.Suggest(name); hint != "" {
		return nil, errors.Wrapf(ErrColumnNotFound, "%q (did you mean %q?)", name, hint)
	}
	return nil, errors.Wrapf(ErrColumnNotFound, "%q", name)
}

// Take 按行位置复制出新表，位置可重复
func (t *Table) Take(rows []int) (*Table, error) {
	n := t.NumRows()
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		vals := make([]any, len(rows))
		for j, r := range rows {
			if r < 0 || r >= n {
				return nil, errors.Wrapf(ErrInvalidInput, "row %d out of range [0,%d)", r, n)
			}
			vals[j] = c.Values[r]
		}
		cols[i] = &Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return NewTable(cols...)
}
