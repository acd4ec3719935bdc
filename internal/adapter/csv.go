package adapter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/go-faster/errors"

	"table-profiler/internal/table"
)

// CSVOptions CSV 读取选项
type CSVOptions struct {
	Delimiter rune // 默认 ','
	IndexCol  bool // 首列为行索引（pandas to_csv 默认输出），读取时丢弃
	Limit     int  // 最多读取行数，0 表示不限
}

// ReadCSV 读取带表头的 CSV，逐列推断类型：int → float → datetime → text，空字段视为缺失
func ReadCSV(r io.Reader, opts CSVOptions) (*table.Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return table.NewTable()
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}

	skip := 0
	if opts.IndexCol || (len(header) > 0 && header[0] == "") {
		skip = 1
	}
	header = header[skip:]

	raw := make([][]string, len(header))
	for n := 0; opts.Limit == 0 || n < opts.Limit; n++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(table.ErrInvalidInput, "read csv record %d: %v", n+1, err)
		}
		for i := range header {
			raw[i] = append(raw[i], record[i+skip])
		}
	}

	cols := make([]*table.Column, len(header))
	for i, name := range header {
		cols[i] = inferColumn(name, raw[i])
	}
	return table.NewTable(cols...)
}

// inferColumn 选择能解析所有非空字段的最窄类型
func inferColumn(name string, fields []string) *table.Column {
	for _, kind := range []table.Kind{table.KindInt, table.KindFloat, table.KindTime} {
		if values, ok := parseFields(kind, fields); ok {
			return &table.Column{Name: name, Kind: kind, Values: values}
		}
	}

	values := make([]any, len(fields))
	for i, f := range fields {
		if f != "" {
			values[i] = f
		}
	}
	return &table.Column{Name: name, Kind: table.KindText, Values: values}
}

func parseFields(kind table.Kind, fields []string) ([]any, bool) {
	values := make([]any, len(fields))
	present := 0
	for i, f := range fields {
		if f == "" {
			continue
		}
		present++
		switch kind {
		case table.KindInt:
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return nil, false
			}
			values[i] = n
		case table.KindFloat:
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, false
			}
			values[i] = v
		case table.KindTime:
			ts, ok := parseTime(f)
			if !ok {
				return nil, false
			}
			values[i] = ts
		}
	}
	// 全空列按 text 处理
	if present == 0 {
		return nil, false
	}
	return values, true
}
