package renderer

import (
	"encoding/json"

	"table-profiler/internal/table"
)

// tableDocument 表的 JSON 结构
type tableDocument struct {
	Columns []columnDocument `json:"columns"`
	Rows    [][]any          `json:"rows"`
}

type columnDocument struct {
	Name string     `json:"name"`
	Kind table.Kind `json:"kind"`
}

// TableJSON 导出表为 JSON，时间和 ±Inf 按 Format 输出，缺失值为 null
func TableJSON(t *table.Table) ([]byte, error) {
	doc := tableDocument{Rows: make([][]any, t.NumRows())}
	for _, c := range t.Columns() {
		doc.Columns = append(doc.Columns, columnDocument{Name: c.Name, Kind: c.Kind})
	}
	for r := range doc.Rows {
		row := make([]any, len(t.Columns()))
		for i, c := range t.Columns() {
			v := c.Values[r]
			switch {
			case table.IsMissing(v):
				row[i] = nil
			case c.Kind == table.KindTime || c.Kind == table.KindObject:
				row[i] = table.Format(v)
			default:
				row[i] = table.JSONValue(v)
			}
		}
		doc.Rows[r] = row
	}
	return json.MarshalIndent(doc, "", "  ")
}
