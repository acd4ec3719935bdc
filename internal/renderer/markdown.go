package renderer

import (
	"fmt"
	"strings"

	"table-profiler/internal/profiler"
	"table-profiler/internal/table"
)

// summaryHeader 分析结果列
var summaryHeader = []string{"column", "type", "size", "isnull", "count", "isunicode", "min", "max", "mode", "mode_cnt", "uniq_cnt"}

// MarkdownRenderer Markdown 渲染器
type MarkdownRenderer struct{}

// NewMarkdownRenderer 创建渲染器
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// RenderSummary 渲染列分析结果
func (m *MarkdownRenderer) RenderSummary(title string, s *profiler.Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if s.Len() == 0 {
		sb.WriteString("_no columns_\n")
		return sb.String()
	}

	writeMarkdownTable(&sb, summaryHeader, summaryRows(s))
	sb.WriteString("\n> min/max of text columns are string lengths.\n")
	return sb.String()
}

// RenderTable 渲染表数据，limit 为 0 时输出全部行
func (m *MarkdownRenderer) RenderTable(title string, t *table.Table, limit int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	rows, shown := tableRows(t, limit)
	if len(t.Columns()) == 0 {
		sb.WriteString("_no columns_\n")
		return sb.String()
	}
	writeMarkdownTable(&sb, t.Names(), rows)

	if shown < t.NumRows() {
		sb.WriteString(fmt.Sprintf("\n_%d of %d rows_\n", shown, t.NumRows()))
	}
	return sb.String()
}

func writeMarkdownTable(sb *strings.Builder, header []string, rows [][]string) {
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("|" + strings.Join(sep, "|") + "|\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

// summaryRows 每个输入列一行
func summaryRows(s *profiler.Summary) [][]string {
	rows := make([][]string, 0, s.Len())
	for _, c := range s.Columns {
		rows = append(rows, []string{
			c.Name,
			c.Type.String(),
			fmt.Sprintf("%d", c.Size),
			fmt.Sprintf("%t", c.IsNull),
			fmt.Sprintf("%d", c.Count),
			boolCell(c.IsUnicode),
			cell(c.Min),
			cell(c.Max),
			cell(c.Mode),
			intCell(c.ModeCount),
			intCell(c.UniqueCount),
		})
	}
	return rows
}

// tableRows 返回前 limit 行及实际行数
func tableRows(t *table.Table, limit int) ([][]string, int) {
	n := t.NumRows()
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(t.Columns()))
		for i, c := range t.Columns() {
			row[i] = cell(c.Values[r])
		}
		rows[r] = row
	}
	return rows, n
}

func cell(v any) string {
	if table.IsMissing(v) {
		return ""
	}
	return table.Format(v)
}

func boolCell(b *bool) string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("%t", *b)
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}
