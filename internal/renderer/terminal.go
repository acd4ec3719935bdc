package renderer

import (
	"github.com/go-faster/errors"
	"github.com/pterm/pterm"

	"table-profiler/internal/profiler"
	"table-profiler/internal/table"
)

// TerminalRenderer 终端表格渲染器
type TerminalRenderer struct{}

// NewTerminalRenderer 创建渲染器
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderSummary 渲染列分析结果
func (r *TerminalRenderer) RenderSummary(s *profiler.Summary) (string, error) {
	data := append([][]string{summaryHeader}, summaryRows(s)...)
	return render(data)
}

// RenderTable 渲染表数据
func (r *TerminalRenderer) RenderTable(t *table.Table, limit int) (string, error) {
	rows, _ := tableRows(t, limit)
	data := append([][]string{t.Names()}, rows...)
	return render(data)
}

func render(data [][]string) (string, error) {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(data)).Srender()
	if err != nil {
		return "", errors.Wrap(err, "render table")
	}
	return out, nil
}
