package table

import (
	"strings"
)

// EmptyCell 渲染空单元格时使用的占位符
// 解析时会丢弃空单元格，占位后读回的列数与原表一致
const EmptyCell = "(blank)"

var cellReplacer = strings.NewReplacer("|", "/", "\r", " ", "\n", " ")

// Markdown 将表格渲染为竖线分隔文本，第二行为分隔行
// 单元格中的 | 和换行会被替换，空单元格写为 EmptyCell
func Markdown(t *Table) string {
	var b strings.Builder
	writeRow(&b, t.Header)

	sep := make([]string, len(t.Header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)

	for _, row := range t.Rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		c = strings.TrimSpace(cellReplacer.Replace(c))
		if c == "" {
			c = EmptyCell
		}
		b.WriteString(" ")
		b.WriteString(c)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
