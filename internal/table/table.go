// Package table 将模型返回的竖线分隔文本解析为表格
package table

// Table 解析后的表格
// Header 为第一行，Rows 为其余数据行；列数不做对齐
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Columns 表头列数
func (t *Table) Columns() int {
	return len(t.Header)
}

// Records 返回包含表头在内的全部行
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	records = append(records, t.Rows...)
	return records
}

// Ragged 是否存在列数与表头不一致的数据行
func (t *Table) Ragged() bool {
	for _, row := range t.Rows {
		if len(row) != len(t.Header) {
			return true
		}
	}
	return false
}
