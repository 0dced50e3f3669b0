package table

import (
	"fmt"
	"regexp"
	"strings"

	"tablegen/internal/pkg/apperr"
)

// separatorCell markdown 分隔行的单元格，如 --- 、:--: 、---:
var separatorCell = regexp.MustCompile(`^:?-+:?$`)

type options struct {
	strict bool
}

// Option 解析选项
type Option func(*options)

// WithStrict 严格模式：过滤 markdown 分隔行，数据行列数必须与表头一致
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Strict 按布尔值返回严格模式选项，便于从配置直接传入
func Strict(enabled bool) Option {
	return func(o *options) {
		o.strict = enabled
	}
}

// ExtractContent 取出 choices[0].message.content
func ExtractContent(body any) (string, error) {
	root, ok := body.(map[string]any)
	if !ok {
		return "", missingContent("response is not a JSON object")
	}
	choices, ok := root["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", missingContent("choices is empty")
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", missingContent("choices[0] is not an object")
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", missingContent("choices[0].message not found")
	}
	content, ok := message["content"].(string)
	if !ok {
		return "", missingContent("choices[0].message.content is not a string")
	}
	return content, nil
}

func missingContent(detail string) error {
	return apperr.New(apperr.KindParse, "missing content").WithDetail(detail)
}

// Parse 从解码后的响应体解析表格
func Parse(body any, opts ...Option) (*Table, error) {
	content, err := ExtractContent(body)
	if err != nil {
		return nil, err
	}
	return ParseContent(content, opts...)
}

// ParseContent 从模型回复文本解析表格
// 只保留以 | 开头的行；单元格去空白后丢弃空单元格；不足 2 个单元格的行丢弃
func ParseContent(content string, opts ...Option) (*Table, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var rows [][]string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "|") {
			continue
		}

		cells := splitCells(line)
		if len(cells) < 2 {
			continue
		}
		if o.strict && isSeparator(cells) {
			continue
		}
		rows = append(rows, cells)
	}

	if len(rows) < 2 {
		return nil, apperr.New(apperr.KindParse, "malformed table").
			WithDetail(fmt.Sprintf("found %d table rows, need a header and at least one data row", len(rows)))
	}

	tbl := &Table{
		Header: rows[0],
		Rows:   rows[1:],
	}

	if o.strict {
		for i, row := range tbl.Rows {
			if len(row) != len(tbl.Header) {
				return nil, apperr.New(apperr.KindParse, "malformed table").
					WithDetail(fmt.Sprintf("row %d has %d cells, header has %d", i+1, len(row), len(tbl.Header)))
			}
		}
	}

	return tbl, nil
}

func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return true
}
