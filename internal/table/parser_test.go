package table

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tablegen/internal/pkg/apperr"
)

func envelope(content string) any {
	raw, _ := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	var body any
	_ = json.Unmarshal(raw, &body)
	return body
}

func TestParseContent(t *testing.T) {
	Convey("ParseContent 解析竖线分隔表格", t, func() {
		Convey("没有以 | 开头的行返回解析错误", func() {
			tbl, err := ParseContent("Sorry, I cannot help with that.\nName, Age\nAlice, 30")
			So(tbl, ShouldBeNil)
			So(errors.Is(err, apperr.ErrParse), ShouldBeTrue)
		})

		Convey("只有表头返回解析错误", func() {
			_, err := ParseContent("| Name | Age |")
			So(errors.Is(err, apperr.ErrParse), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "malformed table")
		})

		Convey("标准表格", func() {
			tbl, err := ParseContent("| Name | Age |\n| Alice | 30 |\n| Bob | 25 |")
			So(err, ShouldBeNil)
			So(tbl.Header, ShouldResemble, []string{"Name", "Age"})
			So(tbl.Rows, ShouldResemble, [][]string{{"Alice", "30"}, {"Bob", "25"}})
		})

		Convey("忽略穿插的说明文字", func() {
			tbl, err := ParseContent("intro text\n| A | B |\n| 1 | 2 |\nfooter")
			So(err, ShouldBeNil)
			So(tbl.Header, ShouldResemble, []string{"A", "B"})
			So(tbl.Rows, ShouldResemble, [][]string{{"1", "2"}})
		})

		Convey("缩进和空行不影响结果", func() {
			tbl, err := ParseContent("\n\n   | A | B |  \r\n\n\t| 1 | 2 |\r\n")
			So(err, ShouldBeNil)
			So(tbl.Header, ShouldResemble, []string{"A", "B"})
			So(tbl.Rows, ShouldResemble, [][]string{{"1", "2"}})
		})

		Convey("单元格不足 2 个的行视为噪声", func() {
			tbl, err := ParseContent("| Title |\n| A | B |\n| only |\n| 1 | 2 |")
			So(err, ShouldBeNil)
			So(tbl.Header, ShouldResemble, []string{"A", "B"})
			So(tbl.Rows, ShouldResemble, [][]string{{"1", "2"}})
		})

		Convey("默认模式保留分隔行且不对齐列数", func() {
			tbl, err := ParseContent("| A | B |\n|---|---|\n| 1 | 2 | 3 |\n| x | | y |")
			So(err, ShouldBeNil)
			So(tbl.Rows, ShouldResemble, [][]string{{"---", "---"}, {"1", "2", "3"}, {"x", "y"}})
			So(tbl.Ragged(), ShouldBeTrue)
		})

		Convey("表头可以重复", func() {
			tbl, err := ParseContent("| A | A |\n| 1 | 2 |")
			So(err, ShouldBeNil)
			So(tbl.Header, ShouldResemble, []string{"A", "A"})
		})

		Convey("代码块中的表格同样被识别", func() {
			tbl, err := ParseContent("```markdown\n| A | B |\n| 1 | 2 |\n```")
			So(err, ShouldBeNil)
			So(tbl.Records(), ShouldResemble, [][]string{{"A", "B"}, {"1", "2"}})
		})

		Convey("多次解析结果一致", func() {
			content := "| Name | Age |\n|------|-----|\n| Alice | 30 |"
			first, err1 := ParseContent(content)
			second, err2 := ParseContent(content)
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(second, ShouldResemble, first)
		})
	})

	Convey("严格模式", t, func() {
		Convey("过滤分隔行", func() {
			tbl, err := ParseContent("| A | B |\n| :--- | ---: |\n| 1 | 2 |", WithStrict())
			So(err, ShouldBeNil)
			So(tbl.Rows, ShouldResemble, [][]string{{"1", "2"}})
		})

		Convey("只有表头和分隔行返回解析错误", func() {
			_, err := ParseContent("| A | B |\n|---|---|", WithStrict())
			So(errors.Is(err, apperr.ErrParse), ShouldBeTrue)
		})

		Convey("列数不一致返回解析错误", func() {
			_, err := ParseContent("| A | B |\n| 1 | 2 | 3 |", WithStrict())
			So(errors.Is(err, apperr.ErrParse), ShouldBeTrue)
			So(apperr.DetailOf(err), ShouldContainSubstring, "row 1 has 3 cells")
		})

		Convey("Strict(false) 等同默认模式", func() {
			tbl, err := ParseContent("| A | B |\n|---|---|", Strict(false))
			So(err, ShouldBeNil)
			So(tbl.Rows, ShouldResemble, [][]string{{"---", "---"}})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parse 从响应体中取出内容", t, func() {
		Convey("正常响应", func() {
			tbl, err := Parse(envelope("Here you go:\n| Name | Age |\n| Alice | 30 |"))
			So(err, ShouldBeNil)
			So(tbl.Header, ShouldResemble, []string{"Name", "Age"})
			So(tbl.Columns(), ShouldEqual, 2)
		})

		Convey("内容路径不存在返回解析错误", func() {
			cases := []any{
				nil,
				[]any{},
				map[string]any{},
				map[string]any{"choices": []any{}},
				map[string]any{"choices": []any{"x"}},
				map[string]any{"choices": []any{map[string]any{}}},
				map[string]any{"choices": []any{map[string]any{"message": map[string]any{"content": nil}}}},
			}
			for _, body := range cases {
				tbl, err := Parse(body)
				So(tbl, ShouldBeNil)
				So(errors.Is(err, apperr.ErrParse), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "missing content")
			}
		})
	})
}
