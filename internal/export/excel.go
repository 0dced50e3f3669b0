// Package export 将表格写入 xlsx 文件
package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"tablegen/internal/pkg/apperr"
	"tablegen/internal/table"
)

const (
	// DefaultExt 默认文件扩展名
	DefaultExt = ".xlsx"
	// SheetName 写入的工作表名称
	SheetName = "Sheet1"
	// ContentType xlsx 的 MIME 类型
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// build 生成工作簿：第一行表头，其余为数据行，不写索引列
func build(tbl *table.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, record := range tbl.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// Write 将表格写入 w
func Write(tbl *table.Table, w io.Writer) error {
	f, err := build(tbl)
	if err != nil {
		return apperr.Wrap(apperr.KindExport, "build workbook", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return apperr.Wrap(apperr.KindExport, "write workbook", err)
	}
	return nil
}

// WriteFile 将表格保存到 path，返回最终文件路径
// path 没有扩展名时补上 .xlsx，父目录不存在时自动创建
func WriteFile(tbl *table.Table, path string) (string, error) {
	if path == "" {
		return "", apperr.New(apperr.KindExport, "output path is empty")
	}
	if filepath.Ext(path) == "" {
		path += DefaultExt
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", apperr.Wrap(apperr.KindExport, "create output directory", err)
		}
	}

	f, err := build(tbl)
	if err != nil {
		return "", apperr.Wrap(apperr.KindExport, "build workbook", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", apperr.Wrap(apperr.KindExport, "save workbook", err)
	}

	log.Info().
		Str("path", path).
		Int("columns", tbl.Columns()).
		Int("rows", len(tbl.Rows)).
		Msg("table exported")

	return path, nil
}

// ReadFile 读取 xlsx 文件第一个工作表
func ReadFile(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExport, "open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.New(apperr.KindExport, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindExport, "read rows", err)
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.KindExport, "sheet is empty").WithDetail(sheets[0])
	}

	return &table.Table{
		Header: rows[0],
		Rows:   rows[1:],
	}, nil
}
