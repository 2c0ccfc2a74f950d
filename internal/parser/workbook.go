package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/thedatashed/xlsxreader"
	"github.com/xuri/excelize/v2"
)

// Sheet 已展开为二维文本的工作表快照
// 公式单元格读到的是缓存结果文本，富文本已拼接为纯文本。
type Sheet struct {
	Name string
	Rows [][]string
	// 列级显示格式（按首个数据行采样），次级引擎下为空
	colFormats map[int]string
}

// Workbook 已打开的工作簿
// 主引擎 excelize 打不开时降级到 xlsxreader（只读单元格文本）。
type Workbook struct {
	Engine string // excelize / xlsxreader
	sheets []*Sheet
	x      *excelize.File
}

// OpenWorkbook 打开上传的工作簿字节流
// 旧版二进制格式（xls）在解析前即以 INVALID_FILE_TYPE 拒绝。
func OpenWorkbook(data []byte) (*Workbook, error) {
	if kind, err := filetype.Match(data); err == nil && kind == matchers.TypeXls {
		return nil, &ExtractionError{
			Kind:    ErrInvalidFileType,
			Message: "旧版 xls 二进制格式不受支持，请另存为 xlsx 后重新上传",
		}
	}

	wb, primaryErr := openWithExcelize(data)
	if primaryErr == nil {
		return wb, nil
	}
	// 布局不可读是终态，换引擎也读不出正确行列，上游须要求源方重新导出
	var ee *ExtractionError
	if errors.As(primaryErr, &ee) && ee.Kind == ErrUnsupportedLayout {
		return nil, ee
	}

	wb, err := openWithXlsxReader(data)
	if err != nil {
		return nil, fmt.Errorf("无法打开工作簿: %w", err)
	}
	return wb, nil
}

func openWithExcelize(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	wb := &Workbook{Engine: "excelize", x: f}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			// 合并单元格/维度冲突导致整表不可读
			return nil, &ExtractionError{
				Kind:    ErrUnsupportedLayout,
				Message: fmt.Sprintf("sheet %q 读取失败: %v", name, err),
			}
		}
		wb.sheets = append(wb.sheets, &Sheet{
			Name:       name,
			Rows:       rows,
			colFormats: sampleColumnFormats(f, name, rows),
		})
	}
	return wb, nil
}

func openWithXlsxReader(data []byte) (*Workbook, error) {
	xl, err := xlsxreader.NewReader(data)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{Engine: "xlsxreader"}
	for _, name := range xl.Sheets {
		var rows [][]string
		for row := range xl.ReadRows(name) {
			if row.Error != nil {
				continue
			}
			line := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				idx := cell.ColumnIndex()
				for len(line) < idx {
					line = append(line, "")
				}
				line = append(line, cell.Value)
			}
			// 行号可能跳空行，补齐到该行
			for len(rows) < row.Index-1 {
				rows = append(rows, nil)
			}
			rows = append(rows, line)
		}
		wb.sheets = append(wb.sheets, &Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

// sampleColumnFormats 按首个数据行采样各列的自定义显示格式
// 归一化器靠格式文本里的"万元/千元"判定单位倍率。
func sampleColumnFormats(f *excelize.File, sheet string, rows [][]string) map[int]string {
	formats := make(map[int]string)
	if len(rows) < 2 {
		return formats
	}
	for col := range rows[1] {
		addr, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			continue
		}
		styleID, err := f.GetCellStyle(sheet, addr)
		if err != nil {
			continue
		}
		style, err := f.GetStyle(styleID)
		if err != nil || style == nil || style.CustomNumFmt == nil {
			continue
		}
		if *style.CustomNumFmt != "" {
			formats[col] = *style.CustomNumFmt
		}
	}
	return formats
}

// SheetNames 所有 sheet 名（按工作簿顺序）
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.sheets))
	for _, s := range w.sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet 按名称精确查找
func (w *Workbook) Sheet(name string) *Sheet {
	for _, s := range w.sheets {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// ResolveSheet 先按主名、再按别名顺序查找
func (w *Workbook) ResolveSheet(name string, aliases []string) *Sheet {
	if s := w.Sheet(name); s != nil {
		return s
	}
	for _, alias := range aliases {
		if s := w.Sheet(alias); s != nil {
			return s
		}
	}
	// 兜底：sheet 名常带年份前后缀，按包含匹配再试一轮
	for _, want := range append([]string{name}, aliases...) {
		for _, s := range w.sheets {
			if strings.Contains(NormalizeLabel(s.Name), NormalizeLabel(want)) {
				return s
			}
		}
	}
	return nil
}

// Excelize 返回底层 excelize 句柄；次级引擎下为 nil（公式重算不可用）
func (w *Workbook) Excelize() *excelize.File {
	return w.x
}

// Close 释放底层文件
func (w *Workbook) Close() error {
	if w.x != nil {
		return w.x.Close()
	}
	return nil
}

// Cell 取指定坐标文本（越界返回空串）
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	line := s.Rows[row]
	if col < 0 || col >= len(line) {
		return ""
	}
	return line[col]
}

// ColFormat 取列的显示格式（无记录返回空串）
func (s *Sheet) ColFormat(col int) string {
	if s.colFormats == nil {
		return ""
	}
	return s.colFormats[col]
}
