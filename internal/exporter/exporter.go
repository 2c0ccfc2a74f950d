package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// Exporter 解析结果导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export 把一次解析的事实、校验问题与证据导出为结果工作簿
func (e *Exporter) Export(output *model.ParseOutput, issues []model.ValidationIssue) (*excelize.File, error) {
	f := excelize.NewFile()

	factSheet := "数值事实"
	f.SetSheetName("Sheet1", factSheet)

	headers := []string{"字段", "金额（万元）", "证据单元格数"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(factSheet, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetRowStyle(factSheet, 1, 1, headerStyle)

	for i, fact := range output.Facts {
		row := i + 2
		f.SetCellValue(factSheet, fmt.Sprintf("A%d", row), fact.Key)
		f.SetCellValue(factSheet, fmt.Sprintf("B%d", row), fact.ValueNumeric)
		f.SetCellValue(factSheet, fmt.Sprintf("C%d", row), len(fact.EvidenceCells))
	}

	// 文本事实追加在数值事实之后
	textStart := len(output.Facts) + 3
	for i, t := range output.Texts {
		row := textStart + i
		f.SetCellValue(factSheet, fmt.Sprintf("A%d", row), t.Key)
		f.SetCellValue(factSheet, fmt.Sprintf("B%d", row), t.ValueText)
	}

	// 校验问题表
	issueSheet := "校验问题"
	f.NewSheet(issueSheet)
	issueHeaders := []string{"规则", "级别", "说明"}
	for i, h := range issueHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(issueSheet, cell, h)
	}
	f.SetRowStyle(issueSheet, 1, 1, headerStyle)
	for i, issue := range issues {
		row := i + 2
		f.SetCellValue(issueSheet, fmt.Sprintf("A%d", row), issue.RuleID)
		f.SetCellValue(issueSheet, fmt.Sprintf("B%d", row), string(issue.Level))
		f.SetCellValue(issueSheet, fmt.Sprintf("C%d", row), issue.Message)
	}

	// 证据明细表
	evidenceSheet := "取数证据"
	f.NewSheet(evidenceSheet)
	evidenceHeaders := []string{"Sheet", "单元格", "锚点", "原始值", "归一值", "值类型"}
	for i, h := range evidenceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(evidenceSheet, cell, h)
	}
	f.SetRowStyle(evidenceSheet, 1, 1, headerStyle)
	for i, c := range output.ParsedCells {
		row := i + 2
		f.SetCellValue(evidenceSheet, fmt.Sprintf("A%d", row), c.SheetName)
		f.SetCellValue(evidenceSheet, fmt.Sprintf("B%d", row), c.CellAddress)
		f.SetCellValue(evidenceSheet, fmt.Sprintf("C%d", row), c.AnchorDesc)
		f.SetCellValue(evidenceSheet, fmt.Sprintf("D%d", row), c.RawValue)
		if c.NormalizedValue != nil {
			f.SetCellValue(evidenceSheet, fmt.Sprintf("E%d", row), *c.NormalizedValue)
		}
		f.SetCellValue(evidenceSheet, fmt.Sprintf("F%d", row), string(c.ValueType))
	}

	f.SetColWidth(factSheet, "A", "A", 36)
	f.SetColWidth(factSheet, "B", "B", 18)
	f.SetColWidth(issueSheet, "A", "A", 40)
	f.SetColWidth(issueSheet, "C", "C", 60)
	f.SetColWidth(evidenceSheet, "C", "C", 40)

	return f, nil
}
