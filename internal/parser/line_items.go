package parser

import (
	"fmt"
	"strings"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// LineItemExtractor 功能分类科目表抽取器
// 表中每行要么是"类"名行、要么是"款"名行、要么是带三段编码与金额的"项"叶子行；
// 父级名称可能缺省，靠编码前缀回查名称表补齐。
type LineItemExtractor struct {
	classNames map[string]string // 类编码 → 名称，首见为准
	typeNames  map[string]string // 类+款编码 → 名称
}

// NewLineItemExtractor 创建抽取器
func NewLineItemExtractor() *LineItemExtractor {
	return &LineItemExtractor{
		classNames: make(map[string]string),
		typeNames:  make(map[string]string),
	}
}

// LineItemResult 行项目抽取结果
type LineItemResult struct {
	Facts []model.Fact
	Texts []model.TextFact
}

const headerMarker = "功能分类科目编码"

// Extract 从功能分类科目表中重建 编码→名称→金额 层级
// 找不到表头标记时返回空结果（不是错误：该表在部分口径下不存在）。
func (x *LineItemExtractor) Extract(sheet *Sheet) *LineItemResult {
	result := &LineItemResult{}

	headerRow, cols := x.locateHeader(sheet)
	if headerRow < 0 {
		return result
	}

	for r := headerRow + 1; r < len(sheet.Rows); r++ {
		class := strings.TrimSpace(sheet.Cell(r, cols.class))
		typ := strings.TrimSpace(sheet.Cell(r, cols.typ))
		item := strings.TrimSpace(sheet.Cell(r, cols.item))
		name := strings.TrimSpace(sheet.Cell(r, cols.name))

		switch {
		case class != "" && typ == "" && item == "":
			// 类名行：首见为准
			if _, ok := x.classNames[class]; !ok && name != "" {
				x.classNames[class] = name
			}
		case class != "" && typ != "" && item == "":
			key := class + typ
			if _, ok := x.typeNames[key]; !ok && name != "" {
				x.typeNames[key] = name
			}
		case class != "" && typ != "" && item != "":
			x.extractLeaf(sheet, result, r, cols, class, typ, item, name)
		}
	}

	// 类/款名称合成为文本事实，供报告章节标题回填
	for code, name := range x.classNames {
		result.Texts = append(result.Texts, model.TextFact{
			Key:       "line_item_class_name_" + code,
			ValueText: name,
		})
	}
	for code, name := range x.typeNames {
		result.Texts = append(result.Texts, model.TextFact{
			Key:       "line_item_type_name_" + code,
			ValueText: name,
		})
	}
	return result
}

type lineItemCols struct {
	class, typ, item int
	name             int
	total            int
	basic, project   int
}

// locateHeader 扫描表头标记行并定位各列
func (x *LineItemExtractor) locateHeader(sheet *Sheet) (int, lineItemCols) {
	cols := lineItemCols{class: -1, typ: -1, item: -1, name: -1, total: -1, basic: -1, project: -1}

	for r, row := range sheet.Rows {
		joined := NormalizeLabel(strings.Join(row, ""))
		if !strings.Contains(joined, headerMarker) {
			continue
		}
		// 标记行本行或下一行是具体列头（类/款/项常在标记下方合并行里）
		for _, hr := range []int{r, r + 1} {
			if hr >= len(sheet.Rows) {
				break
			}
			for c, cell := range sheet.Rows[hr] {
				switch NormalizeLabel(cell) {
				case "类":
					cols.class = c
				case "款":
					cols.typ = c
				case "项":
					cols.item = c
				case "科目名称", "功能分类科目名称", "名称":
					cols.name = c
				case "合计", "金额":
					cols.total = c
				case "基本支出":
					cols.basic = c
				case "项目支出":
					cols.project = c
				}
			}
		}
		if cols.class >= 0 && cols.typ >= 0 && cols.item >= 0 {
			// 列头行可能在标记行下一行，数据从其后开始
			start := r
			if cols.classFoundBelow(sheet, r) {
				start = r + 1
			}
			return start, cols
		}
	}
	return -1, cols
}

func (c lineItemCols) classFoundBelow(sheet *Sheet, markerRow int) bool {
	if markerRow+1 >= len(sheet.Rows) {
		return false
	}
	for _, cell := range sheet.Rows[markerRow+1] {
		if NormalizeLabel(cell) == "类" {
			return true
		}
	}
	return false
}

// extractLeaf 处理项级叶子行
func (x *LineItemExtractor) extractLeaf(sheet *Sheet, result *LineItemResult, r int, cols lineItemCols, class, typ, item, name string) {
	code := class + typ + item
	if !isAllDigits(code) {
		return // 编码混入非数字的行视为畸形，丢弃
	}

	amount := x.leafAmount(sheet, r, cols)
	if amount == nil {
		return
	}

	result.Facts = append(result.Facts, model.Fact{
		Key:          "amount_line_item_" + code,
		ValueNumeric: *amount,
		EvidenceCells: []model.ParsedCell{{
			SheetName:   sheet.Name,
			CellAddress: fmt.Sprintf("R%dC%d", r+1, cols.total+1),
			AnchorDesc:  fmt.Sprintf("功能分类 %s %s", code, name),
			RawValue:    sheet.Cell(r, cols.total),
		}},
	})
	result.Texts = append(result.Texts,
		model.TextFact{Key: "name_line_item_" + code, ValueText: name},
		model.TextFact{Key: "code_line_item_" + code, ValueText: code},
	)
}

// leafAmount 金额取合计列非零值，否则基本+项目分项求和
func (x *LineItemExtractor) leafAmount(sheet *Sheet, r int, cols lineItemCols) *float64 {
	if cols.total >= 0 {
		if v := ParseAmount(sheet.Cell(r, cols.total), sheet.ColFormat(cols.total)); v != nil && *v != 0 {
			return v
		}
	}

	var sum float64
	hit := false
	for _, c := range []int{cols.basic, cols.project} {
		if c < 0 {
			continue
		}
		if v := ParseAmount(sheet.Cell(r, c), sheet.ColFormat(c)); v != nil {
			sum += *v
			hit = true
		}
	}
	if !hit {
		return nil
	}
	return &sum
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
