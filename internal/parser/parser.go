package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// Engine 主工作簿解析器
// 逐条执行映射表规则，产出事实、说明文本与去重后的单元格证据。
type Engine struct {
	wb    *Workbook
	rules []model.MappingRule

	facts    map[string]*model.Fact
	texts    []model.TextFact
	evidence map[string]model.ParsedCell // sheet!addr → cell
	order    []string                    // 证据插入顺序
}

// NewEngine 创建解析引擎
func NewEngine(wb *Workbook, rules []model.MappingRule) *Engine {
	return &Engine{
		wb:       wb,
		rules:    rules,
		facts:    make(map[string]*model.Fact),
		evidence: make(map[string]model.ParsedCell),
	}
}

// Parse 执行整张映射表
// 可选规则失败只跳过该条；必填规则失败且该 key 再无后续变体时，
// 整轮解析以该错误中止——宁可失败也不静默接受残缺事实集。
func (e *Engine) Parse() (*model.ParseOutput, error) {
	// 每个 key 的后续变体数，用于判断失败时还能不能等下一条
	remaining := make(map[string]int)
	for _, r := range e.rules {
		if r.Type != model.RuleText {
			remaining[r.Key]++
		}
	}

	pendingErr := make(map[string]error)

	for _, rule := range e.rules {
		if rule.Type == model.RuleText {
			// 文本规则总是执行，不受首胜约束
			e.runTextRule(rule)
			continue
		}

		remaining[rule.Key]--

		if _, done := e.facts[rule.Key]; done {
			continue // 同 key 先前变体已成功
		}

		err := e.runNumericRule(rule)
		if err == nil {
			delete(pendingErr, rule.Key)
			continue
		}
		if !rule.Optional && pendingErr[rule.Key] == nil {
			pendingErr[rule.Key] = err
		}
		if remaining[rule.Key] > 0 {
			continue // 还有兜底变体（含可选），先不定论
		}
		// 该 key 已无后续变体：只要出现过必填失败即中止，可选变体失败不背锅
		if pending := pendingErr[rule.Key]; pending != nil {
			return nil, pending
		}
	}

	out := &model.ParseOutput{Texts: e.texts}
	for _, rule := range e.rules {
		if f, ok := e.facts[rule.Key]; ok {
			out.Facts = append(out.Facts, *f)
			delete(e.facts, rule.Key)
		}
	}
	for _, key := range e.order {
		out.ParsedCells = append(out.ParsedCells, e.evidence[key])
	}
	return out, nil
}

// runNumericRule 执行一条数值规则
func (e *Engine) runNumericRule(rule model.MappingRule) error {
	sheet := e.wb.ResolveSheet(rule.Sheet, rule.SheetAliases)
	if sheet == nil {
		return &ExtractionError{
			Kind:    ErrMissingSheet,
			RuleKey: rule.Key,
			Message: fmt.Sprintf("未找到 sheet %q（含别名 %v），工作簿现有: %v", rule.Sheet, rule.SheetAliases, e.wb.SheetNames()),
			Details: map[string]any{"availableSheets": e.wb.SheetNames()},
		}
	}

	rowCoord, rowLabel, ok := FindAnchorWithAliases(sheet, rule.RowAnchor, rule.RowAnchorAlias, rule.RowAnchorIndex)
	if !ok {
		return e.missingAnchor(rule, sheet, "行锚", rule.RowAnchor, rule.RowAnchorAlias)
	}
	colCoord, colLabel, ok := FindAnchorWithAliases(sheet, rule.ColAnchor, rule.ColAnchorAlias, rule.ColAnchorIndex)
	if !ok {
		return e.missingAnchor(rule, sheet, "列锚", rule.ColAnchor, rule.ColAnchorAlias)
	}

	e.recordCell(sheet, rowCoord, fmt.Sprintf("行锚 %q", rowLabel))
	e.recordCell(sheet, colCoord, fmt.Sprintf("列锚 %q", colLabel))

	target := Intersect(rowCoord, colCoord, rule.RowOffset, rule.ColOffset)
	raw := sheet.Cell(target.Row, target.Col)
	value := ParseAmount(raw, sheet.ColFormat(target.Col))
	targetCell := e.recordCell(sheet, target, fmt.Sprintf("%q × %q", rowLabel, colLabel))

	cells := []model.ParsedCell{targetCell}

	// 直取值为空或 0 时走求和兜底：总计格没填但分项填了（或相反）是常态
	if (value == nil || *value == 0) && (len(rule.SumCols) > 0 || len(rule.SumRows) > 0) {
		if sum, sumCells, ok := e.sumFallback(sheet, rule, rowCoord, colCoord); ok {
			value = &sum
			cells = append(cells, sumCells...)
		}
	}

	if value == nil {
		return &ExtractionError{
			Kind:     ErrMissingValue,
			RuleKey:  rule.Key,
			Message:  fmt.Sprintf("锚点 (%q × %q) 交叉单元格为空且无可用兜底", rowLabel, colLabel),
			Evidence: cells,
		}
	}

	e.facts[rule.Key] = &model.Fact{
		Key:           rule.Key,
		ValueNumeric:  *value,
		EvidenceCells: cells,
	}
	return nil
}

// sumFallback 按命名列/行锚定各组件并与已解析锚交叉求和
func (e *Engine) sumFallback(sheet *Sheet, rule model.MappingRule, rowCoord, colCoord Coordinate) (float64, []model.ParsedCell, bool) {
	var sum float64
	var cells []model.ParsedCell
	hit := false

	for _, colLabel := range rule.SumCols {
		comp, _, ok := FindAnchorWithAliases(sheet, colLabel, nil, 1)
		if !ok {
			continue
		}
		target := Coordinate{Row: rowCoord.Row + rule.RowOffset, Col: comp.Col}
		if v := ParseAmount(sheet.Cell(target.Row, target.Col), sheet.ColFormat(target.Col)); v != nil {
			sum += *v
			hit = true
			cells = append(cells, e.recordCell(sheet, target, fmt.Sprintf("求和组件列 %q", colLabel)))
		}
	}
	for _, rowLabel := range rule.SumRows {
		comp, _, ok := FindAnchorWithAliases(sheet, rowLabel, nil, 1)
		if !ok {
			continue
		}
		target := Coordinate{Row: comp.Row, Col: colCoord.Col + rule.ColOffset}
		if v := ParseAmount(sheet.Cell(target.Row, target.Col), sheet.ColFormat(target.Col)); v != nil {
			sum += *v
			hit = true
			cells = append(cells, e.recordCell(sheet, target, fmt.Sprintf("求和组件行 %q", rowLabel)))
		}
	}
	return sum, cells, hit
}

// runTextRule 说明文本抽取，永不报错：sheet 不存在就视为空
func (e *Engine) runTextRule(rule model.MappingRule) {
	sheet := e.wb.ResolveSheet(rule.Sheet, rule.SheetAliases)
	if sheet == nil {
		return
	}

	var text string
	switch rule.Strategy {
	case model.TextFirstCell:
		text = firstNonEmptyCell(sheet)
	default: // all_content
		text = allContent(sheet)
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	e.texts = append(e.texts, model.TextFact{Key: rule.Key, ValueText: text})
}

// allContent 行优先拼接全部非空单元格文本；多于一行时跳过表头行
func allContent(sheet *Sheet) string {
	start := 0
	if len(sheet.Rows) > 1 {
		start = 1
	}
	var b strings.Builder
	for _, row := range sheet.Rows[start:] {
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(cell)
		}
	}
	return b.String()
}

func firstNonEmptyCell(sheet *Sheet) string {
	for _, row := range sheet.Rows {
		for _, cell := range row {
			if s := strings.TrimSpace(cell); s != "" {
				return s
			}
		}
	}
	return ""
}

// recordCell 登记证据单元格，按 sheet+address 去重
func (e *Engine) recordCell(sheet *Sheet, coord Coordinate, anchorDesc string) model.ParsedCell {
	addr, err := excelize.CoordinatesToCellName(coord.Col+1, coord.Row+1)
	if err != nil {
		addr = fmt.Sprintf("R%dC%d", coord.Row+1, coord.Col+1)
	}
	key := sheet.Name + "!" + addr
	if cell, ok := e.evidence[key]; ok {
		return cell
	}

	raw := sheet.Cell(coord.Row, coord.Col)
	cell := model.ParsedCell{
		SheetName:       sheet.Name,
		CellAddress:     addr,
		AnchorDesc:      anchorDesc,
		RawValue:        raw,
		NormalizedValue: ParseAmount(raw, sheet.ColFormat(coord.Col)),
		ValueType:       ClassifyValue(raw),
		NumberFormat:    sheet.ColFormat(coord.Col),
	}
	e.evidence[key] = cell
	e.order = append(e.order, key)
	return cell
}

func (e *Engine) missingAnchor(rule model.MappingRule, sheet *Sheet, which, label string, aliases []string) error {
	return &ExtractionError{
		Kind:    ErrMissingAnchor,
		RuleKey: rule.Key,
		Message: fmt.Sprintf("sheet %q 内未找到%s %q（含别名 %v）", sheet.Name, which, label, aliases),
		Details: map[string]any{"attemptedLabels": append([]string{label}, aliases...)},
	}
}
