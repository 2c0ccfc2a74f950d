package parser

import (
	"testing"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

func wbOf(sheets ...*Sheet) *Workbook {
	return &Workbook{Engine: "test", sheets: sheets}
}

// 典型收支总表：行锚"本年收入合计"，列锚"金额"
func summarySheet() *Sheet {
	return &Sheet{
		Name: "收支总表",
		Rows: [][]string{
			{"项目", "金额"},
			{"本年收入合计", "1200.50"},
			{"本年支出合计", "1100.00"},
		},
	}
}

func TestParse_FirstVariantWins(t *testing.T) {
	t.Parallel()

	rules := []model.MappingRule{
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "本年收入合计", ColAnchor: "金额", Type: model.RuleNumeric},
		// 同 key 后续变体不应再执行
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "本年支出合计", ColAnchor: "金额", Type: model.RuleNumeric},
	}

	out, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Facts) != 1 {
		t.Fatalf("want 1 fact got %d", len(out.Facts))
	}
	if out.Facts[0].ValueNumeric != 1200.50 {
		t.Fatalf("首条变体应生效: got %v", out.Facts[0].ValueNumeric)
	}
}

func TestParse_FallbackVariantAfterMiss(t *testing.T) {
	t.Parallel()

	rules := []model.MappingRule{
		// 首条变体锚不存在
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "收入总计", ColAnchor: "金额", Type: model.RuleNumeric},
		// 兜底变体命中
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "本年收入合计", ColAnchor: "金额", Type: model.RuleNumeric},
	}

	out, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if err != nil {
		t.Fatalf("兜底变体在场时必填失败不应中止: %v", err)
	}
	if len(out.Facts) != 1 || out.Facts[0].ValueNumeric != 1200.50 {
		t.Fatalf("unexpected facts: %+v", out.Facts)
	}
}

func TestParse_RequiredFailureNotMaskedByOptionalVariant(t *testing.T) {
	t.Parallel()

	rules := []model.MappingRule{
		// 必填变体锚缺失
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "不存在的锚", ColAnchor: "金额", Type: model.RuleNumeric},
		// 同 key 可选变体也失败：不能替必填失败兜底
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "另一个不存在的锚", ColAnchor: "金额", Type: model.RuleNumeric, Optional: true},
	}

	_, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if err == nil {
		t.Fatalf("必填变体失败应中止整轮解析")
	}
	if !IsKind(err, ErrMissingAnchor) {
		t.Fatalf("want MISSING_ANCHOR got %v", err)
	}
}

func TestParse_OptionalVariantCanResolveRequiredKey(t *testing.T) {
	t.Parallel()

	rules := []model.MappingRule{
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "不存在的锚", ColAnchor: "金额", Type: model.RuleNumeric},
		// 可选变体命中即算取到，挂起的必填失败随之撤销
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "本年收入合计", ColAnchor: "金额", Type: model.RuleNumeric, Optional: true},
	}

	out, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Facts) != 1 || out.Facts[0].ValueNumeric != 1200.50 {
		t.Fatalf("unexpected facts: %+v", out.Facts)
	}
}

func TestParse_RequiredFailureAborts(t *testing.T) {
	t.Parallel()

	rules := []model.MappingRule{
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "不存在的锚", ColAnchor: "金额", Type: model.RuleNumeric},
	}

	_, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsKind(err, ErrMissingAnchor) {
		t.Fatalf("want MISSING_ANCHOR got %v", err)
	}
}

func TestParse_OptionalFailureSkips(t *testing.T) {
	t.Parallel()

	rules := []model.MappingRule{
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "本年收入合计", ColAnchor: "金额", Type: model.RuleNumeric},
		{Key: "carryover_funds", Sheet: "收支总表", RowAnchor: "上年结转", ColAnchor: "金额", Optional: true, Type: model.RuleNumeric},
	}

	out, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if err != nil {
		t.Fatalf("可选规则失败不应中止: %v", err)
	}
	if len(out.Facts) != 1 || out.Facts[0].Key != "budget_revenue_total" {
		t.Fatalf("unexpected facts: %+v", out.Facts)
	}
}

func TestParse_MissingSheet(t *testing.T) {
	t.Parallel()

	rules := []model.MappingRule{
		{Key: "budget_revenue_total", Sheet: "不存在的表", RowAnchor: "本年收入合计", ColAnchor: "金额", Type: model.RuleNumeric},
	}

	_, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if !IsKind(err, ErrMissingSheet) {
		t.Fatalf("want MISSING_SHEET got %v", err)
	}
}

func TestParse_SumFallbackWhenTotalBlank(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Name: "三公经费表",
		Rows: [][]string{
			{"项目", "合计", "因公出国（境）费", "公务接待费", "公务用车购置及运行费"},
			{"预算数", "", "10.50", "20.25", "30.25"},
		},
	}
	rules := []model.MappingRule{
		{
			Key: "three_public_total", Sheet: "三公经费表",
			RowAnchor: "预算数", ColAnchor: "合计",
			SumCols: []string{"因公出国（境）费", "公务接待费", "公务用车购置及运行费"},
			Type:    model.RuleNumeric,
		},
	}

	out, err := NewEngine(wbOf(sheet), rules).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Facts) != 1 || out.Facts[0].ValueNumeric != 61.00 {
		t.Fatalf("求和兜底: want 61.00 got %+v", out.Facts)
	}
	// 证据应包含合计格与三个组件格
	if len(out.Facts[0].EvidenceCells) != 4 {
		t.Fatalf("want 4 evidence cells got %d", len(out.Facts[0].EvidenceCells))
	}
}

func TestParse_ZeroTotalPrefersComponentSum(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Name: "支出构成表",
		Rows: [][]string{
			{"项目", "合计", "基本支出", "项目支出"},
			{"本年支出", "0", "700", "400"},
		},
	}
	rules := []model.MappingRule{
		{
			Key: "expenditure_composition_total", Sheet: "支出构成表",
			RowAnchor: "本年支出", ColAnchor: "合计",
			SumCols: []string{"基本支出", "项目支出"},
			Type:    model.RuleNumeric,
		},
	}

	out, err := NewEngine(wbOf(sheet), rules).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Facts[0].ValueNumeric != 1100 {
		t.Fatalf("直取 0 时应取组件和: got %v", out.Facts[0].ValueNumeric)
	}
}

func TestParse_EvidenceDeduplicated(t *testing.T) {
	t.Parallel()

	// 两条规则共享行锚单元格
	rules := []model.MappingRule{
		{Key: "budget_revenue_total", Sheet: "收支总表", RowAnchor: "本年收入合计", ColAnchor: "金额", Type: model.RuleNumeric},
		{Key: "budget_expenditure_total", Sheet: "收支总表", RowAnchor: "本年支出合计", ColAnchor: "金额", Type: model.RuleNumeric},
	}

	out, err := NewEngine(wbOf(summarySheet()), rules).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for _, c := range out.ParsedCells {
		key := c.SheetName + "!" + c.CellAddress
		if seen[key] {
			t.Fatalf("重复证据单元格: %s", key)
		}
		seen[key] = true
	}
	// 列锚"金额"被两条规则共用，只登记一次
	if !seen["收支总表!B1"] {
		t.Fatalf("列锚证据缺失: %v", out.ParsedCells)
	}
}

func TestParse_TextRuleNeverFails(t *testing.T) {
	t.Parallel()

	narrative := &Sheet{
		Name: "情况说明",
		Rows: [][]string{
			{"情况说明"},
			{"一、主要职责", ""},
			{"负责全县预算编制。"},
		},
	}
	rules := []model.MappingRule{
		{Key: "narrative_overview", Sheet: "情况说明", Type: model.RuleText, Strategy: model.TextAllContent},
		{Key: "narrative_missing", Sheet: "不存在的说明表", Type: model.RuleText, Strategy: model.TextAllContent},
	}

	out, err := NewEngine(wbOf(narrative), rules).Parse()
	if err != nil {
		t.Fatalf("文本规则不应报错: %v", err)
	}
	if len(out.Texts) != 1 {
		t.Fatalf("want 1 text got %d", len(out.Texts))
	}
	if out.Texts[0].ValueText != "一、主要职责\n负责全县预算编制。" {
		t.Fatalf("文本拼接应跳过表头行: %q", out.Texts[0].ValueText)
	}
}

func TestResolveSheet_AliasAndContains(t *testing.T) {
	t.Parallel()

	wb := wbOf(
		&Sheet{Name: "2025年收支总表"},
		&Sheet{Name: "三公经费表"},
	)

	if s := wb.ResolveSheet("收支总表", nil); s == nil || s.Name != "2025年收支总表" {
		t.Fatalf("年份前缀应按包含兜底命中: %v", s)
	}
	if s := wb.ResolveSheet("不存在", []string{"三公经费表"}); s == nil || s.Name != "三公经费表" {
		t.Fatalf("别名应命中: %v", s)
	}
	if s := wb.ResolveSheet("彻底不存在", nil); s != nil {
		t.Fatalf("未命中应返回 nil: %v", s)
	}
}
