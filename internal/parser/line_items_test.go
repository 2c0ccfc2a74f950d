package parser

import "testing"

func lineItemSheet() *Sheet {
	return &Sheet{
		Name: "一般公共预算支出表",
		Rows: [][]string{
			{"功能分类科目编码", "", "", "科目名称", "合计", "基本支出", "项目支出"},
			{"类", "款", "项", "", "", "", ""},
			{"201", "", "", "一般公共服务支出", "", "", ""},
			{"201", "03", "", "政府办公厅（室）及相关机构事务", "", "", ""},
			{"201", "03", "01", "行政运行", "850.20", "800.20", "50.00"},
			{"201", "03", "50", "事业运行", "", "120.00", "30.00"},
			{"201", "03", "xx", "畸形编码行", "99", "", ""},
		},
	}
}

func TestLineItems_HierarchyAndAmounts(t *testing.T) {
	t.Parallel()

	result := NewLineItemExtractor().Extract(lineItemSheet())

	facts := make(map[string]float64)
	for _, f := range result.Facts {
		facts[f.Key] = f.ValueNumeric
	}

	// 合计列有值直接取
	if got := facts["amount_line_item_2010301"]; got != 850.20 {
		t.Fatalf("2010301: want 850.20 got %v", got)
	}
	// 合计列空时取 基本+项目
	if got := facts["amount_line_item_2010350"]; got != 150.00 {
		t.Fatalf("2010350: want 150.00 got %v", got)
	}
	// 畸形编码行丢弃
	if _, ok := facts["amount_line_item_20103xx"]; ok {
		t.Fatalf("畸形编码不应产出事实")
	}

	texts := make(map[string]string)
	for _, tf := range result.Texts {
		texts[tf.Key] = tf.ValueText
	}
	if texts["name_line_item_2010301"] != "行政运行" {
		t.Fatalf("叶子名称缺失: %v", texts)
	}
	if texts["code_line_item_2010301"] != "2010301" {
		t.Fatalf("叶子编码缺失: %v", texts)
	}
	// 类/款名称回查表
	if texts["line_item_class_name_201"] != "一般公共服务支出" {
		t.Fatalf("类名称缺失: %v", texts)
	}
	if texts["line_item_type_name_20103"] != "政府办公厅（室）及相关机构事务" {
		t.Fatalf("款名称缺失: %v", texts)
	}
}

func TestLineItems_NoHeaderProducesEmptyResult(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{
		Name: "收支总表",
		Rows: [][]string{{"项目", "金额"}, {"本年收入合计", "100"}},
	}
	result := NewLineItemExtractor().Extract(sheet)
	if len(result.Facts) != 0 || len(result.Texts) != 0 {
		t.Fatalf("无表头标记应返回空结果: %+v", result)
	}
}
