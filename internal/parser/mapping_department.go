package parser

import "github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"

// DepartmentMappingRules 部门口径映射表
// 与单位口径共用 key，差异在 sheet 命名（带"部门"前缀）与合成口径：
// 部门收入含所属单位汇总，结转结余单列。
func DepartmentMappingRules() []model.MappingRule {
	return []model.MappingRule{
		{
			Key:            "budget_revenue_total",
			Sheet:          "部门收支总体情况表",
			SheetAliases:   []string{"部门收支总表", "收支总表"},
			RowAnchor:      "收入总计",
			RowAnchorAlias: []string{"本年收入合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数"},
		},
		{
			Key:            "budget_expenditure_total",
			Sheet:          "部门收支总体情况表",
			SheetAliases:   []string{"部门收支总表", "收支总表"},
			RowAnchor:      "支出总计",
			RowAnchorAlias: []string{"本年支出合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数"},
			ColAnchorIndex: -1,
		},
		{
			Key:            "fiscal_appropriation_income",
			Sheet:          "部门收入总体情况表",
			SheetAliases:   []string{"部门收入总表"},
			RowAnchor:      "合计",
			ColAnchor:      "财政拨款收入",
			Optional:       true,
		},
		{
			Key:            "subordinate_unit_income",
			Sheet:          "部门收入总体情况表",
			SheetAliases:   []string{"部门收入总表"},
			RowAnchor:      "合计",
			ColAnchor:      "所属单位上缴收入",
			ColAnchorAlias: []string{"附属单位上缴收入"},
			Optional:       true,
		},
		{
			Key:            "carryover_funds",
			Sheet:          "部门收入总体情况表",
			SheetAliases:   []string{"部门收入总表"},
			RowAnchor:      "合计",
			ColAnchor:      "上年结转",
			ColAnchorAlias: []string{"上年结转和结余"},
			Optional:       true,
		},
		{
			Key:            "basic_expenditure_total",
			Sheet:          "部门支出总体情况表",
			SheetAliases:   []string{"部门支出总表"},
			RowAnchor:      "合计",
			ColAnchor:      "基本支出",
			ColAnchorAlias: []string{"基本支出小计"},
		},
		{
			Key:            "project_expenditure_total",
			Sheet:          "部门支出总体情况表",
			SheetAliases:   []string{"部门支出总表"},
			RowAnchor:      "合计",
			ColAnchor:      "项目支出",
			ColAnchorAlias: []string{"项目支出小计"},
		},
		{
			Key:          "expenditure_composition_total",
			Sheet:        "部门支出总体情况表",
			SheetAliases: []string{"部门支出总表"},
			RowAnchor:    "合计",
			ColAnchor:    "支出合计",
			SumCols:      []string{"基本支出", "项目支出"},
			Optional:     true,
		},
		{
			Key:            "fiscal_grant_revenue_total",
			Sheet:          "部门财政拨款收支总表",
			SheetAliases:   []string{"财政拨款收支总表"},
			RowAnchor:      "收入总计",
			RowAnchorAlias: []string{"收入合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数"},
		},
		{
			Key:            "fiscal_grant_expenditure_total",
			Sheet:          "部门财政拨款收支总表",
			SheetAliases:   []string{"财政拨款收支总表"},
			RowAnchor:      "支出总计",
			RowAnchorAlias: []string{"支出合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数"},
			ColAnchorIndex: -1,
		},
		{
			Key:            "general_public_budget_expenditure",
			Sheet:          "一般公共预算支出表",
			SheetAliases:   []string{"一般公共预算支出功能分类预算表"},
			RowAnchor:      "合计",
			ColAnchor:      "合计",
			ColAnchorAlias: []string{"当年拨款"},
			Optional:       true,
		},
		{
			Key:          "government_fund_expenditure",
			Sheet:        "政府性基金预算支出表",
			SheetAliases: []string{"政府性基金预算支出功能分类预算表"},
			RowAnchor:    "合计",
			ColAnchor:    "合计",
			Optional:     true,
		},
		{
			Key:          "state_capital_expenditure",
			Sheet:        "国有资本经营预算支出表",
			SheetAliases: []string{"国有资本经营预算支出功能分类预算表"},
			RowAnchor:    "合计",
			ColAnchor:    "合计",
			Optional:     true,
		},
		{
			Key:            "three_public_total",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费"},
			ColAnchor:      "合计",
			ColAnchorAlias: []string{"预算数"},
			SumCols:        []string{"因公出国（境）费", "公务接待费", "公务用车购置及运行费"},
		},
		{
			Key:            "overseas_trips_expense",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费"},
			ColAnchor:      "因公出国（境）费",
			ColAnchorAlias: []string{"因公出国(境)费"},
			Optional:       true,
		},
		{
			Key:            "official_reception_expense",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费"},
			ColAnchor:      "公务接待费",
			Optional:       true,
		},
		{
			Key:            "official_vehicle_expense",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费"},
			ColAnchor:      "公务用车购置及运行费",
			ColAnchorAlias: []string{"公务用车购置及运行维护费"},
			Optional:       true,
		},
		{
			Key:          "narrative_other",
			Sheet:        "其他相关情况说明",
			SheetAliases: []string{"六、其他相关情况说明"},
			Type:         model.RuleText,
			Strategy:     model.TextAllContent,
			Optional:     true,
		},
		{
			Key:          "narrative_project_fund",
			Sheet:        "项目经费情况说明",
			SheetAliases: []string{"七、项目经费情况说明"},
			Type:         model.RuleText,
			Strategy:     model.TextAllContent,
			Optional:     true,
		},
		{
			Key:          "narrative_department_profile",
			Sheet:        "部门基本情况",
			SheetAliases: []string{"部门概况"},
			Type:         model.RuleText,
			Strategy:     model.TextFirstCell,
			Optional:     true,
		},
	}
}

// MappingRulesFor 按口径取映射表
func MappingRulesFor(caliber model.Caliber) []model.MappingRule {
	if caliber == model.CaliberDepartment {
		return DepartmentMappingRules()
	}
	return UnitMappingRules()
}

// RequiredKeys 映射表中必填数值 key 全集（覆盖校验的基准）
func RequiredKeys(rules []model.MappingRule) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range rules {
		if r.Type == model.RuleText || r.Optional || seen[r.Key] {
			continue
		}
		seen[r.Key] = true
		keys = append(keys, r.Key)
	}
	return keys
}
