package parser

import "github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"

// UnitMappingRules 单位口径映射表
// 有序执行：同一 key 的多条变体先成功者赢，用于兼容历年表样。
// 锚标签与 sheet 别名来自历年公开表的实际命名，勿随手"规整"。
func UnitMappingRules() []model.MappingRule {
	return []model.MappingRule{
		// ---- 收支总表 ----
		{
			Key:            "budget_revenue_total",
			Sheet:          "收支总表",
			SheetAliases:   []string{"单位收支总体情况表", "收支预算总表"},
			RowAnchor:      "收入总计",
			RowAnchorAlias: []string{"本年收入合计", "收入合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数", "本年预算数"},
		},
		{
			// 兜底布局：部分年份收入列锚写作"收入"，金额列在锚右一列
			Key:            "budget_revenue_total",
			Sheet:          "收支总表",
			SheetAliases:   []string{"单位收支总体情况表"},
			RowAnchor:      "收入总计",
			RowAnchorAlias: []string{"收入合计"},
			ColAnchor:      "收入",
			ColOffset:      1,
		},
		{
			Key:            "budget_expenditure_total",
			Sheet:          "收支总表",
			SheetAliases:   []string{"单位收支总体情况表", "收支预算总表"},
			RowAnchor:      "支出总计",
			RowAnchorAlias: []string{"本年支出合计", "支出合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数", "本年预算数"},
			ColAnchorIndex: -1, // 收入/支出两侧各有一个"金额"列，支出取末次
		},

		// ---- 收入总表 ----
		{
			Key:            "fiscal_appropriation_income",
			Sheet:          "收入总表",
			SheetAliases:   []string{"单位收入总体情况表"},
			RowAnchor:      "合计",
			ColAnchor:      "财政拨款收入",
			ColAnchorAlias: []string{"一般公共预算拨款收入"},
			Optional:       true,
		},
		{
			Key:          "business_income",
			Sheet:        "收入总表",
			SheetAliases: []string{"单位收入总体情况表"},
			RowAnchor:    "合计",
			ColAnchor:    "事业收入",
			Optional:     true,
		},
		{
			Key:            "carryover_funds",
			Sheet:          "收入总表",
			SheetAliases:   []string{"单位收入总体情况表"},
			RowAnchor:      "合计",
			ColAnchor:      "上年结转",
			ColAnchorAlias: []string{"结转结余", "上年结转和结余"},
			Optional:       true,
		},

		// ---- 支出总表 ----
		{
			Key:            "basic_expenditure_total",
			Sheet:          "支出总表",
			SheetAliases:   []string{"单位支出总体情况表"},
			RowAnchor:      "合计",
			ColAnchor:      "基本支出",
			ColAnchorAlias: []string{"基本支出小计"},
		},
		{
			Key:            "project_expenditure_total",
			Sheet:          "支出总表",
			SheetAliases:   []string{"单位支出总体情况表"},
			RowAnchor:      "合计",
			ColAnchor:      "项目支出",
			ColAnchorAlias: []string{"项目支出小计"},
		},
		{
			// 支出合计直取；为空或 0 时按基本+项目两列求和兜底
			Key:            "expenditure_composition_total",
			Sheet:          "支出总表",
			SheetAliases:   []string{"单位支出总体情况表"},
			RowAnchor:      "合计",
			ColAnchor:      "支出合计",
			ColAnchorAlias: []string{"合计"},
			SumCols:        []string{"基本支出", "项目支出"},
			Optional:       true,
		},

		// ---- 财政拨款收支总表 ----
		{
			Key:            "fiscal_grant_revenue_total",
			Sheet:          "财政拨款收支总表",
			SheetAliases:   []string{"财政拨款收支预算总表"},
			RowAnchor:      "收入总计",
			RowAnchorAlias: []string{"收入合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数"},
		},
		{
			Key:            "fiscal_grant_expenditure_total",
			Sheet:          "财政拨款收支总表",
			SheetAliases:   []string{"财政拨款收支预算总表"},
			RowAnchor:      "支出总计",
			RowAnchorAlias: []string{"支出合计"},
			ColAnchor:      "金额",
			ColAnchorAlias: []string{"预算数"},
			ColAnchorIndex: -1,
		},

		// ---- 一般公共预算 ----
		{
			Key:            "general_public_budget_expenditure",
			Sheet:          "一般公共预算支出表",
			SheetAliases:   []string{"一般公共预算支出功能分类预算表", "一般公共预算当年拨款情况表"},
			RowAnchor:      "合计",
			ColAnchor:      "合计",
			ColAnchorAlias: []string{"当年拨款", "预算数"},
			Optional:       true,
		},

		// ---- 政府性基金 / 国有资本 ----
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

		// ---- 三公经费 ----
		{
			// 合计单元格常是未刷新的公式缓存 0，按三项分列求和兜底
			Key:            "three_public_total",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表", "“三公”经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费", "“三公”经费合计"},
			ColAnchor:      "合计",
			ColAnchorAlias: []string{"预算数"},
			SumCols:        []string{"因公出国（境）费", "公务接待费", "公务用车购置及运行费"},
		},
		{
			Key:            "overseas_trips_expense",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表", "“三公”经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费"},
			ColAnchor:      "因公出国（境）费",
			ColAnchorAlias: []string{"因公出国(境)费"},
			Optional:       true,
		},
		{
			Key:            "official_reception_expense",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表", "“三公”经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费"},
			ColAnchor:      "公务接待费",
			Optional:       true,
		},
		{
			Key:            "official_vehicle_expense",
			Sheet:          "三公经费表",
			SheetAliases:   []string{"“三公”经费和机关运行经费预算表", "“三公”经费预算表"},
			RowAnchor:      "“三公”经费",
			RowAnchorAlias: []string{"三公经费"},
			ColAnchor:      "公务用车购置及运行费",
			ColAnchorAlias: []string{"公务用车购置及运行维护费"},
			Optional:       true,
		},
		{
			Key:          "agency_operation_expense",
			Sheet:        "三公经费表",
			SheetAliases: []string{"“三公”经费和机关运行经费预算表"},
			RowAnchor:    "机关运行经费",
			ColAnchor:    "合计",
			Optional:     true,
		},

		// ---- 情况说明（文本） ----
		{
			Key:          "narrative_other",
			Sheet:        "其他相关情况说明",
			SheetAliases: []string{"六、其他相关情况说明", "其他情况说明"},
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
			Key:          "narrative_unit_profile",
			Sheet:        "单位基本情况",
			SheetAliases: []string{"单位概况"},
			Type:         model.RuleText,
			Strategy:     model.TextFirstCell,
			Optional:     true,
		},
	}
}
