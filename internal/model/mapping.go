package model

// RuleType 取数规则类型
type RuleType string

const (
	RuleNumeric RuleType = "numeric" // 数值事实
	RuleText    RuleType = "text"    // 说明文本事实
)

// TextStrategy 说明文本抽取策略
type TextStrategy string

const (
	// TextAllContent 拼接整表非空单元格文本（多于一行时跳过表头行）
	TextAllContent TextStrategy = "all_content"
	// TextFirstCell 取第一个非空单元格文本
	TextFirstCell TextStrategy = "first_cell"
)

// MappingRule 预算映射规则
// 声明式描述一个事实 key 如何从工作簿中定位：目标 sheet（含别名）、
// 行锚/列锚（含别名与第 N 次出现）、偏移、求和兜底与可选标记。
// 同一 key 允许多条规则变体，先成功者赢，用于表达"先主布局、再兜底布局"。
type MappingRule struct {
	Key            string
	Sheet          string
	SheetAliases   []string
	RowAnchor      string
	RowAnchorAlias []string
	RowAnchorIndex int // 1=首次出现, -1=末次, N=第N次; 0 按 1 处理
	ColAnchor      string
	ColAnchorAlias []string
	ColAnchorIndex int
	RowOffset      int
	ColOffset      int
	SumCols        []string // 直取值为空/0 时，按列锚求和兜底
	SumRows        []string // 直取值为空/0 时，按行锚求和兜底
	Optional       bool
	Type           RuleType
	Strategy       TextStrategy
}

// Caliber 报表口径
type Caliber string

const (
	CaliberUnit       Caliber = "unit"       // 单位口径
	CaliberDepartment Caliber = "department" // 部门口径
)
