// Package archive 归档表自动抽取
// 对此前从 PDF 档案提取的松散二维表做格式无关的事实推断：
// 不依赖固定坐标，按标记短语判类别、按单位标记或量级启发判倍率、
// 按标签子串包含配对同行数值。置信度低于主解析链路，仅作兜底与交叉核对。
package archive

import (
	"regexp"
	"strings"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/parser"
)

// TableCategory 归档表类别
type TableCategory string

const (
	CategoryBudgetSummary TableCategory = "budget_summary" // 收支总表
	CategoryThreePublic   TableCategory = "three_public"   // 三公经费表
	CategoryUnknown       TableCategory = "unknown"
)

// Scale 单位倍率判定来源
type Scale struct {
	Factor float64 // 原值 × Factor → 万元
	Source string  // explicit_marker / magnitude / assumed_wan
}

// ExtractedFact 含来源与置信度的候选事实
type ExtractedFact struct {
	Key        string
	RawValue   string
	Value      float64 // 万元
	Confidence model.Confidence
	Source     string // 命中标签 + 配对方式
}

// 类别判定标记：历史导入时代的 table_key 不可靠，只看内容
var categoryMarkers = map[TableCategory][]string{
	CategoryBudgetSummary: {"本年收入", "本年支出"},
	CategoryThreePublic:   {"三公"},
}

// 标签 → 事实 key。子串包含匹配：PDF 文本常有空格/换行伪影
var summaryLabels = []labelRule{
	{label: "财政拨款收入", key: "fiscal_appropriation_income"},
	{label: "本年收入合计", key: "budget_revenue_total"},
	{label: "收入总计", key: "budget_revenue_total"},
	{label: "本年支出合计", key: "budget_expenditure_total"},
	{label: "支出总计", key: "budget_expenditure_total"},
	{label: "基本支出", key: "basic_expenditure_total"},
	{label: "项目支出", key: "project_expenditure_total"},
	{label: "事业收入", key: "business_income"},
	{label: "上年结转", key: "carryover_funds"},
}

var threePublicLabels = []labelRule{
	{label: "三公经费合计", key: "three_public_total"},
	{label: "“三公”经费合计", key: "three_public_total"},
	{label: "因公出国", key: "overseas_trips_expense"},
	{label: "公务接待", key: "official_reception_expense"},
	{label: "公务用车", key: "official_vehicle_expense", numericOffset: 1},
}

type labelRule struct {
	label string
	key   string
	// 已知稀疏布局下取固定位置的数值（0 表示取标签后首个数值）
	numericOffset int
}

var (
	reUnitMarker = regexp.MustCompile(`单位[:：]\s*(万元|千元|元)`)
	reNumeric    = regexp.MustCompile(`^-?[\d,，]+(?:\.\d+)?$`)
)

// 量级启发阈值：千万以上的裸数按元计
const yuanMagnitudeThreshold = 1e7

// Extractor 归档自动抽取器
type Extractor struct{}

// NewExtractor 创建抽取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractAll 对一批表快照抽取并合并为平面事实映射（万元）
// 同 key 多表命中时先见者保留。
func (x *Extractor) ExtractAll(tables []model.ArchiveTable) map[string]float64 {
	out := make(map[string]float64)
	for _, t := range tables {
		for _, f := range x.ExtractTable(t) {
			if _, ok := out[f.Key]; !ok {
				out[f.Key] = f.Value
			}
		}
	}
	return out
}

// ExtractTable 抽取单张表快照
func (x *Extractor) ExtractTable(t model.ArchiveTable) []ExtractedFact {
	category := detectCategory(t.Rows)
	if category == CategoryUnknown {
		return nil
	}

	scale := detectScale(t.Rows)

	labels := summaryLabels
	if category == CategoryThreePublic {
		labels = threePublicLabels
	}

	var facts []ExtractedFact
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		for _, rule := range labels {
			if seen[rule.key] {
				continue
			}
			fact, ok := matchRow(row, rule, scale)
			if !ok {
				continue
			}
			seen[rule.key] = true
			facts = append(facts, fact)
		}
	}
	return facts
}

// detectCategory 按前几行拼接文本里的标记短语判类别
func detectCategory(rows [][]string) TableCategory {
	limit := len(rows)
	if limit > 5 {
		limit = 5
	}
	var b strings.Builder
	for _, row := range rows[:limit] {
		b.WriteString(strings.Join(row, ""))
	}
	head := b.String()

	for _, category := range []TableCategory{CategoryThreePublic, CategoryBudgetSummary} {
		for _, marker := range categoryMarkers[category] {
			if strings.Contains(head, marker) {
				return category
			}
		}
	}
	return CategoryUnknown
}

// detectScale 先找显式"单位:元|千元|万元"标记行；缺失时按量级启发
func detectScale(rows [][]string) Scale {
	for _, row := range rows {
		joined := strings.Join(row, "")
		if m := reUnitMarker.FindStringSubmatch(joined); m != nil {
			switch m[1] {
			case "元":
				return Scale{Factor: 1.0 / 10000, Source: "explicit_marker"}
			case "千元":
				return Scale{Factor: 1.0 / 10, Source: "explicit_marker"}
			default:
				return Scale{Factor: 1, Source: "explicit_marker"}
			}
		}
	}

	// 无标记：千万量级的值按元计折万元，小值按已是万元处理
	for _, row := range rows {
		for _, cell := range row {
			v := parseArchiveNumber(cell)
			if v == nil {
				continue
			}
			if *v >= yuanMagnitudeThreshold {
				return Scale{Factor: 1.0 / 10000, Source: "magnitude"}
			}
		}
	}
	return Scale{Factor: 1, Source: "assumed_wan"}
}

// matchRow 标签行内配对最近数值
func matchRow(row []string, rule labelRule, scale Scale) (ExtractedFact, bool) {
	labelIdx := -1
	for i, cell := range row {
		if strings.Contains(squash(cell), rule.label) {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return ExtractedFact{}, false
	}

	// 标签之后的数值 token，默认取首个，稀疏布局按固定偏移
	numerics := make([]int, 0, len(row))
	for i := labelIdx + 1; i < len(row); i++ {
		if parseArchiveNumber(row[i]) != nil {
			numerics = append(numerics, i)
		}
	}
	if len(numerics) == 0 {
		return ExtractedFact{}, false
	}
	pick := 0
	positional := false
	if rule.numericOffset > 0 && rule.numericOffset < len(numerics) {
		pick = rule.numericOffset
		positional = true
	}

	raw := row[numerics[pick]]
	v := parseArchiveNumber(raw)
	value := parser.RoundTo2(*v * scale.Factor)

	return ExtractedFact{
		Key:        rule.key,
		RawValue:   raw,
		Value:      value,
		Confidence: confidenceFor(scale, positional),
		Source:     rule.label,
	}, true
}

// confidenceFor 置信度决策表
//
//	显式单位标记           → HIGH
//	量级启发 / 默认万元    → MEDIUM
//	固定偏移配对           → LOW（无论倍率来源）
func confidenceFor(scale Scale, positional bool) model.Confidence {
	if positional {
		return model.ConfidenceLow
	}
	if scale.Source == "explicit_marker" {
		return model.ConfidenceHigh
	}
	return model.ConfidenceMedium
}

func parseArchiveNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || !reNumeric.MatchString(s) {
		return nil
	}
	return parser.ParseAmount(s, "")
}

// squash 去除 PDF 文本伪影空白
func squash(s string) string {
	return strings.NewReplacer(" ", "", "　", "", "\n", "", "\t", "").Replace(s)
}
