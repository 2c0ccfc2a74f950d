// Package validate 事实集交叉校验
// 三类检查相互独立：算术平衡、必填覆盖、同比异常。
// 校验器无状态、只追加问题不抛错——校验不通过是业务结果，不是系统故障。
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// 规则号
const (
	RuleBalanceRevenueExpenditure = "ARCHIVE.BALANCE_REVENUE_EXPENDITURE"
	RuleBalanceComposition        = "ARCHIVE.BALANCE_EXPENDITURE_COMPOSITION"
	RuleBalanceFiscalGrant        = "ARCHIVE.BALANCE_FISCAL_GRANT"
	RuleRequiredFields            = "ARCHIVE.REQUIRED_FIELDS"
	RuleYoYAnomaly                = "ARCHIVE.YOY_ANOMALY"
)

// 同比异常阈值与默认平衡容差：业务校准常数，未经产品确认不得调整
const (
	DefaultBalanceTolerance = 0.01
	yoyAnomalyThreshold     = 0.5
)

// ActualLookup 历史决算查询（同比检查的唯一外部依赖）
type ActualLookup interface {
	// GetFinalActual 取某单位某年 FINAL 期别锁定值；无记录返回 nil
	GetFinalActual(unitID string, year int, key string) (*float64, error)
}

// balanceRule 算术平衡规则：|left − right| > 容差 即报 ERROR
type balanceRule struct {
	id        string
	leftKey   string
	rightKeys []string // 右侧为多 key 之和
	label     string
}

var balanceRules = []balanceRule{
	{
		id:        RuleBalanceRevenueExpenditure,
		leftKey:   "budget_revenue_total",
		rightKeys: []string{"budget_expenditure_total"},
		label:     "收入总计与支出总计",
	},
	{
		id:        RuleBalanceComposition,
		leftKey:   "budget_expenditure_total",
		rightKeys: []string{"basic_expenditure_total", "project_expenditure_total"},
		label:     "支出总计与基本+项目构成",
	},
	{
		id:        RuleBalanceFiscalGrant,
		leftKey:   "fiscal_grant_revenue_total",
		rightKeys: []string{"fiscal_grant_expenditure_total"},
		label:     "财政拨款收入与支出",
	},
}

// Validator 交叉校验器
type Validator struct {
	tolerance    float64
	requiredKeys []string
	lookup       ActualLookup
}

// New 创建校验器
// requiredKeys 取自映射表的必填 key 全集；lookup 可为 nil（跳过同比检查）。
func New(tolerance float64, requiredKeys []string, lookup ActualLookup) *Validator {
	if tolerance <= 0 {
		tolerance = DefaultBalanceTolerance
	}
	return &Validator{
		tolerance:    tolerance,
		requiredKeys: requiredKeys,
		lookup:       lookup,
	}
}

// Validate 对合并后的字段集跑全部检查
// 纯函数式：除同比的一次外部查询外不触碰任何共享状态。
func (v *Validator) Validate(fields []model.ValidateField, unitID string, year int) []model.ValidationIssue {
	values := make(map[string]*float64, len(fields))
	for _, f := range fields {
		values[f.Key] = f.EffectiveValue()
	}

	issues := []model.ValidationIssue{}
	issues = append(issues, v.checkBalances(values)...)
	issues = append(issues, v.checkRequired(values)...)
	issues = append(issues, v.checkYearOverYear(values, unitID, year)...)
	return issues
}

// checkBalances 算术平衡：两侧任一缺席则该条规则不跑
func (v *Validator) checkBalances(values map[string]*float64) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for _, rule := range balanceRules {
		left := values[rule.leftKey]
		if left == nil {
			continue
		}
		right := 0.0
		complete := true
		for _, key := range rule.rightKeys {
			rv := values[key]
			if rv == nil {
				complete = false
				break
			}
			right += *rv
		}
		if !complete {
			continue
		}

		diff := math.Abs(*left - right)
		if diff <= v.tolerance {
			continue
		}
		issues = append(issues, model.ValidationIssue{
			RuleID:  rule.id,
			Level:   model.IssueError,
			Message: fmt.Sprintf("%s不平：%.2f 与 %.2f 相差 %.2f（容差 %.2f）", rule.label, *left, right, diff, v.tolerance),
			Evidence: map[string]any{
				"left":      *left,
				"right":     right,
				"diff":      diff,
				"tolerance": v.tolerance,
			},
		})
	}
	return issues
}

// checkRequired 必填覆盖：缺失 key 汇总为一条 ERROR
func (v *Validator) checkRequired(values map[string]*float64) []model.ValidationIssue {
	var missing []string
	for _, key := range v.requiredKeys {
		if values[key] == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return []model.ValidationIssue{{
		RuleID:   RuleRequiredFields,
		Level:    model.IssueError,
		Message:  fmt.Sprintf("必填字段缺失 %d 项: %v", len(missing), missing),
		Evidence: map[string]any{"missingKeys": missing},
	}}
}

// checkYearOverYear 同比异常：与上年 FINAL 锁定值比对，变动超 50% 报 WARN
func (v *Validator) checkYearOverYear(values map[string]*float64, unitID string, year int) []model.ValidationIssue {
	if v.lookup == nil || unitID == "" || year <= 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var issues []model.ValidationIssue
	for _, key := range keys {
		cur := values[key]
		if cur == nil {
			continue
		}
		prev, err := v.lookup.GetFinalActual(unitID, year-1, key)
		if err != nil || prev == nil || *prev == 0 {
			continue
		}
		change := math.Abs(*cur-*prev) / math.Abs(*prev)
		if change <= yoyAnomalyThreshold {
			continue
		}
		issues = append(issues, model.ValidationIssue{
			RuleID:  RuleYoYAnomaly,
			Level:   model.IssueWarn,
			Message: fmt.Sprintf("%s 同比变动 %.0f%%（本期 %.2f，上年决算 %.2f），请复核", key, change*100, *cur, *prev),
			Evidence: map[string]any{
				"key":      key,
				"current":  *cur,
				"previous": *prev,
				"change":   change,
			},
		})
	}
	return issues
}
