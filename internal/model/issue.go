package model

// IssueLevel 校验问题级别
type IssueLevel string

const (
	IssueError IssueLevel = "ERROR"
	IssueWarn  IssueLevel = "WARN"
)

// ValidationIssue 交叉校验产出的结构化问题
// 校验失败是业务结果不是系统错误，只追加不抛出，也不回写事实。
type ValidationIssue struct {
	RuleID   string         `json:"ruleId"`
	Level    IssueLevel     `json:"level"`
	Message  string         `json:"message"`
	Evidence map[string]any `json:"evidence,omitempty"`
}

// ValidateField 校验器输入字段：修正值优先于归一化原值
type ValidateField struct {
	Key             string   `json:"key"`
	NormalizedValue *float64 `json:"normalizedValue"`
	CorrectedValue  *float64 `json:"correctedValue"`
}

// EffectiveValue 取生效值（修正值优先）
func (f ValidateField) EffectiveValue() *float64 {
	if f.CorrectedValue != nil {
		return f.CorrectedValue
	}
	return f.NormalizedValue
}
