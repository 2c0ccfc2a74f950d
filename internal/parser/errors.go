package parser

import (
	"fmt"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// ErrorKind 取数失败类别
type ErrorKind string

const (
	// ErrMissingSheet 必填 sheet 及其全部别名都不存在
	ErrMissingSheet ErrorKind = "MISSING_SHEET"
	// ErrMissingAnchor sheet 存在但行/列锚未命中，通常是年度间标签漂移
	ErrMissingAnchor ErrorKind = "MISSING_ANCHOR"
	// ErrMissingValue 锚点命中但交叉单元格为空且无求和兜底
	ErrMissingValue ErrorKind = "MISSING_VALUE"
	// ErrUnsupportedLayout 合并单元格冲突，需要源方重新导出
	ErrUnsupportedLayout ErrorKind = "UNSUPPORTED_WORKBOOK_LAYOUT"
	// ErrInvalidFileType 旧版二进制格式，在解析前直接拒绝
	ErrInvalidFileType ErrorKind = "INVALID_FILE_TYPE"
)

// ExtractionError 取数错误：类别 + 规则 key + 给操作员看的证据
type ExtractionError struct {
	Kind     ErrorKind
	RuleKey  string
	Message  string
	Evidence []model.ParsedCell
	// 辅助诊断信息：候选 sheet 名、尝试过的锚标签等
	Details map[string]any
}

func (e *ExtractionError) Error() string {
	if e.RuleKey != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.RuleKey, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind 判断错误是否为指定取数失败类别
func IsKind(err error, kind ErrorKind) bool {
	ee, ok := err.(*ExtractionError)
	return ok && ee.Kind == kind
}
