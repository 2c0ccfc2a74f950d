package archive

import "math"

// MergeResult 手工/自动事实合并结果
type MergeResult struct {
	Merged map[string]float64 `json:"merged"`
	// 因疑似单位量级错配被跳过的手工 key
	SkippedManual []string `json:"skippedManual,omitempty"`
}

// 手工值 ≈ 自动值 × 10000 的判定带宽
const (
	scaleMismatchLow  = 2000
	scaleMismatchHigh = 50000
)

// MergeFacts 合并人工确认值与自动抽取值
// 同 key 冲突时手工值优先；但当手工值与自动值呈万倍量级错配
// （手工按元录入而自动已折万元的典型征兆）时保留自动值，
// 手工值标记为冲突跳过，交由操作员复核。
func MergeFacts(manual, auto map[string]float64) MergeResult {
	merged := make(map[string]float64, len(manual)+len(auto))
	var skipped []string

	for key, v := range auto {
		merged[key] = v
	}
	for key, mv := range manual {
		av, hasAuto := merged[key]
		if hasAuto && isScaleMismatch(mv, av) {
			skipped = append(skipped, key)
			continue
		}
		merged[key] = mv
	}

	return MergeResult{Merged: merged, SkippedManual: skipped}
}

func isScaleMismatch(manual, auto float64) bool {
	if auto == 0 || manual == 0 {
		return false
	}
	ratio := math.Abs(manual / auto)
	return ratio >= scaleMismatchLow && ratio <= scaleMismatchHigh
}
