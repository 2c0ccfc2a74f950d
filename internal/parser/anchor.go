package parser

import (
	"regexp"
	"strings"
)

// Coordinate 单元格坐标（0 基行列）
type Coordinate struct {
	Row int
	Col int
}

// FindAnchor 在表内按行优先序扫描，精确比对修剪后的单元格文本
// occurrence: 1=首次命中, N=第N次, -1=末次（末次以持续覆盖实现，等价于扫到底）。
// 未命中返回 (zero, false)，不是错误。
func FindAnchor(sheet *Sheet, label string, occurrence int) (Coordinate, bool) {
	if occurrence == 0 {
		occurrence = 1
	}
	want := strings.TrimSpace(label)
	if want == "" {
		return Coordinate{}, false
	}

	var last Coordinate
	found := false
	seen := 0
	for r, row := range sheet.Rows {
		for c, raw := range row {
			if strings.TrimSpace(raw) != want {
				continue
			}
			seen++
			last = Coordinate{Row: r, Col: c}
			found = true
			if occurrence > 0 && seen == occurrence {
				return last, true
			}
		}
	}

	if occurrence == -1 && found {
		return last, true
	}
	return Coordinate{}, false
}

// FindAnchorWithAliases 主标签优先，逐个别名降级
func FindAnchorWithAliases(sheet *Sheet, label string, aliases []string, occurrence int) (Coordinate, string, bool) {
	if coord, ok := FindAnchor(sheet, label, occurrence); ok {
		return coord, label, true
	}
	for _, alias := range aliases {
		if coord, ok := FindAnchor(sheet, alias, occurrence); ok {
			return coord, alias, true
		}
	}
	return Coordinate{}, "", false
}

// Intersect 行锚 × 列锚交叉定位：目标在 (行锚行+行偏移, 列锚列+列偏移)
func Intersect(rowAnchor, colAnchor Coordinate, rowOffset, colOffset int) Coordinate {
	return Coordinate{
		Row: rowAnchor.Row + rowOffset,
		Col: colAnchor.Col + colOffset,
	}
}

var labelSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeLabel 规范化锚标签：去空白、去换行制表符
// 历史工作簿的表头常夹杂换行与全角空格，比对前先压平。
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", "")
	s = strings.ReplaceAll(s, "　", "")
	return labelSpaceRe.ReplaceAllString(s, "")
}

// ContainsAny 文本是否包含任一关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
