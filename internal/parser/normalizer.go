package parser

import (
	"strconv"
	"strings"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// 单位倍率：元为基准
var unitScales = []struct {
	word  string
	scale float64
}{
	{"万元", 10000},
	{"千元", 1000},
}

// ParseAmount 将原始单元格文本归一化为带符号数值
// 单位倍率来自显示格式或文本内嵌单位（两路信号合并判定，任一命中即缩放）；
// 识别括号负数与百分号；千分位与单位词剔除后按十进制解析。
// 解析失败返回 nil（视为空，既不是错误也不是 0）；本函数绝不报错。
func ParseAmount(raw string, numberFormat string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// 括号负数：(123) → -123
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	} else if strings.HasPrefix(s, "（") && strings.HasSuffix(s, "）") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "（"), "）")
	}

	// 文本内嵌单位与显示格式合并为一个查找串，任一携带单位词都触发缩放
	unitLookup := numberFormat + " " + s
	scale := 1.0
	for _, u := range unitScales {
		if strings.Contains(unitLookup, u.word) {
			scale = u.scale
			break
		}
	}

	percent := strings.Contains(s, "%") || strings.Contains(s, "％")

	// 剔除单位词、百分号、千分位
	for _, u := range unitScales {
		s = strings.ReplaceAll(s, u.word, "")
	}
	s = strings.ReplaceAll(s, "元", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "％", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "，", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	v *= scale
	if percent {
		v /= 100
	}
	if negative {
		v = -v
	}
	return &v
}

// ClassifyValue 判定单元格值类型
func ClassifyValue(raw string) model.ValueType {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.ValueEmpty
	}
	if looksLikeDate(s) {
		return model.ValueDate
	}
	if ParseAmount(s, "") != nil {
		return model.ValueNumeric
	}
	return model.ValueText
}

func looksLikeDate(s string) bool {
	// 常见导出日期形态：2025-01-31 / 2025/1/31 / 2025年1月31日
	if strings.Contains(s, "年") && strings.Contains(s, "月") && strings.Contains(s, "日") {
		return true
	}
	for _, sep := range []string{"-", "/"} {
		parts := strings.Split(s, sep)
		if len(parts) == 3 {
			y, err1 := strconv.Atoi(parts[0])
			_, err2 := strconv.Atoi(parts[1])
			_, err3 := strconv.Atoi(parts[2])
			if err1 == nil && err2 == nil && err3 == nil && y >= 1900 && y <= 2100 {
				return true
			}
		}
	}
	return false
}
