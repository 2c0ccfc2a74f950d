package parser

import (
	"math"
	"testing"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseAmount_UnitSuffixScaling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want float64
	}{
		{"1,234.56万元", 12345600},
		{"1,234.56千元", 1234560},
		{"1,234.56元", 1234.56},
		{"1234.56", 1234.56},
		{"0", 0},
	}
	for _, tc := range cases {
		got := ParseAmount(tc.raw, "")
		if got == nil {
			t.Fatalf("%q: expected value, got nil", tc.raw)
		}
		if !almostEqual(*got, tc.want) {
			t.Fatalf("%q: want %v got %v", tc.raw, tc.want, *got)
		}
	}
}

func TestParseAmount_ParenthesizedNegative(t *testing.T) {
	t.Parallel()

	got := ParseAmount("(36.56)", "")
	if got == nil || !almostEqual(*got, -36.56) {
		t.Fatalf("(36.56): want -36.56 got %v", got)
	}

	// 全角括号同样识别
	got = ParseAmount("（120）", "")
	if got == nil || !almostEqual(*got, -120) {
		t.Fatalf("（120）: want -120 got %v", got)
	}
}

func TestParseAmount_NumberFormatCarriesUnit(t *testing.T) {
	t.Parallel()

	// 单元格文本裸数，单位在显示格式里
	got := ParseAmount("12.5", `#,##0.00"万元"`)
	if got == nil || !almostEqual(*got, 125000) {
		t.Fatalf("format 万元: want 125000 got %v", got)
	}

	// 文本与格式同时携带单位，任一命中即缩放，不重复缩放
	got = ParseAmount("12.5万元", `#,##0.00"万元"`)
	if got == nil || !almostEqual(*got, 125000) {
		t.Fatalf("double 万元: want 125000 got %v", got)
	}
}

func TestParseAmount_Percent(t *testing.T) {
	t.Parallel()

	got := ParseAmount("12.5%", "")
	if got == nil || !almostEqual(*got, 0.125) {
		t.Fatalf("12.5%%: want 0.125 got %v", got)
	}

	got = ParseAmount("３0％", "")
	if got != nil {
		// 全角数字不是十进制文本，按空处理
		t.Fatalf("全角数字应返回 nil，got %v", *got)
	}
}

func TestParseAmount_EmptyAndGarbage(t *testing.T) {
	t.Parallel()

	if got := ParseAmount("", ""); got != nil {
		t.Fatalf("empty: want nil got %v", *got)
	}
	if got := ParseAmount("  ", ""); got != nil {
		t.Fatalf("blank: want nil got %v", *got)
	}
	if got := ParseAmount("合计", ""); got != nil {
		t.Fatalf("text: want nil got %v", *got)
	}
	// nil 与真 0 区分
	if got := ParseAmount("0.00", ""); got == nil || *got != 0 {
		t.Fatalf("0.00: want 0 got %v", got)
	}
}

func TestClassifyValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want model.ValueType
	}{
		{"", model.ValueEmpty},
		{"   ", model.ValueEmpty},
		{"1,234.56", model.ValueNumeric},
		{"(36.56)", model.ValueNumeric},
		{"2025-01-31", model.ValueDate},
		{"2025/1/31", model.ValueDate},
		{"2025年1月31日", model.ValueDate},
		{"本年收入合计", model.ValueText},
	}
	for _, tc := range cases {
		if got := ClassifyValue(tc.raw); got != tc.want {
			t.Fatalf("%q: want %s got %s", tc.raw, tc.want, got)
		}
	}
}
