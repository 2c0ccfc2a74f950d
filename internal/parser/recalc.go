package parser

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Recalculator 公式重算器
// 只修正两种形态的缓存失效：SUM(引用列表/区间) 与 A+B 两元加法；
// 其他公式一律不动。只改写缓存值与显示文本，公式文本保持原样。
type Recalculator struct {
	f     *excelize.File
	sheet string

	formulas map[string]string  // addr → 公式文本
	resolved map[string]float64 // addr → 已重算值
	visiting map[string]bool    // 环检测
}

// NewRecalculator 针对单个 sheet 创建重算器
func NewRecalculator(f *excelize.File, sheet string) *Recalculator {
	return &Recalculator{
		f:        f,
		sheet:    sheet,
		formulas: make(map[string]string),
		resolved: make(map[string]float64),
		visiting: make(map[string]bool),
	}
}

var (
	reSumFormula = regexp.MustCompile(`(?i)^=?\s*SUM\(([^()]+)\)\s*$`)
	reAddFormula = regexp.MustCompile(`^=?\s*(\$?[A-Z]{1,3}\$?\d+)\s*\+\s*(\$?[A-Z]{1,3}\$?\d+)\s*$`)
)

// Run 重算整表，返回改写的单元格数
// 缓存值与重算结果一致时不落笔，重复执行结果稳定。
func (rc *Recalculator) Run() (int, error) {
	if err := rc.collectFormulas(); err != nil {
		return 0, err
	}

	changed := 0
	for addr := range rc.formulas {
		value, ok := rc.resolve(addr)
		if !ok {
			continue
		}

		precision := rc.displayPrecision(addr)
		value = roundTo(value, precision)

		cached := rc.cachedValue(addr)
		if cached != nil && math.Abs(*cached-value) < math.Pow(10, -float64(precision))/2 {
			continue // 缓存没坏，不动
		}
		if err := rc.f.SetCellValue(rc.sheet, addr, value); err != nil {
			return changed, fmt.Errorf("改写 %s 失败: %w", addr, err)
		}
		changed++
	}
	return changed, nil
}

// collectFormulas 收集表内可识别的公式单元格
func (rc *Recalculator) collectFormulas() error {
	rows, err := rc.f.GetRows(rc.sheet)
	if err != nil {
		return fmt.Errorf("读取 sheet 失败: %w", err)
	}
	for r := range rows {
		for c := range rows[r] {
			addr, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			formula, err := rc.f.GetCellFormula(rc.sheet, addr)
			if err != nil || formula == "" {
				continue
			}
			if reSumFormula.MatchString(formula) || reAddFormula.MatchString(formula) {
				rc.formulas[addr] = formula
			}
		}
	}
	return nil
}

// resolve 求单元格当前应有值；公式引用公式沿链解析，遇环放弃
func (rc *Recalculator) resolve(addr string) (float64, bool) {
	addr = strings.ReplaceAll(addr, "$", "")

	if v, ok := rc.resolved[addr]; ok {
		return v, true
	}
	if rc.visiting[addr] {
		return 0, false // 环：拒绝递归展开
	}

	formula, isFormula := rc.formulas[addr]
	if !isFormula {
		v := rc.cachedValue(addr)
		if v == nil {
			return 0, true // 空单元格按 0 参与求和
		}
		return *v, true
	}

	rc.visiting[addr] = true
	defer delete(rc.visiting, addr)

	refs, ok := parseOperands(formula)
	if !ok {
		return 0, false
	}

	var sum float64
	for _, ref := range refs {
		v, ok := rc.resolve(ref)
		if !ok {
			return 0, false
		}
		sum += v
	}
	rc.resolved[addr] = sum
	return sum, true
}

// parseOperands 展开 SUM 参数（引用/逗号列表/区间）或 A+B 的两个引用
func parseOperands(formula string) ([]string, bool) {
	if m := reAddFormula.FindStringSubmatch(formula); m != nil {
		return []string{m[1], m[2]}, true
	}
	m := reSumFormula.FindStringSubmatch(formula)
	if m == nil {
		return nil, false
	}

	var refs []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.ReplaceAll(strings.TrimSpace(part), "$", "")
		if part == "" {
			continue
		}
		if strings.Contains(part, ":") {
			expanded, ok := expandRange(part)
			if !ok {
				return nil, false
			}
			refs = append(refs, expanded...)
			continue
		}
		refs = append(refs, part)
	}
	return refs, len(refs) > 0
}

// expandRange 展开 A1:C1 形态的区间引用
func expandRange(ref string) ([]string, bool) {
	parts := strings.SplitN(ref, ":", 2)
	c1, r1, err1 := excelize.CellNameToCoordinates(parts[0])
	c2, r2, err2 := excelize.CellNameToCoordinates(parts[1])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	var refs []string
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			addr, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, false
			}
			refs = append(refs, addr)
		}
	}
	return refs, true
}

// cachedValue 读单元格缓存值（文本形态），不可解析视为空
func (rc *Recalculator) cachedValue(addr string) *float64 {
	raw, err := rc.f.GetCellValue(rc.sheet, addr)
	if err != nil {
		return nil
	}
	return ParseAmount(raw, "")
}

// displayPrecision 按显示格式推断小数位，默认 2 位
func (rc *Recalculator) displayPrecision(addr string) int {
	styleID, err := rc.f.GetCellStyle(rc.sheet, addr)
	if err != nil {
		return 2
	}
	style, err := rc.f.GetStyle(styleID)
	if err != nil || style == nil || style.CustomNumFmt == nil {
		return 2
	}
	// "0.00" / "#,##0.0000" 之类：取小数点后连续 0 的个数
	fmtStr := *style.CustomNumFmt
	dot := strings.Index(fmtStr, ".")
	if dot < 0 {
		return 2
	}
	n := 0
	for _, r := range fmtStr[dot+1:] {
		if r != '0' {
			break
		}
		n++
	}
	if n == 0 {
		return 2
	}
	return n
}

func roundTo(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	rounded := math.Round(v*p) / p
	// 避免 -0
	if rounded == 0 {
		return 0
	}
	return rounded
}

// RoundTo2 保留两位小数（归档抽取与导出共用口径）
func RoundTo2(v float64) float64 {
	return roundTo(v, 2)
}
