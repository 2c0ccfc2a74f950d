// Package preflight 报告 PDF 出件前预检
// 对外部转换产出的 PDF 做页面几何、必备章节与空白/稀疏页检查。
// 所有问题一次收齐（不 fail-fast），操作员一趟看到完整整改清单。
package preflight

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// 页面几何与空白页预算：业务校准常数，未经产品确认不得调整
const (
	// A4 横向出件尺寸（pt）
	a4LandscapeWidth  = 841.68
	a4LandscapeHeight = 595.44
	pageSizeTolerance = 1.2

	maxBlankPages         = 1
	maxInteriorBlankPages = 1

	// 每页非空白字符少于此数视为稀疏页
	sparsePageCharThreshold = 40
)

// 必备章节子串（比对前双方都去空白）
var requiredSections = []string{
	"七、项目经费情况说明",
	"六、其他相关情况说明",
	"政府性基金预算支出功能分类预算表",
	"国有资本经营预算支出功能分类预算表",
	"“三公”经费和机关运行经费预算表",
}

// FindingCode 预检发现项代码
type FindingCode string

const (
	FindingNoPages            FindingCode = "NO_PAGES"
	FindingPageSizeNotA4      FindingCode = "PAGE_SIZE_NOT_A4"
	FindingTooManyBlankPages  FindingCode = "TOO_MANY_BLANK_PAGES"
	FindingSparsePages        FindingCode = "SPARSE_PAGES"
	FindingMissingSections    FindingCode = "MISSING_REQUIRED_SECTIONS"
	FindingInteriorBlankPages FindingCode = "INTERIOR_BLANK_PAGES"
)

// Finding 一条预检发现
type Finding struct {
	Code    FindingCode `json:"code"`
	Message string      `json:"message"`
	Pages   []int       `json:"pages,omitempty"`
}

// Report 预检通过报告
type Report struct {
	PageCount   int       `json:"pageCount"`
	BlankPages  []int     `json:"blankPages"`
	SparsePages []int     `json:"sparsePages"`
	Findings    []Finding `json:"findings"`
}

// Passed 是否无任何发现项
func (r *Report) Passed() bool {
	return len(r.Findings) == 0
}

// PreflightError 预检未通过：聚合全部发现项
type PreflightError struct {
	Findings []Finding
}

func (e *PreflightError) Error() string {
	codes := make([]string, 0, len(e.Findings))
	for _, f := range e.Findings {
		codes = append(codes, string(f.Code))
	}
	return fmt.Sprintf("PDF_PREFLIGHT_FAILED: %s", strings.Join(codes, ", "))
}

// PageInfo 单页提取结果
type PageInfo struct {
	Width  float64
	Height float64
	Text   string
}

// Extractor 文本/页面几何提取能力（外部协作者）
type Extractor interface {
	ExtractPages(path string) ([]PageInfo, error)
}

// Checker 预检器
type Checker struct {
	extractor Extractor
}

// NewChecker 创建预检器
func NewChecker(extractor Extractor) *Checker {
	return &Checker{extractor: extractor}
}

// CheckFile 提取并预检一个已渲染的报告 PDF
func (c *Checker) CheckFile(path string) (*Report, error) {
	pages, err := c.extractor.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("提取 PDF 失败: %w", err)
	}

	report := Check(pages)
	if !report.Passed() {
		return report, &PreflightError{Findings: report.Findings}
	}
	return report, nil
}

// Check 对已提取的页集合跑全部检查（纯函数，便于离线测试）
func Check(pages []PageInfo) *Report {
	report := &Report{
		PageCount: len(pages),
		Findings:  []Finding{},
	}

	if len(pages) == 0 {
		report.Findings = append(report.Findings, Finding{
			Code:    FindingNoPages,
			Message: "PDF 不含任何页面",
		})
		return report
	}

	checkGeometry(pages, report)
	classifyPages(pages, report)
	checkBlankBudget(pages, report)
	checkSections(pages, report)
	return report
}

// checkGeometry 页面须为 A4 横向，允许 ±1.2pt 误差
func checkGeometry(pages []PageInfo, report *Report) {
	var bad []int
	for i, p := range pages {
		if math.Abs(p.Width-a4LandscapeWidth) > pageSizeTolerance ||
			math.Abs(p.Height-a4LandscapeHeight) > pageSizeTolerance {
			bad = append(bad, i+1)
		}
	}
	if len(bad) > 0 {
		report.Findings = append(report.Findings, Finding{
			Code:    FindingPageSizeNotA4,
			Message: fmt.Sprintf("%d 页尺寸偏离 A4 横向 (%.2f×%.2fpt ±%.1fpt)", len(bad), a4LandscapeWidth, a4LandscapeHeight, pageSizeTolerance),
			Pages:   bad,
		})
	}
}

// classifyPages 标注空白页与稀疏页
func classifyPages(pages []PageInfo, report *Report) {
	for i, p := range pages {
		n := contentChars(p.Text)
		switch {
		case n == 0:
			report.BlankPages = append(report.BlankPages, i+1)
		case n < sparsePageCharThreshold:
			report.SparsePages = append(report.SparsePages, i+1)
		}
	}
	if len(report.SparsePages) > 0 {
		report.Findings = append(report.Findings, Finding{
			Code:    FindingSparsePages,
			Message: fmt.Sprintf("%d 页内容过少（每页少于 %d 个非空白字符）", len(report.SparsePages), sparsePageCharThreshold),
			Pages:   report.SparsePages,
		})
	}
}

// checkBlankBudget 全空白页 ≤1，首尾内容页之间的内部空白页 ≤1
func checkBlankBudget(pages []PageInfo, report *Report) {
	if len(report.BlankPages) > maxBlankPages {
		report.Findings = append(report.Findings, Finding{
			Code:    FindingTooManyBlankPages,
			Message: fmt.Sprintf("空白页 %d 页，超出预算（至多 %d 页）", len(report.BlankPages), maxBlankPages),
			Pages:   report.BlankPages,
		})
	}

	first, last := contentSpan(pages)
	if first < 0 {
		return
	}
	var interior []int
	for _, pageNo := range report.BlankPages {
		if pageNo > first && pageNo < last {
			interior = append(interior, pageNo)
		}
	}
	if len(interior) > maxInteriorBlankPages {
		report.Findings = append(report.Findings, Finding{
			Code:    FindingInteriorBlankPages,
			Message: fmt.Sprintf("正文中间夹有 %d 页空白（至多 %d 页）", len(interior), maxInteriorBlankPages),
			Pages:   interior,
		})
	}
}

// checkSections 必备章节子串检查，双方去空白后比对
func checkSections(pages []PageInfo, report *Report) {
	var all strings.Builder
	for _, p := range pages {
		all.WriteString(p.Text)
	}
	haystack := squashWhitespace(all.String())

	var missing []string
	for _, section := range requiredSections {
		if !strings.Contains(haystack, squashWhitespace(section)) {
			missing = append(missing, section)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		report.Findings = append(report.Findings, Finding{
			Code:    FindingMissingSections,
			Message: fmt.Sprintf("缺少必备章节: %s", strings.Join(missing, "；")),
		})
	}
}

// contentSpan 首个与末个内容页页码（1 基）；全空白返回 (-1,-1)
func contentSpan(pages []PageInfo) (int, int) {
	first, last := -1, -1
	for i, p := range pages {
		if contentChars(p.Text) == 0 {
			continue
		}
		if first < 0 {
			first = i + 1
		}
		last = i + 1
	}
	return first, last
}

func contentChars(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '　':
		default:
			n++
		}
	}
	return n
}

func squashWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '　':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
