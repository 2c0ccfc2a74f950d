package preflight

import (
	"fmt"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFExtractor 默认提取实现
// 先用 pdfcpu 做结构校验（损坏件在进入逐页提取前拦下），
// 再用 ledongthuc/pdf 取每页纯文本与 MediaBox 几何。
type PDFExtractor struct{}

// NewPDFExtractor 创建提取器
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractPages 实现 Extractor
func (x *PDFExtractor) ExtractPages(path string) ([]PageInfo, error) {
	if err := pdfapi.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("PDF 结构校验未通过: %w", err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]PageInfo, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, PageInfo{})
			continue
		}

		info := PageInfo{}
		info.Width, info.Height = mediaBoxSize(page)
		// 单页文本提取失败按空白页处理，交由空白页预算报出
		if text, err := page.GetPlainText(nil); err == nil {
			info.Text = text
		}
		pages = append(pages, info)
	}
	return pages, nil
}

// mediaBoxSize 读 MediaBox，页面字典缺省时沿页树向上找继承值
func mediaBoxSize(page pdf.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	if box.IsNull() {
		parent := page.V.Key("Parent")
		for !parent.IsNull() {
			if mb := parent.Key("MediaBox"); !mb.IsNull() {
				box = mb
				break
			}
			parent = parent.Key("Parent")
		}
	}
	if box.IsNull() || box.Len() != 4 {
		return 0, 0
	}

	llx := box.Index(0).Float64()
	lly := box.Index(1).Float64()
	urx := box.Index(2).Float64()
	ury := box.Index(3).Float64()
	return urx - llx, ury - lly
}
