package model

// ValueType 单元格值类型
type ValueType string

const (
	ValueNumeric ValueType = "numeric"
	ValueText    ValueType = "text"
	ValueDate    ValueType = "date"
	ValueEmpty   ValueType = "empty"
)

// ParsedCell 解析触达的单元格证据
// 一次解析内按 sheet+address 去重，只建一条；建成后不再修改。
type ParsedCell struct {
	SheetName       string    `json:"sheetName"`
	CellAddress     string    `json:"cellAddress"`
	AnchorDesc      string    `json:"anchorDescription"`
	RawValue        string    `json:"rawValue"`
	NormalizedValue *float64  `json:"normalizedValue"`
	ValueType       ValueType `json:"valueType"`
	NumberFormat    string    `json:"numberFormat,omitempty"`
}

// Fact 数值事实：一个 key 一轮解析至多一条
type Fact struct {
	Key           string       `json:"key"`
	ValueNumeric  float64      `json:"valueNumeric"`
	EvidenceCells []ParsedCell `json:"evidenceCells"`
}

// TextFact 文本事实（说明类）
type TextFact struct {
	Key       string `json:"key"`
	ValueText string `json:"valueText"`
}

// ParseOutput 主解析器输出
type ParseOutput struct {
	ParsedCells []ParsedCell `json:"parsedCells"`
	Facts       []Fact       `json:"facts"`
	Texts       []TextFact   `json:"texts"`
}

// FactMap 以 key 索引数值事实
func (o *ParseOutput) FactMap() map[string]float64 {
	m := make(map[string]float64, len(o.Facts))
	for _, f := range o.Facts {
		m[f.Key] = f.ValueNumeric
	}
	return m
}
