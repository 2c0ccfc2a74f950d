package model

import "time"

// Stage 报表期别
type Stage string

const (
	StageBudget Stage = "BUDGET" // 预算
	StageFinal  Stage = "FINAL"  // 决算
)

// HistoricalActual 历史口径事实，唯一键 (unit, year, stage, key)
// 锁定后除显式修正流程外不可变。
type HistoricalActual struct {
	ID                   int64     `json:"id"`
	UnitID               string    `json:"unitId"`
	Year                 int       `json:"year"`
	Stage                Stage     `json:"stage"`
	Key                  string    `json:"key"`
	ValueNumeric         float64   `json:"valueNumeric"`
	IsLocked             bool      `json:"isLocked"`
	SourceBatchID        string    `json:"sourceBatchId,omitempty"`
	SourceSuggestionID   string    `json:"sourceSuggestionId,omitempty"`
	SourcePreviewBatchID string    `json:"sourcePreviewBatchId,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Confidence 归档自动抽取置信度
type Confidence string

const (
	ConfidenceHigh         Confidence = "HIGH"         // 显式单位标记
	ConfidenceMedium       Confidence = "MEDIUM"       // 量级启发推断
	ConfidenceLow          Confidence = "LOW"          // 固定偏移配对
	ConfidenceUnrecognized Confidence = "UNRECOGNIZED" // 未识别
)

// ArchivePreviewField 归档抽取候选字段，待人工确认后晋升为 HistoricalActual
type ArchivePreviewField struct {
	ID             int64      `json:"id"`
	BatchID        string     `json:"batchId"`
	Key            string     `json:"key"`
	RawValue       string     `json:"rawValue"`
	NormalizedVal  *float64   `json:"normalizedValue"`
	Confidence     Confidence `json:"confidence"`
	MatchSource    string     `json:"matchSource"`
	Confirmed      bool       `json:"confirmed"`
	CorrectedValue *float64   `json:"correctedValue"`
}

// ImportBatch 导入批次
type ImportBatch struct {
	ID        string    `json:"id"`
	UnitID    string    `json:"unitId"`
	Year      int       `json:"year"`
	Stage     Stage     `json:"stage"`
	Caliber   Caliber   `json:"caliber"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"` // parsing/parsed/validated/saved/error
	CreatedAt time.Time `json:"createdAt"`
}

// ArchiveTable 归档表快照：此前从 PDF 提取的松散二维表
type ArchiveTable struct {
	TableKey string     `json:"table_key"`
	Rows     [][]string `json:"data_json"`
}
