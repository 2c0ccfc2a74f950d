package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/archive"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

type archiveExtractRequest struct {
	Tables []model.ArchiveTable `json:"tables" binding:"required"`
	// 同一年度已有的手工录入值（万元），用于冲突合并
	Manual map[string]float64 `json:"manual"`
}

// ExtractArchive 从归档表快照自动抽取候选事实
// POST /api/archive/extract
func (h *Handler) ExtractArchive(c *gin.Context) {
	var req archiveExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	extractor := archive.NewExtractor()
	batchID := uuid.New().String()

	var fields []*model.ArchivePreviewField
	auto := make(map[string]float64)
	for _, t := range req.Tables {
		for _, f := range extractor.ExtractTable(t) {
			if _, seen := auto[f.Key]; seen {
				continue
			}
			auto[f.Key] = f.Value
			v := f.Value
			fields = append(fields, &model.ArchivePreviewField{
				BatchID:       batchID,
				Key:           f.Key,
				RawValue:      f.RawValue,
				NormalizedVal: &v,
				Confidence:    f.Confidence,
				MatchSource:   f.Source,
			})
		}
	}

	if err := h.store.BatchInsertPreviewFields(fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	merge := archive.MergeFacts(req.Manual, auto)

	c.JSON(http.StatusOK, gin.H{
		"batchId": batchID,
		"fields":  fields,
		"merged":  merge.Merged,
		"skipped": merge.SkippedManual,
	})
}

// ListPreviewFields 列出批次候选字段
// GET /api/archive/preview/:batchId
func (h *Handler) ListPreviewFields(c *gin.Context) {
	fields, err := h.store.ListPreviewFields(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": fields, "total": len(fields)})
}

type confirmRequest struct {
	CorrectedValue *float64 `json:"correctedValue"`
}

// ConfirmPreviewField 人工确认候选字段
// POST /api/archive/preview/:id/confirm
func (h *Handler) ConfirmPreviewField(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.store.ConfirmPreviewField(id, req.CorrectedValue); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": true})
}

type promoteRequest struct {
	BatchID string `json:"batchId" binding:"required"`
	UnitID  string `json:"unitId" binding:"required"`
	Year    int    `json:"year" binding:"required"`
	Stage   string `json:"stage" binding:"required"`
}

// PromotePreview 将已确认字段晋升为历史口径事实
// POST /api/archive/promote
func (h *Handler) PromotePreview(c *gin.Context) {
	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	stage := model.Stage(req.Stage)
	if stage != model.StageBudget && stage != model.StageFinal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的期别"})
		return
	}

	n, err := h.store.PromotePreviewBatch(req.BatchID, req.UnitID, req.Year, stage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"promoted": n})
}
