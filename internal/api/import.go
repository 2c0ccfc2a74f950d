package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/exporter"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/importer"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// GetStatus 系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": "1.0",
	})
}

// readImportOptions 从 multipart 表单组装导入选项
func (h *Handler) readImportOptions(c *gin.Context, persist bool) (*importer.ImportOptions, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("未找到上传文件")
	}
	defer file.Close()

	maxSize := h.cfg.Upload.MaxSizeMB * 1024 * 1024
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败")
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("文件超过 %dMB 上限", h.cfg.Upload.MaxSizeMB)
	}

	year, err := strconv.Atoi(c.DefaultPostForm("year", "0"))
	if err != nil || year <= 0 {
		return nil, fmt.Errorf("无效的预算年度")
	}

	caliber := model.Caliber(c.DefaultPostForm("caliber", string(model.CaliberUnit)))
	if caliber != model.CaliberUnit && caliber != model.CaliberDepartment {
		return nil, fmt.Errorf("无效的口径: %s", caliber)
	}

	stage := model.Stage(c.DefaultPostForm("stage", string(model.StageBudget)))
	if stage != model.StageBudget && stage != model.StageFinal {
		return nil, fmt.Errorf("无效的期别: %s", stage)
	}

	return &importer.ImportOptions{
		Data:             data,
		Filename:         header.Filename,
		UnitID:           c.PostForm("unitId"),
		Year:             year,
		Stage:            stage,
		Caliber:          caliber,
		Persist:          persist,
		BalanceTolerance: h.cfg.Validate.BalanceTolerance,
	}, nil
}

// Import 导入报表并落库 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	opts, err := h.readImportOptions(c, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	for event := range h.coordinator.Import(*opts) {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// Parse 试解析（不落库），同步返回事实与校验结果
// POST /api/parse
func (h *Handler) Parse(c *gin.Context) {
	opts, err := h.readImportOptions(c, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.coordinator.ImportSync(*opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Export 解析并导出结果工作簿
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	opts, err := h.readImportOptions(c, false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.coordinator.ImportSync(*opts)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	f, err := exporter.NewExporter().Export(result.Output, result.Issues)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("解析结果_%s_%d.xlsx", opts.UnitID, opts.Year)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
