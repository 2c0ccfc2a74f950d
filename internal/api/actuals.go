package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
)

// ListActuals 查询历史口径事实
// GET /api/actuals?unitId=&year=
func (h *Handler) ListActuals(c *gin.Context) {
	unitID := c.Query("unitId")
	if unitID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unitId 必填"})
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的年度"})
		return
	}

	actuals, err := h.store.ListActuals(unitID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": actuals, "total": len(actuals)})
}

type lockRequest struct {
	UnitID string `json:"unitId" binding:"required"`
	Year   int    `json:"year" binding:"required"`
	Stage  string `json:"stage" binding:"required"`
}

// LockActuals 锁定一组口径事实，锁定后成为同比基线
// POST /api/actuals/lock
func (h *Handler) LockActuals(c *gin.Context) {
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	stage := model.Stage(req.Stage)
	if stage != model.StageBudget && stage != model.StageFinal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的期别"})
		return
	}

	n, err := h.store.LockActuals(req.UnitID, req.Year, stage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"locked": n})
}

// ListBatchCells 查询批次的取数证据单元格
// GET /api/batches/:id/cells
func (h *Handler) ListBatchCells(c *gin.Context) {
	cells, err := h.store.ListParsedCells(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cells, "total": len(cells)})
}
