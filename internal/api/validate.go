package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/model"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/parser"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/validate"
)

type validateRequest struct {
	UnitID  string                `json:"unitId"`
	Year    int                   `json:"year"`
	Caliber string                `json:"caliber" binding:"required"`
	Fields  []model.ValidateField `json:"fields" binding:"required"`
}

// Validate 对提交的字段集单独跑交叉校验（不经工作簿解析，核对归档合并结果用）
// POST /api/validate
func (h *Handler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	caliber := model.Caliber(req.Caliber)
	if caliber != model.CaliberUnit && caliber != model.CaliberDepartment {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的口径"})
		return
	}

	rules := parser.MappingRulesFor(caliber)
	v := validate.New(h.cfg.Validate.BalanceTolerance, parser.RequiredKeys(rules), h.lookup)
	issues := v.Validate(req.Fields, req.UnitID, req.Year)

	c.JSON(http.StatusOK, gin.H{"issues": issues, "passed": len(issues) == 0})
}
