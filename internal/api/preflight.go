package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// Preflight 公开前 PDF 体检
// POST /api/preflight
func (h *Handler) Preflight(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}
	uploaded := files[0]

	// PDF 库按路径读取，先落临时文件
	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("tianbao_preflight_%d_%s", time.Now().Unix(), uploaded.Filename))
	if err := c.SaveUploadedFile(uploaded, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}
	defer os.Remove(tempPath)

	report, err := h.checker.CheckFile(tempPath)
	if err != nil {
		if report != nil {
			// 体检不通过：发现项随错误一并返回
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  err.Error(),
				"passed": false,
				"report": report,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"passed": report.Passed(),
		"report": report,
	})
}
