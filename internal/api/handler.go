package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/config"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/importer"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/preflight"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/store"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/validate"
)

// Handler API 处理器
type Handler struct {
	store       *store.Store
	cfg         *config.AppConfig
	coordinator *importer.Coordinator
	checker     *preflight.Checker
	// 同比基线查询缓存，跨请求共享
	lookup validate.ActualLookup
}

// NewHandler 创建 API 处理器
func NewHandler(store *store.Store, cfg *config.AppConfig) *Handler {
	return &Handler{
		store:       store,
		cfg:         cfg,
		coordinator: importer.NewCoordinator(store),
		checker:     preflight.NewChecker(preflight.NewPDFExtractor()),
		lookup:      validate.NewCachedLookup(store, 5*time.Minute),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 报表解析
	router.POST("/import", h.Import)
	router.POST("/parse", h.Parse)
	router.POST("/export", h.Export)

	// 字段集交叉校验
	router.POST("/validate", h.Validate)

	// 历史口径事实
	router.GET("/actuals", h.ListActuals)
	router.POST("/actuals/lock", h.LockActuals)

	// 取数证据
	router.GET("/batches/:id/cells", h.ListBatchCells)

	// 归档回填
	router.POST("/archive/extract", h.ExtractArchive)
	router.GET("/archive/preview/:batchId", h.ListPreviewFields)
	router.POST("/archive/preview/:id/confirm", h.ConfirmPreviewField)
	router.POST("/archive/promote", h.PromotePreview)

	// PDF 体检
	router.POST("/preflight", h.Preflight)
}
