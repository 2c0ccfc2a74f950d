package server

import (
	"log"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/api"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/config"
	"github.com/zxj6827111-blip/tianbaoxitong-sub002/internal/store"
)

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	handler *api.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "tianbao.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	s := &Server{
		router:  gin.Default(),
		store:   sqliteStore,
		handler: api.NewHandler(sqliteStore, cfg),
	}

	s.setupRoutes()

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(apiGroup)
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭底层资源
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储实例
func (s *Server) GetStore() *store.Store {
	return s.store
}
