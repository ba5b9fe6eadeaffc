package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eryajf/qaloop/internal/config"
	"github.com/eryajf/qaloop/internal/resolver"
)

// Pinger 健康检查探测接口,由缓存和持久层实现
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPGinServer 基于 Gin 的 HTTP 服务器
type HTTPGinServer struct {
	config   *config.Config
	engine   *gin.Engine
	server   *http.Server
	resolver *resolver.Resolver
	cache    Pinger // 缓存禁用时为 nil
	store    Pinger
	log      *zap.SugaredLogger
}

// NewHTTPGinServer 创建基于 Gin 的 HTTP 服务器
func NewHTTPGinServer(cfg *config.Config, rsv *resolver.Resolver, cachePing, storePing Pinger, log *zap.SugaredLogger) *HTTPGinServer {
	// 设置 Gin 模式
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &HTTPGinServer{
		config:   cfg,
		engine:   gin.New(),
		resolver: rsv,
		cache:    cachePing,
		store:    storePing,
		log:      log,
	}

	// 注册中间件
	s.registerMiddlewares()

	// 注册路由
	s.registerRoutes()

	return s
}

// registerMiddlewares 注册中间件
func (s *HTTPGinServer) registerMiddlewares() {
	// 恢复中间件 - 从 panic 恢复
	s.engine.Use(gin.Recovery())

	// 请求 ID 中间件
	s.engine.Use(s.requestIDMiddleware())

	// 自定义日志中间件
	s.engine.Use(s.loggingMiddleware())

	// CORS 中间件(如果需要)
	s.engine.Use(s.corsMiddleware())
}

// requestIDMiddleware 为每个请求分配 ID,便于日志串联
func (s *HTTPGinServer) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// loggingMiddleware 自定义日志中间件
func (s *HTTPGinServer) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		s.log.Infof("HTTP request, method %s, path %s, status %d, duration %s, request_id %s",
			method, path, status, duration, c.GetString("request_id"))
	}
}

// corsMiddleware CORS 中间件
func (s *HTTPGinServer) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// registerRoutes 注册路由
func (s *HTTPGinServer) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.POST("/ask", s.handleAsk)
}

// handleHealth 健康检查,探测 Redis 与数据库连通性
func (s *HTTPGinServer) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	ok := true
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warnf("Health check: database unreachable: %v", err)
		ok = false
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			s.log.Warnf("Health check: redis unreachable: %v", err)
			ok = false
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

// Start 启动 HTTP 服务器
func (s *HTTPGinServer) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%d", s.config.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // 生成端调用可能较慢
	}

	s.log.Infof("🛜 Starting HTTP Server (Gin), Addr %s", addr)
	return s.server.ListenAndServe()
}

// Stop 停止 HTTP 服务器
func (s *HTTPGinServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
