// Package server 提供只读的 HTTP 接口：函数表单描述、执行记录与指标
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KodaTao/FormChassis/pkg/chassis"
	"github.com/KodaTao/FormChassis/pkg/history"
	"github.com/KodaTao/FormChassis/pkg/observability"
)

// Server HTTP 服务器
type Server struct {
	app    *chassis.App
	engine *gin.Engine
	config chassis.ServerConfig
}

// NewServer 创建 HTTP 服务器，配置取自应用的 Server 与 Observability 部分
func NewServer(app *chassis.App) *Server {
	config := app.Config().Server

	// 设置 Gin 模式
	switch config.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()

	// 添加中间件
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware())
	engine.Use(CORSMiddleware())

	server := &Server{
		app:    app,
		engine: engine,
		config: config,
	}

	// 注册路由
	server.setupRoutes()

	return server
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 健康检查
	s.engine.GET("/health", s.healthCheck)

	if m := s.app.Config().Observability.Metrics; m.Enabled {
		s.engine.GET(m.Path, gin.WrapH(promhttp.HandlerFor(observability.MetricsRegistry(), promhttp.HandlerOpts{})))
	}

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// Function 表单
		v1.GET("/functions", s.listFunctions)
		v1.GET("/functions/:name", s.getFunction)
		v1.GET("/functions/:name/stats", s.functionStats)

		// 执行记录
		v1.GET("/runs", s.listRuns)
		v1.GET("/runs/:id", s.getRun)
	}
}

// Run 启动服务器，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		observability.Info("Starting HTTP server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	observability.Info("HTTP server stopped")
	return nil
}

// GetEngine 获取 Gin 引擎（用于测试）
func (s *Server) GetEngine() *gin.Engine {
	return s.engine
}

// 健康检查
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"functions": len(s.app.Bundles()),
		"timestamp": time.Now().Unix(),
	})
}

// functionSummary 函数列表中的条目
type functionSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Group       string `json:"group,omitempty"`
	Cancelable  bool   `json:"cancelable"`
	Parameters  int    `json:"parameters"`
}

// 列出所有 Function
func (s *Server) listFunctions(c *gin.Context) {
	bundles := s.app.Bundles()
	functions := make([]functionSummary, 0, len(bundles))
	for _, b := range bundles {
		functions = append(functions, functionSummary{
			Name:        b.FnInfo.Name,
			DisplayName: b.FnInfo.DisplayName,
			Group:       b.FnInfo.Group,
			Cancelable:  b.FnInfo.Cancelable,
			Parameters:  b.FnInfo.Parameters.Len(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"functions": functions,
		"count":     len(functions),
	})
}

// 获取单个 Function 的表单描述
func (s *Server) getFunction(c *gin.Context) {
	name := c.Param("name")

	b, ok := s.app.GetBundle(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Function not found: " + name,
		})
		return
	}

	d, err := chassis.Describe(b)
	if err != nil {
		observability.Error("Describe failed", "function", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Describe failed: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, d)
}

// 按状态统计 Function 的运行次数
func (s *Server) functionStats(c *gin.Context) {
	repo, ok := s.history(c)
	if !ok {
		return
	}
	name := c.Param("name")
	if !s.app.Exists(name) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Function not found: " + name,
		})
		return
	}

	counts, err := repo.CountByStatus(name)
	if err != nil {
		s.internalError(c, "Count runs failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"function": name,
		"counts":   counts,
	})
}

// runQuery 执行记录查询参数
type runQuery struct {
	Function string `form:"function"`
	Status   string `form:"status" binding:"omitempty,oneof=success parameter_error runtime_error"`
	Limit    int    `form:"limit" binding:"gte=0,lte=1000"`
	Offset   int    `form:"offset" binding:"gte=0"`
}

// 列出执行记录
func (s *Server) listRuns(c *gin.Context) {
	repo, ok := s.history(c)
	if !ok {
		return
	}

	q := runQuery{Limit: 50}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	records, err := repo.List(history.Filter{
		Function: q.Function,
		Status:   history.Status(q.Status),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		s.internalError(c, "List runs failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  records,
		"count": len(records),
	})
}

// 获取单条执行记录
func (s *Server) getRun(c *gin.Context) {
	repo, ok := s.history(c)
	if !ok {
		return
	}
	id := c.Param("id")

	rec, err := repo.GetByRunID(id)
	if errors.Is(err, history.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Run not found: " + id,
		})
		return
	}
	if err != nil {
		s.internalError(c, "Get run failed", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// history 返回执行记录仓库，未启用时写入 404
func (s *Server) history(c *gin.Context) (*history.Repository, bool) {
	repo := s.app.History()
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Execution history is disabled",
		})
		return nil, false
	}
	return repo, true
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	observability.Error(msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": msg + ": " + err.Error(),
	})
}

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		observability.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
