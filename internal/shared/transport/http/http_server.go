package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ggeorgiev0/backend-base/internal/shared/httperr"
	"github.com/ggeorgiev0/backend-base/internal/shared/transport/http/middleware"
	"github.com/ggeorgiev0/backend-base/modules/kit/logx"
)

type Server struct {
	engine *gin.Engine
	group  *gin.RouterGroup
	srv    *nethttp.Server
}

// NewServer 组装 HTTP 服务：
// 中间件顺序是硬约束——关联 ID 必须先于访问日志和异常边界注入，
// 异常边界必须是最内层（最贴近 handler），保证“分类一次、先日志后响应”。
func NewServer(addr string, engine *gin.Engine, logger logx.Logger,
	classifier *httperr.Classifier, errLogger *httperr.ErrorLogger) *Server {
	if engine == nil {
		engine = gin.New()
	}
	engine.Use(middleware.Cors())
	engine.Use(middleware.Correlation())
	engine.Use(middleware.AccessLog(logger))
	engine.Use(middleware.ExceptionBoundary(classifier, errLogger))
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})
	engine.NoRoute(func(c *gin.Context) {
		_ = c.Error(httperr.NewHTTPError(nethttp.StatusNotFound,
			"Cannot "+c.Request.Method+" "+c.Request.URL.Path))
	})

	return &Server{
		engine: engine,
		group:  engine.Group(""),
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start 启动 HTTP 服务（阻塞）。关闭时返回 net/http.ErrServerClosed。
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Group() *gin.RouterGroup {
	return s.group
}

func (s *Server) Handler() nethttp.Handler {
	return s.engine
}
