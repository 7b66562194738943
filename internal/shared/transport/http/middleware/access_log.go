package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ggeorgiev0/backend-base/modules/kit/logx"
)

// AccessLog 统一写访问日志：成功 INFO，失败按状态码选级别。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.Next()
			return
		}
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		action := c.Request.Method + " " + route

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("log_type", "access"),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if status < 400 {
			fields = append(fields, zap.String("result", "success"))
			log.WithContext(c.Request.Context()).Info(action, fields...)
			return
		}
		fields = append(fields, zap.String("result", "failure"))
		logx.ReportByStatus(c.Request.Context(), log, status, action, fields...)
	}
}
