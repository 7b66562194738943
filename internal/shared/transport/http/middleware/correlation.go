package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ggeorgiev0/backend-base/modules/kit/correlation"
)

// HeaderCorrelationID 是请求/响应共用的关联 ID 头。
const HeaderCorrelationID = "X-Correlation-ID"

// Correlation 给每个请求挂关联 ID：调用方带了就复用，没带就生成，
// 同时回写响应头并放进请求 context 供下游日志/响应使用。
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(HeaderCorrelationID)
		if cid == "" {
			cid = correlation.NewID()
		}
		c.Request = c.Request.WithContext(correlation.WithID(c.Request.Context(), cid))
		c.Writer.Header().Set(HeaderCorrelationID, cid)
		c.Next()
	}
}
