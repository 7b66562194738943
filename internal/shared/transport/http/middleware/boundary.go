package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ggeorgiev0/backend-base/internal/shared/httperr"
	"github.com/ggeorgiev0/backend-base/modules/kit/correlation"
)

// bodyLimit 限制为写错误日志而缓存的请求体大小。
const bodyLimit = 64 << 10

var mutatingMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPatch: true,
	http.MethodPut:   true,
}

// ExceptionBoundary 是全局异常边界：请求处理中逃逸出来的任何异常
// （handler 里 c.Error 上报的错误、或 panic）都在这里收口。
//
// 不变量：每个失败请求恰好分类一次；被日志记录的和被返回给客户端的是
// 同一个 Response 对象，两侧视图只差生产环境的 data 剥离。
// 顺序硬约束：先分类、再日志、最后写响应——日志级别取决于分类结果。
func ExceptionBoundary(classifier *httperr.Classifier, errLogger *httperr.ErrorLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 提前缓存请求体：出错时日志需要（脱敏后），正常路径照常消费。
		// 只有日志副本有 64KB 上限；handler 读到的是缓存段拼上未读完的剩余流，
		// 超大请求体不能被这里截断。
		var bodyBytes []byte
		if mutatingMethods[c.Request.Method] && c.Request.Body != nil {
			rest := c.Request.Body
			bodyBytes, _ = io.ReadAll(io.LimitReader(rest, bodyLimit))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(bodyBytes), rest))
		}

		defer func() {
			var exception any
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					exception = err
				} else {
					exception = r
				}
			} else if len(c.Errors) > 0 {
				exception = c.Errors.Last().Err
			}
			if exception == nil {
				return
			}

			ctx := c.Request.Context()
			cid, _ := correlation.IDFrom(ctx)

			meta := httperr.RequestMeta{
				Method:  c.Request.Method,
				Path:    c.Request.URL.Path,
				Query:   c.Request.URL.Query(),
				Headers: c.Request.Header,
			}
			if len(bodyBytes) > 0 {
				meta.Body = bodyBytes
			}

			resp := classifier.Classify(exception, cid)
			errLogger.LogException(ctx, exception, resp, meta)

			if c.Writer.Written() {
				// 响应已经发出（流式场景的半截失败）：只能日志，不能再写响应体
				return
			}
			c.AbortWithStatusJSON(resp.StatusCode, resp)
		}()

		c.Next()
	}
}
