package httperr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ggeorgiev0/backend-base/modules/kit/logx"
	"github.com/ggeorgiev0/backend-base/modules/kit/sanitize"

	"go.uber.org/zap"
)

// mutatingMethods 是会携带请求体的方法；日志只对它们记 body。
var mutatingMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// RequestMeta 是写错误日志需要的请求元信息（边界层从框架请求对象上摘下来）。
type RequestMeta struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    any // 原始 JSON 字节或已解析的值；仅 mutating 方法有意义
}

// ErrorLogger 把“请求元信息 + 脱敏后的请求数据 + 分类结果”组装成结构化日志，
// 按响应状态码选级别输出。日志是 best-effort：任何内部失败都被吞掉，
// 绝不允许在错误处理路径上造成二次故障。
type ErrorLogger struct {
	log          logx.Logger
	production   bool
	sanitizeOpts sanitize.Options
	headerOpts   sanitize.Options
}

func NewErrorLogger(l logx.Logger, production bool) *ErrorLogger {
	return &ErrorLogger{
		log:        l,
		production: production,
		headerOpts: sanitize.Options{
			// header 名不在默认敏感表里，这里显式追加
			ExtraFields: []string{"authorization", "cookie", "set-cookie"},
		},
	}
}

// LogException 记录一次分类完成的异常。severity 由 resp.StatusCode 决定。
func (el *ErrorLogger) LogException(ctx context.Context, exception any, resp Response, req RequestMeta) {
	if el == nil || el.log == nil {
		return
	}
	defer func() {
		// 日志失败不回抛
		_ = recover()
	}()

	fields := []zap.Field{
		zap.Int("status_code", resp.StatusCode),
		zap.String("error_code", resp.ErrorCode),
		zap.String("path", req.Path),
		zap.String("method", req.Method),
	}
	if resp.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", resp.CorrelationID))
	}
	if len(req.Headers) > 0 {
		fields = append(fields, zap.Any("headers", sanitize.Value(headersToMap(req.Headers), el.headerOpts)))
	}
	if len(req.Query) > 0 {
		fields = append(fields, zap.Any("query", sanitize.Value(queryToMap(req.Query), el.sanitizeOpts)))
	}
	if mutatingMethods[req.Method] && req.Body != nil {
		fields = append(fields, zap.Any("body", sanitize.Value(decodeBody(req.Body), el.sanitizeOpts)))
	}
	if len(resp.Errors) > 0 {
		fields = append(fields, zap.Any("field_errors", resp.Errors))
	}

	// 原始异常的 name/message/stack 只在非生产记录；其余字段两种环境完全一致
	if !el.production {
		if err, ok := exception.(error); ok && err != nil {
			meta := logx.BuildErrorMeta(err)
			fields = append(fields,
				zap.String("error_name", fmt.Sprintf("%T", err)),
				zap.String("error_message", meta.Error),
			)
			if meta.Stack != "" {
				fields = append(fields, zap.String("error_stack", meta.Stack))
			}
			if len(meta.CauseChain) > 0 {
				fields = append(fields, zap.Any("cause_chain", meta.CauseChain))
			}
			if len(meta.Context) > 0 {
				fields = append(fields, zap.Any("error_context", sanitize.Value(meta.Context, el.sanitizeOpts)))
			}
		} else if exception != nil {
			fields = append(fields, zap.String("exception", fmt.Sprintf("%v", exception)))
		}
	}

	logx.ReportByStatus(ctx, el.log, resp.StatusCode, "request exception", fields...)
}

func headersToMap(h http.Header) map[string]any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func queryToMap(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for k, v := range q {
		if len(v) == 1 {
			out[k] = v[0]
			continue
		}
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		out[k] = items
	}
	return out
}

// decodeBody 尽力把原始字节解析成结构化值，解析不了就原样返回字符串化结果。
func decodeBody(body any) any {
	raw, ok := body.([]byte)
	if !ok {
		return body
	}
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}
