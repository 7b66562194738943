// Package httperr 实现统一的异常归一化管道：
// 任意来源的错误（领域错误、框架错误、ORM 错误、原始校验形状、未知值）
// 最终都归一成同一个对客户端安全的响应形状，服务端侧则带完整上下文落日志。
package httperr

import "time"

// Response 是分类器唯一的输出形状，也是 HTTP 错误响应体的稳定线上契约。
//
// 不变量：
// - Data 只在非生产环境填充，且填充前必须已过脱敏
// - CorrelationID 调用方传了就原样带上，没传则整个字段缺省（不是 null）
type Response struct {
	Status        string              `json:"status"`
	StatusCode    int                 `json:"statusCode"`
	Message       string              `json:"message"`
	ErrorCode     string              `json:"errorCode"`
	Timestamp     string              `json:"timestamp"`
	CorrelationID string              `json:"correlationId,omitempty"`
	Errors        map[string][]string `json:"errors,omitempty"`
	Data          map[string]any      `json:"data,omitempty"`
}

func newResponse(statusCode int, errorCode, message string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}
