package logx

import (
	"context"

	"go.uber.org/zap"
)

// ReportByStatus 按 HTTP 状态码选择日志级别输出：
// - >= 500: ERROR
// - 400~499: WARN
// - 300~399: INFO
// - 其余: DEBUG
//
// 级别判定依赖调用方已经归一化好的状态码，这里不做兜底修正。
func ReportByStatus(ctx context.Context, l Logger, status int, msg string, fields ...zap.Field) {
	if l == nil {
		return
	}
	withCtx := l.WithContext(ctx)
	switch {
	case status >= 500:
		withCtx.Error(msg, fields...)
	case status >= 400:
		withCtx.Warn(msg, fields...)
	case status >= 300:
		withCtx.Info(msg, fields...)
	default:
		withCtx.Debug(msg, fields...)
	}
}
