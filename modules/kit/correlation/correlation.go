// Package correlation 提供请求级关联 ID 的 context 携带与生成。
// 关联 ID 在请求入口处创建（调用方带了就复用），贯穿日志与响应，请求结束即丢弃。
package correlation

import (
	"context"

	"github.com/google/uuid"
)

type idKey struct{}

// WithID 把关联 ID 写入 context。
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// IDFrom 从 context 读取关联 ID。
func IDFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(idKey{})
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// NewID 生成新的关联 ID（UUID v4）。
func NewID() string {
	return uuid.NewString()
}
