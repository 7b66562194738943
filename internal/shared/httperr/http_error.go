package httperr

import "fmt"

// HTTPError 表示“带显式状态码的通用框架错误”：只有 status 和一个
// 字符串或结构化 payload，没有领域语义。分类时通过状态码表归一成 Kind。
type HTTPError struct {
	status  int
	payload any
}

// NewHTTPError 构造框架级 HTTP 错误。payload 可以是字符串，也可以是
// 带 message/errors 字段的 map。
func NewHTTPError(status int, payload any) *HTTPError {
	return &HTTPError{status: status, payload: payload}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if s, ok := e.payload.(string); ok {
		return fmt.Sprintf("http %d: %s", e.status, s)
	}
	return fmt.Sprintf("http %d: %v", e.status, e.payload)
}

func (e *HTTPError) StatusCode() int {
	if e == nil {
		return 500
	}
	return e.status
}

func (e *HTTPError) Payload() any {
	if e == nil {
		return nil
	}
	return e.payload
}
