package errx

import (
	"errors"
	"fmt"
	"runtime"
)

// Error 是通用领域错误模型：
// - kind/status/msg：对外语义（status 默认取 kind 的映射，允许显式覆盖）
// - context：诊断上下文（禁止外部修改，内部会复制；生产环境绝不下发给客户端）
// - fieldErrors：字段级校验错误（仅 ValidationFailed 使用，字段名 → 消息列表）
// - cause：原始错误链（仅用于溯源，不参与对外语义）
// - stack：只在“非预期错误”第一次 wrap/转换处捕获一次，用于溯源定位
type Error struct {
	kind        Kind
	status      int
	msg         string
	context     map[string]any
	fieldErrors map[string][]string
	cause       error
	stack       []uintptr
}

// New 在错误现场构造领域错误，status 取 kind 的默认映射。
func New(kind Kind, msg string) *Error {
	return &Error{
		kind:   kind,
		status: kind.Status(),
		msg:    msg,
	}
}

// NewValidation 构造字段级校验错误（ValidationFailed）。
// 约束：fieldErrors 不允许为空 —— 传空时用 msg 自身兜底成单字段错误，
// 保证“kind=ValidationFailed 则 fieldErrors 非空”这一不变量。
func NewValidation(msg string, fieldErrors map[string][]string) *Error {
	if len(fieldErrors) == 0 {
		fieldErrors = map[string][]string{"value": {msg}}
	}
	return &Error{
		kind:        KindValidationFailed,
		status:      KindValidationFailed.Status(),
		msg:         msg,
		fieldErrors: cloneFieldErrors(fieldErrors),
	}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.msg == "" {
		if e.cause == nil {
			return e.kind.Code()
		}
		return fmt.Sprintf("%s: %v", e.kind.Code(), e.cause)
	}
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.kind.Code(), e.msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.kind.Code(), e.msg, e.cause)
}

// Unwrap 让 errors.Is / errors.As 可以沿着 cause 链溯源。
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is 让 errors.Is 仅按 Kind 判断“语义是否相同”，忽略 msg/context/cause。
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.kind == t.kind
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternalServerError
	}
	return e.kind
}

func (e *Error) Code() string {
	if e == nil {
		return KindInternalServerError.Code()
	}
	return e.kind.Code()
}

func (e *Error) Status() int {
	if e == nil {
		return KindInternalServerError.Status()
	}
	return e.status
}

func (e *Error) Msg() string {
	if e == nil {
		return ""
	}
	return e.msg
}

// Context 返回诊断上下文的拷贝，避免外部修改影响错误内容。
func (e *Error) Context() map[string]any {
	if e == nil || e.context == nil {
		return nil
	}
	return cloneAnyMap(e.context)
}

// FieldErrors 返回字段错误的拷贝；非校验错误返回 nil。
func (e *Error) FieldErrors() map[string][]string {
	if e == nil || e.fieldErrors == nil {
		return nil
	}
	return cloneFieldErrors(e.fieldErrors)
}

// Stack 返回“错误最早发生/被转换那一刻”的调用栈（只对非预期错误生效，且只捕获一次）。
func (e *Error) Stack() []uintptr {
	if e == nil || len(e.stack) == 0 {
		return nil
	}
	out := make([]uintptr, len(e.stack))
	copy(out, e.stack)
	return out
}

func (e *Error) clone() *Error {
	return &Error{
		kind:        e.kind,
		status:      e.status,
		msg:         e.msg,
		context:     cloneAnyMap(e.context),
		fieldErrors: cloneFieldErrors(e.fieldErrors),
		cause:       e.cause,
		stack:       cloneStack(e.stack),
	}
}

// WithContext 派生新错误并追加一条诊断上下文；原错误不受影响。
func (e *Error) WithContext(key string, value any) *Error {
	next := e.clone()
	if next.context == nil {
		next.context = make(map[string]any, 1)
	}
	next.context[key] = value
	return next
}

func (e *Error) WithContextMap(context map[string]any) *Error {
	next := e.clone()
	if len(context) == 0 {
		return next
	}
	if next.context == nil {
		next.context = make(map[string]any, len(context))
	}
	for k, v := range context {
		next.context[k] = v
	}
	return next
}

// WithStatus 覆盖默认 HTTP 状态码（同一 Kind 在特定接口语义下需要不同状态码时使用）。
func (e *Error) WithStatus(status int) *Error {
	next := e.clone()
	next.status = status
	return next
}

// WithCause 挂接原始错误。只在“非预期错误”首次挂 cause 时捕获一次栈；
// 如果下层已有栈，则不上浮重复捕获。
func (e *Error) WithCause(cause error) *Error {
	next := e.clone()
	next.cause = cause
	if next.unexpected() && cause != nil && len(next.stack) == 0 && !hasStackInChain(cause) {
		next.stack = captureStack(3)
	}
	return next
}

// unexpected 区分“业务上预期会发生”的错误与“技术故障”，只有后者需要栈。
func (e *Error) unexpected() bool {
	switch e.kind {
	case KindExternalServiceError, KindExternalServiceTimeout, KindExternalServiceUnavailable,
		KindInternalServerError, KindNotImplemented, KindServiceUnavailable:
		return true
	default:
		return false
	}
}

// AsError 从错误链中提取 *Error；不存在则返回 (nil, false)。
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) && de != nil {
		return de, true
	}
	return nil, false
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFieldErrors(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		msgs := make([]string, len(v))
		copy(msgs, v)
		out[k] = msgs
	}
	return out
}

func cloneStack(in []uintptr) []uintptr {
	if len(in) == 0 {
		return nil
	}
	out := make([]uintptr, len(in))
	copy(out, in)
	return out
}

func captureStack(skip int) []uintptr {
	const maxDepth = 64
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip, pcs)
	if n <= 0 {
		return nil
	}
	return pcs[:n]
}

func hasStackInChain(err error) bool {
	const maxDepth = 32
	for i := 0; i < maxDepth && err != nil; i++ {
		if sp, ok := err.(interface{ Stack() []uintptr }); ok && len(sp.Stack()) != 0 {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
