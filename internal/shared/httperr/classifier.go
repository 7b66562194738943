package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
	"github.com/ggeorgiev0/backend-base/modules/kit/sanitize"
)

const (
	fallbackMessage = "An error occurred"
	unknownMessage  = "An unexpected error occurred"
)

// Classifier 把任意被捕获的异常值归一成 Response。
//
// 分发优先级（先命中先赢，这是硬性不变量——同一个值可能同时满足多个形状）：
// 1. 领域错误（*errx.Error，含校验错误）
// 2. 框架类 HTTP 错误（显式 status + 字符串或结构化 payload）
// 3. 未被领域错误包裹的“原始校验形状”（validation 列表 / errors 映射，形状嗅探）
// 4. 其余一律按未知异常兜底
//
// production 在构造时注入且不可变：生产环境最终统一剥离 Data（收口在一处，各分支不重复做）。
// Classify 自身绝不允许抛出——内部任何失败都降级到未知异常分支。
type Classifier struct {
	production   bool
	sanitizeOpts sanitize.Options
}

func NewClassifier(production bool) *Classifier {
	return &Classifier{production: production}
}

// Classify 归一化异常值。correlationID 传了就原样附上，没传则字段缺省。
func (c *Classifier) Classify(exception any, correlationID string) Response {
	resp := c.dispatch(exception)
	if correlationID != "" {
		resp.CorrelationID = correlationID
	}
	if c.production {
		// 生产环境剥离诊断数据：作为最终收口统一执行，避免分支间漂移
		resp.Data = nil
	}
	return resp
}

func (c *Classifier) dispatch(exception any) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = c.classifyUnknown(fmt.Errorf("classification panic: %v", r))
		}
	}()

	// 先把异常值归一成封闭的变体集合，再做单次穷举分发
	switch v := normalize(exception); v.tag {
	case variantDomain:
		return c.classifyDomain(v.domain)
	case variantHTTP:
		return c.classifyHTTP(v.http)
	case variantRawValidation:
		return c.classifyRawValidation(v.fieldErrors)
	default:
		return c.classifyUnknown(exception)
	}
}

type variantTag uint8

const (
	variantDomain variantTag = iota
	variantHTTP
	variantRawValidation
	variantUnknown
)

type variant struct {
	tag         variantTag
	domain      *errx.Error
	http        *HTTPError
	fieldErrors map[string][]string
}

func normalize(exception any) variant {
	if err, ok := exception.(error); ok && err != nil {
		// 领域错误优先：一个值同时是领域错误又长得像校验形状时，走领域分支
		if de, ok := errx.AsError(err); ok {
			return variant{tag: variantDomain, domain: de}
		}
		var he *HTTPError
		if errors.As(err, &he) && he != nil {
			return variant{tag: variantHTTP, http: he}
		}
	}
	if fields, ok := detectRawValidation(exception); ok {
		return variant{tag: variantRawValidation, fieldErrors: fields}
	}
	return variant{tag: variantUnknown}
}

func (c *Classifier) classifyDomain(de *errx.Error) Response {
	msg := de.Msg()
	if msg == "" {
		msg = fallbackMessage
	}
	resp := newResponse(de.Status(), de.Code(), msg)
	resp.Errors = de.FieldErrors()
	if !c.production {
		if ctx := de.Context(); len(ctx) > 0 {
			resp.Data, _ = sanitize.Value(ctx, c.sanitizeOpts).(map[string]any)
		}
	}
	return resp
}

func (c *Classifier) classifyHTTP(he *HTTPError) Response {
	status := he.StatusCode()
	kind := errx.KindFromStatus(status)
	resp := newResponse(status, kind.Code(), fallbackMessage)

	switch payload := he.Payload().(type) {
	case string:
		if payload != "" {
			resp.Message = payload
		}
	case map[string]any:
		if m, ok := payload["message"].(string); ok && m != "" {
			resp.Message = m
		}
		if fields, ok := coerceFieldErrors(payload["errors"]); ok {
			resp.Errors = fields
		}
		if !c.production {
			resp.Data, _ = sanitize.Value(payload, c.sanitizeOpts).(map[string]any)
		}
	case nil:
		// status-only 错误：保留兜底文案
	default:
		if !c.production {
			resp.Data, _ = sanitize.Value(map[string]any{
				"payload": fmt.Sprintf("%v", payload),
			}, c.sanitizeOpts).(map[string]any)
		}
	}
	return resp
}

func (c *Classifier) classifyRawValidation(fields map[string][]string) Response {
	resp := newResponse(http.StatusBadRequest, errx.KindValidationFailed.Code(), "Validation failed")
	resp.Errors = fields
	return resp
}

func (c *Classifier) classifyUnknown(exception any) Response {
	resp := newResponse(http.StatusInternalServerError, errx.KindInternalServerError.Code(), unknownMessage)
	if c.production {
		return resp
	}

	var data map[string]any
	if err, ok := exception.(error); ok && err != nil {
		data = map[string]any{
			"name":    fmt.Sprintf("%T", err),
			"message": err.Error(),
			"stack":   string(debug.Stack()),
		}
	} else {
		// 非 error 值（含 nil）：按字面形式字符串化
		data = map[string]any{
			"exception": fmt.Sprintf("%v", exception),
		}
	}
	resp.Data, _ = sanitize.Value(data, c.sanitizeOpts).(map[string]any)
	return resp
}
