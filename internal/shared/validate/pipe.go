// Package validate 实现请求体校验管道：把原始 JSON 按目标 DTO 形状做
// 类型强转与字段约束检查，失败时聚合“全部”失败字段抛领域校验错误
// （不是遇到第一个就停）。
package validate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
)

// Options 的各开关彼此独立：
// - Transform：按目标字段类型做弱类型强转（"42" → 42 等）
// - Whitelist：丢弃目标形状之外的未知字段
// - ForbidNonWhitelisted：Whitelist 开启时，未知字段直接报校验错误而不是静默丢弃
// - ForbidUnknownValues：目标没有声明任何可校验形状时直接拒绝
type Options struct {
	Transform            bool
	Whitelist            bool
	ForbidNonWhitelisted bool
	ForbidUnknownValues  bool
}

// DefaultOptions 对齐全局管道的默认姿势：全开。
func DefaultOptions() Options {
	return Options{
		Transform:            true,
		Whitelist:            true,
		ForbidNonWhitelisted: true,
		ForbidUnknownValues:  true,
	}
}

type Pipe struct {
	v    *validator.Validate
	opts Options
}

func NewPipe(opts Options) *Pipe {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误里的字段名用 json tag，客户端才对得上自己发的字段
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Pipe{v: v, opts: opts}
}

// Bind 把原始 JSON 解析进 target 并执行约束检查。
//
// 契约：
// - target 为 nil、raw 为空、raw 不是 JSON 对象（路由/查询标量）时为 no-op
// - target 是原生标量等非结构体时同样为 no-op（没有可声明的形状）
// - 任何失败都以 kind=ValidationFailed 的领域错误返回，内部异常也不例外
func (p *Pipe) Bind(raw []byte, target any) (err error) {
	defer func() {
		// 校验阶段自身的意外失败也必须包成校验错误，不放过原始内部错误
		if r := recover(); r != nil {
			err = errx.NewValidation(
				fmt.Sprintf("Validation failed: internal error (%v)", r), nil)
		}
	}()

	if target == nil || len(raw) == 0 {
		return nil
	}

	var decoded any
	if jsonErr := json.Unmarshal(raw, &decoded); jsonErr != nil {
		return errx.NewValidation("Validation failed", map[string][]string{
			"body": {"malformed JSON payload: " + jsonErr.Error()},
		}).WithCause(jsonErr)
	}
	rawMap, ok := decoded.(map[string]any)
	if !ok {
		// 非对象值（标量/数组路由参数）不做形状校验
		return nil
	}

	// 原生标量/非结构体目标没有可声明的形状，按 no-op 放行
	// （ForbidUnknownValues 针对的是"结构体却没声明任何字段"）
	base := reflect.TypeOf(target)
	for base != nil && base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base == nil || base.Kind() != reflect.Struct {
		return nil
	}

	known := fieldNames(base)
	if p.opts.ForbidUnknownValues && len(known) == 0 {
		return errx.NewValidation("Validation failed", map[string][]string{
			"body": {"payload does not declare a validatable shape"},
		})
	}

	if p.opts.Whitelist && len(known) > 0 {
		// 白名单逐层下钻：嵌套 DTO 里的未知字段同样要么被剥除要么被拒绝
		unknown := make([]string, 0)
		whitelistMap(rawMap, base, "", &unknown)
		if p.opts.ForbidNonWhitelisted && len(unknown) > 0 {
			fields := make(map[string][]string, len(unknown))
			for _, k := range unknown {
				fields[k] = []string{"property " + k + " should not exist"}
			}
			return errx.NewValidation("Validation failed", fields)
		}
	}

	if p.opts.Transform {
		coerceMap(rawMap, reflect.TypeOf(target))
	}

	filtered, marshalErr := json.Marshal(rawMap)
	if marshalErr != nil {
		return errx.NewValidation("Validation failed: cannot process payload", nil).WithCause(marshalErr)
	}
	if jsonErr := json.Unmarshal(filtered, target); jsonErr != nil {
		return errx.NewValidation("Validation failed", map[string][]string{
			"body": {"payload does not match expected types: " + jsonErr.Error()},
		}).WithCause(jsonErr)
	}

	if vErr := p.v.Struct(target); vErr != nil {
		var fieldErrs validator.ValidationErrors
		if !asValidationErrors(vErr, &fieldErrs) {
			return errx.NewValidation(
				"Validation failed: "+vErr.Error(), nil).WithCause(vErr)
		}
		return errx.NewValidation("Validation failed", aggregate(fieldErrs))
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = ve
	return true
}

// aggregate 把 validator 的全部失败字段压成 字段路径 → 消息列表，
// 嵌套结构的路径用点号拼接（address.city）。
func aggregate(errs validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, fe := range errs {
		path := fieldPath(fe)
		out[path] = append(out[path], message(fe))
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	// Namespace 形如 "CreateUserDto.address.city"：去掉最外层类型名
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "uuid":
		return field + " must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s validation", field, fe.Tag())
	}
}

// fieldNames 收集目标 DTO 的 json 字段名集合（含内嵌结构体提升的字段）。
func fieldNames(t reflect.Type) map[string]reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	out := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous {
			for k, v := range fieldNames(f.Type) {
				out[k] = v
			}
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = f.Type
	}
	return out
}

// whitelistMap 剥除目标形状之外的字段并收集其 dot 路径。
// 只对声明了字段的嵌套结构体下钻（time.Time 这类不透明结构体跳过）。
func whitelistMap(raw map[string]any, t reflect.Type, prefix string, unknown *[]string) {
	known := fieldNames(t)
	if len(known) == 0 {
		return
	}
	for k, v := range raw {
		ft, ok := known[k]
		if !ok {
			*unknown = append(*unknown, prefix+k)
			delete(raw, k)
			continue
		}
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			if nested, ok := v.(map[string]any); ok {
				whitelistMap(nested, ft, prefix+k+".", unknown)
			}
		}
	}
}

// coerceMap 按目标字段类型对原始值做弱类型强转（只处理常见标量；转不动就放着，
// 让后续 Unmarshal/约束检查报出准确的错误）。
func coerceMap(raw map[string]any, t reflect.Type) {
	known := fieldNames(t)
	for k, v := range raw {
		ft, ok := known[k]
		if !ok {
			continue
		}
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Struct:
			if nested, ok := v.(map[string]any); ok {
				coerceMap(nested, ft)
			}
		default:
			raw[k] = coerceScalar(v, ft.Kind())
		}
	}
}

func coerceScalar(v any, kind reflect.Kind) any {
	s, isStr := v.(string)
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isStr {
			if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
				return n
			}
		}
	case reflect.Float32, reflect.Float64:
		if isStr {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
	case reflect.Bool:
		if isStr {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b
			}
		}
	case reflect.String:
		switch n := v.(type) {
		case float64:
			// JSON 数字转字符串字段：整数不带小数点
			if n == float64(int64(n)) {
				return strconv.FormatInt(int64(n), 10)
			}
			return strconv.FormatFloat(n, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(n)
		}
	}
	return v
}
