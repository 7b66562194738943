// Package sanitize 提供日志/响应出口前的敏感字段脱敏。
//
// 约束：
// - 纯函数：不修改输入、无 I/O、同输入同输出
// - 只看“字段名”，不做值启发式（值恰好长得像密码也不脱敏，除非调用方传 MaskFunc）
// - 递归用显式深度计数兜底，超过深度的子树原样返回（保证终止，不报错）
package sanitize

import "strings"

// DefaultMask 是默认的掩码占位串。
const DefaultMask = "[REDACTED]"

// DefaultMaxDepth 是默认的递归深度上限。
const DefaultMaxDepth = 10

// defaultSensitiveFields 是默认敏感字段子串表（大小写不敏感、忽略 _ 和 - 后做 contains 匹配）。
var defaultSensitiveFields = []string{
	"password", "passwd", "pwd",
	"token", "secret",
	"apikey", "privatekey",
	"authorization", "credential",
	"ssn", "creditcard", "cardnumber", "cvv", "pin",
	"email", "phone", "mobile", "telephone",
}

// MaskFunc 是可选的值感知掩码钩子：命中敏感 key 的“原始值”交给它决定掩码结果。
type MaskFunc func(key string, value any) any

// Options 控制脱敏行为；零值即默认策略。
type Options struct {
	// SensitiveFields 覆盖默认敏感字段表（为空则用默认表）。
	SensitiveFields []string
	// ExtraFields 在生效表之上追加（默认表不够用时的扩展点）。
	ExtraFields []string
	// Mask 覆盖默认掩码串。
	Mask string
	// MaxDepth 覆盖默认深度上限（<=0 时取默认值）。
	MaxDepth int
	// MaskFunc 可选的值感知掩码钩子。
	MaskFunc MaskFunc
}

func (o Options) mask() string {
	if o.Mask == "" {
		return DefaultMask
	}
	return o.Mask
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) fields() []string {
	base := o.SensitiveFields
	if len(base) == 0 {
		base = defaultSensitiveFields
	}
	if len(o.ExtraFields) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(o.ExtraFields))
	out = append(out, base...)
	out = append(out, o.ExtraFields...)
	return out
}

// IsSensitiveKey 判断字段名是否敏感：忽略大小写和 _ - 分隔符后做子串匹配。
func IsSensitiveKey(key string, opts Options) bool {
	normalized := normalizeKey(key)
	for _, field := range opts.fields() {
		if strings.Contains(normalized, normalizeKey(field)) {
			return true
		}
	}
	return false
}

func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}

// Value 深度脱敏：返回结构等同的拷贝，敏感字段按策略掩码。
// 非 map/slice/nil 的值原样返回。
func Value(v any, opts Options) any {
	return sanitizeValue(v, opts, 0)
}

// Shallow 浅层脱敏：只检查顶层 key，敏感 key 的嵌套值整体替换成掩码串，
// 非敏感 key 的值原样保留（不递归）。深度遍历代价过高的热路径用这个变体。
func Shallow(v any, opts Options) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		if IsSensitiveKey(k, opts) {
			out[k] = maskPrimitive(k, val, opts)
			continue
		}
		out[k] = val
	}
	return out
}

func sanitizeValue(v any, opts Options, depth int) any {
	if depth >= opts.maxDepth() {
		// 超出深度上限：原样返回子树而不是报错（终止性优先于完整性）
		return v
	}
	switch val := v.(type) {
	case map[string]any:
		return sanitizeMap(val, opts, depth)
	case []any:
		// 数组不计深度：深度只在进入对象时 +1，避免“数组套对象”按两层计数
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item, opts, depth)
		}
		return out
	default:
		return v
	}
}

func sanitizeMap(m map[string]any, opts Options, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if IsSensitiveKey(k, opts) {
			out[k] = maskValue(k, v, opts, depth)
			continue
		}
		out[k] = sanitizeValue(v, opts, depth+1)
	}
	return out
}

// maskValue 按掩码策略处理命中敏感 key 的值：
// - 基础类型：掩码串（或 MaskFunc 的返回值）
// - 数组：每个元素不论类型一律替换成掩码串（保长度、毁内容）
// - 对象：同形结构、所有叶子全掩码（依赖结构的消费方不会被打断）
func maskValue(key string, v any, opts Options, depth int) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = opts.mask()
		}
		return out
	case map[string]any:
		return maskShape(key, val, opts, depth+1)
	default:
		return maskPrimitive(key, v, opts)
	}
}

func maskShape(key string, m map[string]any, opts Options, depth int) any {
	if depth >= opts.maxDepth() {
		return opts.mask()
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = maskShape(k, val, opts, depth+1)
		case []any:
			masked := make([]any, len(val))
			for i := range val {
				masked[i] = opts.mask()
			}
			out[k] = masked
		default:
			out[k] = maskPrimitive(k, v, opts)
		}
	}
	return out
}

func maskPrimitive(key string, v any, opts Options) any {
	if opts.MaskFunc != nil {
		return opts.MaskFunc(key, v)
	}
	// 浅层模式下嵌套容器也会走到这里：整体替换成掩码串
	return opts.mask()
}
