package httperr

import (
	"fmt"
	"sort"
)

// detectRawValidation 嗅探“未被领域错误包裹的原始校验形状”，支持两种：
// 1) {"validation": [{"property": ..., "constraints": {...}, "children": [...]}]}
// 2) {"errors": {"field": {"message": "..."}}}
// 这是刻意宽松的兼容性启发式，不是可扩展的固定契约：恰好长成这两种形状的
// 无关对象会被误判成校验错误，属于已知取舍。
func detectRawValidation(exception any) (map[string][]string, bool) {
	m, ok := exception.(map[string]any)
	if !ok {
		return nil, false
	}

	if list, ok := m["validation"].([]any); ok {
		out := make(map[string][]string)
		flattenValidationList(list, "", out)
		if len(out) > 0 {
			return out, true
		}
	}

	if errs, ok := m["errors"].(map[string]any); ok {
		out := make(map[string][]string, len(errs))
		for field, v := range errs {
			em, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if msg, ok := em["message"].(string); ok && msg != "" {
				out[field] = append(out[field], msg)
			}
		}
		if len(out) > 0 {
			return out, true
		}
	}

	return nil, false
}

// flattenValidationList 把 {property, constraints, children} 列表压平成
// 字段 → 消息列表；嵌套 children 的字段路径用点号拼接（nested.field）。
func flattenValidationList(entries []any, prefix string, out map[string][]string) {
	for _, e := range entries {
		em, ok := e.(map[string]any)
		if !ok {
			continue
		}
		prop, _ := em["property"].(string)
		if prop == "" {
			continue
		}
		path := prop
		if prefix != "" {
			path = prefix + "." + prop
		}

		if constraints, ok := em["constraints"].(map[string]any); ok && len(constraints) > 0 {
			msgs := make([]string, 0, len(constraints))
			for _, msg := range constraints {
				msgs = append(msgs, fmt.Sprintf("%v", msg))
			}
			// map 遍历无序，排序保证同输入同输出
			sort.Strings(msgs)
			out[path] = append(out[path], msgs...)
		}

		if children, ok := em["children"].([]any); ok && len(children) > 0 {
			flattenValidationList(children, path, out)
		}
	}
}

// coerceFieldErrors 把 payload 里宽松类型的 errors 字段转换成标准形状。
func coerceFieldErrors(v any) (map[string][]string, bool) {
	switch val := v.(type) {
	case map[string][]string:
		out := make(map[string][]string, len(val))
		for k, msgs := range val {
			cp := make([]string, len(msgs))
			copy(cp, msgs)
			out[k] = cp
		}
		return out, len(out) > 0
	case map[string]any:
		out := make(map[string][]string, len(val))
		for k, item := range val {
			switch msgs := item.(type) {
			case string:
				out[k] = []string{msgs}
			case []string:
				cp := make([]string, len(msgs))
				copy(cp, msgs)
				out[k] = cp
			case []any:
				list := make([]string, 0, len(msgs))
				for _, m := range msgs {
					list = append(list, fmt.Sprintf("%v", m))
				}
				out[k] = list
			}
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}
