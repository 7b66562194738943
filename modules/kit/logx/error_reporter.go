package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

type codeProvider interface {
	Code() string
}

type msgProvider interface {
	Msg() string
}

type contextProvider interface {
	Context() map[string]any
}

type stackProvider interface {
	Stack() []uintptr
}

// ErrorMeta 是从错误链提取出的诊断信息，供接口层统一打印。
type ErrorMeta struct {
	Error      string
	Code       string
	Msg        string
	Context    map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

// BuildErrorMeta 把“错误码/语义/上下文/cause 链/发生处栈”提取成便于阅读的结构。
// 提取全走接口探测（errors.As），不依赖具体错误类型，kit 与业务域之间零耦合。
func BuildErrorMeta(err error) ErrorMeta {
	if err == nil {
		return ErrorMeta{}
	}

	out := ErrorMeta{
		Error: err.Error(),
	}

	var cp codeProvider
	if errors.As(err, &cp) {
		out.Code = cp.Code()
	}
	var mp msgProvider
	if errors.As(err, &mp) {
		out.Msg = mp.Msg()
	}
	var xp contextProvider
	if errors.As(err, &xp) {
		out.Context = xp.Context()
	}
	var sp stackProvider
	if errors.As(err, &sp) {
		out.Origin, out.Stack = formatStack(sp.Stack(), 32)
	}
	out.CauseChain = buildCauseChain(err, 20)
	return out
}

func buildCauseChain(err error, maxDepth int) []string {
	if err == nil || maxDepth <= 0 {
		return nil
	}
	out := make([]string, 0, 4)
	cur := errors.Unwrap(err)
	for i := 0; i < maxDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}
	return out
}

func formatStack(pcs []uintptr, maxFrames int) (originCaller string, stack string) {
	if len(pcs) == 0 || maxFrames <= 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	var b strings.Builder
	for i := 0; i < maxFrames; i++ {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" && f.Line == 0 {
			break
		}
		if originCaller == "" {
			originCaller = fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line)
		}
		b.WriteString(f.Function)
		b.WriteString(" ")
		b.WriteString(f.File)
		b.WriteString(":")
		b.WriteString(fmt.Sprintf("%d", f.Line))
		if !more {
			break
		}
		b.WriteString("\n")
	}
	return originCaller, b.String()
}
