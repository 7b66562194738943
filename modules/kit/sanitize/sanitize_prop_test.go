package sanitize

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

// genValue 生成任意嵌套的 JSON 形值（map/slice/标量混合）。
func genValue() *rapid.Generator[any] {
	keys := rapid.SampledFrom([]string{
		"password", "Token", "api_key", "username", "note", "items", "profile", "count",
	})
	return rapid.Custom(func(t *rapid.T) any {
		return genValueDepth(t, keys, 0)
	})
}

func genValueDepth(t *rapid.T, keys *rapid.Generator[string], depth int) any {
	choice := rapid.IntRange(0, 5).Draw(t, "choice")
	if depth >= 4 {
		choice = choice % 3
	}
	switch choice {
	case 0:
		return rapid.String().Draw(t, "str")
	case 1:
		return rapid.Int().Draw(t, "int")
	case 2:
		return rapid.Bool().Draw(t, "bool")
	case 3:
		return nil
	case 4:
		n := rapid.IntRange(0, 4).Draw(t, "arrlen")
		arr := make([]any, n)
		for i := 0; i < n; i++ {
			arr[i] = genValueDepth(t, keys, depth+1)
		}
		return arr
	default:
		n := rapid.IntRange(0, 4).Draw(t, "maplen")
		m := make(map[string]any, n)
		for i := 0; i < n; i++ {
			m[keys.Draw(t, "key")] = genValueDepth(t, keys, depth+1)
		}
		return m
	}
}

func TestValue_幂等性(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genValue().Draw(t, "v")
		once := Value(v, Options{})
		twice := Value(once, Options{})
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("sanitize 应幂等：once=%v twice=%v", once, twice)
		}
	})
}

func TestValue_掩码完备性_password永不泄漏(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		secret := rapid.StringMatching(`[a-z]{8,16}`).Draw(t, "secret")
		v := genValue().Draw(t, "v")
		m, ok := v.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		m["userPassword"] = secret
		got := Value(m, Options{}).(map[string]any)
		if got["userPassword"] == secret {
			t.Fatalf("敏感 key 下的原值不允许出现在输出里：%v", got["userPassword"])
		}
	})
}

func TestValue_敏感数组保长度(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 16).Draw(t, "n")
		arr := make([]any, n)
		for i := range arr {
			arr[i] = genValueDepth(t, rapid.SampledFrom([]string{"k"}), 3)
		}
		got := Value(map[string]any{"secrets": arr}, Options{}).(map[string]any)
		if len(got["secrets"].([]any)) != n {
			t.Fatalf("期望数组长度保持 %d，got=%d", n, len(got["secrets"].([]any)))
		}
	})
}
