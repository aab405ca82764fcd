package block

import (
	"fmt"
	"math"
)

// ValueKind 区分字面量与资源引用。
type ValueKind int

const (
	KindNone ValueKind = iota
	KindLiteral
	KindReference
)

// Value 是 {Literal(data), Reference(alias)} 标签联合，在使用处一次性解析。
type Value struct {
	kind  ValueKind
	data  any
	alias string
}

// Literal 构造一个内联数据值。
func Literal(data any) Value { return Value{kind: KindLiteral, data: data} }

// Reference 构造一个资源别名引用。
func Reference(alias string) Value { return Value{kind: KindReference, alias: alias} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Data() any       { return v.data }
func (v Value) Alias() string   { return v.alias }

func (v Value) String() string {
	switch v.kind {
	case KindLiteral:
		return fmt.Sprintf("literal(%v)", v.data)
	case KindReference:
		return "ref(" + v.alias + ")"
	default:
		return "none"
	}
}

// ToFloat 将常见数值类型统一转换为 float64。
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Normalize 递归地把解码结果统一为 map[string]any / []any / int / float64 / string / bool。
// 不同解码器（YAML、JSON、TOML）产出的整数与映射类型各不相同，统一后插件只需处理一种形态。
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case float32:
		return float64(t)
	case float64:
		return t
	case string, bool, nil:
		return t
	}
	if f, ok := ToFloat(v); ok {
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	}
	return v
}

// Clone 深拷贝由 map[string]any / []any 构成的通用数据，标量按值返回。
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}
