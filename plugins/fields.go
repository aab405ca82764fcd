package plugins

import (
	"errors"
	"fmt"

	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/engine"
)

var ErrInvalidField = errors.New("字段取值无效")

func requireString(b *block.Block, key string) (string, error) {
	s, ok := b.String(key)
	if !ok || s == "" {
		return "", engine.MissingField(b.Type, key)
	}
	return s, nil
}

func invalid(b *block.Block, key string, format string, args ...any) error {
	return fmt.Errorf("%w: %s.%s: %s", ErrInvalidField, b.Type, key, fmt.Sprintf(format, args...))
}

// resolveField 解析“字面量或资源别名”字段；字段不存在时 ok 为 false。
func resolveField(ctx *engine.Context, b *block.Block, key, sel string) (data any, ok bool, err error) {
	v, ok := b.Value(key)
	if !ok {
		return nil, false, nil
	}
	data, err = ctx.Resolve(v, sel)
	if err != nil {
		return nil, true, fmt.Errorf("%s.%s: %w", b.Type, key, err)
	}
	return data, true, nil
}

func toFloats(v any) ([]float64, error) {
	if f, ok := block.ToFloat(v); ok {
		return []float64{f}, nil
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("需要数值序列，得到 %T", v)
	}
	out := make([]float64, len(seq))
	for i, item := range seq {
		f, ok := block.ToFloat(item)
		if !ok {
			return nil, fmt.Errorf("第 %d 项不是数值: %v", i, item)
		}
		out[i] = f
	}
	return out, nil
}

// broadcastFloats 接受单个数值或数值序列；单个数值会被复制 n 份。
func broadcastFloats(v any, n int) ([]float64, error) {
	if f, ok := block.ToFloat(v); ok {
		out := make([]float64, n)
		for i := range out {
			out[i] = f
		}
		return out, nil
	}
	return toFloats(v)
}

// broadcastStrings 与 broadcastFloats 相同，作用于字符串。
func broadcastStrings(v any, n int) []string {
	switch t := v.(type) {
	case string:
		out := make([]string, n)
		for i := range out {
			out[i] = t
		}
		return out
	case []any:
		return toStrings(t)
	default:
		return nil
	}
}

func toStrings(seq []any) []string {
	out := make([]string, len(seq))
	for i, item := range seq {
		out[i] = fmt.Sprint(item)
	}
	return out
}

// toSeries 将数据转换为多条数值序列；一维数值序列视为单条序列。
func toSeries(v any) ([][]float64, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("需要序列，得到 %T", v)
	}
	if len(seq) == 0 {
		return nil, nil
	}
	if _, nested := seq[0].([]any); !nested {
		row, err := toFloats(seq)
		if err != nil {
			return nil, err
		}
		return [][]float64{row}, nil
	}
	out := make([][]float64, len(seq))
	for i, item := range seq {
		row, err := toFloats(item)
		if err != nil {
			return nil, fmt.Errorf("第 %d 条序列: %v", i, err)
		}
		out[i] = row
	}
	return out, nil
}

// toPoints 将数据转换为多条 (x, y) 点序列。
func toPoints(v any) ([][][2]float64, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("需要序列，得到 %T", v)
	}
	out := make([][][2]float64, len(seq))
	for i, line := range seq {
		pts, ok := line.([]any)
		if !ok {
			return nil, fmt.Errorf("第 %d 条序列不是点序列", i)
		}
		row := make([][2]float64, len(pts))
		for j, pt := range pts {
			xy, err := toFloats(pt)
			if err != nil || len(xy) != 2 {
				return nil, fmt.Errorf("第 %d 条序列第 %d 个点应为 [x, y]", i, j)
			}
			row[j] = [2]float64{xy[0], xy[1]}
		}
		out[i] = row
	}
	return out, nil
}
