package selector

import (
	"fmt"
	"sort"
)

// result 跟踪当前取值；fanout 为 true 时 value 是通配展开后的序列，后续步骤逐个作用。
type result struct {
	value  any
	fanout bool
}

// Apply 对数据执行选择表达式。数据应为 map[string]any / []any 构成的通用结构。
func (s *Selector) Apply(data any) (any, error) {
	cur := result{value: data}
	var err error
	if s.Head != nil {
		if cur, err = applyField(cur, s.Head); err != nil {
			return nil, s.wrap(err)
		}
	}
	for _, acc := range s.Tail {
		switch {
		case acc.Field != nil:
			cur, err = applyField(cur, acc.Field)
		case acc.Index != nil:
			cur, err = applyIndex(cur, acc.Index)
		}
		if err != nil {
			return nil, s.wrap(err)
		}
	}
	if s.Project != nil {
		if cur, err = each(cur, func(v any) (any, error) { return project(v, s.Project) }); err != nil {
			return nil, s.wrap(err)
		}
	}
	return cur.value, nil
}

// Select 是 Parse 与 Apply 的组合。
func Select(data any, expr string) (any, error) {
	sel, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return sel.Apply(data)
}

func (s *Selector) wrap(err error) error {
	return fmt.Errorf("%w: %s: %v", ErrNoMatch, s.source, err)
}

func each(cur result, fn func(any) (any, error)) (result, error) {
	if !cur.fanout {
		v, err := fn(cur.value)
		return result{value: v}, err
	}
	seq := cur.value.([]any)
	out := make([]any, 0, len(seq))
	for _, v := range seq {
		got, err := fn(v)
		if err != nil {
			return result{}, err
		}
		out = append(out, got)
	}
	return result{value: out, fanout: true}, nil
}

func applyField(cur result, f *Field) (result, error) {
	if f.Wildcard {
		return expand(cur)
	}
	key := f.Key()
	return each(cur, func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("无法在 %T 上取字段 %q", v, key)
		}
		val, ok := m[key]
		if !ok {
			return nil, fmt.Errorf("字段 %q 不存在", key)
		}
		return val, nil
	})
}

func applyIndex(cur result, idx *Index) (result, error) {
	if idx.Wildcard {
		return expand(cur)
	}
	r := idx.Range
	return each(cur, func(v any) (any, error) {
		seq, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("无法在 %T 上取下标", v)
		}
		if !r.Colon {
			i := *r.From
			if i < 0 {
				i += len(seq)
			}
			if i < 0 || i >= len(seq) {
				return nil, fmt.Errorf("下标 %d 越界（长度 %d）", *r.From, len(seq))
			}
			return seq[i], nil
		}
		from, to := 0, len(seq)
		if r.From != nil {
			from = clampIndex(*r.From, len(seq))
		}
		if r.To != nil {
			to = clampIndex(*r.To, len(seq))
		}
		if from > to {
			from = to
		}
		out := make([]any, to-from)
		copy(out, seq[from:to])
		return out, nil
	})
}

// expand 将当前值（映射按键排序，序列按顺序）展开为 fanout 序列。
func expand(cur result) (result, error) {
	var out []any
	if cur.fanout {
		for _, v := range cur.value.([]any) {
			vals, err := children(v)
			if err != nil {
				return result{}, err
			}
			out = append(out, vals...)
		}
	} else {
		vals, err := children(cur.value)
		if err != nil {
			return result{}, err
		}
		out = vals
	}
	if out == nil {
		out = []any{}
	}
	return result{value: out, fanout: true}, nil
}

func children(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, t[k])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("无法展开 %T", v)
	}
}

func project(v any, p *Projection) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("无法在 %T 上投影字段", v)
	}
	out := make(map[string]any, len(p.Fields))
	for _, f := range p.Fields {
		if val, ok := m[f.Key()]; ok {
			out[f.Key()] = val
		}
	}
	return out, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
