// Package block 定义文档描述树（Block 树）及其解码逻辑。
//
// Block 树与文件格式无关：YAML 与 JSON 是最常见的外部编码，解码后统一为
// map[string]any / []any / 标量的通用结构，再转换为 Block。
package block

import (
	"errors"
	"fmt"
	"sort"
)

// PathKey 是 Block 中记录来源目录的保留字段。
const PathKey = "_path"

var (
	ErrMissingType   = errors.New("block 缺少 type 字段")
	ErrNotSequence   = errors.New("content 不是序列")
	ErrInvalidItem   = errors.New("content 中存在无法识别的条目")
	ErrInvalidFormat = errors.New("文档结构无法识别")
)

// Block 是文档描述树中的一个有序节点。
// Attrs 保留全部原始字段（包含 content），具体字段由各插件自行校验。
type Block struct {
	Type  string
	Path  string
	Attrs map[string]any

	items    []Item
	itemsErr error
	parsed   bool
}

// Item 是 content 序列中的一项：纯文本、单个 Block，或一组需要保持在一起的 Block。
type Item struct {
	Text  string
	Block *Block
	Group []*Block
}

// IsText 报告该项是否为纯文本条目。
func (it Item) IsText() bool { return it.Block == nil && it.Group == nil }

// Blocks 以切片形式返回该项包含的 Block（纯文本条目返回 nil）。
func (it Item) Blocks() []*Block {
	if it.Block != nil {
		return []*Block{it.Block}
	}
	return it.Group
}

// New 创建一个 Block，attrs 会被浅拷贝。
func New(typ, path string, attrs map[string]any) *Block {
	cp := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		cp[k] = v
	}
	cp["type"] = typ
	return &Block{Type: typ, Path: path, Attrs: cp}
}

// FromMap 将通用 map 转换为 Block；未显式声明 _path 时继承 dir。
func FromMap(m map[string]any, dir string) (*Block, error) {
	typ, ok := m["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("%w: %v", ErrMissingType, keys(m))
	}
	path := dir
	if p, ok := m[PathKey].(string); ok && p != "" {
		path = p
	}
	attrs := make(map[string]any, len(m))
	for k, v := range m {
		attrs[k] = v
	}
	return &Block{Type: typ, Path: path, Attrs: attrs}, nil
}

// Decode 将通用序列转换为 Block 列表。
func Decode(raw any, dir string) ([]*Block, error) {
	if raw == nil {
		return nil, nil
	}
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotSequence, raw)
	}
	out := make([]*Block, 0, len(seq))
	for i, entry := range seq {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("第 %d 项: %w: %T", i, ErrInvalidItem, entry)
		}
		b, err := FromMap(m, dir)
		if err != nil {
			return nil, fmt.Errorf("第 %d 项: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Items 解析 content 字段。结果会被缓存，同一次构建的两个阶段看到的是相同的子节点。
func (b *Block) Items() ([]Item, error) {
	if b.parsed {
		return b.items, b.itemsErr
	}
	b.parsed = true
	b.items, b.itemsErr = b.parseItems()
	return b.items, b.itemsErr
}

// Children 返回 content 中全部 Block（组内条目展开，纯文本条目跳过）。
func (b *Block) Children() ([]*Block, error) {
	items, err := b.Items()
	if err != nil {
		return nil, err
	}
	var out []*Block
	for _, it := range items {
		out = append(out, it.Blocks()...)
	}
	return out, nil
}

func (b *Block) parseItems() ([]Item, error) {
	raw, ok := b.Attrs["content"]
	if !ok || raw == nil {
		return nil, nil
	}
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %T", b.Type, ErrNotSequence, raw)
	}
	items := make([]Item, 0, len(seq))
	for i, entry := range seq {
		switch v := entry.(type) {
		case string:
			items = append(items, Item{Text: v})
		case map[string]any:
			child, err := FromMap(v, b.Path)
			if err != nil {
				return nil, fmt.Errorf("%s content[%d]: %w", b.Type, i, err)
			}
			items = append(items, Item{Block: child})
		case []any:
			group := make([]*Block, 0, len(v))
			for j, sub := range v {
				switch s := sub.(type) {
				case string:
					group = append(group, New("text", b.Path, map[string]any{"text": s}))
				case map[string]any:
					child, err := FromMap(s, b.Path)
					if err != nil {
						return nil, fmt.Errorf("%s content[%d][%d]: %w", b.Type, i, j, err)
					}
					group = append(group, child)
				default:
					return nil, fmt.Errorf("%s content[%d][%d]: %w: %T", b.Type, i, j, ErrInvalidItem, sub)
				}
			}
			items = append(items, Item{Group: group})
		default:
			return nil, fmt.Errorf("%s content[%d]: %w: %T", b.Type, i, ErrInvalidItem, entry)
		}
	}
	return items, nil
}

// Has 报告字段是否存在。
func (b *Block) Has(key string) bool {
	_, ok := b.Attrs[key]
	return ok
}

// Raw 返回字段的原始值。
func (b *Block) Raw(key string) (any, bool) {
	v, ok := b.Attrs[key]
	return v, ok
}

// String 返回字符串字段；字段缺失或类型不符时 ok 为 false。
func (b *Block) String(key string) (string, bool) {
	s, ok := b.Attrs[key].(string)
	return s, ok
}

// StringOr 返回字符串字段，缺失时返回 def。
func (b *Block) StringOr(key, def string) string {
	if s, ok := b.String(key); ok {
		return s
	}
	return def
}

// Bool 返回布尔字段，缺失或类型不符时返回 def。
func (b *Block) Bool(key string, def bool) bool {
	if v, ok := b.Attrs[key].(bool); ok {
		return v
	}
	return def
}

// Float 返回数值字段。
func (b *Block) Float(key string) (float64, bool) {
	return ToFloat(b.Attrs[key])
}

// Int 返回整数字段，浮点数按截断处理。
func (b *Block) Int(key string) (int, bool) {
	f, ok := ToFloat(b.Attrs[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Value 以标签联合的形式返回“字面量或资源别名”字段：字符串视为别名引用，其余视为字面量。
func (b *Block) Value(key string) (Value, bool) {
	raw, ok := b.Attrs[key]
	if !ok || raw == nil {
		return Value{}, false
	}
	if alias, ok := raw.(string); ok {
		return Reference(alias), true
	}
	return Literal(raw), true
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
