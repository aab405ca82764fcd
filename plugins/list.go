package plugins

import (
	"fmt"

	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/engine"
)

// ListCounter 是列表续号使用的计数器名称。
const ListCounter = "list"

var _ engine.Plugin = (*List)(nil)

// List 输出有序或无序列表。
//
//	- type: list
//	  numbered: true
//	  start: continue      # 整数或 continue，默认 1
//	  itemspace: 2mm       # 默认使用样式表参数 itemsInterSpace
//	  content:
//	    - 第一项文本
//	    - [{type: text, text: 第二项}, {type: chart, ...}]
type List struct{}

func (*List) Name() string { return "list" }

func (*List) Init(ctx *engine.Context) error {
	ctx.SetCounter(ListCounter, 1)
	return nil
}

func (*List) Prepare(b *block.Block, ctx *engine.Context) error {
	children, err := b.Children()
	if err != nil {
		return err
	}
	return ctx.PrepareBlocks(children)
}

func (*List) Process(b *block.Block, ctx *engine.Context) ([]element.Element, error) {
	items, err := b.Items()
	if err != nil {
		return nil, err
	}
	start, err := listStart(b, ctx)
	if err != nil {
		return nil, err
	}
	st, err := ctx.Style(b.StringOr("style", ""))
	if err != nil {
		return nil, err
	}

	list := element.List{
		Numbered:  b.Bool("numbered", false),
		Start:     start,
		ItemSpace: itemSpace(b, ctx),
		Style:     st,
		Items:     make([][]element.Element, 0, len(items)),
	}
	for _, it := range items {
		if it.IsText() {
			list.Items = append(list.Items, []element.Element{
				element.Paragraph{Text: ctx.ExpandMacros(it.Text), Style: st},
			})
			continue
		}
		content, err := ctx.ProcessGroup(it.Blocks())
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, content)
	}

	if list.Numbered {
		ctx.SetCounter(ListCounter, start+len(list.Items))
	}
	return []element.Element{list}, nil
}

func listStart(b *block.Block, ctx *engine.Context) (int, error) {
	raw, ok := b.Raw("start")
	if !ok {
		return 1, nil
	}
	if s, ok := raw.(string); ok {
		if s != "continue" {
			return 0, invalid(b, "start", "只接受整数或 continue，得到 %q", s)
		}
		if n, ok := ctx.Counter(ListCounter); ok {
			return n, nil
		}
		return 1, nil
	}
	n, ok := b.Int("start")
	if !ok {
		return 0, invalid(b, "start", "只接受整数或 continue，得到 %T", raw)
	}
	return n, nil
}

func itemSpace(b *block.Block, ctx *engine.Context) string {
	def := ctx.Param("itemsInterSpace", "1.5mm")
	raw, ok := b.Raw("itemspace")
	if !ok {
		return def
	}
	if f, ok := block.ToFloat(raw); ok {
		return fmt.Sprintf("%gmm", f)
	}
	if s, ok := raw.(string); ok && s != "" {
		return s
	}
	return def
}
