package plugins

import (
	"fmt"
	"strings"

	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/engine"
)

var (
	_ engine.Plugin = (*Text)(nil)
	_ engine.Plugin = (*PageBreak)(nil)
	_ engine.Plugin = (*Spacer)(nil)
)

// Text 输出一段文本，text 字段支持 ${path} 宏。
type Text struct{ engine.Base }

func (*Text) Name() string { return "text" }

func (*Text) Process(b *block.Block, ctx *engine.Context) ([]element.Element, error) {
	raw, ok := b.Raw("text")
	if !ok || raw == nil {
		return nil, engine.MissingField(b.Type, "text")
	}
	text, ok := raw.(string)
	if !ok {
		text = fmt.Sprint(raw)
	}
	st, err := ctx.Style(b.StringOr("style", ""))
	if err != nil {
		return nil, err
	}
	return []element.Element{element.Paragraph{Text: strings.TrimRight(ctx.ExpandMacros(text), "\n"), Style: st}}, nil
}

// PageBreak 强制换页。
type PageBreak struct{ engine.Base }

func (*PageBreak) Name() string { return "pagebreak" }

func (*PageBreak) Process(*block.Block, *engine.Context) ([]element.Element, error) {
	return []element.Element{element.PageBreak{}}, nil
}

// Spacer 输出纵向留白，height 为长度字符串或毫米数，默认 5mm。
type Spacer struct{ engine.Base }

func (*Spacer) Name() string { return "spacer" }

func (*Spacer) Process(b *block.Block, _ *engine.Context) ([]element.Element, error) {
	height := "5mm"
	if raw, ok := b.Raw("height"); ok {
		switch v := raw.(type) {
		case string:
			height = v
		default:
			f, ok := block.ToFloat(v)
			if !ok {
				return nil, invalid(b, "height", "需要长度，得到 %T", raw)
			}
			height = fmt.Sprintf("%gmm", f)
		}
	}
	return []element.Element{element.Spacer{Height: height}}, nil
}
