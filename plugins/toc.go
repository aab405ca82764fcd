package plugins

import (
	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/engine"
)

var _ engine.Plugin = (*TOC)(nil)

// TOC 按注册顺序列出全部锚点。锚点在 prepare 阶段登记，所以目录可以放在文档开头。
type TOC struct{ engine.Base }

func (*TOC) Name() string { return "toc" }

func (*TOC) Process(b *block.Block, ctx *engine.Context) ([]element.Element, error) {
	entry, err := ctx.Style(b.StringOr("style", "TOCEntry"))
	if err != nil {
		return nil, err
	}
	var out []element.Element
	if title, ok := b.String("title"); ok && title != "" {
		st, err := ctx.Style(b.StringOr("titleStyle", "Heading1"))
		if err != nil {
			return nil, err
		}
		out = append(out, element.Paragraph{Text: ctx.ExpandMacros(title), Style: st})
	}
	anchors := ctx.Anchors.All()
	if len(anchors) == 0 {
		ctx.Warn("目录为空：文档中没有锚点")
	}
	for _, a := range anchors {
		out = append(out, element.Paragraph{Text: a.Label, Style: entry})
	}
	return out, nil
}
