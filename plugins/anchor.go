package plugins

import (
	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/engine"
	"github.com/ByLCY/quire/style"
)

var _ engine.Plugin = (*Anchor)(nil)

// Anchor 注册命名书签，并在原位置输出书签与可选的标签段落。
//
//	- type: anchor
//	  name: ch1
//	  label: 第一章
//	  style: Heading1   # 默认 BodyText
//	  visible: true     # false 时只输出书签
type Anchor struct{ engine.Base }

func (*Anchor) Name() string { return "anchor" }

func (*Anchor) Prepare(b *block.Block, ctx *engine.Context) error {
	name, label, err := anchorFields(b, ctx)
	if err != nil {
		return err
	}
	ctx.RegisterAnchor(name, label)
	return nil
}

func (*Anchor) Process(b *block.Block, ctx *engine.Context) ([]element.Element, error) {
	name, label, err := anchorFields(b, ctx)
	if err != nil {
		return nil, err
	}
	return ctx.EmitAnchor(name, label, b.StringOr("style", style.DefaultStyle), b.Bool("visible", true))
}

func anchorFields(b *block.Block, ctx *engine.Context) (name, label string, err error) {
	if name, err = requireString(b, "name"); err != nil {
		return "", "", err
	}
	if label, err = requireString(b, "label"); err != nil {
		return "", "", err
	}
	return name, ctx.ExpandMacros(label), nil
}
