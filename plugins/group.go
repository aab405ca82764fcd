package plugins

import (
	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/engine"
)

var (
	_ engine.Plugin = (*Group)(nil)
	_ engine.Plugin = (*Include)(nil)
)

// Group 把 content 中的 block 作为一个整体输出，渲染时保持在同一页。
type Group struct{ engine.Base }

func (*Group) Name() string { return "group" }

func (*Group) Prepare(b *block.Block, ctx *engine.Context) error {
	children, err := b.Children()
	if err != nil {
		return err
	}
	return ctx.PrepareBlocks(children)
}

func (*Group) Process(b *block.Block, ctx *engine.Context) ([]element.Element, error) {
	children, err := b.Children()
	if err != nil {
		return nil, err
	}
	return ctx.ProcessGroup(children)
}

// Include 引入另一个文档描述文件，被引入的 block 以该文件所在目录作为 _path。
type Include struct{ engine.Base }

type includeKey struct{ b *block.Block }

func (*Include) Name() string { return "include" }

func (*Include) Prepare(b *block.Block, ctx *engine.Context) error {
	filename, err := requireString(b, "filename")
	if err != nil {
		return err
	}
	doc, err := block.ParseFile(ctx.ResolvePath(b.Path, filename))
	if err != nil {
		return err
	}
	ctx.SetValue(includeKey{b}, doc.Blocks)
	return ctx.PrepareBlocks(doc.Blocks)
}

func (*Include) Process(b *block.Block, ctx *engine.Context) ([]element.Element, error) {
	v, ok := ctx.Value(includeKey{b})
	if !ok {
		return nil, nil
	}
	return ctx.ProcessBlocks(v.([]*block.Block))
}
