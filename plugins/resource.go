package plugins

import (
	"strings"

	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/engine"
)

var _ engine.Plugin = (*Resource)(nil)

// Resource 从文件或内联内容加载数据并登记为别名。
//
// 资源在 prepare 阶段加载，因此文档中任意位置的 block 都能引用它。
//
//	- type: resource
//	  filename: data/${year}.yaml   # 相对 _path，支持宏
//	  select: rows[0:3]              # 可选，支持宏
//	  alias: sales                   # 必填
//	  global: false                  # true 时合并进文档信息
//
// 内联内容既可以是结构化数据，也可以是配合 format 字段（yaml/json/toml）的字符串。
type Resource struct{ engine.Base }

func (*Resource) Name() string { return "resource" }

func (*Resource) Prepare(b *block.Block, ctx *engine.Context) error {
	data, ok, err := loadResource(b, ctx)
	if err != nil || !ok {
		return err
	}
	if sel, ok := b.String("select"); ok && strings.TrimSpace(sel) != "" {
		if data, err = ctx.Resolve(block.Literal(data), strings.TrimSpace(sel)); err != nil {
			return err
		}
	}

	alias, ok := b.String("alias")
	if !ok || strings.TrimSpace(alias) == "" {
		return engine.MissingField(b.Type, "alias")
	}
	ctx.RegisterResource(alias, data)
	if b.Bool("global", false) {
		return ctx.Promote(data)
	}
	return nil
}

func (*Resource) Process(*block.Block, *engine.Context) ([]element.Element, error) {
	return nil, nil
}

func loadResource(b *block.Block, ctx *engine.Context) (any, bool, error) {
	if filename, ok := b.String("filename"); ok {
		data, err := ctx.LoadResource(b.Path, strings.TrimSpace(filename))
		if err != nil {
			return nil, true, err
		}
		return data, true, nil
	}
	raw, ok := b.Raw("content")
	if !ok {
		ctx.Warn("资源既没有 filename 也没有 content，已忽略")
		return nil, false, nil
	}
	if text, isText := raw.(string); isText {
		if format, ok := b.String("format"); ok {
			data, err := ctx.Loader().Decode("inline."+format, []byte(text))
			return data, true, err
		}
	}
	return block.Clone(raw), true, nil
}
