package engine

import (
	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
)

// Plugin 处理一种 block 类型。
//
// Init 在每次构建开始时调用一次；Prepare 在第一遍遍历中调用，只允许产生副作用
// （注册锚点、资源等），容器类型需要通过 Context.PrepareBlocks 自行递归；
// Process 在第二遍遍历中调用并返回渲染元素，子 block 必须经由 Context 分发。
type Plugin interface {
	Name() string
	Init(ctx *Context) error
	Prepare(b *block.Block, ctx *Context) error
	Process(b *block.Block, ctx *Context) ([]element.Element, error)
}

// Base 提供空的 Init 与 Prepare，供无需初始化或预处理的插件嵌入。
type Base struct{}

func (Base) Init(*Context) error                 { return nil }
func (Base) Prepare(*block.Block, *Context) error { return nil }
