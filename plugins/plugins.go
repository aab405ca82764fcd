// Package plugins 提供内置的 block 类型。
package plugins

import "github.com/ByLCY/quire/engine"

// All 按固定顺序返回全部内置插件的新实例。
func All() []engine.Plugin {
	return []engine.Plugin{
		&Text{},
		&Anchor{},
		&Resource{},
		&List{},
		&Chart{},
		&TOC{},
		&Group{},
		&Include{},
		&PageBreak{},
		&Spacer{},
	}
}

// Default 返回注册了全部内置插件的注册表。
func Default() (*engine.Registry, error) {
	return engine.NewRegistry(All()...)
}
