package engine

import (
	"fmt"
	"sort"
)

// Registry 按名称索引插件。注册发生在启动阶段，名称冲突立即报错。
type Registry struct {
	byName map[string]Plugin
	order  []Plugin
}

// NewRegistry 创建注册表并依次注册 plugins。
func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{byName: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register 以插件自报的名称注册插件。
func (r *Registry) Register(p Plugin) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("插件名称为空: %T", p)
	}
	if existing, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %q 已由 %T 注册", ErrDuplicatePlugin, name, existing)
	}
	r.byName[name] = p
	r.order = append(r.order, p)
	return nil
}

// Resolve 返回 typ 对应的插件。
func (r *Registry) Resolve(typ string) (Plugin, error) {
	p, ok := r.byName[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, typ)
	}
	return p, nil
}

// Names 返回已注册的名称（按字母序）。
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Plugins 按注册顺序返回插件。
func (r *Registry) Plugins() []Plugin {
	out := make([]Plugin, len(r.order))
	copy(out, r.order)
	return out
}
