package engine

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/loader"
	"github.com/ByLCY/quire/selector"
	"github.com/ByLCY/quire/style"
)

// MaxDepth 限制 block 嵌套层级，防止 include 等容器形成无限递归。
const MaxDepth = 64

var errTooDeep = errors.New("block 嵌套层级过深")

// Warning 是构建过程中记录的非致命问题。
type Warning struct {
	Phase   Phase  `json:"phase"`
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Type == "" {
		return w.Message
	}
	return fmt.Sprintf("[%s %s] %s", w.Phase, w.Type, w.Message)
}

// Context 是一次文档构建的共享状态，由 Engine.Build 创建，构建结束后丢弃。
// 所有访问都发生在同一个 goroutine 中，不需要加锁。
type Context struct {
	BuildID   string
	Dir       string
	Info      map[string]any
	Resources *ResourceStore
	Anchors   *AnchorTable

	registry *Registry
	sheet    *style.Sheet
	loader   *loader.Loader
	logger   *zap.Logger
	counters map[string]int
	values   map[any]any
	warnings []Warning

	phase   Phase
	current *block.Block
	depth   int
}

func newContext(e *Engine, buildID string, doc *block.Document) *Context {
	info := make(map[string]any, len(e.info)+len(doc.Info))
	for k, v := range e.info {
		info[k] = block.Clone(v)
	}
	for k, v := range doc.Info {
		info[k] = block.Clone(v)
	}
	return &Context{
		BuildID:   buildID,
		Dir:       doc.Dir,
		Info:      info,
		Resources: NewResourceStore(),
		Anchors:   NewAnchorTable(),
		registry:  e.registry,
		sheet:     e.sheet,
		loader:    e.loader,
		logger:    e.logger.With(zap.String("build", buildID)),
		counters:  make(map[string]int),
		values:    make(map[any]any),
	}
}

// Logger 返回带有构建 ID 的日志记录器。
func (c *Context) Logger() *zap.Logger { return c.logger }

// Phase 返回当前所处的构建阶段。
func (c *Context) Phase() Phase { return c.phase }

// StyleSheet 返回本次构建使用的样式表。
func (c *Context) StyleSheet() *style.Sheet { return c.sheet }

// PrepareBlocks 在第一遍遍历中依次分发 blocks。
func (c *Context) PrepareBlocks(blocks []*block.Block) error {
	if c.depth >= MaxDepth {
		return errTooDeep
	}
	c.depth++
	defer func() { c.depth-- }()

	for _, b := range blocks {
		p, err := c.registry.Resolve(b.Type)
		if err != nil {
			return wrapBlockError(PhasePrepare, b.Type, b.Path, err)
		}
		prev := c.enter(b)
		err = p.Prepare(b, c)
		c.current = prev
		if err != nil {
			return wrapBlockError(PhasePrepare, b.Type, b.Path, err)
		}
	}
	return nil
}

// ProcessBlocks 在第二遍遍历中依次分发 blocks，按文档顺序拼接输出。
func (c *Context) ProcessBlocks(blocks []*block.Block) ([]element.Element, error) {
	if c.depth >= MaxDepth {
		return nil, errTooDeep
	}
	c.depth++
	defer func() { c.depth-- }()

	var out []element.Element
	for _, b := range blocks {
		p, err := c.registry.Resolve(b.Type)
		if err != nil {
			return nil, wrapBlockError(PhaseProcess, b.Type, b.Path, err)
		}
		prev := c.enter(b)
		elems, err := p.Process(b, c)
		c.current = prev
		if err != nil {
			return nil, wrapBlockError(PhaseProcess, b.Type, b.Path, err)
		}
		out = append(out, elems...)
	}
	return out, nil
}

// ProcessGroup 处理 blocks 并把结果包装为一个保持同页的 Group。
func (c *Context) ProcessGroup(blocks []*block.Block) ([]element.Element, error) {
	elems, err := c.ProcessBlocks(blocks)
	if err != nil {
		return nil, err
	}
	return element.KeepTogether(elems), nil
}

func (c *Context) enter(b *block.Block) *block.Block {
	prev := c.current
	c.current = b
	return prev
}

// ExpandMacros 用文档信息展开文本中的 ${path} 宏。
func (c *Context) ExpandMacros(text string) string {
	return binding.Interpolate(text, c.Info)
}

// ResolvePath 展开宏并将相对路径解析到 dir 下。
func (c *Context) ResolvePath(dir, name string) string {
	name = c.ExpandMacros(name)
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// LoadResource 通过资源加载器读取 dir 下的 name。
func (c *Context) LoadResource(dir, name string) (any, error) {
	path := c.ResolvePath(dir, name)
	data, err := c.loader.Load(path)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("资源已加载", zap.String("file", path))
	return data, nil
}

// Loader 返回资源加载器。
func (c *Context) Loader() *loader.Loader { return c.loader }

// Style 按名称查找样式，name 为空时使用 BodyText。
func (c *Context) Style(name string) (style.Style, error) {
	if name == "" {
		name = style.DefaultStyle
	}
	st, ok := c.sheet.Lookup(name)
	if !ok {
		return style.Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
	return st, nil
}

// Param 返回样式表参数。
func (c *Context) Param(name, def string) string {
	return c.sheet.Param(name, def)
}

// Counter 返回命名计数器的当前值。
func (c *Context) Counter(name string) (int, bool) {
	v, ok := c.counters[name]
	return v, ok
}

// SetCounter 设置命名计数器。
func (c *Context) SetCounter(name string, v int) {
	c.counters[name] = v
}

// Value 返回插件在本次构建中以 key 保存的数据。key 应使用插件私有的类型以避免冲突。
func (c *Context) Value(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// SetValue 保存插件的构建期数据，构建结束后随 Context 一起丢弃。
func (c *Context) SetValue(key, val any) {
	c.values[key] = val
}

// Warn 记录一条非致命警告，附带当前 block 的类型与来源。
func (c *Context) Warn(format string, args ...any) {
	w := Warning{Phase: c.phase, Message: fmt.Sprintf(format, args...)}
	if c.current != nil {
		w.Type = c.current.Type
		w.Path = c.current.Path
	}
	c.warnings = append(c.warnings, w)
}

// Warnings 返回已记录的警告。
func (c *Context) Warnings() []Warning {
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// RegisterResource 登记资源；无法合并而被整体替换时记录警告。
func (c *Context) RegisterResource(alias string, data any) {
	if c.Resources.Register(alias, data) {
		c.Warn("资源 %q 无法合并，已被新数据替换", alias)
	}
}

// Promote 将映射类型的数据合并进全局文档信息，之后的宏展开可以引用。
func (c *Context) Promote(data any) error {
	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: 只有映射可以设为全局（得到 %T）", ErrInvalidResource, data)
	}
	for k, v := range m {
		c.Info[k] = block.Clone(v)
	}
	return nil
}

// Resolve 将字面量或资源引用解析为数据，sel 非空时再应用选择表达式。
func (c *Context) Resolve(v block.Value, sel string) (any, error) {
	var data any
	switch v.Kind() {
	case block.KindLiteral:
		data = v.Data()
	case block.KindReference:
		stored, ok := c.Resources.Lookup(v.Alias())
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnresolvedResource, v.Alias())
		}
		data = block.Clone(stored)
	default:
		return nil, fmt.Errorf("%w: 空值", ErrUnresolvedResource)
	}
	if sel == "" {
		return data, nil
	}
	expr := c.ExpandMacros(sel)
	out, err := selector.Select(data, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	return out, nil
}

// RegisterAnchor 登记锚点；重名时记录警告，后注册者生效。
func (c *Context) RegisterAnchor(name, label string) {
	if c.Anchors.Register(name, label) {
		c.Warn("覆盖已存在的书签 %q", name)
	}
}

// EmitAnchor 生成书签元素；visible 为 true 时附带使用 styleName 样式的标签段落，二者保持同页。
func (c *Context) EmitAnchor(name, label, styleName string, visible bool) ([]element.Element, error) {
	mark := element.Bookmark{Name: name, Label: label}
	if !visible {
		return []element.Element{mark}, nil
	}
	st, err := c.Style(styleName)
	if err != nil {
		return nil, err
	}
	return element.KeepTogether([]element.Element{mark, element.Paragraph{Text: label, Style: st}}), nil
}
