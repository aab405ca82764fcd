// Package engine 实现两遍式 block 处理流水线：插件注册表、文档上下文、
// prepare/process 遍历以及资源与锚点的解析。
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/loader"
	"github.com/ByLCY/quire/style"
)

// Engine 持有构建所需的长期配置。每次 Build 都会创建新的 Context。
type Engine struct {
	registry *Registry
	sheet    *style.Sheet
	loader   *loader.Loader
	logger   *zap.Logger
	info     map[string]any
}

// Option 配置 Engine。
type Option func(*Engine)

// WithStyleSheet 设置样式表，默认使用 style.Default()。
func WithStyleSheet(s *style.Sheet) Option {
	return func(e *Engine) {
		if s != nil {
			e.sheet = s
		}
	}
}

// WithLoader 设置资源加载器。
func WithLoader(l *loader.Loader) Option {
	return func(e *Engine) {
		if l != nil {
			e.loader = l
		}
	}
}

// WithLogger 设置日志记录器，默认不输出。
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithInfo 设置默认文档信息，文档自身的 info 会覆盖同名键。
func WithInfo(info map[string]any) Option {
	return func(e *Engine) {
		e.info = info
	}
}

// New 创建 Engine。
func New(reg *Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		sheet:    style.Default(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		e.loader = loader.New(loader.WithLogger(e.logger))
	}
	return e
}

// Registry 返回插件注册表。
func (e *Engine) Registry() *Registry { return e.registry }

// Output 是一次成功构建的结果。
type Output struct {
	BuildID  string
	Elements []element.Element
	Info     map[string]any
	Anchors  []Anchor
	Warnings []Warning
}

// Build 执行一次完整构建：初始化全部插件，prepare 遍历整棵树，再 process 遍历并拼接输出。
// 任何错误都会终止构建并且不返回部分结果。
func (e *Engine) Build(doc *block.Document) (*Output, error) {
	if e.registry == nil {
		return nil, errors.New("engine 未配置插件注册表")
	}
	if doc == nil {
		doc = &block.Document{}
	}
	start := time.Now()
	ctx := newContext(e, uuid.NewString(), doc)
	ctx.logger.Debug("开始构建", zap.Int("blocks", len(doc.Blocks)), zap.String("dir", doc.Dir))

	ctx.phase = PhaseInit
	for _, p := range e.registry.Plugins() {
		if err := p.Init(ctx); err != nil {
			return nil, &BlockError{Phase: PhaseInit, Type: p.Name(), Err: err}
		}
	}

	ctx.phase = PhasePrepare
	if err := ctx.PrepareBlocks(doc.Blocks); err != nil {
		return nil, err
	}

	ctx.phase = PhaseProcess
	elems, err := ctx.ProcessBlocks(doc.Blocks)
	if err != nil {
		return nil, err
	}

	out := &Output{
		BuildID:  ctx.BuildID,
		Elements: elems,
		Info:     ctx.Info,
		Anchors:  ctx.Anchors.All(),
		Warnings: ctx.Warnings(),
	}
	for _, w := range out.Warnings {
		ctx.logger.Warn(w.Message,
			zap.String("phase", string(w.Phase)),
			zap.String("type", w.Type),
			zap.String("path", w.Path),
		)
	}
	ctx.logger.Debug("构建完成",
		zap.Int("elements", len(elems)),
		zap.Int("anchors", len(out.Anchors)),
		zap.Int("resources", ctx.Resources.Len()),
		zap.Int("warnings", len(out.Warnings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// Summary 返回便于日志输出的构建摘要。
func (o *Output) Summary() string {
	return fmt.Sprintf("%d 个元素，%d 个书签，%d 条警告", len(element.Flatten(o.Elements)), len(o.Anchors), len(o.Warnings))
}
