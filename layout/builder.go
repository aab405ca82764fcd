// Package layout 将插件输出的元素流排版到页面上，生成可直接渲染的几何结果。
package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/style"
)

const (
	defaultBlockSpacing = 3.0
	defaultListIndent   = 6.0
)

// buildState 保存一次布局共享的只读依赖。
type buildState struct {
	typesetter Typesetter
	fonts      map[string]FontResource
	debug      DebugOptions
	spacing    float64
	listIndent float64
}

// Build 根据元素流生成页面布局。Group 中的元素会整体放到同一页（放得下时）。
func Build(elems []element.Element, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	width, height, err := resolvePageSize(opts.Page)
	if err != nil {
		return nil, err
	}
	margin := resolveMargin(opts.Page.Margin)
	collector := newPageCollector(width, height, margin)
	if collector.contentWidth() <= 0 || collector.contentBottom() <= collector.contentTop() {
		return nil, fmt.Errorf("layout: 页边距超出纸张尺寸")
	}

	fonts := opts.Fonts
	if len(fonts) == 0 {
		fonts = DefaultFonts()
	}
	st := &buildState{
		typesetter: opts.Typesetter,
		fonts:      fonts,
		debug:      opts.Debug,
		spacing:    lengthOr(opts.BlockSpacing, defaultBlockSpacing),
		listIndent: lengthOr(opts.ListIndent, defaultListIndent),
	}
	root := &flowContext{
		baseX:          margin.Left,
		width:          collector.contentWidth(),
		cursorY:        collector.contentTop(),
		collector:      collector,
		allowPageBreak: true,
		opts:           st,
	}
	if err := root.place(elems, st.spacing); err != nil {
		return nil, err
	}
	root.flushBookmarks()

	return &Result{
		Pages:     collector.pages(),
		Fonts:     fonts,
		Bookmarks: collector.bookmarks,
		Meta:      opts.Meta,
	}, nil
}

func lengthOr(v string, def float64) float64 {
	if l := ParseLength(v); l > 0 {
		return l
	}
	return def
}

// place 依次放置元素，spacing 为相邻元素之间的间距。
func (ctx *flowContext) place(elems []element.Element, spacing float64) error {
	for _, el := range elems {
		if err := ctx.placeOne(el, spacing); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *flowContext) placeOne(el element.Element, spacing float64) error {
	switch e := el.(type) {
	case element.Paragraph:
		return ctx.placeParagraph(e, spacing)
	case element.Group:
		return ctx.placeGroup(e, spacing)
	case element.List:
		return ctx.placeList(e, spacing)
	case element.Chart:
		return ctx.placeChart(e, spacing)
	case element.Spacer:
		h := ParseLength(e.Height)
		if ctx.allowPageBreak && ctx.cursorY+h > ctx.collector.contentBottom() {
			ctx.pageBreak()
			return nil
		}
		ctx.flushBookmarks()
		ctx.cursorY += h
	case element.PageBreak:
		if ctx.allowPageBreak {
			ctx.pageBreak()
		}
	case element.Bookmark:
		ctx.collector.pending = append(ctx.collector.pending, e)
	default:
		return fmt.Errorf("layout: 不支持的元素类型 %T", el)
	}
	return nil
}

func (ctx *flowContext) placeParagraph(p element.Paragraph, spacing float64) error {
	tb, err := ctx.opts.composeTextBox(p.Style, p.Text, ctx.width)
	if err != nil {
		return err
	}
	ctx.ensureSpace(tb.Height)
	tb.X = ctx.baseX
	tb.Y = ctx.cursorY
	if acc := ctx.acc(); acc != nil {
		acc.appendText(tb)
	}
	ctx.cursorY += tb.Height + spacing
	return nil
}

// placeGroup 先测量整体高度再放置；超过一页的组按普通流式内容处理。
func (ctx *flowContext) placeGroup(g element.Group, spacing float64) error {
	h, err := ctx.measure(g.Elements, spacing)
	if err != nil {
		return err
	}
	ctx.ensureSpace(h)
	return ctx.place(g.Elements, spacing)
}

// measure 在一个不分页的临时页面上放置 elems，返回占用高度（不含末尾间距）。
func (ctx *flowContext) measure(elems []element.Element, spacing float64) (float64, error) {
	pc := ctx.collector
	scratch := &flowContext{
		baseX:     ctx.baseX,
		width:     ctx.width,
		collector: newPageCollector(pc.width, pc.height, pc.margin),
		opts:      ctx.opts,
	}
	if err := scratch.place(elems, spacing); err != nil {
		return 0, err
	}
	return math.Max(scratch.cursorY-spacing, 0), nil
}

func (ctx *flowContext) placeList(l element.List, spacing float64) error {
	itemSpace := ParseLength(l.ItemSpace)
	indent := ctx.opts.listIndent
	if indent >= ctx.width {
		indent = 0
	}
	for i, item := range l.Items {
		body := ctx.child(indent)
		h, err := body.measure(item, itemSpace)
		if err != nil {
			return err
		}

		marker, err := ctx.opts.composeTextBox(l.Style, listMarker(l, i), indent)
		if err != nil {
			return err
		}
		ctx.ensureSpace(math.Max(h, marker.Height))
		marker.X = ctx.baseX
		marker.Y = ctx.cursorY
		marker.Wrap = "nowrap"
		if acc := ctx.acc(); acc != nil {
			acc.appendText(marker)
		}

		body = ctx.child(indent)
		startPage := ctx.collector.current
		if err := body.place(item, itemSpace); err != nil {
			return err
		}
		end := body.cursorY
		if ctx.collector.current == startPage {
			end = math.Max(end, marker.Y+marker.Height+itemSpace)
		}
		ctx.cursorY = end
	}
	if len(l.Items) > 0 {
		ctx.cursorY += spacing - itemSpace
	}
	return nil
}

func listMarker(l element.List, i int) string {
	if l.Numbered {
		return fmt.Sprintf("%d.", l.Start+i)
	}
	return "•"
}

// chartLabelStyle 是图表坐标轴与数据标签使用的样式。
func chartLabelStyle(align string) style.Style {
	return style.Style{Name: "chart", Props: map[string]string{
		"font":        "Body",
		"size":        "7pt",
		"line-height": "1.1x",
		"align":       align,
		"wrap":        "nowrap",
		"color":       "#444444",
	}}
}
