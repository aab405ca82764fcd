package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/quire/element"
)

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// resolvePageSize 支持预设纸张名或 "宽 高" 两个长度。
func resolvePageSize(opts PageOptions) (float64, float64, error) {
	size := strings.TrimSpace(opts.Size)
	if size == "" {
		size = "A4"
	}
	var width, height float64
	if base, ok := pagePresets[strings.ToUpper(size)]; ok {
		width, height = base[0], base[1]
	} else {
		parts := strings.Fields(size)
		if len(parts) != 2 {
			return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", opts.Size)
		}
		width, height = ParseLength(parts[0]), ParseLength(parts[1])
		if width <= 0 || height <= 0 {
			return 0, 0, fmt.Errorf("纸张尺寸无效：%s", opts.Size)
		}
	}
	switch strings.ToLower(strings.TrimSpace(opts.Orientation)) {
	case "", "portrait":
	case "landscape":
		width, height = height, width
	default:
		return 0, 0, fmt.Errorf("未知的纸张方向：%s", opts.Orientation)
	}
	return width, height, nil
}

// resolveMargin 解析 1~4 个长度：
// 1 个值四边相同；2 个值为上下、左右；3 个值为上、右、下（左为 0）；4 个及以上取前四个。
func resolveMargin(spec string) Margin {
	margin := Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	var vals []float64
	for _, token := range strings.Fields(spec) {
		if len(vals) == 4 {
			break
		}
		l := ParseRawLengthStr(token)
		num := strings.TrimSuffix(strings.ToLower(token), UnitToString(l.Unit))
		if _, err := strconv.ParseFloat(num, 64); err != nil {
			break
		}
		vals = append(vals, l.ToMM())
	}
	switch len(vals) {
	case 1:
		v := vals[0]
		margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
	case 2:
		margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
	case 3:
		margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: 0}
	case 4:
		margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	}
	return margin
}

type pageAccumulator struct {
	texts   []TextBox
	lines   []Line
	rects   []Rect
	circles []Circle
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

type pageCollector struct {
	width     float64
	height    float64
	margin    Margin
	accs      []*pageAccumulator
	current   int
	bookmarks []BookmarkPos
	// pending 是尚未落位的书签，由下一个放置的内容确定页码与位置。
	pending []element.Bookmark
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 { return pc.margin.Top }

func (pc *pageCollector) contentBottom() float64 { return pc.height - pc.margin.Bottom }

func (pc *pageCollector) contentWidth() float64 {
	return pc.width - pc.margin.Left - pc.margin.Right
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Number:  i + 1,
			Width:   pc.width,
			Height:  pc.height,
			Margin:  pc.margin,
			Texts:   acc.texts,
			Lines:   acc.lines,
			Rects:   acc.rects,
			Circles: acc.circles,
		}
	}
	return out
}

// flowContext 是纵向排版游标。measure 模式下不允许分页，只用于计算高度。
type flowContext struct {
	baseX          float64
	width          float64
	cursorY        float64
	collector      *pageCollector
	allowPageBreak bool
	opts           *buildState
}

// ensureSpace 在剩余空间不足 height 时换页，随后把待定书签落在当前位置。
func (ctx *flowContext) ensureSpace(height float64) {
	if ctx.needsBreak(height) {
		ctx.pageBreak()
	}
	ctx.flushBookmarks()
}

func (ctx *flowContext) needsBreak(height float64) bool {
	if !ctx.allowPageBreak || ctx.collector == nil {
		return false
	}
	if ctx.cursorY+height <= ctx.collector.contentBottom() {
		return false
	}
	// 已在页首时即使放不下也不再换页，避免产生空白页。
	return ctx.cursorY > ctx.collector.contentTop()
}

func (ctx *flowContext) flushBookmarks() {
	pc := ctx.collector
	if pc == nil {
		return
	}
	for _, b := range pc.pending {
		pc.bookmarks = append(pc.bookmarks, BookmarkPos{
			Name:  b.Name,
			Label: b.Label,
			Page:  pc.current + 1,
			Y:     ctx.cursorY,
		})
	}
	pc.pending = pc.pending[:0]
}

func (ctx *flowContext) pageBreak() {
	if ctx.collector == nil {
		return
	}
	ctx.collector.newPage()
	ctx.cursorY = ctx.collector.contentTop()
}

func (ctx *flowContext) acc() *pageAccumulator {
	if ctx.collector == nil {
		return nil
	}
	return ctx.collector.curr()
}

// child 返回共享页面与游标位置、但横向缩进 indent 的子上下文。
func (ctx *flowContext) child(indent float64) *flowContext {
	return &flowContext{
		baseX:          ctx.baseX + indent,
		width:          ctx.width - indent,
		cursorY:        ctx.cursorY,
		collector:      ctx.collector,
		allowPageBreak: ctx.allowPageBreak,
		opts:           ctx.opts,
	}
}
