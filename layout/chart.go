package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/quire/element"
)

const (
	defaultChartHeight = 50.0
	chartGutterLeft    = 10.0
	chartGutterBottom  = 6.0
	chartGutterTop     = 2.0
	chartGutterRight   = 2.0
	chartMarkerRadius  = 0.6
	chartMaxTicks      = 50
)

var (
	chartPalette = []string{"#0f62fe", "#da1e28", "#198038", "#8a3ffc", "#ff832b", "#005d5d"}
	axisColor    = Color{R: 90, G: 90, B: 90}
	gridColor    = Color{R: 220, G: 220, B: 220}
)

// chartShapes 收集一个图表生成的几何图元，坐标均为页面绝对坐标。
type chartShapes struct {
	texts   []TextBox
	lines   []Line
	rects   []Rect
	circles []Circle
}

// plotArea 是坐标轴围成的绘图区域及其数值范围。
type plotArea struct {
	x, y, w, h      float64
	xMin, xMax      float64
	yMin, yMax      float64
	categoryWidth   float64
	categoryCount   int
	useCategoricalX bool
}

func (a plotArea) yOf(v float64) float64 {
	return a.y + a.h - (v-a.yMin)/(a.yMax-a.yMin)*a.h
}

func (a plotArea) xOf(v float64) float64 {
	return a.x + (v-a.xMin)/(a.xMax-a.xMin)*a.w
}

// slotX 返回第 i 个分类的中心横坐标。
func (a plotArea) slotX(i int) float64 {
	return a.x + (float64(i)+0.5)*a.categoryWidth
}

func (ctx *flowContext) placeChart(c element.Chart, spacing float64) error {
	width := c.Width
	if width <= 0 || width > ctx.width {
		width = ctx.width
	}
	height := c.Height
	if height <= 0 {
		height = defaultChartHeight
	}
	ctx.ensureSpace(height)

	shapes, err := ctx.opts.drawChart(c, ctx.baseX, ctx.cursorY, width, height)
	if err != nil {
		return err
	}
	if acc := ctx.acc(); acc != nil {
		acc.texts = append(acc.texts, shapes.texts...)
		acc.lines = append(acc.lines, shapes.lines...)
		acc.rects = append(acc.rects, shapes.rects...)
		acc.circles = append(acc.circles, shapes.circles...)
	}
	ctx.cursorY += height + spacing
	return nil
}

func (st *buildState) drawChart(c element.Chart, x, y, width, height float64) (*chartShapes, error) {
	area := plotArea{
		x: x + chartGutterLeft,
		y: y + chartGutterTop,
		w: width - chartGutterLeft - chartGutterRight,
		h: height - chartGutterTop - chartGutterBottom,
	}
	if area.w <= 0 || area.h <= 0 {
		return nil, fmt.Errorf("layout: 图表尺寸过小 (%gx%gmm)", width, height)
	}

	shapes := &chartShapes{}
	if frame, ok := chartFrame(c, x, y, width, height); ok {
		shapes.rects = append(shapes.rects, frame)
	}

	var values []float64
	switch c.Mode {
	case "plotchart":
		for _, series := range c.Points {
			for _, p := range series {
				values = append(values, p[1])
			}
		}
		area.xMin, area.xMax = plotXRange(c)
	case "linechart", "barchart":
		n := 0
		for _, series := range c.Series {
			values = append(values, series...)
			n = max(n, len(series))
		}
		n = max(n, len(c.Categories), 1)
		area.useCategoricalX = true
		area.categoryCount = n
		area.categoryWidth = area.w / float64(n)
	default:
		return nil, fmt.Errorf("layout: 未知的图表类型 %q", c.Mode)
	}
	area.yMin, area.yMax = valueRange(values, c)

	if err := st.drawAxes(shapes, area, c); err != nil {
		return nil, err
	}
	var err error
	switch c.Mode {
	case "linechart":
		err = st.drawLineSeries(shapes, area, c)
	case "barchart":
		st.drawBars(shapes, area, c)
	case "plotchart":
		err = st.drawPlotSeries(shapes, area, c)
	}
	if err != nil {
		return nil, err
	}
	return shapes, nil
}

func chartFrame(c element.Chart, x, y, width, height float64) (Rect, bool) {
	if c.BackgroundColor == "" && c.BorderColor == "" {
		return Rect{}, false
	}
	frame := Rect{X: x, Y: y, Width: width, Height: height, StrokeWidth: -1}
	if bg, err := parseColor(c.BackgroundColor); err == nil {
		frame.FillColor = &bg
	}
	if border, err := parseColor(c.BorderColor); err == nil {
		frame.StrokeColor = border
		frame.StrokeWidth = 0.25
	}
	return frame, true
}

// valueRange 计算纵轴范围，默认包含 0，可被 YAxisMin/YAxisMax 覆盖。
func valueRange(values []float64, c element.Chart) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if c.YAxisMin != nil {
		lo = *c.YAxisMin
	}
	if c.YAxisMax != nil {
		hi = *c.YAxisMax
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func plotXRange(c element.Chart) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, series := range c.Points {
		for _, p := range series {
			lo = math.Min(lo, p[0])
			hi = math.Max(hi, p[0])
		}
	}
	for _, s := range c.XSteps {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if math.IsInf(lo, 0) {
		return 0, 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// niceStep 把原始步长取整到 1/2/5×10^n。
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsInf(raw, 0) || math.IsNaN(raw) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / exp; {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}

func ticks(lo, hi, step float64) []float64 {
	if step <= 0 {
		step = niceStep((hi - lo) / 5)
	}
	var out []float64
	start := math.Ceil(lo/step-1e-9) * step
	for v := start; v <= hi+step*1e-9 && len(out) < chartMaxTicks; v += step {
		out = append(out, v)
	}
	return out
}

func (st *buildState) drawAxes(shapes *chartShapes, area plotArea, c element.Chart) error {
	bottom := area.y + area.h
	shapes.lines = append(shapes.lines,
		Line{X1: area.x, Y1: area.y, X2: area.x, Y2: bottom, Color: axisColor, Width: 0.2},
		Line{X1: area.x, Y1: bottom, X2: area.x + area.w, Y2: bottom, Color: axisColor, Width: 0.2},
	)

	step := 0.0
	if c.YAxisStep != nil {
		step = *c.YAxisStep
	}
	for _, v := range ticks(area.yMin, area.yMax, step) {
		ty := area.yOf(v)
		if v != area.yMin {
			shapes.lines = append(shapes.lines, Line{X1: area.x, Y1: ty, X2: area.x + area.w, Y2: ty, Color: gridColor, Width: 0.1})
		}
		label, err := st.label(formatTick(v), "right", area.x-chartGutterLeft, ty, chartGutterLeft-1)
		if err != nil {
			return err
		}
		label.Y -= label.Height / 2
		shapes.texts = append(shapes.texts, label)
	}

	if area.useCategoricalX {
		for i, name := range c.Categories {
			if i >= area.categoryCount {
				break
			}
			label, err := st.label(name, "center", area.slotX(i)-area.categoryWidth/2, bottom+1, area.categoryWidth)
			if err != nil {
				return err
			}
			label.X += at(c.LabelXOffsets, i) * PtToMm
			label.Y -= at(c.LabelYOffsets, i) * PtToMm
			label.Rotate = at(c.LabelAngles, i)
			shapes.texts = append(shapes.texts, label)
		}
		return nil
	}

	steps := c.XSteps
	if len(steps) == 0 {
		steps = ticks(area.xMin, area.xMax, 0)
	}
	for _, s := range steps {
		tx := area.xOf(s)
		shapes.lines = append(shapes.lines, Line{X1: tx, Y1: bottom, X2: tx, Y2: bottom + 1, Color: axisColor, Width: 0.2})
		label, err := st.label(formatTick(s), "center", tx-chartGutterLeft/2, bottom+1, chartGutterLeft)
		if err != nil {
			return err
		}
		shapes.texts = append(shapes.texts, label)
	}
	return nil
}

func (st *buildState) drawLineSeries(shapes *chartShapes, area plotArea, c element.Chart) error {
	for i, series := range c.Series {
		color, width := seriesStyle(c, i)
		for j := 1; j < len(series); j++ {
			shapes.lines = append(shapes.lines, Line{
				X1: area.slotX(j - 1), Y1: area.yOf(series[j-1]),
				X2: area.slotX(j), Y2: area.yOf(series[j]),
				Color: color, Width: width,
			})
		}
		if err := st.valueLabels(shapes, c, len(series), func(j int) (float64, float64, float64) {
			return area.slotX(j), area.yOf(series[j]), series[j]
		}); err != nil {
			return err
		}
	}
	return nil
}

func (st *buildState) drawBars(shapes *chartShapes, area plotArea, c element.Chart) {
	if len(c.Series) == 0 {
		return
	}
	barWidth := area.categoryWidth * 0.8 / float64(len(c.Series))
	base := area.yOf(math.Max(area.yMin, math.Min(0, area.yMax)))
	for i, series := range c.Series {
		color, _ := seriesStyle(c, i)
		for j, v := range series {
			top := area.yOf(v)
			left := area.x + float64(j)*area.categoryWidth + area.categoryWidth*0.1 + float64(i)*barWidth
			fill := color
			shapes.rects = append(shapes.rects, Rect{
				X:           left,
				Y:           math.Min(top, base),
				Width:       barWidth,
				Height:      math.Abs(base - top),
				StrokeWidth: -1,
				FillColor:   &fill,
			})
		}
	}
}

func (st *buildState) drawPlotSeries(shapes *chartShapes, area plotArea, c element.Chart) error {
	for i, series := range c.Points {
		color, width := seriesStyle(c, i)
		for j, p := range series {
			px, py := area.xOf(p[0]), area.yOf(p[1])
			if j > 0 {
				prev := series[j-1]
				shapes.lines = append(shapes.lines, Line{
					X1: area.xOf(prev[0]), Y1: area.yOf(prev[1]),
					X2: px, Y2: py,
					Color: color, Width: width,
				})
			}
			fill := color
			shapes.circles = append(shapes.circles, Circle{CX: px, CY: py, R: chartMarkerRadius, StrokeColor: color, StrokeWidth: width, FillColor: &fill})
		}
		if err := st.valueLabels(shapes, c, len(series), func(j int) (float64, float64, float64) {
			return area.xOf(series[j][0]), area.yOf(series[j][1]), series[j][1]
		}); err != nil {
			return err
		}
	}
	return nil
}

// valueLabels 在每个数据点上方标注数值，LineLabelFormat 为空时不标注。
func (st *buildState) valueLabels(shapes *chartShapes, c element.Chart, n int, point func(int) (float64, float64, float64)) error {
	if c.LineLabelFormat == "" {
		return nil
	}
	for j := 0; j < n; j++ {
		px, py, v := point(j)
		label, err := st.label(formatValue(c.LineLabelFormat, v), "center", px-chartGutterLeft/2, py, chartGutterLeft)
		if err != nil {
			return err
		}
		label.Y -= label.Height + 0.5
		shapes.texts = append(shapes.texts, label)
	}
	return nil
}

func (st *buildState) label(text, align string, x, y, width float64) (TextBox, error) {
	tb, err := st.composeTextBox(chartLabelStyle(align), text, width)
	if err != nil {
		return TextBox{}, err
	}
	tb.X, tb.Y = x, y
	return tb, nil
}

// seriesStyle 返回第 i 条数据系列的颜色与线宽（LineWidths 单位为 pt）。
func seriesStyle(c element.Chart, i int) (Color, float64) {
	raw := chartPalette[i%len(chartPalette)]
	if i < len(c.LineColors) && c.LineColors[i] != "" {
		raw = c.LineColors[i]
	}
	color, err := parseColor(raw)
	if err != nil {
		color, _ = parseColor(chartPalette[i%len(chartPalette)])
	}
	width := 1.0
	if w := at(c.LineWidths, i); w > 0 {
		width = w
	}
	return color, width * PtToMm
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-9 {
		v = 0
	}
	return fmt.Sprintf("%g", math.Round(v*1e6)/1e6)
}

// formatValue 按 printf 格式输出数值，整数动词（%d）会先取整。
func formatValue(format string, v float64) string {
	if i := strings.IndexByte(format, '%'); i >= 0 {
		if j := strings.IndexAny(format[i+1:], "dxXbeEfFgGsv"); j >= 0 && strings.ContainsRune("dxXb", rune(format[i+1+j])) {
			return fmt.Sprintf(format, int64(math.Round(v)))
		}
	}
	return fmt.Sprintf(format, v)
}
