package plugins

import (
	"github.com/ByLCY/quire/block"
	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/engine"
)

const (
	ChartLine = "linechart"
	ChartBar  = "barchart"
	ChartPlot = "plotchart"
)

// 默认图表高度 5cm。
const defaultChartHeightMM = 50.0

var _ engine.Plugin = (*Chart)(nil)

// Chart 输出折线图、柱状图或散点折线图。数据字段可以内联，也可以是资源别名。
//
//	- type: chart
//	  mode: linechart          # linechart | barchart | plotchart
//	  width: 12                # 厘米，默认占满版心
//	  height: 5                # 厘米
//	  data: sales              # 资源别名或 [[1, 2, 3], [2, 3, 4]]
//	  select: series[*].values
//	  xvalues: [Q1, Q2, Q3]
//	  linecolors: ["#0f62fe", "#da1e28"]
type Chart struct{ engine.Base }

func (*Chart) Name() string { return "chart" }

func (*Chart) Process(b *block.Block, ctx *engine.Context) ([]element.Element, error) {
	mode := b.StringOr("mode", ChartLine)
	if mode != ChartLine && mode != ChartBar && mode != ChartPlot {
		ctx.Warn("未知的图表模式 %q，已忽略", mode)
		return nil, nil
	}

	chart := element.Chart{Mode: mode, Height: defaultChartHeightMM}
	if w, ok := b.Float("width"); ok {
		chart.Width = w * 10
	}
	if h, ok := b.Float("height"); ok {
		chart.Height = h * 10
	}

	chart.BackgroundColor = b.StringOr("backgroundColor", "")
	chart.BorderColor = b.StringOr("borderColor", "")
	chart.LineLabelFormat = b.StringOr("lineLabelFormat", "")
	chart.YAxisMin = optionalFloat(b, "yAxisMin")
	chart.YAxisMax = optionalFloat(b, "yAxisMax")
	chart.YAxisStep = optionalFloat(b, "yAxisStep")

	var err error
	switch mode {
	case ChartPlot:
		err = fillPlotChart(&chart, b, ctx)
	default:
		err = fillSeriesChart(&chart, b, ctx)
	}
	if err != nil {
		return nil, err
	}
	return []element.Element{chart}, nil
}

func fillSeriesChart(chart *element.Chart, b *block.Block, ctx *engine.Context) error {
	raw, ok, err := resolveField(ctx, b, "data", b.StringOr("select", ""))
	if err != nil {
		return err
	}
	if !ok {
		return engine.MissingField(b.Type, "data")
	}
	if chart.Series, err = toSeries(raw); err != nil {
		return invalid(b, "data", "%v", err)
	}
	lines, points := len(chart.Series), 0
	if lines > 0 {
		points = len(chart.Series[0])
	}

	if raw, ok, err := resolveField(ctx, b, "xvalues", ""); err != nil {
		return err
	} else if ok {
		seq, isSeq := raw.([]any)
		if !isSeq {
			return invalid(b, "xvalues", "需要序列，得到 %T", raw)
		}
		chart.Categories = toStrings(seq)
	}

	targets := []struct {
		key string
		n   int
		dst *[]float64
	}{
		{"labelAngles", points, &chart.LabelAngles},
		{"labelXOffsets", points, &chart.LabelXOffsets},
		{"labelYOffsets", points, &chart.LabelYOffsets},
		{"lineWidths", lines, &chart.LineWidths},
	}
	for _, t := range targets {
		raw, ok, err := resolveField(ctx, b, t.key, "")
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if *t.dst, err = broadcastFloats(raw, t.n); err != nil {
			return invalid(b, t.key, "%v", err)
		}
	}
	if raw, ok := b.Raw("linecolors"); ok {
		chart.LineColors = broadcastStrings(raw, lines)
	}
	return nil
}

func fillPlotChart(chart *element.Chart, b *block.Block, ctx *engine.Context) error {
	raw, ok, err := resolveField(ctx, b, "plotdata", b.StringOr("select", ""))
	if err != nil {
		return err
	}
	if !ok {
		return engine.MissingField(b.Type, "plotdata")
	}
	if chart.Points, err = toPoints(raw); err != nil {
		return invalid(b, "plotdata", "%v", err)
	}
	if raw, ok, err := resolveField(ctx, b, "xvalues", ""); err != nil {
		return err
	} else if ok {
		if chart.XSteps, err = toFloats(raw); err != nil {
			return invalid(b, "xvalues", "%v", err)
		}
	}
	if raw, ok := b.Raw("linecolors"); ok {
		chart.LineColors = broadcastStrings(raw, len(chart.Points))
	}
	if chart.LineLabelFormat == "" {
		chart.LineLabelFormat = "%2.0f"
	}
	return nil
}

func optionalFloat(b *block.Block, key string) *float64 {
	if f, ok := b.Float(key); ok {
		return &f
	}
	return nil
}
