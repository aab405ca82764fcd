package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/quire/element"
	"github.com/ByLCY/quire/style"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
type stubTypesetter struct{}

func (s *stubTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	// 极简策略：按空格分词，最多分成三行；不依赖具体宽度。
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return []TextLine{{Content: "", Width: 0, Height: fontSize}}, nil
	}
	n := len(parts)
	cut1 := max(n/3, 1)
	cut2 := min(max(2*n/3, cut1+1), n)

	lines := []TextLine{}
	mk := func(seg []string) {
		if len(seg) == 0 {
			return
		}
		lines = append(lines, TextLine{Content: strings.Join(seg, " "), Width: 0, Height: fontSize})
	}
	mk(parts[:cut1])
	if cut1 < n {
		mk(parts[cut1:cut2])
	}
	if cut2 < n {
		mk(parts[cut2:])
	}
	// 不设置 GapBefore（保持 0），由 composeTextBox 根据默认 leading 回填。
	return lines, nil
}

func body(text string) element.Paragraph {
	return element.Paragraph{Text: text, Style: style.Style{Name: "BodyText", Props: map[string]string{"font": "Body", "size": "12pt"}}}
}

func buildElems(t *testing.T, elems []element.Element, opts BuildOptions) *Result {
	t.Helper()
	opts.Typesetter = &stubTypesetter{}
	if opts.Page.Margin == "" {
		opts.Page.Margin = "10mm"
	}
	res, err := Build(elems, opts)
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

// TestTextBoxTotalHeightInvariant 断言：TextBox.Height == Σ(line.Height + line.GapBefore)。
func TestTextBoxTotalHeightInvariant(t *testing.T) {
	p := body("long long long long long long long long long long long long long")
	p.Style.Props["line-height"] = "1.2x"
	res := buildElems(t, []element.Element{p}, BuildOptions{})
	if len(res.Pages) == 0 || len(res.Pages[0].Texts) == 0 {
		t.Fatalf("无文本输出")
	}
	tb := res.Pages[0].Texts[0]
	if len(tb.Lines) < 2 {
		t.Fatalf("应排出多行，实际 %d 行", len(tb.Lines))
	}
	total := 0.0
	for _, ln := range tb.Lines {
		total += ln.GapBefore + ln.Height
	}
	if !eq(total, tb.Height) {
		t.Fatalf("TextBox.Height 不变式不成立: got=%g want=%g", tb.Height, total)
	}
	if tb.Debug != nil {
		t.Fatalf("未开启调试时不应输出 debug 信息")
	}
}

// TestDebugRawUnitsOutput 验证开启 Debug.RawUnits 后保留作者书写的单位。
func TestDebugRawUnitsOutput(t *testing.T) {
	factor := body("aaaa bbbb")
	factor.Style.Props["line-height"] = "1.2x"
	absolute := body("cccc dddd")
	absolute.Style.Props["line-height"] = "6mm"

	res := buildElems(t, []element.Element{factor, absolute}, BuildOptions{Debug: DebugOptions{RawUnits: true}})
	texts := res.Pages[0].Texts
	if len(texts) != 2 {
		t.Fatalf("应生成 2 个文本框，实际 %d", len(texts))
	}
	got := []*RawUnits{texts[0].Debug.RawUnits, texts[1].Debug.RawUnits}
	want := []*RawUnits{
		{FontSize: &RawLengthJSON{Value: 12, Unit: "pt"}, LineHeight: &RawLineHeightJSON{Kind: "factor", Factor: 1.2}},
		{FontSize: &RawLengthJSON{Value: 12, Unit: "pt"}, LineHeight: &RawLineHeightJSON{Kind: "absolute", Value: 6, Unit: "mm"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rawUnits 不符 (-want +got):\n%s", diff)
	}
	if texts[0].Debug.Style != "BodyText" {
		t.Fatalf("调试信息应记录样式名，实际 %q", texts[0].Debug.Style)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func eq(a, b float64) bool { return abs(a-b) < 1e-6 }

// TestResolveMarginVariants 验证 margin 参数支持 1、2、3、4+ 个值的语义。
func TestResolveMarginVariants(t *testing.T) {
	cases := map[string]Margin{
		"":                            {Top: 20, Right: 20, Bottom: 20, Left: 20},
		"10mm":                        {Top: 10, Right: 10, Bottom: 10, Left: 10},
		"10mm 5mm":                    {Top: 10, Right: 5, Bottom: 10, Left: 5},
		"12mm 8mm 6mm":                {Top: 12, Right: 8, Bottom: 6, Left: 0},
		"1cm 5mm 2cm 3mm":             {Top: 10, Right: 5, Bottom: 20, Left: 3},
		"1mm 2mm 3mm 4mm 999mm 888mm": {Top: 1, Right: 2, Bottom: 3, Left: 4},
	}
	for spec, want := range cases {
		got := resolveMargin(spec)
		if !(eq(got.Top, want.Top) && eq(got.Right, want.Right) && eq(got.Bottom, want.Bottom) && eq(got.Left, want.Left)) {
			t.Fatalf("边距 %q 解析不符: 实际 %+v，期望 %+v", spec, got, want)
		}
	}

	res := buildElems(t, []element.Element{body("x")}, BuildOptions{Page: PageOptions{Margin: "12mm 8mm"}})
	if m := res.Pages[0].Margin; !eq(m.Top, 12) || !eq(m.Left, 8) {
		t.Fatalf("页面应使用传入的边距，实际 %+v", m)
	}
	if tb := res.Pages[0].Texts[0]; !eq(tb.X, 8) || !eq(tb.Y, 12) {
		t.Fatalf("首个文本框应位于版心左上角，实际 (%g,%g)", tb.X, tb.Y)
	}
}

func TestPageSize(t *testing.T) {
	w, h, err := resolvePageSize(PageOptions{Size: "a4", Orientation: "landscape"})
	if err != nil || !eq(w, 297) || !eq(h, 210) {
		t.Fatalf("A4 横向应为 297x210，实际 %gx%g err=%v", w, h, err)
	}
	w, h, err = resolvePageSize(PageOptions{Size: "10cm 150mm"})
	if err != nil || !eq(w, 100) || !eq(h, 150) {
		t.Fatalf("自定义尺寸解析错误: %gx%g err=%v", w, h, err)
	}
	if _, _, err := resolvePageSize(PageOptions{Size: "B99"}); err == nil {
		t.Fatalf("未知纸张应报错")
	}
	if _, _, err := resolvePageSize(PageOptions{Orientation: "diagonal"}); err == nil {
		t.Fatalf("未知方向应报错")
	}
	if _, err := Build(nil, BuildOptions{Typesetter: &stubTypesetter{}, Page: PageOptions{Margin: "200mm"}}); err == nil {
		t.Fatalf("边距超过纸张时应报错")
	}
	if _, err := Build(nil, BuildOptions{}); err == nil {
		t.Fatalf("缺少 Typesetter 时应报错")
	}
}

func TestTextAlignAndColor(t *testing.T) {
	p := body("Hello")
	p.Style.Props["align"] = "end"
	p.Style.Props["color"] = "#f00"
	q := body("World")
	q.Style.Props["align"] = "center"
	res := buildElems(t, []element.Element{p, q}, BuildOptions{})
	texts := res.Pages[0].Texts
	if texts[0].Align != "right" || texts[1].Align != "center" {
		t.Fatalf("对齐映射错误: %q %q", texts[0].Align, texts[1].Align)
	}
	if texts[0].Color != (Color{R: 255}) {
		t.Fatalf("颜色解析错误: %+v", texts[0].Color)
	}
	if texts[1].Color != defaultTextColor {
		t.Fatalf("未指定颜色时应使用默认色: %+v", texts[1].Color)
	}
	if texts[1].Y <= texts[0].Y+texts[0].Height {
		t.Fatalf("相邻段落应纵向排列且有间距")
	}
}

func TestPageBreakAndBookmarks(t *testing.T) {
	elems := []element.Element{
		element.Bookmark{Name: "intro", Label: "Intro"},
		body("first"),
		element.PageBreak{},
		element.Bookmark{Name: "second", Label: "Second"},
		body("second"),
	}
	res := buildElems(t, elems, BuildOptions{})
	if len(res.Pages) != 2 {
		t.Fatalf("应生成 2 页，实际 %d", len(res.Pages))
	}
	if res.Pages[1].Number != 2 || res.Pages[1].Texts[0].Content != "second" {
		t.Fatalf("第二页内容错误: %+v", res.Pages[1])
	}
	want := []BookmarkPos{
		{Name: "intro", Label: "Intro", Page: 1, Y: 10},
		{Name: "second", Label: "Second", Page: 2, Y: 10},
	}
	if diff := cmp.Diff(want, res.Bookmarks); diff != "" {
		t.Fatalf("书签位置不符 (-want +got):\n%s", diff)
	}
}

// TestGroupKeptTogether 验证放不下的 Group 整体移动到下一页。
func TestGroupKeptTogether(t *testing.T) {
	// A4 高 297mm，边距 10mm，版心 277mm；先用留白占到只剩约 5mm。
	elems := []element.Element{
		element.Spacer{Height: "270mm"},
		element.Group{Elements: []element.Element{
			element.Bookmark{Name: "g", Label: "Group"},
			body("heading"),
			body("content"),
		}},
	}
	res := buildElems(t, elems, BuildOptions{})
	if len(res.Pages) != 2 {
		t.Fatalf("应生成 2 页，实际 %d", len(res.Pages))
	}
	if len(res.Pages[0].Texts) != 0 || len(res.Pages[1].Texts) != 2 {
		t.Fatalf("Group 应整体落在第二页: p1=%d p2=%d", len(res.Pages[0].Texts), len(res.Pages[1].Texts))
	}
	if len(res.Bookmarks) != 1 || res.Bookmarks[0].Page != 2 {
		t.Fatalf("测量阶段不应记录书签，且书签应随 Group 移到第二页: %+v", res.Bookmarks)
	}
}

// TestBookmarkFollowsNextContent 验证书签落在其后内容实际所在的页，而不是换页前的位置。
func TestBookmarkFollowsNextContent(t *testing.T) {
	elems := []element.Element{
		element.Spacer{Height: "275mm"},
		element.Bookmark{Name: "late", Label: "Late"},
		body("next"),
		element.Bookmark{Name: "tail", Label: "Tail"},
	}
	res := buildElems(t, elems, BuildOptions{})
	if len(res.Pages) != 2 || res.Pages[1].Texts[0].Content != "next" {
		t.Fatalf("段落应换到第二页: %d 页", len(res.Pages))
	}
	next := res.Pages[1].Texts[0]
	want := []BookmarkPos{
		{Name: "late", Label: "Late", Page: 2, Y: 10},
		{Name: "tail", Label: "Tail", Page: 2, Y: next.Y + (next.Height + defaultBlockSpacing)},
	}
	if diff := cmp.Diff(want, res.Bookmarks); diff != "" {
		t.Fatalf("书签位置不符 (-want +got):\n%s", diff)
	}
}

func TestTextBoxRecordsResolvedFont(t *testing.T) {
	unknown := element.Paragraph{Text: "x", Style: style.Style{Name: "X", Props: map[string]string{"font": "Nope"}}}
	bold := element.Paragraph{Text: "y", Style: style.Style{Name: "Y", Props: map[string]string{"font": "Bold"}}}
	res := buildElems(t, []element.Element{unknown, bold}, BuildOptions{})
	got := []string{res.Pages[0].Texts[0].Font, res.Pages[0].Texts[1].Font}
	if diff := cmp.Diff([]string{"Body", "Bold"}, got); diff != "" {
		t.Fatalf("TextBox 应记录实际使用的字体名 (-want +got):\n%s", diff)
	}
}

func TestSpacerOverflowBreaksPage(t *testing.T) {
	elems := []element.Element{body("a"), element.Spacer{Height: "500mm"}, body("b")}
	res := buildElems(t, elems, BuildOptions{})
	if len(res.Pages) != 2 || res.Pages[1].Texts[0].Content != "b" {
		t.Fatalf("超出版心的留白应触发换页: %d 页", len(res.Pages))
	}
}

func TestListMarkers(t *testing.T) {
	li := style.Style{Name: "BodyText", Props: map[string]string{"size": "10pt"}}
	elems := []element.Element{
		element.List{Numbered: true, Start: 6, ItemSpace: "2mm", Style: li, Items: [][]element.Element{
			{body("six")},
			{body("seven"), body("more")},
		}},
		element.List{Style: li, Items: [][]element.Element{{body("dot")}}},
	}
	res := buildElems(t, elems, BuildOptions{ListIndent: "8mm"})
	var markers, items []TextBox
	for _, tb := range res.Pages[0].Texts {
		if eq(tb.X, 10) {
			markers = append(markers, tb)
		} else {
			items = append(items, tb)
		}
	}
	var got []string
	for _, m := range markers {
		got = append(got, m.Content)
	}
	if diff := cmp.Diff([]string{"6.", "7.", "•"}, got); diff != "" {
		t.Fatalf("列表标记不符 (-want +got):\n%s", diff)
	}
	for _, it := range items {
		if !eq(it.X, 18) {
			t.Fatalf("列表项应缩进 8mm，实际 x=%g", it.X)
		}
	}
	if !eq(markers[0].Y, items[0].Y) {
		t.Fatalf("标记应与首行对齐")
	}
	if len(items) != 4 {
		t.Fatalf("应有 4 个列表项文本，实际 %d", len(items))
	}
}

func TestChartPrimitives(t *testing.T) {
	line := element.Chart{
		Mode:        "linechart",
		Width:       120,
		Height:      60,
		Series:      [][]float64{{1, 3, 2}, {2, 2, 4}},
		Categories:  []string{"a", "b", "c"},
		LabelAngles: []float64{30, 30, 30},
	}
	bar := element.Chart{
		Mode:            "barchart",
		Series:          [][]float64{{1, 3, 2}, {2, 2, 4}},
		BackgroundColor: "#eeeeee",
	}
	plot := element.Chart{
		Mode:            "plotchart",
		Points:          [][][2]float64{{{0, 1}, {1, 4}, {2, 9}}},
		XSteps:          []float64{0, 1, 2},
		LineLabelFormat: "%2.0f",
	}

	res := buildElems(t, []element.Element{line}, BuildOptions{})
	page := res.Pages[0]
	if n := countColored(page.Lines); n != 4 {
		t.Fatalf("折线图应有 4 条数据线段，实际 %d", n)
	}
	rotated := 0
	for _, tb := range page.Texts {
		if tb.Rotate == 30 {
			rotated++
		}
	}
	if rotated != 3 {
		t.Fatalf("分类标签应带旋转角度，实际 %d", rotated)
	}

	res = buildElems(t, []element.Element{bar}, BuildOptions{})
	rects := res.Pages[0].Rects
	if len(rects) != 7 {
		t.Fatalf("柱状图应有 1 个背景和 6 根柱子，实际 %d", len(rects))
	}
	if rects[0].FillColor == nil || rects[0].StrokeWidth >= 0 {
		t.Fatalf("背景框应填充且不描边: %+v", rects[0])
	}
	if !eq(rects[0].Width, 190) || !eq(rects[0].Height, defaultChartHeight) {
		t.Fatalf("宽度为 0 时应占满版心: %+v", rects[0])
	}

	res = buildElems(t, []element.Element{plot}, BuildOptions{})
	page = res.Pages[0]
	if len(page.Circles) != 3 {
		t.Fatalf("散点图应有 3 个数据点，实际 %d", len(page.Circles))
	}
	var labels []string
	for _, tb := range page.Texts {
		if tb.Content == " 1" || tb.Content == " 4" || tb.Content == " 9" {
			labels = append(labels, tb.Content)
		}
	}
	if len(labels) != 3 {
		t.Fatalf("数据标签应按 %%2.0f 格式输出，实际 %v", labels)
	}

	if _, err := Build([]element.Element{element.Chart{Mode: "pie"}}, BuildOptions{Typesetter: &stubTypesetter{}}); err == nil {
		t.Fatalf("未知图表类型应报错")
	}
}

func countColored(lines []Line) int {
	n := 0
	for _, ln := range lines {
		if ln.Color != axisColor && ln.Color != gridColor {
			n++
		}
	}
	return n
}

func TestTicksAndFormat(t *testing.T) {
	if diff := cmp.Diff([]float64{0, 2, 4, 6, 8, 10}, ticks(0, 10, 0)); diff != "" {
		t.Fatalf("刻度不符 (-want +got):\n%s", diff)
	}
	if got := formatValue("%d%%", 41.6); got != "42%" {
		t.Fatalf("整数格式应先取整: %q", got)
	}
	if got := formatValue("%.1f", 2.25); got != "2.2" && got != "2.3" {
		t.Fatalf("浮点格式错误: %q", got)
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res := buildElems(t, []element.Element{body("hello")}, BuildOptions{Meta: DocumentMeta{Title: "T", BuildID: "b1"}})
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("写入调试 JSON 失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}
	for _, want := range []string{`"buildId": "b1"`, `"content": "hello"`, `"embed:regular"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("调试 JSON 缺少 %s", want)
		}
	}
}
