package layout

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/quire/style"
)

// 未指定字号时的默认值：12pt（mm）。
const defaultFontSize = 12 * PtToMm

var defaultTextColor = Color{R: 30, G: 30, B: 30}

func normalizeWrap(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "auto", "anywhere", "overflow-wrap:anywhere", "overflow-anywhere":
		return "anywhere"
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	case "normal":
		return "normal"
	default:
		return "anywhere"
	}
}

func normalizeAlign(v string) string {
	switch v = strings.ToLower(strings.TrimSpace(v)); v {
	case "start":
		return "left"
	case "end":
		return "right"
	case "left", "center", "right":
		return v
	default:
		return ""
	}
}

// composeTextBox 按样式属性（font/size/line-height/color/align/wrap）排版文本，坐标由调用方填写。
func (st *buildState) composeTextBox(s style.Style, content string, width float64) (TextBox, error) {
	fontName := s.Prop("font", "Body")
	sizeRaw := ParseRawLengthStr(s.Prop("size", ""))
	fontSize := sizeRaw.ToMM()
	if fontSize <= 0 {
		fontSize = defaultFontSize
		sizeRaw = Length{Value: 12, Unit: UnitPT}
	}
	lhSpec, ok := ParseLineHeight(s.Prop("line-height", ""))
	if !ok {
		lhSpec = DefaultLineHeight
	}
	lineHeight := lhSpec.ResolveMM(fontSize)

	fontName, fontRes, err := st.font(fontName)
	if err != nil {
		return TextBox{}, err
	}
	wrap := normalizeWrap(s.Prop("wrap", ""))
	lines, err := layoutLines(content, width, fontRes, fontSize, lineHeight, st.typesetter, wrap)
	if err != nil {
		return TextBox{}, err
	}

	totalHeight := 0.0
	defaultLeading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}

	tb := TextBox{
		Content:    content,
		Width:      width,
		LineHeight: lineHeight,
		Font:       fontName,
		FontSize:   fontSize,
		Color:      resolveColor(s.Prop("color", "")),
		Lines:      lines,
		Height:     totalHeight,
		Align:      normalizeAlign(s.Prop("align", "")),
		Wrap:       wrap,
	}
	if st.debug.RawUnits {
		tb.Debug = &TextBoxDebug{
			Style: s.Name,
			RawUnits: &RawUnits{
				FontSize:   &RawLengthJSON{Value: sizeRaw.Value, Unit: UnitToString(sizeRaw.Unit)},
				LineHeight: lhSpec.JSON(),
			},
		}
	}
	return tb, nil
}

// font 按名称查找字体，未定义时退回 Body，再退回名称排序最前的字体。返回实际使用的名称。
func (st *buildState) font(name string) (string, FontResource, error) {
	if font, ok := st.fonts[name]; ok {
		return name, font, nil
	}
	if font, ok := st.fonts["Body"]; ok {
		return "Body", font, nil
	}
	names := make([]string, 0, len(st.fonts))
	for n := range st.fonts {
		names = append(names, n)
	}
	if len(names) == 0 {
		return "", FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
	}
	sort.Strings(names)
	return names[0], st.fonts[names[0]], nil
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		height := fontSize
		if height <= 0 {
			height = lineHeight
		}
		lines = []TextLine{{Content: "", Width: width, Height: height}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}

func resolveColor(value string) Color {
	if c, err := parseColor(value); err == nil {
		return c
	}
	return defaultTextColor
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return hexColor(r, g, b)
	case 6, 8:
		return hexColor(value[0:2], value[2:4], value[4:6])
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func hexColor(r, g, b string) (Color, error) {
	var out [3]int
	for i, s := range []string{r, g, b} {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 #%s%s%s 无法解析", r, g, b)
		}
		out[i] = int(v)
	}
	return Color{R: out[0], G: out[1], B: out[2]}, nil
}
