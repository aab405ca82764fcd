package layout

// 该文件定义布局结果，供布局计算、渲染与调试 JSON 共用。

// Result 保存布局后的页面、字体与书签信息。
type Result struct {
	Pages     []Page                  `json:"pages"`
	Fonts     map[string]FontResource `json:"fonts"`
	Bookmarks []BookmarkPos           `json:"bookmarks"`
	Meta      DocumentMeta            `json:"meta"`
}

// FontResource 描述字体资源，src 可以是文件路径、embed:<name> 或 built-in:<name> 形式。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style"`
	Family   string `json:"family"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty"`
}

// BookmarkPos 记录书签落在哪一页以及页面内的纵坐标（mm）。
type BookmarkPos struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Page  int     `json:"page"`
	Y     float64 `json:"y"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素（单位：mm）。
type Page struct {
	Number  int       `json:"number"`
	Width   float64   `json:"width"`
	Height  float64   `json:"height"`
	Margin  Margin    `json:"margin"`
	Texts   []TextBox `json:"texts"`
	Lines   []Line    `json:"lines,omitempty"`
	Rects   []Rect    `json:"rects,omitempty"`
	Circles []Circle  `json:"circles,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Content    string        `json:"content"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	LineHeight float64       `json:"lineHeight"`
	Font       string        `json:"font"`
	FontSize   float64       `json:"fontSize"`
	Color      Color         `json:"color"`
	Lines      []TextLine    `json:"lines"`
	Height     float64       `json:"height"`
	Align      string        `json:"align,omitempty"`  // left/center/right（默认 left）
	Wrap       string        `json:"wrap,omitempty"`   // anywhere(默认)/break-word/nowrap
	Rotate     float64       `json:"rotate,omitempty"` // 绕左上角旋转的角度（度）
	Debug      *TextBoxDebug `json:"debug,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// TextBoxDebug holds optional debug info displayed only when enabled by BuildOptions.
type TextBoxDebug struct {
	Style    string    `json:"style,omitempty"`
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize   *RawLengthJSON     `json:"fontSize,omitempty"`
	LineHeight *RawLineHeightJSON `json:"lineHeight,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RawLineHeightJSON is a JSON-friendly representation of LineHeightSpec.
type RawLineHeightJSON struct {
	Kind   string  `json:"kind"` // "factor" | "absolute"
	Factor float64 `json:"factor,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Rect 表示一个矩形（不包含圆角）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`         // mm，<0 表示不描边
	FillColor   *Color  `json:"fillColor,omitempty"` // 为空表示不填充
}

// Circle 表示一个圆。
type Circle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
	BuildID  string   `json:"buildId,omitempty"`
}
