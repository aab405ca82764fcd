package layout

// BuildOptions 配置布局阶段所需的依赖与页面参数。
type BuildOptions struct {
	Typesetter Typesetter
	Page       PageOptions
	// Fonts 为空时使用 DefaultFonts()。
	Fonts map[string]FontResource
	Meta  DocumentMeta
	// BlockSpacing 是相邻块之间的纵向间距（长度字符串），默认 3mm。
	BlockSpacing string
	// ListIndent 是列表项相对标记的缩进，默认 6mm。
	ListIndent string
	Debug      DebugOptions
}

// PageOptions 描述纸张与边距。
type PageOptions struct {
	Size        string // A4、A5、Letter 或 "210mm 297mm"
	Orientation string // portrait | landscape
	Margin      string // 1~4 个长度，语义同 CSS
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// DefaultFonts 返回与内置样式表配套的字体定义（对应 fonts 包中的内置字体）。
func DefaultFonts() map[string]FontResource {
	return map[string]FontResource{
		"Body":       {Name: "Body", Src: "embed:regular", Family: "LatinModern", Style: "regular"},
		"Bold":       {Name: "Bold", Src: "embed:bold", Family: "LatinModern", Style: "bold"},
		"Italic":     {Name: "Italic", Src: "embed:italic", Family: "LatinModern", Style: "italic"},
		"BoldItalic": {Name: "BoldItalic", Src: "embed:bolditalic", Family: "LatinModern", Style: "bold italic"},
		"Mono":       {Name: "Mono", Src: "embed:mono", Family: "LatinModernMono", Style: "regular"},
	}
}
