// Package element 定义插件 process 阶段产出的可渲染元素。
//
// 流水线本身不解释元素内部结构，只负责按文档顺序拼接，并在需要时用 Group 包裹，
// 使渲染后端不会把一组元素拆到两页上。
package element

import "github.com/ByLCY/quire/style"

// Element 是不透明的可渲染单元。
type Element interface {
	Kind() string
}

// Group 中的元素在渲染时保持在同一页（KeepTogether）。
type Group struct {
	Elements []Element
}

// Bookmark 是命名书签标记，自身不占用版面高度。
type Bookmark struct {
	Name  string
	Label string
}

// Paragraph 是一段带样式的文本。
type Paragraph struct {
	Text  string
	Style style.Style
}

// List 是有序或无序列表。Items 中的每一项都是一组元素。
type List struct {
	Numbered  bool
	Start     int
	ItemSpace string
	Style     style.Style
	Items     [][]Element
}

// Spacer 是纵向留白，Height 为长度字符串（例如 "5mm"）。
type Spacer struct {
	Height string
}

// PageBreak 强制换页。
type PageBreak struct{}

// Chart 描述一个图表。Width/Height 单位为毫米，Width 为 0 表示占满当前版心宽度。
type Chart struct {
	Mode            string
	Width           float64
	Height          float64
	Series          [][]float64
	Points          [][][2]float64
	Categories      []string
	XSteps          []float64
	LineColors      []string
	LineWidths      []float64
	LabelAngles     []float64
	LabelXOffsets   []float64
	LabelYOffsets   []float64
	BackgroundColor string
	BorderColor     string
	LineLabelFormat string
	YAxisMin        *float64
	YAxisMax        *float64
	YAxisStep       *float64
}

func (Group) Kind() string     { return "group" }
func (Bookmark) Kind() string  { return "bookmark" }
func (Paragraph) Kind() string { return "paragraph" }
func (List) Kind() string      { return "list" }
func (Spacer) Kind() string    { return "spacer" }
func (PageBreak) Kind() string { return "pagebreak" }
func (Chart) Kind() string     { return "chart" }

// KeepTogether 将元素包装为一个 Group；单个元素或空输入保持原样。
func KeepTogether(elems []Element) []Element {
	if len(elems) <= 1 {
		return elems
	}
	return []Element{Group{Elements: elems}}
}

// Flatten 展开所有 Group，返回按文档顺序排列的原子元素。
func Flatten(elems []Element) []Element {
	var out []Element
	for _, el := range elems {
		if g, ok := el.(Group); ok {
			out = append(out, Flatten(g.Elements)...)
			continue
		}
		out = append(out, el)
	}
	return out
}
