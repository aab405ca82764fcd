// Package style 提供按名称查找的样式表，支持 extends 继承。
package style

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
)

// DefaultStyle 是插件未指定样式时使用的样式名。
const DefaultStyle = "BodyText"

var (
	ErrStyleCycle     = errors.New("style 继承存在循环")
	ErrUndefinedStyle = errors.New("style 未定义")
)

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// Prop 返回样式属性，缺失时返回 def。
func (s Style) Prop(key, def string) string {
	if v, ok := s.Props[key]; ok && v != "" {
		return v
	}
	return def
}

// Sheet 是已解析继承关系的样式表，另带若干全局参数（例如列表项间距）。
type Sheet struct {
	raw      map[string]Style
	resolved map[string]Style
	params   map[string]string
}

// Raw 是样式表的外部编码形态。
type Raw struct {
	Params map[string]any            `yaml:"params" mapstructure:"params"`
	Styles map[string]map[string]any `yaml:"styles" mapstructure:"styles"`
}

// NewSheet 解析 extends 继承链并构造样式表。
func NewSheet(styles []Style, params map[string]string) (*Sheet, error) {
	raw := make(map[string]Style, len(styles))
	for _, st := range styles {
		if st.Name == "" {
			continue
		}
		raw[st.Name] = st
	}
	resolved, err := resolveStyles(raw)
	if err != nil {
		return nil, err
	}
	p := make(map[string]string, len(params))
	for k, v := range params {
		p[k] = v
	}
	return &Sheet{raw: raw, resolved: resolved, params: p}, nil
}

// Default 返回内置样式表。
func Default() *Sheet {
	sheet, err := NewSheet(defaultStyles(), map[string]string{
		"itemsInterSpace": "1.5mm",
		"listIndent":      "6mm",
		"blockSpacing":    "3mm",
	})
	if err != nil {
		panic(fmt.Sprintf("内置样式表无效: %v", err))
	}
	return sheet
}

func defaultStyles() []Style {
	return []Style{
		{Name: "BodyText", Props: map[string]string{"font": "Body", "size": "10pt", "line-height": "1.4x", "color": "#1e1e1e"}},
		{Name: "Title", Extends: "BodyText", Props: map[string]string{"font": "Bold", "size": "22pt", "align": "center"}},
		{Name: "Heading1", Extends: "BodyText", Props: map[string]string{"font": "Bold", "size": "16pt"}},
		{Name: "Heading2", Extends: "Heading1", Props: map[string]string{"size": "13pt"}},
		{Name: "Italic", Extends: "BodyText", Props: map[string]string{"font": "Italic"}},
		{Name: "Code", Extends: "BodyText", Props: map[string]string{"font": "Mono", "size": "9pt"}},
		{Name: "TOCEntry", Extends: "BodyText", Props: map[string]string{"color": "#0f62fe"}},
	}
}

// With 返回一个新样式表：raw 中的样式与参数覆盖当前样式表中的同名项。
func (s *Sheet) With(raw Raw) (*Sheet, error) {
	styles := make([]Style, 0, len(s.raw)+len(raw.Styles))
	for name, st := range s.raw {
		if _, overridden := raw.Styles[name]; overridden {
			continue
		}
		styles = append(styles, st)
	}
	for name, props := range raw.Styles {
		styles = append(styles, fromProps(name, props))
	}
	params := make(map[string]string, len(s.params)+len(raw.Params))
	for k, v := range s.params {
		params[k] = v
	}
	for k, v := range raw.Params {
		params[k] = fmt.Sprint(v)
	}
	return NewSheet(styles, params)
}

// Parse 解析 YAML 编码的样式表，并覆盖到内置样式表之上。
func Parse(data []byte) (*Sheet, error) {
	var raw Raw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析样式表失败: %w", err)
	}
	return Default().With(raw)
}

// Load 读取样式表文件。
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取样式表 %s 失败: %w", path, err)
	}
	return Parse(data)
}

// Lookup 按名称查找已解析继承关系的样式。
func (s *Sheet) Lookup(name string) (Style, bool) {
	if s == nil {
		return Style{}, false
	}
	st, ok := s.resolved[name]
	return st, ok
}

// Param 返回样式表参数，缺失时返回 def。
func (s *Sheet) Param(name, def string) string {
	if s == nil {
		return def
	}
	if v, ok := s.params[name]; ok && v != "" {
		return v
	}
	return def
}

// Names 返回全部样式名（已排序）。
func (s *Sheet) Names() []string {
	out := make([]string, 0, len(s.resolved))
	for name := range s.resolved {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func fromProps(name string, props map[string]any) Style {
	st := Style{Name: name, Props: map[string]string{}}
	for k, v := range props {
		if k == "extends" {
			st.Extends = fmt.Sprint(v)
			continue
		}
		st.Props[k] = fmt.Sprint(v)
	}
	return st
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("%w: %s", ErrUndefinedStyle, name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("%w: %s", ErrStyleCycle, name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}
