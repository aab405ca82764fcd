// Package binding 实现文本宏展开：将 ${expr} 替换为文档信息中的值。
package binding

import (
	"fmt"
	"strings"

	"github.com/ByLCY/quire/selector"
)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值，path 使用 selector 语法，
// 可以包含 {a, b} 投影。路径不存在或括号不成对时保留原文。
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	var b strings.Builder
	for {
		i := strings.Index(text, "${")
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		end := closingBrace(text, i+2)
		if end < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(expand(text[i:end+1], text[i+2:end], data))
		text = text[end+1:]
	}
}

// closingBrace 返回与 from 之前的 '{' 配对的 '}' 下标，找不到时返回 -1。
func closingBrace(text string, from int) int {
	depth := 1
	for j := from; j < len(text); j++ {
		switch text[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func expand(match, expr string, data any) string {
	expr = strings.TrimSpace(expr)
	if expr == "" || data == nil {
		return match
	}
	val, err := selector.Select(data, expr)
	if err != nil {
		return match
	}
	return format(val)
}

func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, format(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
