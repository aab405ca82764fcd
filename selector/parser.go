// Package selector 实现资源数据的子集选择表达式。
//
// 语法示例：
//
//	sales.q1              映射字段
//	rows[0]               序列下标（支持负数，从末尾计）
//	rows[1:3]             序列切片
//	series[*].values      通配后对每个元素继续取值
//	meta{title, author}   字段投影
//	."2024".total         带引号的字段名
package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ErrSyntax  = errors.New("选择表达式语法错误")
	ErrNoMatch = errors.New("选择表达式没有匹配")
)

var (
	selectorLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Int", Pattern: `-?\d+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][.*:,{}]`},
	})

	selectorParser = participle.MustBuild[Selector](
		participle.Lexer(selectorLexer),
		participle.Elide("Whitespace"),
	)
)

// Selector 是选择表达式的 AST 根节点。
type Selector struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Head    *Field         `parser:"@@?"`
	Tail    []*Accessor    `parser:"@@*"`
	Project *Projection    `parser:"@@?"`

	source string
}

// Accessor 是路径中的一步：`.field` 或 `[index]`。
type Accessor struct {
	Field *Field `parser:"  '.' @@"`
	Index *Index `parser:"| '[' @@ ']'"`
}

// Field 是字段名或通配符 `*`。
type Field struct {
	Wildcard bool           `parser:"  @'*'"`
	Name     string         `parser:"| @Ident"`
	Quoted   *StringLiteral `parser:"| @String"`
}

// Key 返回字段名（已去除引号）。
func (f *Field) Key() string {
	if f.Quoted != nil {
		return string(*f.Quoted)
	}
	return f.Name
}

// Index 是 `[*]`、`[n]` 或 `[from:to]`。
type Index struct {
	Wildcard bool   `parser:"  @'*'"`
	Range    *Range `parser:"| @@"`
}

// Range 同时表示单个下标与切片：Colon 为 false 时只使用 From。
type Range struct {
	From  *int `parser:"@Int?"`
	Colon bool `parser:"@':'?"`
	To    *int `parser:"@Int?"`
}

// Projection 是 `{a, b}` 字段投影。
type Projection struct {
	Fields []*Field `parser:"'{' @@ ( ',' @@ )* '}'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse 解析选择表达式。
func Parse(expr string) (*Selector, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: 表达式为空", ErrSyntax)
	}
	sel, err := selectorParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, expr, err)
	}
	if err := sel.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, expr, err)
	}
	sel.source = expr
	return sel, nil
}

// MustParse 与 Parse 相同，解析失败时 panic，仅用于常量表达式。
func MustParse(expr string) *Selector {
	sel, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return sel
}

// String 返回原始表达式。
func (s *Selector) String() string { return s.source }

func (s *Selector) validate() error {
	if s.Head == nil && len(s.Tail) == 0 && s.Project == nil {
		return fmt.Errorf("表达式为空")
	}
	for _, acc := range s.Tail {
		if acc.Index == nil || acc.Index.Wildcard {
			continue
		}
		r := acc.Index.Range
		if r == nil || (!r.Colon && r.From == nil) {
			return fmt.Errorf("下标不能为空")
		}
		if !r.Colon && r.To != nil {
			return fmt.Errorf("下标之间缺少 ':'")
		}
	}
	if s.Project != nil {
		for _, f := range s.Project.Fields {
			if f.Wildcard {
				return fmt.Errorf("投影中不允许使用 *")
			}
		}
	}
	return nil
}
