package block

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDoc = `
info:
  title: Report
content:
  - type: anchor
    name: ch1
    label: Chapter 1
  - type: list
    numbered: true
    content:
      - first
      - - type: text
          text: nested
        - plain
  - type: chart
    data: sales
    width: 12.5
`

func TestParseDocument(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc), "/docs")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if doc.Info["title"] != "Report" {
		t.Fatalf("期望标题为 Report，实际 %v", doc.Info["title"])
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("期望 3 个 block，实际 %d", len(doc.Blocks))
	}
	for _, b := range doc.Blocks {
		if b.Path != "/docs" {
			t.Fatalf("block %s 应继承 _path /docs，实际 %q", b.Type, b.Path)
		}
	}

	list := doc.Blocks[1]
	if !list.Bool("numbered", false) {
		t.Fatalf("numbered 应为 true")
	}
	items, err := list.Items()
	if err != nil {
		t.Fatalf("解析列表项失败: %v", err)
	}
	if len(items) != 2 || !items[0].IsText() || items[0].Text != "first" {
		t.Fatalf("第一个列表项不符: %+v", items)
	}
	if len(items[1].Group) != 2 {
		t.Fatalf("期望包含 2 个 block 的嵌套组，实际 %+v", items[1])
	}
	if items[1].Group[1].Type != "text" || items[1].Group[1].StringOr("text", "") != "plain" {
		t.Fatalf("组内的字符串应转为 text block，实际 %+v", items[1].Group[1])
	}

	again, _ := list.Items()
	if again[1].Group[0] != items[1].Group[0] {
		t.Fatalf("Items 应缓存，两遍遍历看到相同的子 block")
	}

	chart := doc.Blocks[2]
	v, ok := chart.Value("data")
	if !ok || v.Kind() != KindReference || v.Alias() != "sales" {
		t.Fatalf("字符串字段应解码为引用，实际 %v", v)
	}
	w, ok := chart.Float("width")
	if !ok || w != 12.5 {
		t.Fatalf("期望 width 为 12.5，实际 %v", w)
	}
}

func TestParseTopLevelSequence(t *testing.T) {
	doc, err := Parse(strings.NewReader(`[{"type": "text", "text": "hi", "_path": "/else"}]`), "/docs")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Path != "/else" {
		t.Fatalf("显式 _path 应优先，实际 %+v", doc.Blocks)
	}
}

func TestMissingTypeFails(t *testing.T) {
	_, err := Parse(strings.NewReader("- text: no type\n"), ".")
	if !errors.Is(err, ErrMissingType) {
		t.Fatalf("期望 ErrMissingType，实际 %v", err)
	}
}

func TestItemsRejectsScalarContent(t *testing.T) {
	b := New("list", ".", map[string]any{"content": 42})
	if _, err := b.Items(); !errors.Is(err, ErrNotSequence) {
		t.Fatalf("期望 ErrNotSequence，实际 %v", err)
	}
}

func TestValueLiteral(t *testing.T) {
	b := New("chart", ".", map[string]any{"data": []any{1, 2}})
	v, ok := b.Value("data")
	if !ok || v.Kind() != KindLiteral {
		t.Fatalf("期望字面量，实际 %v", v)
	}
	if _, ok := b.Value("missing"); ok {
		t.Fatalf("缺失字段应返回 ok=false")
	}
}

func TestNormalizeNumbers(t *testing.T) {
	got := Normalize(map[any]any{"a": uint64(3), "b": []any{int64(-2), float32(1.5)}}).(map[string]any)
	if got["a"] != 3 {
		t.Fatalf("uint64 应规范化为 int，实际 %T", got["a"])
	}
	seq := got["b"].([]any)
	if seq[0] != -2 || seq[1] != 1.5 {
		t.Fatalf("规范化后的序列不符: %#v", seq)
	}
}

func TestParseFileSetsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte("- type: text\n  text: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("解析文件失败: %v", err)
	}
	if doc.Blocks[0].Path != dir {
		t.Fatalf("期望 _path 为 %s，实际 %s", dir, doc.Blocks[0].Path)
	}
}
