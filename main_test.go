package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/engine"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
)

func TestRunExample(t *testing.T) {
	cfg, err := config.Load(filepath.Join("examples", "quire.yaml"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	dir := t.TempDir()
	cfg.DebugJSON = filepath.Join(dir, "debug", "layout.json")
	output := filepath.Join(dir, "out", "report.pdf")

	out, err := run(filepath.Join("examples", "report.yaml"), output, cfg, zap.NewNop(), canvasrenderer.NewRenderer("examples"))
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("示例文档不应产生警告: %v", out.Warnings)
	}
	var names []string
	for _, a := range out.Anchors {
		names = append(names, a.Name)
	}
	if diff := cmp.Diff([]string{"overview", "trend"}, names); diff != "" {
		t.Fatalf("锚点不符 (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("读取 PDF 失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("输出不是 PDF")
	}
	debug, err := os.ReadFile(cfg.DebugJSON)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}
	if !strings.Contains(string(debug), "Quarterly Report 2024") {
		t.Fatalf("调试 JSON 中缺少展开后的标题")
	}
}

func TestPluginsCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"plugins"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("执行 plugins 失败: %v", err)
	}
	got := strings.Fields(buf.String())
	want := []string{"anchor", "chart", "group", "include", "list", "pagebreak", "resource", "spacer", "text", "toc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("插件列表不符 (-want +got):\n%s", diff)
	}
}

func TestBuildCommandRequiresInput(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"build"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("缺少输入文件时应报错")
	}
}

func TestDocumentMeta(t *testing.T) {
	out := &engine.Output{
		BuildID: "b-1",
		Info:    map[string]any{"title": "T", "keywords": "a, b,", "subject": 3},
	}
	cfg := &config.Config{Meta: config.MetaConfig{Author: "fallback", Creator: "quire"}}
	meta := documentMeta(out, cfg)
	if meta.Title != "T" || meta.Subject != "3" || meta.Author != "fallback" || meta.BuildID != "b-1" {
		t.Fatalf("元信息不符: %+v", meta)
	}
	if diff := cmp.Diff([]string{"a", "b"}, meta.Keywords); diff != "" {
		t.Fatalf("关键词不符 (-want +got):\n%s", diff)
	}
}

func TestLayoutFontsOverride(t *testing.T) {
	cfg := &config.Config{
		FallbackFont: "embed:mono",
		Fonts: map[string]config.FontConfig{
			"Body":  {Src: "fonts/body.ttf"},
			"Extra": {Style: "bold"},
		},
	}
	fonts := layoutFonts(cfg)
	if fonts["Body"].Src != "fonts/body.ttf" || fonts["Body"].Family != "LatinModern" {
		t.Fatalf("Body 覆盖错误: %+v", fonts["Body"])
	}
	if fonts["Extra"].Src != "embed:mono" || fonts["Extra"].Style != "bold" {
		t.Fatalf("新增字体应使用 fallback_font: %+v", fonts["Extra"])
	}
	if _, ok := fonts["Mono"]; !ok {
		t.Fatalf("内置字体应保留")
	}
}
