package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ulikunitz/xz"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("写入 %s 失败: %v", name, err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	want := map[string]any{
		"title": "Sales",
		"rows":  []any{1, 2, 3},
		"meta":  map[string]any{"ratio": 0.5},
	}
	files := map[string]string{
		"data.yaml": "title: Sales\nrows: [1, 2, 3]\nmeta:\n  ratio: 0.5\n",
		"data.json": `{"title": "Sales", "rows": [1, 2, 3], "meta": {"ratio": 0.5}}`,
		"data.toml": "title = \"Sales\"\nrows = [1, 2, 3]\n[meta]\nratio = 0.5\n",
	}
	l := New()
	for name, content := range files {
		got, err := l.Load(writeFile(t, dir, name, []byte(content)))
		if err != nil {
			t.Fatalf("%s 加载失败: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s 内容不符 (-want +got):\n%s", name, diff)
		}
	}
}

func TestLoadXZ(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("创建 xz writer 失败: %v", err)
	}
	if _, err := w.Write([]byte("series:\n  - [1, 2]\n  - [3, 4]\n")); err != nil {
		t.Fatalf("写入 xz 数据失败: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("关闭 xz writer 失败: %v", err)
	}

	path := writeFile(t, t.TempDir(), "series.yaml.xz", buf.Bytes())
	got, err := New().Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	want := map[string]any{"series": []any{[]any{1, 2}, []any{3, 4}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("内容不符 (-want +got):\n%s", diff)
	}
}

func TestCacheReturnsIndependentCopies(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", []byte("k: v\n"))
	b := writeFile(t, dir, "b.yaml", []byte("k: v\n"))

	l := New()
	first, err := l.Load(a)
	if err != nil {
		t.Fatal(err)
	}
	first.(map[string]any)["k"] = "mutated"

	second, err := l.Load(b)
	if err != nil {
		t.Fatal(err)
	}
	if second.(map[string]any)["k"] != "v" {
		t.Fatalf("缓存值被先前的返回结果修改")
	}
	if hits, misses := l.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("缓存统计不符: hits=%d misses=%d", hits, misses)
	}
}

func TestUnsupportedAndBroken(t *testing.T) {
	dir := t.TempDir()
	if _, err := New().Load(writeFile(t, dir, "notes.txt", []byte("x"))); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("期望 ErrUnsupportedFormat，实际 %v", err)
	}
	if _, err := New().Load(writeFile(t, dir, "bad.json", []byte("{"))); !errors.Is(err, ErrDecode) {
		t.Fatalf("期望 ErrDecode，实际 %v", err)
	}
	if _, err := New().Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("期望文件不存在错误，实际 %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	format, compressed, err := DetectFormat("Data.YML.xz")
	if err != nil || format != FormatYAML || !compressed {
		t.Fatalf("格式识别不符: %s %v %v", format, compressed, err)
	}
}
