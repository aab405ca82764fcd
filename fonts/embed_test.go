package fonts

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadBuiltin(t *testing.T) {
	for _, name := range []string{"regular", "embed:bold", "embed:Italic", "bolditalic", "mono"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q) 失败: %v", name, err)
		}
		if len(data) < 4 {
			t.Fatalf("Load(%q) 返回的数据过短", name)
		}
	}
	if _, err := Load("embed:Inter/static/Inter-Regular.ttf"); err == nil {
		t.Fatalf("未知字体应报错")
	}
	want := []string{"bold", "bolditalic", "italic", "mono", "regular"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Fatalf("字体列表不符 (-want +got):\n%s", diff)
	}
}
