package selector_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/quire/selector"
)

func sampleData() map[string]any {
	return map[string]any{
		"meta": map[string]any{"title": "Q report", "author": "ops", "draft": true},
		"rows": []any{10, 20, 30, 40},
		"series": []any{
			map[string]any{"name": "a", "values": []any{1, 2}},
			map[string]any{"name": "b", "values": []any{3, 4}},
		},
		"2024": map[string]any{"total": 99},
	}
}

func TestSelectExpressions(t *testing.T) {
	cases := []struct {
		expr string
		want any
	}{
		{"meta.title", "Q report"},
		{"rows[0]", 10},
		{"rows[-1]", 40},
		{"rows[1:3]", []any{20, 30}},
		{"rows[:2]", []any{10, 20}},
		{"rows[2:]", []any{30, 40}},
		{"series[*].name", []any{"a", "b"}},
		{"series[*].values[0]", []any{1, 3}},
		{"meta{title, author}", map[string]any{"title": "Q report", "author": "ops"}},
		{`"2024".total`, 99},
		{"series[1]{name}", map[string]any{"name": "b"}},
		{"{meta}", map[string]any{"meta": sampleData()["meta"]}},
	}
	for _, tc := range cases {
		got, err := selector.Select(sampleData(), tc.expr)
		if err != nil {
			t.Fatalf("%s: 出错: %v", tc.expr, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: 结果不符 (-want +got):\n%s", tc.expr, diff)
		}
	}
}

func TestSyntaxErrors(t *testing.T) {
	for _, expr := range []string{"", "rows[", "rows[]", "meta{*}", "a..b", "rows[1:2:3]", "rows[1 2]", "rows[0 -1]"} {
		if _, err := selector.Parse(expr); !errors.Is(err, selector.ErrSyntax) {
			t.Fatalf("%q: 期望 ErrSyntax，实际 %v", expr, err)
		}
	}
}

func TestNoMatch(t *testing.T) {
	for _, expr := range []string{"missing", "rows[9]", "meta.title.x", "rows.name"} {
		if _, err := selector.Select(sampleData(), expr); !errors.Is(err, selector.ErrNoMatch) {
			t.Fatalf("%q: 期望 ErrNoMatch，实际 %v", expr, err)
		}
	}
}

func TestSliceDoesNotAlias(t *testing.T) {
	data := sampleData()
	got, err := selector.Select(data, "rows[0:2]")
	if err != nil {
		t.Fatal(err)
	}
	got.([]any)[0] = "changed"
	if data["rows"].([]any)[0] != 10 {
		t.Fatalf("切片结果不应与源数据共享底层数组")
	}
}
