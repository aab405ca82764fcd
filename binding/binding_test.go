package binding

import "testing"

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"user":  map[string]any{"name": "Ada"},
		"tags":  []any{"a", "b"},
		"count": 3,
		"meta":  map[string]any{"title": "Q", "year": 2024},
	}
	cases := map[string]string{
		"Hello, ${user.name}!":        "Hello, Ada!",
		"${tags}":                     "a, b",
		"${tags[1]} x ${count}":       "b x 3",
		"${missing}":                  "${missing}",
		"${ user.name }":              "Ada",
		"no macros here":              "no macros here",
		"${ }":                        "${ }",
		"data/${user.name}/file.yaml": "data/Ada/file.yaml",
		"${meta{title}}":              "map[title:Q]",
		"${meta{title} ${count}":      "${meta{title} ${count}",
		"${count}}":                   "3}",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q，期望 %q", in, got, want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("a ${b}", nil); got != "a ${b}" {
		t.Fatalf("数据为 nil 时结果不符: %q", got)
	}
}
