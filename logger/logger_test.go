package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	log, err := New("debug")
	if err != nil {
		t.Fatalf("New(debug) 失败: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug 级别应启用调试日志")
	}

	log, err = New("")
	if err != nil {
		t.Fatalf("New(\"\") 失败: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) || !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("默认级别应为 info")
	}

	if _, err := New("loud"); err == nil {
		t.Fatalf("未知级别应报错")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":       zapcore.InfoLevel,
		"WARN":   zapcore.WarnLevel,
		" error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v；期望 %v", in, got, err, want)
		}
	}
}
