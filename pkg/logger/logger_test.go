package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"DEBUG", zapcore.DebugLevel},
		{"TRACE", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"FATAL", zapcore.FatalLevel},
		{"", zapcore.InfoLevel},
		{"garbage", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlatformLogPathsNonEmpty(t *testing.T) {
	paths := PlatformLogPaths()
	if len(paths) == 0 {
		t.Fatal("expected at least one candidate log path")
	}
	for _, p := range paths {
		if !strings.Contains(p, "hermes") {
			t.Errorf("log path %q should live under a hermes directory", p)
		}
	}
}

func TestEnsureLogPermissions(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/hermes.log"

	if err := EnsureLogPermissions(path); err != nil {
		t.Fatalf("EnsureLogPermissions: %v", err)
	}

	// second call on existing file is fine
	if err := EnsureLogPermissions(path); err != nil {
		t.Fatalf("EnsureLogPermissions (repeat): %v", err)
	}
}

func TestGenerateTraceID(t *testing.T) {
	t.Parallel()

	a := GenerateTraceID()
	b := GenerateTraceID()
	if len(a) != 8 || len(b) != 8 {
		t.Errorf("trace IDs should be 8 chars, got %q and %q", a, b)
	}
	if a == b {
		t.Error("trace IDs should differ between calls")
	}
}

func TestFallbackLoggerAvailable(t *testing.T) {
	l := NewFallbackLogger()
	if l == nil {
		t.Fatal("fallback logger must never be nil")
	}
	l.Debug("fallback logger smoke test")
}
