package logger_i

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

type traceKey string

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARNING", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestNamedAndTrace(t *testing.T) {
	var buf bytes.Buffer
	root := NewWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.WithValue(context.Background(), traceKey("trace"), "abc-123")
	root.Named("docx_reader").WithTrace(ctx, traceKey("trace")).Warn("core properties unreadable", "path", "/tmp/a.docx")

	out := buf.String()
	for _, want := range []string{"component=docx_reader", "traceId=abc-123", "level=WARN", "path=/tmp/a.docx"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Options{Level: slog.LevelWarn, Output: &buf})
	l.Debug("hidden")
	l.Info("hidden too")
	l.Error("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("records below the configured level were written: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("error record missing: %q", buf.String())
	}
}
