package app

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_Format(t *testing.T) {
	t.Parallel()

	var jsonBuf, textBuf strings.Builder
	newLogger(&jsonBuf, "info", "json").Info("server.start", "addr", ":8000")
	newLogger(&textBuf, "info", "text").Info("server.start", "addr", ":8000")
	newLogger(&textBuf, "warn", "text").Info("dropped")

	if !strings.HasPrefix(jsonBuf.String(), "{") || !strings.Contains(jsonBuf.String(), `"source"`) {
		t.Fatalf("expected JSON with source, got %q", jsonBuf.String())
	}
	if !strings.Contains(textBuf.String(), "msg=server.start") {
		t.Fatalf("expected text output, got %q", textBuf.String())
	}
	if strings.Contains(textBuf.String(), "dropped") {
		t.Fatalf("info line should be filtered at warn level")
	}
}
