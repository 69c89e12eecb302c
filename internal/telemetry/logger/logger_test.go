package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level, format string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: format, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	for _, cfg := range []Config{
		{},
		{Level: "debug", Format: "text"},
		{Level: "info", Format: "console"},
	} {
		l, err := New(cfg)
		if err != nil || l == nil {
			t.Fatalf("New(%+v) = %v, %v", cfg, l, err)
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBufferLogger(t, "debug", "json")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("validation failed", "status", 403)

			entry := decodeEntry(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["msg"] != "validation failed" {
				t.Errorf("msg = %v", entry["msg"])
			}
			if entry["status"] != float64(403) {
				t.Errorf("status = %v", entry["status"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.With("component", "gate").Info("listening")

	if entry := decodeEntry(t, buf); entry["component"] != "gate" {
		t.Errorf("component = %v, want gate", entry["component"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn", "json")

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() > 0 {
		t.Error("Debug/Info messages should be filtered when level is warn")
	}

	l.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("Warn message should be logged")
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "error", "json")

	l.Info("before")
	if buf.Len() > 0 {
		t.Error("Info should be filtered at error level")
	}

	SetLevel("debug")
	l.Info("after")
	if buf.Len() == 0 {
		t.Error("Info should be logged after level changed to debug")
	}
	if level := GetLevel(); level != "debug" {
		t.Errorf("GetLevel() = %q, want %q", level, "debug")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"DEBUG", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"ERROR", "error"},
		{"invalid", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			SetLevel(tt.input)
			if got := GetLevel(); got != tt.expected {
				t.Errorf("SetLevel(%q); GetLevel() = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogger_RedactsThroughHandler(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	token := strings.Repeat("ab", 32)
	l.Info("request rejected",
		"pta", token,
		"key_primary", "000102030405060708090a0b0c0d0e0f",
		"value", token,
		"path", "/videos/abc123",
	)

	out := buf.String()
	if strings.Contains(out, token) || strings.Contains(out, "000102030405060708090a0b0c0d0e0f") {
		t.Errorf("secret leaked into log: %s", out)
	}
	if entry := decodeEntry(t, buf); entry["path"] != "/videos/abc123" {
		t.Errorf("path = %v, want it untouched", entry["path"])
	}
}

func TestSetDefault_SetsSlogDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l, buf := newBufferLogger(t, "info", "json")
	SetDefault(l)

	slog.Info("from slog", "pta", strings.Repeat("0", 32))
	if buf.Len() == 0 {
		t.Fatal("slog.Default() should write through the configured logger")
	}
	if decodeEntry(t, buf)["pta"] != redactedValue {
		t.Error("slog.Default() output should be redacted")
	}
	if Slog(l) != slog.Default() {
		t.Error("Slog() should return the handler-backed logger")
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() should reject an unknown format")
	}
}

func TestLogger_WithContext(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "json")

	l.WithContext(context.Background()).Info("test message")
	if buf.Len() == 0 {
		t.Error("Expected log output")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	l, buf := newBufferLogger(t, "info", "text")

	l.Info("test message", "component", "gate")

	output := buf.String()
	if !strings.Contains(output, "test message") || !strings.Contains(output, "component=gate") {
		t.Errorf("unexpected text output: %s", output)
	}
}
