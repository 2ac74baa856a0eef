package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/frankli0324/go-hass/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewWriter_JSONDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3")

	logger.With("component", "api").Info("request", "status", 200)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v: %s", err, buf.String())
	}
	if entry["service"] != "hassctl" || entry["version"] != "1.2.3" {
		t.Errorf("default fields missing: %v", entry)
	}
	if entry["component"] != "api" || entry["msg"] != "request" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, config.LoggingConfig{Level: "warn", Format: "text"}, "dev")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestDefault(t *testing.T) {
	if Default() == nil {
		t.Fatal("expected non-nil logger")
	}
}
