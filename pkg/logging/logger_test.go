package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		enable  slog.Level
		disable slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"warn level", "warn", slog.LevelWarn, slog.LevelInfo},
		{"upper case error", "ERROR", slog.LevelError, slog.LevelWarn},
		{"default info", "", slog.LevelInfo, slog.LevelDebug},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
			if logger.Enabled(ctx, tt.disable) {
				t.Fatalf("expected level %s to be disabled", tt.disable)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	logger := Default()
	logger.Info("test message", "key", "value")

	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("Default() should enable info level")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("Default() should not enable debug level")
	}

	if Default() == logger {
		t.Error("Default() returned the same instance twice")
	}
}

func TestNewWithOptionsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOptions(Options{Level: "info", Output: &buf})
	logger.Info("booking confirmed", "doctor_id", "dr-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "booking confirmed" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	if entry["doctor_id"] != "dr-1" {
		t.Fatalf("unexpected doctor_id %v", entry["doctor_id"])
	}
}

func TestNewWithOptionsTextAndWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOptions(Options{Format: "text", Output: &buf}).With("component", "web")
	logger.Warn("slow render")

	out := buf.String()
	if !strings.Contains(out, "component=web") {
		t.Fatalf("expected child attribute in %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Fatalf("expected text handler output, got %q", out)
	}
}
