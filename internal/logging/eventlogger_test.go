package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fibs-geotag/mapsync/internal/dispatcher"
	"github.com/rs/zerolog"
)

var _ dispatcher.Logger = (*EventLogger)(nil)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestEventLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	el.Debug("handling event", "command", "drag_end", "count", 42)

	entry := decodeLine(t, &buf)
	if entry["level"] != "debug" {
		t.Errorf("expected level 'debug', got %v", entry["level"])
	}
	if entry["message"] != "handling event" {
		t.Errorf("expected message 'handling event', got %v", entry["message"])
	}
	if entry["command"] != "drag_end" {
		t.Errorf("expected command='drag_end', got %v", entry["command"])
	}
	if entry["count"] != float64(42) { // JSON numbers are float64
		t.Errorf("expected count=42, got %v", entry["count"])
	}
}

func TestEventLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	el.Info("loop started", "status", "ok")

	entry := decodeLine(t, &buf)
	if entry["level"] != "info" {
		t.Errorf("expected level 'info', got %v", entry["level"])
	}
	if entry["status"] != "ok" {
		t.Errorf("expected status='ok', got %v", entry["status"])
	}
}

func TestEventLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	el.Error("event failed", "command", "key", "reason", "internal")

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("expected level 'error', got %v", entry["level"])
	}
	if entry["reason"] != "internal" {
		t.Errorf("expected reason='internal', got %v", entry["reason"])
	}
}

func TestEventLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	el.Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected debug to be filtered, got %q", buf.String())
	}
}

func TestToFields(t *testing.T) {
	fields := toFields([]any{"a", 1, 2, "skipped", "dangling"})

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %v", fields)
	}
	if fields["a"] != 1 {
		t.Errorf("expected a=1, got %v", fields["a"])
	}
}

func TestNewZerolog(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLogger(NewZerolog(&buf, "WARN"))

	el.Info("filtered")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn, got %q", buf.String())
	}

	el.Error("kept")
	entry := decodeLine(t, &buf)
	if _, ok := entry["time"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestNewZerolog_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog(&buf, "chatty")

	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level, got %v", logger.GetLevel())
	}
}
