package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"dubsmart/internal/services"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPrettyHandlerComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	NewComponentLogger(logger, "mixer").Info("overlay complete", Int("segments", 3))

	line := buf.String()
	if !strings.Contains(line, "mixer: overlay complete") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "segments=3") {
		t.Fatalf("expected attribute rendering, got %q", line)
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	ctx := services.WithJobID(context.Background(), 42)
	ctx = services.WithStage(ctx, "translate")

	WithContext(ctx, logger).Info("stage started")

	line := buf.String()
	if !strings.Contains(line, "job_id=42") {
		t.Fatalf("expected job_id field, got %q", line)
	}
	if !strings.Contains(line, "stage=translate") {
		t.Fatalf("expected stage field, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestProgressSampler(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(0, "Synthesizing") {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(3, "Synthesizing") {
		t.Fatal("same bucket should not log")
	}
	if !s.ShouldLog(25, "Synthesizing") {
		t.Fatal("new bucket should log")
	}
	if !s.ShouldLog(25, "Mixing") {
		t.Fatal("stage change should log")
	}
	s.Reset()
	if !s.ShouldLog(0, "Synthesizing") {
		t.Fatal("reset should allow logging again")
	}
}
