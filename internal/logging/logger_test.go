package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	coordDir := filepath.Join(dir, "coordination")

	logger, err := NewLogger(coordDir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	defer logger.Close()

	logger.Info("lock acquired", "path", "src/app.ts")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(coordDir, LogFileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log entry is not valid JSON: %v", err)
	}
	if entry["msg"] != "lock acquired" {
		t.Errorf("msg = %v, want %q", entry["msg"], "lock acquired")
	}
	if entry["path"] != "src/app.ts" {
		t.Errorf("path = %v, want %q", entry["path"], "src/app.ts")
	}
}

func TestNewLoggerAppendsAcrossSessions(t *testing.T) {
	coordDir := t.TempDir()

	for i := 0; i < 2; i++ {
		logger, err := NewLogger(coordDir, LevelInfo)
		if err != nil {
			t.Fatalf("NewLogger() error = %v", err)
		}
		logger.Info("session start")
		if err := logger.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(coordDir, LogFileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Count(strings.TrimSpace(string(data)), "\n") + 1
	if lines != 2 {
		t.Errorf("log file has %d lines, want 2", lines)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	coordDir := t.TempDir()

	logger, err := NewLogger(coordDir, LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(coordDir, LogFileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "debug message") {
		t.Error("DEBUG message should be filtered at WARN level")
	}
	if strings.Contains(content, "info message") {
		t.Error("INFO message should be filtered at WARN level")
	}
	if !strings.Contains(content, "warn message") {
		t.Error("WARN message should be logged at WARN level")
	}
	if !strings.Contains(content, "error message") {
		t.Error("ERROR message should be logged at WARN level")
	}
}

func TestChildLoggersDoNotMutateParent(t *testing.T) {
	logger := NopLogger()

	child := logger.WithHolder("sess-A").WithQueue("graph")
	if len(logger.attrs) != 0 {
		t.Errorf("parent attrs = %d, want 0", len(logger.attrs))
	}
	if len(child.attrs) != 2 {
		t.Errorf("child attrs = %d, want 2", len(child.attrs))
	}

	sibling := logger.WithComponent("recovery")
	if len(sibling.attrs) != 1 {
		t.Errorf("sibling attrs = %d, want 1", len(sibling.attrs))
	}
}

func TestWithIgnoresNonStringKeys(t *testing.T) {
	logger := NopLogger().With("holder", "sess-A", 42, "dropped")

	if len(logger.attrs) != 1 {
		t.Fatalf("attrs = %d, want 1", len(logger.attrs))
	}
	if logger.attrs[0].Key != "holder" {
		t.Errorf("attr key = %q, want %q", logger.attrs[0].Key, "holder")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NopLogger()
	// Must not panic with no file backing.
	logger.Info("discarded", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
