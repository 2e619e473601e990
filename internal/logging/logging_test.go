package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevelConstants(t *testing.T) {
	// Verify log level ordering
	if LevelDebug >= LevelInfo {
		t.Error("LevelDebug should be less than LevelInfo")
	}
	if LevelInfo >= LevelWarn {
		t.Error("LevelInfo should be less than LevelWarn")
	}
	if LevelWarn >= LevelError {
		t.Error("LevelWarn should be less than LevelError")
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsDebugEnabled(t *testing.T) {
	// Test that IsDebugEnabled agrees with the resolved level
	if IsDebugEnabled() != (GetLevel() <= LevelDebug) {
		t.Error("IsDebugEnabled disagrees with GetLevel")
	}
}

// TestLoggingFunctions tests that logging functions don't panic
func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{
			name: "Debug doesn't panic",
			fn:   func() { Debug("test message") },
		},
		{
			name: "Info doesn't panic",
			fn:   func() { Info("test message") },
		},
		{
			name: "Warn doesn't panic",
			fn:   func() { Warn("test message") },
		},
		{
			name: "Error doesn't panic",
			fn:   func() { Error("test message") },
		},
		{
			name: "Info with args doesn't panic",
			fn:   func() { Info("test %s %d", "message", 123) },
		},
		{
			name: "Request with addr doesn't panic",
			fn:   func() { Request("10.0.0.1", "event %s", "arrived") },
		},
		{
			name: "Request without addr doesn't panic",
			fn:   func() { Request("", "event %s", "arrived") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Function panicked: %v", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")

	if err := SetFileSink(path); err != nil {
		t.Fatalf("Expected file sink to open, got %v", err)
	}
	defer CloseFileSink()

	Info("sink check %d", 42)
	CloseFileSink()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to exist, got %v", err)
	}
	if !strings.Contains(string(data), "sink check 42") {
		t.Errorf("Expected log file to contain the message, got %q", string(data))
	}
}

func TestFileSinkBadPath(t *testing.T) {
	if err := SetFileSink(filepath.Join(t.TempDir(), "missing", "relay.log")); err == nil {
		t.Error("Expected error for unwritable sink path")
	}
}
