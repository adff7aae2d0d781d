package logging

import (
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Level
		ok       bool
	}{
		{
			name:     "Debug",
			input:    "debug",
			expected: LevelDebug,
			ok:       true,
		},
		{
			name:     "Info",
			input:    "info",
			expected: LevelInfo,
			ok:       true,
		},
		{
			name:     "Warn",
			input:    "warn",
			expected: LevelWarn,
			ok:       true,
		},
		{
			name:     "Error",
			input:    "error",
			expected: LevelError,
			ok:       true,
		},
		{
			name:     "Case insensitive",
			input:    "DEBUG",
			expected: LevelDebug,
			ok:       true,
		},
		{
			name:     "Warning alias",
			input:    "warning",
			expected: LevelWarn,
			ok:       true,
		},
		{
			name:     "Surrounding whitespace",
			input:    "  error  ",
			expected: LevelError,
			ok:       true,
		},
		{
			name:     "Unknown falls back to info",
			input:    "verbose",
			expected: LevelInfo,
			ok:       false,
		},
		{
			name:     "Empty falls back to info",
			input:    "",
			expected: LevelInfo,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	original := GetLevel()
	defer SetLevel(original)

	SetLevel(LevelError)
	if got := GetLevel(); got != LevelError {
		t.Errorf("GetLevel() after SetLevel(LevelError) = %v, want %v", got, LevelError)
	}
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at error level")
	}

	SetLevel(LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false at debug level")
	}
}

func TestLevelConstants(t *testing.T) {
	// Verify log level ordering
	levels := []Level{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
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
			name: "Debug with args doesn't panic",
			fn:   func() { Debug("test %s %d", "message", 123) },
		},
		{
			name: "Printf doesn't panic",
			fn:   func() { Printf("test %s %d", "message", 123) },
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

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("Level.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
