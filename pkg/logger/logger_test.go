package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"Trace level", "TRACE", zerolog.TraceLevel},
		{"Debug level", "DEBUG", zerolog.DebugLevel},
		{"Info level", "INFO", zerolog.InfoLevel},
		{"Warn level", "WARN", zerolog.WarnLevel},
		{"Warning alias", "warning", zerolog.WarnLevel},
		{"Error level", "ERROR", zerolog.ErrorLevel},
		{"Empty defaults to Info", "", zerolog.InfoLevel},
		{"Invalid defaults to Info", "INVALID", zerolog.InfoLevel},
		{"Case insensitive", "debug", zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func captureOutput(t *testing.T, level string, f func()) string {
	t.Helper()

	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Configure(&buf, level, "json")
	f()
	return buf.String()
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		setLevel  string
		logFunc   func(string, string, ...interface{})
		level     string
		shouldLog bool
	}{
		{"Debug logs when Debug", "DEBUG", Debug, "debug", true},
		{"Debug doesn't log when Info", "INFO", Debug, "debug", false},
		{"Trace doesn't log when Debug", "DEBUG", Trace, "trace", false},
		{"Info logs when Info", "INFO", Info, "info", true},
		{"Info doesn't log when Error", "ERROR", Info, "info", false},
		{"Warn logs when Warn", "WARN", Warn, "warn", true},
		{"Error always logs", "ERROR", Error, "error", true},
		{"Error logs when Debug", "DEBUG", Error, "error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(t, tt.setLevel, func() {
				tt.logFunc("TEST", "count: %d", 42)
			})

			output = strings.TrimSpace(output)
			hasOutput := output != ""
			if hasOutput != tt.shouldLog {
				t.Fatalf("Expected log output: %v, got output: %q", tt.shouldLog, output)
			}
			if !tt.shouldLog {
				return
			}

			var entry map[string]interface{}
			if err := json.Unmarshal([]byte(output), &entry); err != nil {
				t.Fatalf("Failed to decode log line %q: %v", output, err)
			}
			if entry["level"] != tt.level {
				t.Errorf("Expected level %q, got %v", tt.level, entry["level"])
			}
			if entry["namespace"] != "TEST" {
				t.Errorf("Expected namespace TEST, got %v", entry["namespace"])
			}
			if entry["message"] != "count: 42" {
				t.Errorf("Expected message %q, got %v", "count: 42", entry["message"])
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	defer func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	Configure(&buf, "INFO", "console")
	Info(APP, "server starting")

	output := buf.String()
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("Expected console output, got JSON: %q", output)
	}
	if !strings.Contains(output, "server starting") {
		t.Errorf("Expected output to contain message, got %q", output)
	}
}
