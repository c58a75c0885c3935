package common

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{"error level", LogLevelError, slog.LevelError},
		{"warn level", LogLevelWarn, slog.LevelWarn},
		{"info level", LogLevelInfo, slog.LevelInfo},
		{"debug level", LogLevelDebug, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.level)
			if logger == nil || logger.Logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if logger.Level().ToSlogLevel() != tt.expected {
				t.Fatalf("expected %v, got %v", tt.expected, logger.Level().ToSlogLevel())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{"": LogLevelInfo, "ERROR": LogLevelError, "warning": LogLevelWarn, " debug ": LogLevelDebug}
	for in, want := range cases {
		got, ok := ParseLogLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLogLevel(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseLogLevel("loud"); ok {
		t.Fatalf("expected invalid level to be rejected")
	}
}

func TestLogger_WithRequestMasksURL(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, LogLevelDebug)

	logger.WithComponent("request-client").
		WithRequest("GET", "https://api.example.com/items?q=milk&api_key=s3cr3t").
		WithRequestID("abc").
		Debug("dispatching request")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON log line: %v (%s)", err, buf.String())
	}
	url, _ := rec["url"].(string)
	if strings.Contains(url, "s3cr3t") {
		t.Fatalf("api key leaked into log: %s", url)
	}
	if !strings.Contains(url, "q=milk") {
		t.Fatalf("non-sensitive query must be kept: %s", url)
	}
	if rec["component"] != "request-client" || rec["request_id"] != "abc" || rec["method"] != "GET" {
		t.Fatalf("missing context attributes: %v", rec)
	}
}

func TestLogger_MaskingCanBeDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelInfo)
	logger.EnableMasking(false)
	logger.Info("header", "authorization", "Bearer abc.def")
	if !strings.Contains(buf.String(), "abc.def") {
		t.Fatalf("expected raw value with masking disabled: %s", buf.String())
	}

	buf.Reset()
	logger.EnableMasking(true)
	logger.Info("header", "authorization", "Bearer abc.def")
	if strings.Contains(buf.String(), "abc.def") {
		t.Fatalf("expected masked value: %s", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestSetDefaultLogger(t *testing.T) {
	orig := GetLogger()
	defer SetDefaultLogger(orig)

	var buf bytes.Buffer
	SetDefaultLogger(NewLoggerTo(&buf, LogLevelDebug))
	LogDebug("debug message", "k", "v")
	LogWarn("warn message")
	if !strings.Contains(buf.String(), "debug message") || !strings.Contains(buf.String(), "warn message") {
		t.Fatalf("default logger not used: %s", buf.String())
	}

	SetDefaultLogger(nil)
	if GetLogger() == nil {
		t.Fatalf("nil must not replace the default logger")
	}
}
