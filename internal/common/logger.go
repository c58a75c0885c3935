package common

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// ParseLogLevel accepts error, warn(ing), info and debug. Empty means info.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogLevelError, true
	case "warn", "warning":
		return LogLevelWarn, true
	case "info", "":
		return LogLevelInfo, true
	case "debug":
		return LogLevelDebug, true
	default:
		return LogLevelInfo, false
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Logger wraps slog.Logger with the request-oriented helpers used across apifetch
type Logger struct {
	*slog.Logger
	level  LogLevel
	masker *Masker
}

func newLogger(h slog.Handler, level LogLevel, m *Masker) *Logger {
	return &Logger{Logger: slog.New(h), level: level, masker: m}
}

// NewLogger creates a text logger writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a text logger writing to w
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	m := NewMasker()
	h := newMaskingHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.ToSlogLevel()}), m)
	return newLogger(h, level, m)
}

// NewJSONLogger creates a structured logger with JSON output
func NewJSONLogger(level LogLevel) *Logger {
	return NewJSONLoggerTo(os.Stderr, level)
}

// NewJSONLoggerTo creates a JSON logger writing to w
func NewJSONLoggerTo(w io.Writer, level LogLevel) *Logger {
	m := NewMasker()
	h := newMaskingHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.ToSlogLevel()}), m)
	return newLogger(h, level, m)
}

// NewColorLogger creates a logger using ColorHandler on stderr
func NewColorLogger(level LogLevel) *Logger {
	h := NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level.ToSlogLevel()})
	return newLogger(h, level, h.masker)
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// EnableMasking toggles masking of sensitive attribute values
func (l *Logger) EnableMasking(enabled bool) {
	if l.masker != nil {
		l.masker.SetEnabled(enabled)
	}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), level: l.level, masker: l.masker}
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithRequest returns a logger with HTTP request context. The URL is masked.
func (l *Logger) WithRequest(method, url string) *Logger {
	if l.masker != nil {
		url = l.masker.MaskURL(url)
	}
	return l.with("method", method, "url", url)
}

// WithRequestID returns a logger tagged with a request correlation id
func (l *Logger) WithRequestID(id string) *Logger {
	return l.with("request_id", id)
}

// WithEndpoint returns a logger with catalog endpoint context
func (l *Logger) WithEndpoint(name string) *Logger {
	return l.with("endpoint", name)
}

var defaultLogger = NewLogger(LogLevelInfo)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}

// LogError logs an error with context
func LogError(msg string, err error, attrs ...any) {
	args := append([]any{"error", err}, attrs...)
	defaultLogger.Error(msg, args...)
}

// LogInfo logs informational message
func LogInfo(msg string, attrs ...any) {
	defaultLogger.Info(msg, attrs...)
}

// LogDebug logs debug message
func LogDebug(msg string, attrs ...any) {
	defaultLogger.Debug(msg, attrs...)
}

// LogWarn logs warning message
func LogWarn(msg string, attrs ...any) {
	defaultLogger.Warn(msg, attrs...)
}
