package util

import (
	"strings"
	"time"
)

// TrimAndLower trims whitespace and converts to lowercase
func TrimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TrimEmptyCheck trims whitespace and checks if non-empty
func TrimEmptyCheck(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

// TrimWithDefault trims whitespace and returns default if empty
func TrimWithDefault(s, defaultValue string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return defaultValue
	}
	return trimmed
}

// ParseDurationOr parses s as a duration, falling back to def when s is
// empty or malformed.
func ParseDurationOr(s string, def time.Duration) time.Duration {
	if v, ok := TrimEmptyCheck(s); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
