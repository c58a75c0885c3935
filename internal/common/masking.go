package common

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
)

// Masked replaces any sensitive value in log output
const Masked = "***MASKED***"

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string         // Pattern name (e.g., "password", "api_key")
	Regex       *regexp.Regexp // Regular expression to match sensitive data
	Replacement string         // Replacement string
	Keys        []string       // Specific keys to mask (case-insensitive)
}

// DefaultSensitivePatterns covers credentials that commonly leak through
// request URLs, headers and JSON bodies
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)("?(?:password|passwd|pwd)"?\s*[:=]\s*"?)([^"&,}\]\s]+)`),
		Replacement: "${1}" + Masked,
		Keys:        []string{"password", "passwd", "pwd"},
	},
	{
		Name:        "api_key",
		Regex:       regexp.MustCompile(`(?i)("?(?:api[_-]?key|apikey)"?\s*[:=]\s*"?)([^"&,}\]\s]+)`),
		Replacement: "${1}" + Masked,
		Keys:        []string{"api_key", "apikey", "api-key", "x-api-key"},
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)("?(?:access[_-]?token|auth[_-]?token|token)"?\s*[:=]\s*"?)([^"&,}\]\s]+)`),
		Replacement: "${1}" + Masked,
		Keys:        []string{"token", "access_token", "auth_token", "access-token", "auth-token"},
	},
	{
		Name:        "authorization",
		Regex:       regexp.MustCompile(`(?i)(Bearer|Basic)\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "${1} " + Masked,
		Keys:        []string{"authorization", "proxy-authorization"},
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)("?(?:client[_-]?secret|secret)"?\s*[:=]\s*"?)([^"&,}\]\s]+)`),
		Replacement: "${1}" + Masked,
		Keys:        []string{"secret", "client_secret", "client-secret"},
	},
}

// Masker handles masking of sensitive information in logs. It is safe for
// concurrent use; patterns are fixed at construction.
type Masker struct {
	patterns []SensitivePattern
	keys     map[string]struct{}
	enabled  atomic.Bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return NewMaskerWithPatterns(DefaultSensitivePatterns)
}

// NewMaskerWithPatterns creates a new masker with custom patterns
func NewMaskerWithPatterns(patterns []SensitivePattern) *Masker {
	m := &Masker{patterns: patterns, keys: map[string]struct{}{}}
	for _, p := range patterns {
		for _, k := range p.Keys {
			m.keys[strings.ToLower(k)] = struct{}{}
		}
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	return m.enabled.Load()
}

// IsSensitiveKey reports whether key names a credential
func (m *Masker) IsSensitiveKey(key string) bool {
	_, ok := m.keys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	if !m.IsEnabled() {
		return input
	}
	result := input
	for _, p := range m.patterns {
		if p.Regex != nil {
			result = p.Regex.ReplaceAllString(result, p.Replacement)
		}
	}
	return result
}

// MaskURL masks userinfo passwords and the values of sensitive query
// parameters while keeping the rest of the URL readable. Unparsable input
// falls back to MaskString.
func (m *Masker) MaskURL(raw string) string {
	if !m.IsEnabled() || raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return m.MaskString(raw)
	}
	if u.RawQuery != "" {
		parts := strings.Split(u.RawQuery, "&")
		for i, part := range parts {
			key, _, found := strings.Cut(part, "=")
			if !found {
				continue
			}
			if k, err := url.QueryUnescape(key); err == nil && m.IsSensitiveKey(k) {
				parts[i] = key + "=" + url.QueryEscape(Masked)
			}
		}
		u.RawQuery = strings.Join(parts, "&")
	}
	return u.Redacted()
}

// MaskValue masks value when key is sensitive, otherwise applies the string patterns
func (m *Masker) MaskValue(key string, value any) any {
	if !m.IsEnabled() {
		return value
	}
	if m.IsSensitiveKey(key) {
		return Masked
	}
	if s, ok := value.(string); ok {
		return m.MaskString(s)
	}
	return value
}

func (m *Masker) maskAttr(a slog.Attr) slog.Attr {
	if !m.IsEnabled() {
		return a
	}
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Key == "url" {
			return slog.String(a.Key, m.MaskURL(a.Value.String()))
		}
		if s, ok := m.MaskValue(a.Key, a.Value.String()).(string); ok {
			return slog.String(a.Key, s)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		masked := make([]any, 0, len(attrs))
		for _, g := range attrs {
			masked = append(masked, m.maskAttr(g))
		}
		return slog.Group(a.Key, masked...)
	default:
		if m.IsSensitiveKey(a.Key) {
			return slog.String(a.Key, Masked)
		}
	}
	return a
}

// maskingHandler masks attributes before delegating to the wrapped handler
type maskingHandler struct {
	next   slog.Handler
	masker *Masker
}

func newMaskingHandler(next slog.Handler, m *Masker) slog.Handler {
	return &maskingHandler{next: next, masker: m}
}

func (h *maskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.masker.MaskString(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.masker.maskAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *maskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.masker.maskAttr(a)
	}
	return &maskingHandler{next: h.next.WithAttrs(masked), masker: h.masker}
}

func (h *maskingHandler) WithGroup(name string) slog.Handler {
	return &maskingHandler{next: h.next.WithGroup(name), masker: h.masker}
}

var globalMasker = NewMasker()

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}
