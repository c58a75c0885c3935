package httpc

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Httpc describes how the shared resty client is built. Timeouts are the
// only deadline applied to requests; the request client imposes none.
type Httpc struct {
	TLSConfig *tls.Config
	Timeout   time.Duration
	UserAgent string
}

// New returns a resty.Client configured according to the receiver's settings.
// Defaults: MinVersion TLS1.2 when a TLS config is given with MinVersion zero.
// Redirects are followed by resty's default policy.
func (h *Httpc) New() *resty.Client {
	c := resty.New().SetAllowGetMethodPayload(true)
	if h == nil {
		return c
	}
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	if ua := strings.TrimSpace(h.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	if h.TLSConfig == nil {
		return c
	}
	cfg := h.TLSConfig.Clone()
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}
	c.SetTLSClientConfig(cfg)
	return c
}

// ParseTLSVersion maps "1.0".."1.3" (optionally prefixed with "tls") to the
// crypto/tls constant. Empty input returns 0, meaning library default.
func ParseTLSVersion(s string) (uint16, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "tls")
	switch strings.TrimSpace(v) {
	case "":
		return 0, nil
	case "1.0", "10":
		return tls.VersionTLS10, nil
	case "1.1", "11":
		return tls.VersionTLS11, nil
	case "1.2", "12":
		return tls.VersionTLS12, nil
	case "1.3", "13":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version: %s", s)
	}
}

// TLSOptions is the user-facing TLS configuration.
type TLSOptions struct {
	Insecure   bool
	MinVersion string
	MaxVersion string
}

// Build returns nil when no option is set so the transport keeps its defaults.
func (o TLSOptions) Build() (*tls.Config, error) {
	if !o.Insecure && strings.TrimSpace(o.MinVersion) == "" && strings.TrimSpace(o.MaxVersion) == "" {
		return nil, nil
	}
	minV, err := ParseTLSVersion(o.MinVersion)
	if err != nil {
		return nil, err
	}
	maxV, err := ParseTLSVersion(o.MaxVersion)
	if err != nil {
		return nil, err
	}
	if minV != 0 && maxV != 0 && minV > maxV {
		return nil, fmt.Errorf("min TLS version %s is greater than max %s", o.MinVersion, o.MaxVersion)
	}
	// #nosec G402 -- insecure mode is an explicit user opt-in
	return &tls.Config{InsecureSkipVerify: o.Insecure, MinVersion: minV, MaxVersion: maxV}, nil
}
