package endpoint

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
	MethodHead   Method = http.MethodHead
)

// ParseMethod normalizes s into a Method. An empty string yields GET.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return MethodGet, nil
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method: %s", s)
	}
}

// OrDefault returns m, or GET when m is empty.
func (m Method) OrDefault() Method {
	if m == "" {
		return MethodGet
	}
	return m
}

// Encoding selects how Params are applied to the outgoing request.
type Encoding int

const (
	// QueryString appends stringifiable params to the URL query.
	QueryString Encoding = iota
	// RequestBody serializes params as a JSON object body.
	RequestBody
)

func (e Encoding) String() string {
	switch e {
	case QueryString:
		return "query"
	case RequestBody:
		return "body"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// ParseEncoding accepts "query" (default when empty) and "body"/"json".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "query", "querystring":
		return QueryString, nil
	case "body", "json":
		return RequestBody, nil
	default:
		return 0, fmt.Errorf("unsupported encoding: %s", s)
	}
}

// Descriptor describes one HTTP call as data. It is validated only when a
// client resolves it.
type Descriptor struct {
	BaseAddress string
	Path        string
	Method      Method
	Params      Params
	Encoding    Encoding
	// Headers are added to the outgoing request as-is.
	Headers map[string]string
	// AcceptStatus restricts the status codes treated as success. Empty accepts any.
	AcceptStatus []int
}

// Accepts reports whether status is allowed by AcceptStatus.
func (d Descriptor) Accepts(status int) bool {
	if len(d.AcceptStatus) == 0 {
		return true
	}
	for _, s := range d.AcceptStatus {
		if s == status {
			return true
		}
	}
	return false
}

// With returns a copy of d whose params are overridden by the given ones.
// Existing keys are replaced in place; new keys are appended.
func (d Descriptor) With(overrides ...Param) Descriptor {
	out := d
	out.Params = d.Params.Merge(overrides...)
	if d.Headers != nil {
		out.Headers = make(map[string]string, len(d.Headers))
		for k, v := range d.Headers {
			out.Headers[k] = v
		}
	}
	return out
}
