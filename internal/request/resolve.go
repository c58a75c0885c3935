package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/loykin/apifetch/pkg/endpoint"
)

// QueryPolicy decides what happens to params without a query-string form
// under endpoint.QueryString.
type QueryPolicy int

const (
	// QueryDropUnstringifiable silently skips null and raw params.
	QueryDropUnstringifiable QueryPolicy = iota
	// QueryStrict fails the call with KindEncoding instead.
	QueryStrict
)

// resolveURL joins BaseAddress and the percent-encoded Path.
func resolveURL(d endpoint.Descriptor) (*url.URL, error) {
	base := strings.TrimSpace(d.BaseAddress)
	if base == "" {
		return nil, errors.New("empty base address")
	}
	if !utf8.ValidString(d.Path) {
		return nil, errors.New("path is not valid UTF-8")
	}
	for _, r := range d.Path {
		if r < 0x20 || r == 0x7f {
			return nil, fmt.Errorf("path contains control character %U", r)
		}
	}
	b, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if b.Scheme == "" || b.Host == "" {
		return nil, fmt.Errorf("base address %q must be absolute", base)
	}
	if b.RawQuery != "" || b.ForceQuery || b.Fragment != "" {
		return nil, fmt.Errorf("base address %q must not carry a query or fragment", base)
	}
	p := d.Path
	switch {
	case strings.HasSuffix(b.Path, "/") && strings.HasPrefix(p, "/"):
		p = p[1:]
	case b.Path != "" && !strings.HasSuffix(b.Path, "/") && p != "" && !strings.HasPrefix(p, "/"):
		p = "/" + p
	}
	return &url.URL{Scheme: b.Scheme, User: b.User, Host: b.Host, Path: b.Path + p}, nil
}

// queryEscape percent-encodes s for a query component, spaces as %20.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// encodeQuery renders params in order as key=value pairs.
func encodeQuery(ps endpoint.Params, policy QueryPolicy) (string, error) {
	var b strings.Builder
	for _, p := range ps {
		s, ok := p.Value.Text()
		if !ok {
			if policy == QueryStrict {
				return "", fmt.Errorf("param %q: %s value has no query-string form", p.Key, p.Value.Kind())
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(queryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(queryEscape(s))
	}
	return b.String(), nil
}

// encodeBody renders params as a JSON object keeping param order.
func encodeBody(ps endpoint.Params) ([]byte, error) {
	var buf bytes.Buffer
	seen := make(map[string]struct{}, len(ps))
	buf.WriteByte('{')
	for i, p := range ps {
		if _, dup := seen[p.Key]; dup {
			return nil, fmt.Errorf("param %q appears more than once", p.Key)
		}
		seen[p.Key] = struct{}{}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, fmt.Errorf("param key %q: %w", p.Key, err)
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Key, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// build resolves d into a transport request. Failures are *Error values
// of KindInvalidURL or KindEncoding.
func (c *Client) build(op string, d endpoint.Descriptor) (*Request, *Error) {
	method := string(d.Method.OrDefault())
	u, err := resolveURL(d)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, Op: op, Method: method, URL: d.BaseAddress + d.Path, Err: err}
	}
	req := &Request{Method: method, URL: u, Header: http.Header{}}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	switch d.Encoding {
	case endpoint.QueryString:
		q, err := encodeQuery(d.Params, c.queryPolicy)
		if err != nil {
			return nil, &Error{Kind: KindEncoding, Op: op, Method: method, URL: u.String(), Err: err}
		}
		u.RawQuery = q
	case endpoint.RequestBody:
		if len(d.Params) > 0 {
			body, err := encodeBody(d.Params)
			if err != nil {
				return nil, &Error{Kind: KindEncoding, Op: op, Method: method, URL: u.String(), Err: err}
			}
			req.Body = body
			req.Header.Set("Content-Type", "application/json")
		}
	default:
		return nil, &Error{Kind: KindEncoding, Op: op, Method: method, URL: u.String(), Err: fmt.Errorf("unknown encoding %s", d.Encoding)}
	}
	return req, nil
}
