package request

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// Request is a fully resolved HTTP request.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	// Body is nil when the request carries no payload.
	Body []byte
}

// Response is what a transport hands back on success.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs one HTTP exchange. Implementations must be safe for
// concurrent use and must return exactly one of a response or an error.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// RestyTransport sends requests through a resty client. The URL is passed
// verbatim so the client's query encoding is preserved.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport wraps c; a nil client gets resty defaults. GET payloads
// are enabled on c so a body-encoded GET keeps its body.
func NewRestyTransport(c *resty.Client) *RestyTransport {
	if c == nil {
		c = resty.New()
	}
	c.SetAllowGetMethodPayload(true)
	return &RestyTransport{client: c}
}

func (t *RestyTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.URL == nil {
		return nil, errors.New("resty transport: nil request")
	}
	r := t.client.R().SetContext(ctx)
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}
	resp, err := r.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Header: resp.Header(), Body: resp.Body()}, nil
}
