package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/loykin/apifetch/internal/common"
	"github.com/loykin/apifetch/internal/httpc"
	"github.com/loykin/apifetch/internal/metrics"
	"github.com/loykin/apifetch/pkg/endpoint"
)

// DefaultRequestIDHeader carries a per-call correlation id.
const DefaultRequestIDHeader = "X-Request-Id"

// Decoder turns a response body into T.
type Decoder[T any] func(body []byte) (T, error)

// Client executes endpoint descriptors. Its configuration is fixed at
// construction; it holds no per-call state and is safe for concurrent use.
type Client struct {
	transport       Transport
	queryPolicy     QueryPolicy
	headers         map[string]string
	requestIDHeader string
	newID           func() string
	metrics         *metrics.Collector
	logger          *common.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default resty transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithHTTPC builds the default resty transport from h.
func WithHTTPC(h *httpc.Httpc) Option {
	return func(c *Client) { c.transport = NewRestyTransport(h.New()) }
}

// WithQueryPolicy sets how unstringifiable query params are handled.
func WithQueryPolicy(p QueryPolicy) Option {
	return func(c *Client) { c.queryPolicy = p }
}

// WithHeader adds a header to every request. Descriptor headers win.
func WithHeader(name, value string) Option {
	return func(c *Client) { c.headers[http.CanonicalHeaderKey(name)] = value }
}

// WithRequestIDHeader changes the correlation header name; "" disables it.
func WithRequestIDHeader(name string) Option {
	return func(c *Client) { c.requestIDHeader = name }
}

// WithIDGenerator replaces uuid.NewString as the correlation id source.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithMetrics records every outcome on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger pins a logger; otherwise the process default is used per call.
func WithLogger(l *common.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client using resty with default settings unless
// WithTransport or WithHTTPC is given.
func NewClient(opts ...Option) *Client {
	c := &Client{
		headers:         map[string]string{},
		requestIDHeader: DefaultRequestIDHeader,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewRestyTransport(nil)
	}
	return c
}

// Resolve builds the request d describes without dispatching it.
func (c *Client) Resolve(d endpoint.Descriptor) (*Request, error) {
	req, err := c.build("resolve", d)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// call tracks one invocation from Resolved to a terminal state.
type call struct {
	client *Client
	op     string
	method string
	url    string
	start  time.Time
	log    *common.Logger
}

func (c *Client) begin(op string, d endpoint.Descriptor) *call {
	l := c.logger
	if l == nil {
		l = common.GetLogger()
	}
	return &call{
		client: c,
		op:     op,
		method: string(d.Method.OrDefault()),
		url:    d.BaseAddress + d.Path,
		start:  time.Now(),
		log:    l.WithComponent("request-client"),
	}
}

func (cl *call) fail(e *Error) *Error {
	elapsed := time.Since(cl.start)
	cl.client.metrics.Observe(cl.method, e.Kind.String(), elapsed)
	cl.log.Warn("request failed", "op", cl.op, "method", cl.method, "url", cl.url, "kind", e.Kind.String(), "error", e.Err, "elapsed", elapsed)
	return e
}

func (cl *call) failWith(kind Kind, err error) *Error {
	return cl.fail(&Error{Kind: kind, Op: cl.op, Method: cl.method, URL: cl.url, Err: err})
}

func (cl *call) succeed(size int) {
	elapsed := time.Since(cl.start)
	cl.client.metrics.Observe(cl.method, "success", elapsed)
	cl.log.Debug("request succeeded", "op", cl.op, "method", cl.method, "url", cl.url, "outcome", "success", "bytes", size, "elapsed", elapsed)
}

// roundTrip resolves, dispatches once and classifies the transport result.
// It returns a non-empty body or a terminal error; it never records success.
func (c *Client) roundTrip(ctx context.Context, cl *call, d endpoint.Descriptor) ([]byte, error) {
	req, berr := c.build(cl.op, d)
	if berr != nil {
		return nil, cl.fail(berr)
	}
	cl.url = req.URL.String()

	if c.requestIDHeader != "" && req.Header.Get(c.requestIDHeader) == "" {
		id := c.newID()
		req.Header.Set(c.requestIDHeader, id)
		cl.log = cl.log.WithRequestID(id)
	}

	if err := ctx.Err(); err != nil {
		return nil, cl.failWith(ctxKind(err), err)
	}

	cl.log.Debug("dispatching request", "op", cl.op, "method", cl.method, "url", cl.url, "body_bytes", len(req.Body))
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return nil, cl.failWith(KindCancelled, err)
		}
		return nil, cl.failWith(KindTransport, err)
	}
	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return nil, cl.failWith(KindCancelled, err)
	}
	if resp == nil {
		return nil, cl.failWith(KindTransport, errors.New("transport returned no response"))
	}
	if !d.Accepts(resp.StatusCode) {
		return nil, cl.failWith(KindUnexpectedStatus, &StatusError{Code: resp.StatusCode, Body: resp.Body})
	}
	if len(resp.Body) == 0 {
		return nil, cl.failWith(KindEmptyBody, nil)
	}
	return resp.Body, nil
}

func ctxKind(err error) Kind {
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindTransport
}

// FetchBytes performs the call and returns the raw body.
func FetchBytes(ctx context.Context, c *Client, d endpoint.Descriptor) ([]byte, error) {
	cl := c.begin("fetchBytes", d)
	body, err := c.roundTrip(ctx, cl, d)
	if err != nil {
		return nil, err
	}
	cl.succeed(len(body))
	return body, nil
}

// FetchObject performs the call and decodes the body with decode, which is
// invoked at most once and only with a non-empty body.
func FetchObject[T any](ctx context.Context, c *Client, d endpoint.Descriptor, decode Decoder[T]) (T, error) {
	var zero T
	cl := c.begin("fetchObject", d)
	if decode == nil {
		return zero, cl.failWith(KindDecode, errors.New("nil decoder"))
	}
	body, err := c.roundTrip(ctx, cl, d)
	if err != nil {
		return zero, err
	}
	v, err := safeDecode(decode, body)
	if err != nil {
		return zero, cl.failWith(KindDecode, err)
	}
	cl.succeed(len(body))
	return v, nil
}

// safeDecode turns a decoder panic into an error.
func safeDecode[T any](decode Decoder[T], body []byte) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return decode(body)
}
