package apifetch

import (
	"context"

	"github.com/loykin/apifetch/internal/common"
	"github.com/loykin/apifetch/internal/httpc"
	"github.com/loykin/apifetch/internal/metrics"
	"github.com/loykin/apifetch/internal/request"
	"github.com/loykin/apifetch/pkg/endpoint"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Re-export commonly used types for public API

type Descriptor = endpoint.Descriptor
type Params = endpoint.Params
type Param = endpoint.Param
type Value = endpoint.Value
type Method = endpoint.Method
type Encoding = endpoint.Encoding

const (
	QueryString = endpoint.QueryString
	RequestBody = endpoint.RequestBody
)

// Client executes descriptors; see NewClient.
type Client = request.Client
type Option = request.Option
type Transport = request.Transport
type TransportFunc = request.TransportFunc
type Request = request.Request
type Response = request.Response
type Decoder[T any] = request.Decoder[T]

// Outcome is the single result of one call.
type Outcome[T any] = request.Outcome[T]
type Future[T any] = request.Future[T]

// Error is the failure type of every call; use errors.Is with the Err*
// sentinels or KindOf to classify it.
type Error = request.Error
type ErrorKind = request.Kind

const (
	KindInvalidURL       = request.KindInvalidURL
	KindEncoding         = request.KindEncoding
	KindTransport        = request.KindTransport
	KindEmptyBody        = request.KindEmptyBody
	KindDecode           = request.KindDecode
	KindCancelled        = request.KindCancelled
	KindUnexpectedStatus = request.KindUnexpectedStatus
)

var (
	ErrInvalidURL       = request.ErrInvalidURL
	ErrEncoding         = request.ErrEncoding
	ErrTransport        = request.ErrTransport
	ErrEmptyBody        = request.ErrEmptyBody
	ErrDecode           = request.ErrDecode
	ErrCancelled        = request.ErrCancelled
	ErrUnexpectedStatus = request.ErrUnexpectedStatus
)

func KindOf(err error) ErrorKind { return request.KindOf(err) }

// P builds a param; String/Int/Float/Bool/Null/Raw build values.
func P(key string, v Value) Param { return endpoint.P(key, v) }
func String(s string) Value { return endpoint.String(s) }
func Int(i int64) Value { return endpoint.Int(i) }
func Float(f float64) Value { return endpoint.Float(f) }
func Bool(b bool) Value { return endpoint.Bool(b) }
func Null() Value { return endpoint.Null() }
func Raw(v any) Value { return endpoint.Raw(v) }

// HTTPClientConfig configures the default resty transport.
type HTTPClientConfig = httpc.Httpc

func NewClient(opts ...Option) *Client { return request.NewClient(opts...) }

func WithTransport(t Transport) Option { return request.WithTransport(t) }
func WithHTTPClientConfig(h *HTTPClientConfig) Option { return request.WithHTTPC(h) }
func WithHeader(name, value string) Option { return request.WithHeader(name, value) }
func WithLogger(l *Logger) Option { return request.WithLogger(l) }

// WithMetrics registers the request collectors on reg and records every
// outcome on them.
func WithMetrics(reg prometheus.Registerer) (Option, error) {
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	return request.WithMetrics(m), nil
}

// FetchObject performs d and decodes the body with decode.
func FetchObject[T any](ctx context.Context, c *Client, d Descriptor, decode Decoder[T]) (T, error) {
	return request.FetchObject(ctx, c, d, decode)
}

// FetchBytes performs d and returns the raw body.
func FetchBytes(ctx context.Context, c *Client, d Descriptor) ([]byte, error) {
	return request.FetchBytes(ctx, c, d)
}

// Go starts FetchObject asynchronously.
func Go[T any](ctx context.Context, c *Client, d Descriptor, decode Decoder[T]) *Future[T] {
	return request.Go(ctx, c, d, decode)
}

// GoBytes starts FetchBytes asynchronously.
func GoBytes(ctx context.Context, c *Client, d Descriptor) *Future[[]byte] {
	return request.GoBytes(ctx, c, d)
}

// FetchAll runs FetchBytes for every descriptor with at most limit calls in
// flight (limit <= 0 means unbounded). Outcomes are in descriptor order and
// one failure does not affect the others.
func FetchAll(ctx context.Context, c *Client, ds []Descriptor, limit int) []Outcome[[]byte] {
	out := make([]Outcome[[]byte], len(ds))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, d := range ds {
		g.Go(func() error {
			b, err := request.FetchBytes(ctx, c, d)
			out[i] = Outcome[[]byte]{Value: b, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Logging

type Logger = common.Logger
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

func NewLogger(level LogLevel) *Logger { return common.NewLogger(level) }
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }
func NewColorLogger(level LogLevel) *Logger { return common.NewColorLogger(level) }
func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }
func GetLogger() *Logger { return common.GetLogger() }

// EnableMasking toggles masking of secrets in logs and error messages.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }
