// Package search implements the store's product search on top of the
// request client.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/loykin/apifetch/internal/request"
	"github.com/loykin/apifetch/pkg/decode"
	"github.com/loykin/apifetch/pkg/endpoint"
)

// MinTermLength is the shortest term length, in characters, that is
// still rejected.
const MinTermLength = 2

// DefaultSearchPath is used when WithPath is not given.
const DefaultSearchPath = "/search"

var (
	// ErrTermTooShort is returned by ValidateTerm and Search.
	ErrTermTooShort = errors.New("search term too short")
	// ErrNoThumbnail is returned for products without a thumbnail URL.
	ErrNoThumbnail = errors.New("product has no thumbnail")
)

// Product is one search hit.
type Product struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency_id,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// Paging describes the window of results returned.
type Paging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Result is the decoded search response.
type Result struct {
	Query   string    `json:"query"`
	Paging  Paging    `json:"paging"`
	Results []Product `json:"results"`
}

// ValidateTerm trims term and accepts it when it is longer than
// MinTermLength characters.
func ValidateTerm(term string) (string, error) {
	t := strings.TrimSpace(term)
	if utf8.RuneCountInString(t) <= MinTermLength {
		return "", fmt.Errorf("%w: %q", ErrTermTooShort, t)
	}
	return t, nil
}

// Service queries a store API rooted at a base address.
type Service struct {
	client *request.Client
	base   string
	path   string
	limit  int
}

// Option configures a Service.
type Option func(*Service)

// WithPath overrides DefaultSearchPath.
func WithPath(p string) Option {
	return func(s *Service) { s.path = p }
}

// WithLimit sends a limit param with every search; zero omits it.
func WithLimit(n int) Option {
	return func(s *Service) { s.limit = n }
}

// NewService returns a Service that sends calls through c.
func NewService(c *request.Client, baseAddress string, opts ...Option) *Service {
	s := &Service{client: c, base: baseAddress, path: DefaultSearchPath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Descriptor returns the search call for an already validated term.
func (s *Service) Descriptor(term string) endpoint.Descriptor {
	params := endpoint.Params{endpoint.P("q", endpoint.String(term))}
	if s.limit > 0 {
		params = append(params, endpoint.P("limit", endpoint.Int(int64(s.limit))))
	}
	return endpoint.Descriptor{
		BaseAddress:  s.base,
		Path:         s.path,
		Method:       endpoint.MethodGet,
		Encoding:     endpoint.QueryString,
		Params:       params,
		AcceptStatus: []int{http.StatusOK},
	}
}

// Search validates term and runs the query. Terms that fail validation never
// reach the network.
func (s *Service) Search(ctx context.Context, term string) (Result, error) {
	t, err := ValidateTerm(term)
	if err != nil {
		return Result{}, err
	}
	return request.FetchObject(ctx, s.client, s.Descriptor(t), decode.JSON[Result])
}

// Thumbnail fetches the product image. Query params on the thumbnail URL are
// carried over in order.
func (s *Service) Thumbnail(ctx context.Context, p Product) ([]byte, error) {
	d, err := thumbnailDescriptor(p)
	if err != nil {
		return nil, err
	}
	return request.FetchBytes(ctx, s.client, d)
}

// Thumbnails fetches every product image concurrently. Outcomes are in
// product order.
func (s *Service) Thumbnails(ctx context.Context, products []Product) []request.Outcome[[]byte] {
	futures := make([]*request.Future[[]byte], len(products))
	out := make([]request.Outcome[[]byte], len(products))
	for i, p := range products {
		d, err := thumbnailDescriptor(p)
		if err != nil {
			out[i] = request.Outcome[[]byte]{Err: err}
			continue
		}
		futures[i] = request.GoBytes(ctx, s.client, d)
	}
	for i, f := range futures {
		if f == nil {
			continue
		}
		b, err := f.Await(context.WithoutCancel(ctx))
		out[i] = request.Outcome[[]byte]{Value: b, Err: err}
	}
	return out
}

func thumbnailDescriptor(p Product) (endpoint.Descriptor, error) {
	raw := strings.TrimSpace(p.Thumbnail)
	if raw == "" {
		return endpoint.Descriptor{}, fmt.Errorf("%w: %s", ErrNoThumbnail, p.ID)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return endpoint.Descriptor{}, fmt.Errorf("thumbnail %s: %w", p.ID, err)
	}
	var params endpoint.Params
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if k, err = url.QueryUnescape(k); err != nil {
			return endpoint.Descriptor{}, fmt.Errorf("thumbnail %s: %w", p.ID, err)
		}
		if v, err = url.QueryUnescape(v); err != nil {
			return endpoint.Descriptor{}, fmt.Errorf("thumbnail %s: %w", p.ID, err)
		}
		params = append(params, endpoint.P(k, endpoint.String(v)))
	}
	return endpoint.Descriptor{
		BaseAddress:  (&url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host}).String(),
		Path:         u.Path,
		Method:       endpoint.MethodGet,
		Encoding:     endpoint.QueryString,
		Params:       params,
		AcceptStatus: []int{http.StatusOK},
	}, nil
}
