package apifetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type product struct {
	Name string `json:"name"`
}

func decodeProduct(b []byte) (product, error) {
	var p product
	err := json.Unmarshal(b, &p)
	return p, err
}

func TestFetchObject_AgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/search%20milk" || r.URL.RawQuery != "q=milk" {
			http.Error(w, "bad request "+r.URL.String(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"name":"milk"}`))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClientConfig(&HTTPClientConfig{Timeout: 5 * time.Second}))
	d := Descriptor{
		BaseAddress: srv.URL,
		Path:        "/search milk",
		Encoding:    QueryString,
		Params:      Params{P("q", String("milk"))},
	}
	got, err := FetchObject(context.Background(), c, d, decodeProduct)
	if err != nil {
		t.Fatalf("FetchObject: %v", err)
	}
	if got.Name != "milk" {
		t.Fatalf("unexpected %+v", got)
	}

	f := Go(context.Background(), c, d, decodeProduct)
	v, err := f.Await(context.Background())
	if err != nil || v.Name != "milk" {
		t.Fatalf("Go/Await: %+v %v", v, err)
	}
}

func TestFetchAll_OrderAndIsolation(t *testing.T) {
	var inflight, peak atomic.Int32
	tr := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		if strings.HasSuffix(req.URL.Path, "/fail") {
			return nil, errors.New("boom")
		}
		return &Response{StatusCode: 200, Body: []byte(req.URL.Path)}, nil
	})
	c := NewClient(WithTransport(tr))

	var ds []Descriptor
	for i := range 6 {
		path := fmt.Sprintf("/item/%d", i)
		if i == 2 {
			path = "/fail"
		}
		ds = append(ds, Descriptor{BaseAddress: "https://api.example.com", Path: path})
	}
	outs := FetchAll(context.Background(), c, ds, 2)
	if len(outs) != len(ds) {
		t.Fatalf("expected %d outcomes, got %d", len(ds), len(outs))
	}
	for i, o := range outs {
		if i == 2 {
			if KindOf(o.Err) != KindTransport {
				t.Fatalf("outcome 2: expected transport error, got %v", o.Err)
			}
			continue
		}
		if want := fmt.Sprintf("/item/%d", i); !o.OK() || string(o.Value) != want {
			t.Fatalf("outcome %d: got %q %v", i, o.Value, o.Err)
		}
	}
	if peak.Load() > 2 {
		t.Fatalf("limit exceeded: peak %d", peak.Load())
	}
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	opt, err := WithMetrics(reg)
	if err != nil {
		t.Fatalf("WithMetrics: %v", err)
	}
	tr := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: 200}, nil
	})
	c := NewClient(WithTransport(tr), opt)
	_, err = FetchBytes(context.Background(), c, Descriptor{BaseAddress: "https://api.example.com"})
	if !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected empty body, got %v", err)
	}
	if n, err := testutil.GatherAndCount(reg, "apifetch_requests_total"); err != nil || n != 1 {
		t.Fatalf("expected one series, got %d err=%v", n, err)
	}
}

func TestLoggingAPI(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
	}{
		{"error level", LogLevelError},
		{"warn level", LogLevelWarn},
		{"info level", LogLevelInfo},
		{"debug level", LogLevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.level)
			if logger == nil || logger.Logger == nil {
				t.Fatal("expected logger with slog.Logger")
			}
		})
	}
}

func TestGlobalLoggerManagement(t *testing.T) {
	originalLogger := GetLogger()
	defer SetDefaultLogger(originalLogger)

	customLogger := NewLogger(LogLevelDebug)
	SetDefaultLogger(customLogger)
	if GetLogger().Logger != customLogger.Logger {
		t.Fatal("expected custom logger to be set as default")
	}

	jsonLogger := NewJSONLogger(LogLevelWarn)
	SetDefaultLogger(jsonLogger)
	if GetLogger().Logger != jsonLogger.Logger {
		t.Fatal("expected JSON logger to be set as default")
	}
}
