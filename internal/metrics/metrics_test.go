package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Observe("GET", "success", 10*time.Millisecond)
	c.Observe("GET", "success", 20*time.Millisecond)
	c.Observe("POST", "decode_error", time.Millisecond)

	if got := testutil.ToFloat64(c.Requests().WithLabelValues("GET", "success")); got != 2 {
		t.Fatalf("expected 2 GET successes, got %v", got)
	}
	if got := testutil.ToFloat64(c.Requests().WithLabelValues("POST", "decode_error")); got != 1 {
		t.Fatalf("expected 1 POST decode error, got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "apifetch_request_duration_seconds"); err != nil || n != 2 {
		t.Fatalf("expected 2 histogram series, got %d err=%v", n, err)
	}
}

func TestCollector_ReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	c1, err := New(reg)
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	c2, err := New(reg)
	if err != nil {
		t.Fatalf("second New should reuse collectors: %v", err)
	}
	c1.Observe("GET", "success", 0)
	if got := testutil.ToFloat64(c2.Requests().WithLabelValues("GET", "success")); got != 1 {
		t.Fatalf("expected shared counter, got %v", got)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.Observe("GET", "success", time.Second)
	if c.Requests() != nil {
		t.Fatalf("nil collector must expose nil counter")
	}
}
