package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records one sample per finished call. A nil *Collector is a no-op.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. Collectors that are
// already registered are reused, so New may be called repeatedly with the
// same registry.
func New(reg prometheus.Registerer) (*Collector, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apifetch",
		Name:      "requests_total",
		Help:      "Finished requests by method and outcome.",
	}, []string{"method", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "apifetch",
		Name:      "request_duration_seconds",
		Help:      "Time from dispatch to outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	if reg != nil {
		var err error
		if requests, err = register(reg, requests); err != nil {
			return nil, err
		}
		if duration, err = register(reg, duration); err != nil {
			return nil, err
		}
	}
	return &Collector{requests: requests, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe records a finished call. outcome is "success" or a failure kind.
func (c *Collector) Observe(method, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, outcome).Inc()
	c.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Requests exposes the counter vector, mainly for tests and custom exporters.
func (c *Collector) Requests() *prometheus.CounterVec {
	if c == nil {
		return nil
	}
	return c.requests
}
