package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Client-side Prometheus metrics.
var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"operation", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "quill",
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	RetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "retries_total",
			Help:      "Total number of retried request attempts",
		},
	)

	RateLimitWaitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "rate_limit_waits_total",
			Help:      "Total number of waits caused by rate limiting",
		},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quill",
			Name:      "cache_total",
			Help:      "Object cache hits and misses",
		},
		[]string{"cache", "result"}, // result: "hit" / "miss"
	)
)

// RegisterOn registers the client metrics on the given registerer, reusing
// collectors another client instance already registered.
func RegisterOn(reg prometheus.Registerer) error {
	if err := registerOrReuse(reg, &RequestsTotal); err != nil {
		return err
	}
	if err := registerOrReuse(reg, &RequestDuration); err != nil {
		return err
	}
	if err := registerOrReuse(reg, &RetriesTotal); err != nil {
		return err
	}
	if err := registerOrReuse(reg, &RateLimitWaitsTotal); err != nil {
		return err
	}
	return registerOrReuse(reg, &CacheTotal)
}

// registerOrReuse registers a collector or adopts an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}
