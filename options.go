package quill

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RateLimitPolicy selects what happens when the server rate-limits a call.
type RateLimitPolicy string

const (
	// WaitOnRateLimit blocks until the budget resets and retries
	// transparently. This is the default.
	WaitOnRateLimit RateLimitPolicy = "wait"
	// FailOnRateLimit propagates the first rate-limit signal immediately,
	// leaving retry decisions to the caller.
	FailOnRateLimit RateLimitPolicy = "fail"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	token      string
	apiVersion string

	maxRetries      int
	policy          RateLimitPolicy
	requestTimeout  time.Duration
	throttleRPS     float64
	throttleBurst   int
	redisCacheAddr  string
	redisCachePass  string
	httpClient      *http.Client
	logger          *zap.Logger
	metricsRegistry prometheus.Registerer
}

// WithToken sets the bearer token used to authenticate every request.
func WithToken(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.token = token
	})
}

// WithBaseURL overrides the API base URL. Useful for self-hosted
// deployments and tests.
func WithBaseURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = u
	})
}

// WithAPIVersion pins the wire format revision sent in the version header.
func WithAPIVersion(v string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiVersion = v
	})
}

// WithHTTPClient supplies a custom HTTP client (proxies, TLS settings).
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithMaxRetries sets the attempt budget per request. Default: 3.
func WithMaxRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = n
	})
}

// WithRateLimitPolicy selects the rate limit strategy.
// Default: WaitOnRateLimit.
func WithRateLimitPolicy(p RateLimitPolicy) Option {
	return optionFunc(func(c *clientConfig) {
		c.policy = p
	})
}

// WithRequestTimeout bounds each individual network attempt. A timed-out
// attempt is retried like a transient server error.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestTimeout = d
	})
}

// WithThrottle enables a client-side token bucket limiting outgoing request
// rate, independent of the server's own limits.
func WithThrottle(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.throttleRPS = rps
		c.throttleBurst = burst
	})
}

// WithRedisCache backs the object cache with Redis/Valkey so resolved pages
// are shared across processes. The in-memory cache stays in front.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisCacheAddr = addr
		c.redisCachePass = password
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (requests, retries, cache hits)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsRegistry = reg
	})
}
