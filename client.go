package quill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/quillhq/quill/internal/cache"
	"github.com/quillhq/quill/internal/domain/page"
	"github.com/quillhq/quill/internal/kv"
	kvRedis "github.com/quillhq/quill/internal/kv/redis"
	"github.com/quillhq/quill/internal/metrics"
	"github.com/quillhq/quill/internal/ratelimit"
	"github.com/quillhq/quill/internal/retry"
	"github.com/quillhq/quill/internal/transport/httpapi"
)

const (
	defaultBaseURL    = "https://api.quillhq.com"
	defaultAPIVersion = "2025-06-01"

	sharedCachePrefix = "quill:page:"
)

// Client is the quill SDK entry point. Each client owns its caches and rate
// limit bookkeeping; independent clients share nothing.
type Client struct {
	transport *httpapi.Client
	executor  *retry.Executor
	rateState *ratelimit.State

	pageCache   *cache.Cache[*Page]
	schemaCache *cache.Cache[Schema]
	shared      *cache.Shared
	sharedStore kv.Store

	obs *observer
}

// New creates a quill Client.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		policy:     WaitOnRateLimit,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.token == "" {
		return nil, errors.New("quill: API token required (use WithToken)")
	}
	if cfg.policy != WaitOnRateLimit && cfg.policy != FailOnRateLimit {
		return nil, fmt.Errorf("quill: unknown rate limit policy %q", cfg.policy)
	}

	if cfg.metricsRegistry != nil {
		if err := metrics.RegisterOn(cfg.metricsRegistry); err != nil {
			return nil, fmt.Errorf("quill: %w", err)
		}
	}

	rateState := ratelimit.NewState()

	var throttle *rate.Limiter
	if cfg.throttleRPS > 0 {
		burst := cfg.throttleBurst
		if burst <= 0 {
			burst = 1
		}
		throttle = rate.NewLimiter(rate.Limit(cfg.throttleRPS), burst)
	}

	transport := httpapi.New(httpapi.Config{
		BaseURL:    cfg.baseURL,
		Token:      cfg.token,
		APIVersion: cfg.apiVersion,
		Timeout:    cfg.requestTimeout,
		HTTPClient: cfg.httpClient,
		Throttle:   throttle,
		Logger:     cfg.logger,
	}, rateState)

	executor := retry.NewExecutor(retry.Config{
		MaxAttempts: cfg.maxRetries,
		Policy:      retry.Policy(cfg.policy),
	}, rateState, cfg.logger)

	c := &Client{
		transport:   transport,
		executor:    executor,
		rateState:   rateState,
		pageCache:   cache.New[*Page]("pages", metrics.CacheTotal),
		schemaCache: cache.New[Schema]("schemas", metrics.CacheTotal),
		obs:         newObserver(cfg.logger, cfg.metricsRegistry != nil),
	}

	if cfg.redisCacheAddr != "" {
		store, err := kvRedis.NewStore(kvRedis.Config{
			Addrs:    []string{cfg.redisCacheAddr},
			Password: cfg.redisCachePass,
		})
		if err != nil {
			return nil, fmt.Errorf("quill: create cache store: %w", err)
		}
		c.sharedStore = store
		c.shared = cache.NewShared(store, sharedCachePrefix, cfg.logger)
	}

	return c, nil
}

// Close releases the shared cache connection, if any.
func (c *Client) Close() {
	if c.sharedStore != nil {
		c.sharedStore.Close()
	}
}

// storePage refreshes both cache levels with a freshly fetched page.
func (c *Client) storePage(ctx context.Context, p *Page) {
	key := page.NormalizeID(p.ID())
	c.pageCache.Set(key, p)
	if c.shared != nil {
		c.shared.Set(ctx, key, p.raw)
	}
}

// Database returns the service for one database (collection).
func (c *Client) Database(id string) *DatabaseService {
	return &DatabaseService{id: id, client: c}
}

// Pages returns the page service.
func (c *Client) Pages() *PageService {
	return &PageService{client: c}
}

// RateLimitSnapshot is a point-in-time copy of the rate limit metadata the
// server last reported. Nil fields mean the server has not reported yet.
type RateLimitSnapshot struct {
	Limit     *int
	Remaining *int
	Used      *int
	Reset     *time.Time
}

// RateLimit returns the current rate limit observation.
func (c *Client) RateLimit() RateLimitSnapshot {
	s := c.rateState.Snapshot()
	return RateLimitSnapshot{
		Limit:     s.Limit,
		Remaining: s.Remaining,
		Used:      s.Used,
		Reset:     s.Reset,
	}
}
