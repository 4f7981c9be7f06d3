// Package retry wraps a single logical operation (one page fetch) with
// bounded retries and exponential backoff. Failures are classified three
// ways: success, retryable (rate limit, transient server error, timeout) and
// fatal (everything else, propagated immediately).
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/metrics"
	"github.com/quillhq/quill/internal/ratelimit"
)

// Policy decides what happens on a rate-limit signal.
type Policy string

const (
	// Wait blocks until the budget resets and retries transparently.
	Wait Policy = "wait"
	// Fail propagates the first rate-limit signal without sleeping.
	Fail Policy = "fail"
)

const (
	defaultMaxAttempts     = 3
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 30 * time.Second
	jitterFactor           = 0.1
)

// retryAfterer is implemented by errors carrying an explicit server-provided
// wait, such as a 429 with a Retry-After header.
type retryAfterer interface {
	RetryAfter() time.Duration
}

// Config holds construction-time executor settings.
type Config struct {
	MaxAttempts     int
	Policy          Policy
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// DisableJitter makes waits deterministic. Used by tests.
	DisableJitter bool
}

// Executor retries one operation with backoff. Policy is fixed at
// construction, not per call.
type Executor struct {
	cfg    Config
	state  *ratelimit.State
	logger *zap.Logger
}

// NewExecutor creates an executor. state may be nil when no rate limit
// bookkeeping is shared; logger may be nil.
func NewExecutor(cfg Config, state *ratelimit.State, logger *zap.Logger) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Policy == "" {
		cfg.Policy = Wait
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaultInitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defaultMaxInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{cfg: cfg, state: state, logger: logger}
}

// Policy returns the configured rate-limit policy.
func (e *Executor) Policy() Policy { return e.cfg.Policy }

func (e *Executor) newBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     e.cfg.InitialInterval,
		MaxInterval:         e.cfg.MaxInterval,
		Multiplier:          2,
		RandomizationFactor: jitterFactor,
	}
	if e.cfg.DisableJitter {
		b.RandomizationFactor = 0
	}
	b.Reset()
	return b
}

// retryable reports whether the error is worth another attempt. Attempt
// timeouts are classified as ErrTransient by the transport.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrRateLimited) ||
		errors.Is(err, domain.ErrTransient)
}

// serverWait extracts the explicit wait the server asked for, if any.
func (e *Executor) serverWait(err error) time.Duration {
	var ra retryAfterer
	if errors.As(err, &ra) {
		return ra.RetryAfter()
	}
	if e.state != nil && errors.Is(err, domain.ErrRateLimited) {
		return e.state.WaitDuration(time.Now())
	}
	return 0
}

// Do runs op with the configured attempt budget. The wait before each
// re-attempt is max(server-provided wait, exponential backoff with jitter).
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var zero T
	b := e.newBackOff()

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		rateLimited := errors.Is(err, domain.ErrRateLimited)
		if rateLimited && e.cfg.Policy == Fail {
			return zero, err
		}
		if !retryable(err) {
			return zero, err
		}

		lastErr = err
		if attempt == e.cfg.MaxAttempts {
			break
		}

		wait := b.NextBackOff()
		if sw := e.serverWait(err); sw > wait {
			wait = sw
		}

		metrics.RetriesTotal.Inc()
		if rateLimited {
			metrics.RateLimitWaitsTotal.Inc()
		}
		e.logger.Debug("retrying after failure",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, domain.NewAttemptsError(e.cfg.MaxAttempts, lastErr)
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
