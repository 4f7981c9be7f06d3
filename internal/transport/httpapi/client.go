// Package httpapi is the HTTP transport behind every remote call. It owns
// authentication headers, status classification, rate limit header
// bookkeeping and the optional client-side throttle; retry decisions live in
// the retry package.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/ratelimit"
)

var tracer = otel.Tracer("quill-client")

// versionHeader pins the wire format revision the client speaks.
const versionHeader = "Quill-Version"

// Config holds transport construction settings.
type Config struct {
	BaseURL    string
	Token      string
	APIVersion string
	// Timeout bounds each individual attempt. Zero means no per-attempt
	// timeout beyond the caller's context.
	Timeout time.Duration

	HTTPClient *http.Client
	Throttle   *rate.Limiter
	Logger     *zap.Logger
}

// Client sends one request per call; it never retries on its own.
type Client struct {
	baseURL    string
	token      string
	apiVersion string
	timeout    time.Duration

	httpClient *http.Client
	throttle   *rate.Limiter
	state      *ratelimit.State
	logger     *zap.Logger
}

// New creates a transport. state receives rate limit metadata from every
// response.
func New(cfg Config, state *ratelimit.State) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Transport == nil {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		apiVersion: cfg.APIVersion,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		throttle:   cfg.Throttle,
		state:      state,
		logger:     logger,
	}
}

// Do sends one request and returns the response body. body is marshaled to
// JSON when non-nil. Non-2xx responses come back as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	ctx, span := tracer.Start(ctx, method+" "+path,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	var err error
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		}
		span.End()
	}()

	if c.throttle != nil {
		if err = c.throttle.Wait(ctx); err != nil {
			return nil, fmt.Errorf("throttle wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			err = fmt.Errorf("marshal request body: %w", merr)
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, rerr := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if rerr != nil {
		err = fmt.Errorf("create request: %w", rerr)
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.apiVersion != "" {
		req.Header.Set(versionHeader, c.apiVersion)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, derr := c.httpClient.Do(req)
	if derr != nil {
		// Attempt-level timeouts and connection failures are retryable.
		err = fmt.Errorf("send request: %v: %w", derr, domain.ErrTransient)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, berr := io.ReadAll(resp.Body)
	if berr != nil {
		err = fmt.Errorf("read response body: %v: %w", berr, domain.ErrTransient)
		return nil, err
	}

	c.updateRateLimit(resp.Header)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp.StatusCode, respBody, retryAfter(resp.Header))
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		err = apiErr
		return nil, err
	}

	return respBody, nil
}

// updateRateLimit records the call budget metadata the server reported.
func (c *Client) updateRateLimit(h http.Header) {
	if c.state == nil {
		return
	}
	limit := intHeader(h, "X-RateLimit-Limit")
	remaining := intHeader(h, "X-RateLimit-Remaining")
	used := intHeader(h, "X-RateLimit-Used")

	var reset *time.Time
	if v := intHeader(h, "X-RateLimit-Reset"); v != nil {
		t := time.Unix(int64(*v), 0)
		reset = &t
	}
	c.state.Update(limit, remaining, used, reset)
}

func intHeader(h http.Header, name string) *int {
	v := h.Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// retryAfter parses the Retry-After header (seconds form).
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
