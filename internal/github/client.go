package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/config"
)

const (
	defaultBackoffBase = 250 * time.Millisecond
	backoffCap         = 8 * time.Second

	// maxErrorBody bounds how much of a failed response is kept for the error.
	maxErrorBody = 4 * 1024
)

// Client talks to the release API. Construct one per settings value; it is
// safe for concurrent use.
type Client struct {
	settings    config.Settings
	httpClient  *http.Client
	limits      *rateTracker
	backoffBase time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBackoffBase overrides the base retry delay (useful for testing).
func WithBackoffBase(d time.Duration) Option {
	return func(cl *Client) {
		cl.backoffBase = d
	}
}

// NewClient creates a Client from the given settings and options.
func NewClient(settings config.Settings, opts ...Option) *Client {
	c := &Client{
		settings:    settings,
		httpClient:  http.DefaultClient,
		limits:      &rateTracker{},
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimit returns the latest quota snapshot. The second return is false
// until a response carrying rate-limit headers has been seen.
func (c *Client) RateLimit() (RateLimit, bool) {
	return c.limits.snapshot()
}

// apiURL joins the configured base URL with an endpoint path.
func (c *Client) apiURL(endpoint string) string {
	return c.settings.BaseURL + endpoint
}

// get issues a GET with per-attempt timeout and bounded retry. Transport
// errors, 5xx, 429 and 408 are retried with exponential backoff; other 4xx
// fail immediately. The caller owns the returned body. When streaming is
// set, the timeout covers only the request/headers leg so a long but
// progressing body transfer is not cut off mid-stream.
func (c *Client) get(ctx context.Context, url, accept string, authed, streaming bool) (*http.Response, error) {
	// Fail fast when the quota is known to be spent: attempting the request
	// would only burn time failing remotely.
	if rl, ok := c.limits.snapshot(); ok && rl.Exhausted(time.Now()) {
		return nil, &RateLimitError{RateLimit: rl}
	}

	// Retries is the total attempt budget; a zero or negative setting still
	// allows one attempt.
	attempts := c.settings.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	rateLimited := false

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := c.waitBeforeRetry(ctx, attempt, rateLimited); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, url, accept, authed, streaming)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &CancelledError{Err: ctx.Err()}
			}
			lastErr = err
			rateLimited = false
			continue
		}

		c.limits.update(resp.Header)

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			drain(resp)
			rateLimited = true
			lastErr = &RequestError{URL: url, Status: resp.StatusCode}
		case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= 500:
			drain(resp)
			rateLimited = false
			lastErr = &RequestError{URL: url, Status: resp.StatusCode}
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()
			return nil, &RequestError{URL: url, Status: resp.StatusCode, Body: string(body)}
		}
	}

	if rateLimited {
		rl, _ := c.limits.snapshot()
		return nil, &RateLimitError{RateLimit: rl}
	}
	var reqErr *RequestError
	if errors.As(lastErr, &reqErr) {
		return nil, lastErr
	}
	return nil, &RequestError{URL: url, Err: lastErr}
}

// attempt performs a single request with the configured per-attempt timeout.
// Streaming attempts arm the timeout only until response headers arrive;
// stall detection on the body is the caller's job.
func (c *Client) attempt(ctx context.Context, url, accept string, authed, streaming bool) (*http.Response, error) {
	attemptCtx := ctx
	var cancel context.CancelFunc
	var headerTimer *time.Timer
	if c.settings.Timeout > 0 {
		if streaming {
			attemptCtx, cancel = context.WithCancel(ctx)
			headerTimer = time.AfterFunc(c.settings.Timeout, cancel)
		} else {
			attemptCtx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		}
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		if headerTimer != nil {
			headerTimer.Stop()
		}
		if cancel != nil {
			cancel()
		}
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.settings.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	// The token is only sent to the API host, never to asset CDNs.
	if authed && c.settings.Token != "" {
		req.Header.Set("Authorization", "token "+c.settings.Token)
	}

	resp, err := c.httpClient.Do(req)
	if headerTimer != nil {
		headerTimer.Stop()
	}
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}
	if cancel != nil {
		// Tie the timeout's cancel to body lifetime so streaming reads keep
		// working after this function returns.
		resp.Body = &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}
	}
	return resp, nil
}

// waitBeforeRetry sleeps for the backoff delay, or until the rate limit
// resets when the previous attempt came back 429. The sleep aborts promptly
// on cancellation.
func (c *Client) waitBeforeRetry(ctx context.Context, attempt int, rateLimited bool) error {
	delay := c.backoff(attempt)
	if rateLimited {
		if rl, ok := c.limits.snapshot(); ok && !rl.Reset.IsZero() {
			if until := time.Until(rl.Reset); until > delay {
				delay = until
			}
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &CancelledError{Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}

// backoff returns the delay before the given attempt: base doubling per
// attempt, capped, with ±20% jitter. Doubling stops at the cap so a large
// attempt count cannot overflow the duration.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.backoffBase
	for i := 1; i < attempt && d < backoffCap; i++ {
		d *= 2
	}
	if d > backoffCap {
		d = backoffCap
	}
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * jitter)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}

// cancelOnCloseBody releases a per-attempt timeout context when the response
// body is closed.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
