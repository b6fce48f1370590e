package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rainmen-xia/rod-cli-sub001/internal/config"
)

const releaseJSON = `{
	"id": 1,
	"tag_name": "v1.2.0",
	"name": "v1.2.0",
	"body": "notes",
	"draft": false,
	"prerelease": false,
	"created_at": "2025-06-01T10:00:00Z",
	"published_at": "2025-06-01T12:00:00Z",
	"assets": [
		{
			"id": 10,
			"name": "claude-sh.zip",
			"content_type": "application/zip",
			"state": "uploaded",
			"size": 128,
			"download_count": 7,
			"browser_download_url": "https://example.com/claude-sh.zip",
			"url": "https://api.example.com/assets/10"
		}
	]
}`

func testSettings(baseURL string, retries int) config.Settings {
	return config.Settings{
		Owner:       "Rainmen-xia",
		Repo:        "rod-templates",
		BaseURL:     baseURL,
		UserAgent:   "rod-cli-test",
		Timeout:     5 * time.Second,
		Retries:     retries,
		WorkflowDir: ".rod",
	}
}

func testClient(server *httptest.Server, retries int) *Client {
	return NewClient(testSettings(server.URL, retries),
		WithHTTPClient(server.Client()),
		WithBackoffBase(time.Millisecond))
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(releaseJSON))
	}))
	defer server.Close()

	c := testClient(server, 3)
	release, err := c.LatestRelease(context.Background())
	if err != nil {
		t.Fatalf("LatestRelease failed: %v", err)
	}
	if release.TagName != "v1.2.0" {
		t.Errorf("got tag %q, want v1.2.0", release.TagName)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("server saw %d attempts, want 3", got)
	}
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := testClient(server, 2)
	_, err := c.LatestRelease(context.Background())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
	if reqErr.Status != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want 503", reqErr.Status)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("server saw %d attempts, want 2", got)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "no such release", http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(server, 3)
	_, err := c.LatestRelease(context.Background())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
	if reqErr.Status != http.StatusNotFound {
		t.Errorf("got status %d, want 404", reqErr.Status)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("server saw %d attempts, want 1 (4xx must not be retried)", got)
	}
}

func TestGetWaitsForRateLimitReset(t *testing.T) {
	reset := time.Now().Add(500 * time.Millisecond)
	var attempts atomic.Int32
	var secondAt time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("X-Ratelimit-Limit", "60")
			w.Header().Set("X-Ratelimit-Remaining", "0")
			w.Header().Set("X-Ratelimit-Reset", fmt.Sprint(reset.Unix()))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		secondAt = time.Now()
		w.Write([]byte(releaseJSON))
	}))
	defer server.Close()

	c := testClient(server, 3)
	if _, err := c.LatestRelease(context.Background()); err != nil {
		t.Fatalf("LatestRelease failed: %v", err)
	}

	if secondAt.Before(time.Unix(reset.Unix(), 0)) {
		t.Errorf("retry fired at %v, before rate-limit reset %v", secondAt, reset)
	}
}

func TestGetRateLimitBudgetExhausted(t *testing.T) {
	reset := time.Now().Add(100 * time.Millisecond)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Limit", "60")
		w.Header().Set("X-Ratelimit-Remaining", "0")
		w.Header().Set("X-Ratelimit-Reset", fmt.Sprint(reset.Unix()))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(server, 2)
	_, err := c.LatestRelease(context.Background())

	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if !rlErr.RateLimit.Reset.Equal(time.Unix(reset.Unix(), 0)) {
		t.Errorf("error carries reset %v, want %v", rlErr.RateLimit.Reset, reset)
	}
}

func TestGetFailsFastWhenQuotaSpent(t *testing.T) {
	reset := time.Now().Add(time.Hour)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("X-Ratelimit-Limit", "60")
		w.Header().Set("X-Ratelimit-Remaining", "0")
		w.Header().Set("X-Ratelimit-Reset", fmt.Sprint(reset.Unix()))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(server, 1)
	if _, err := c.LatestRelease(context.Background()); err == nil {
		t.Fatal("expected first call to fail")
	}
	seen := attempts.Load()

	_, err := c.LatestRelease(context.Background())
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if attempts.Load() != seen {
		t.Errorf("second call hit the network despite known-exhausted quota")
	}
}

func TestGetSendsConfiguredHeaders(t *testing.T) {
	var gotUA, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(releaseJSON))
	}))
	defer server.Close()

	settings := testSettings(server.URL, 1)
	settings.Token = "secret"
	c := NewClient(settings, WithHTTPClient(server.Client()))

	if _, err := c.LatestRelease(context.Background()); err != nil {
		t.Fatalf("LatestRelease failed: %v", err)
	}
	if gotUA != "rod-cli-test" {
		t.Errorf("User-Agent = %q, want rod-cli-test", gotUA)
	}
	if gotAuth != "token secret" {
		t.Errorf("Authorization = %q, want token secret", gotAuth)
	}
}

func TestBackoffCappedForLargeAttempts(t *testing.T) {
	c := NewClient(testSettings("http://release-api.invalid", 1))

	// Cap plus the jitter margin.
	maxDelay := time.Duration(float64(backoffCap) * 1.2)
	for _, attempt := range []int{1, 2, 10, 40, 64, 1000} {
		d := c.backoff(attempt)
		if d <= 0 {
			t.Errorf("backoff(%d) = %v, want positive", attempt, d)
		}
		if d > maxDelay {
			t.Errorf("backoff(%d) = %v, exceeds %v", attempt, d, maxDelay)
		}
	}
}

func TestGetCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(releaseJSON))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(server, 3)
	_, err := c.LatestRelease(ctx)

	var cancelledErr *CancelledError
	if !errors.As(err, &cancelledErr) {
		t.Fatalf("expected CancelledError, got %T: %v", err, err)
	}
}
