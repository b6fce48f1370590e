package github

import (
	"fmt"
	"strings"
	"time"
)

// RequestError is a transport failure or non-2xx response that survived the
// retry budget. Status is 0 when no response was received.
type RequestError struct {
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request to %s returned status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// RateLimitError means the rate-limit budget was exhausted across all retry
// attempts. It carries the last observed quota snapshot so callers can tell
// the user when to try again.
type RateLimitError struct {
	RateLimit RateLimit
}

func (e *RateLimitError) Error() string {
	if e.RateLimit.Reset.IsZero() {
		return "API rate limit exceeded"
	}
	return fmt.Sprintf("API rate limit exceeded, resets at %s",
		e.RateLimit.Reset.Format(time.RFC3339))
}

// DownloadError is a failure while streaming asset bytes to disk: stream
// interruption, a size mismatch, or a filesystem write failure.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// CancelledError is a caller-initiated abort, distinct from failure so the
// CLI does not report a deliberate Ctrl-C as a system error.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string { return "operation cancelled" }

func (e *CancelledError) Unwrap() error { return e.Err }

// SchemaError means the release API returned a JSON document that does not
// match the expected shape. The response is rejected at the trust boundary
// rather than decoded into partially valid values.
type SchemaError struct {
	URL    string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected release document from %s: %s",
		e.URL, strings.Join(e.Issues, "; "))
}
