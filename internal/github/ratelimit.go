package github

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimit is a snapshot of the API quota parsed from response headers.
type RateLimit struct {
	Limit     int
	Remaining int
	Used      int
	Reset     time.Time
}

// Exhausted reports whether the quota is spent and has not reset yet.
func (r RateLimit) Exhausted(now time.Time) bool {
	return r.Remaining == 0 && !r.Reset.IsZero() && now.Before(r.Reset)
}

// rateTracker holds the latest rate-limit snapshot for the process. Multiple
// acquisitions may run concurrently, so updates are serialized.
type rateTracker struct {
	mu      sync.Mutex
	current RateLimit
	seen    bool
}

// update parses rate-limit headers and replaces the current snapshot.
// Responses without rate-limit headers leave the snapshot untouched.
func (t *rateTracker) update(h http.Header) {
	limit, ok := headerInt(h, "X-Ratelimit-Limit")
	if !ok {
		return
	}

	rl := RateLimit{Limit: limit}
	if v, ok := headerInt(h, "X-Ratelimit-Remaining"); ok {
		rl.Remaining = v
	}
	if v, ok := headerInt(h, "X-Ratelimit-Used"); ok {
		rl.Used = v
	}
	if v, ok := headerInt(h, "X-Ratelimit-Reset"); ok {
		rl.Reset = time.Unix(int64(v), 0)
	}

	t.mu.Lock()
	t.current = rl
	t.seen = true
	t.mu.Unlock()
}

// snapshot returns the latest observed rate limit. The second return is
// false until the first response carrying rate-limit headers is seen.
func (t *rateTracker) snapshot() (RateLimit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.seen
}

func headerInt(h http.Header, key string) (int, bool) {
	raw := h.Get(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
