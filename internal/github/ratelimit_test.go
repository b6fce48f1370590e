package github

import (
	"net/http"
	"testing"
	"time"
)

func TestRateTrackerUpdate(t *testing.T) {
	h := http.Header{}
	h.Set("X-Ratelimit-Limit", "60")
	h.Set("X-Ratelimit-Remaining", "42")
	h.Set("X-Ratelimit-Used", "18")
	h.Set("X-Ratelimit-Reset", "1700000000")

	tr := &rateTracker{}
	tr.update(h)

	rl, ok := tr.snapshot()
	if !ok {
		t.Fatal("expected snapshot after update")
	}
	if rl.Limit != 60 || rl.Remaining != 42 || rl.Used != 18 {
		t.Errorf("unexpected snapshot: %+v", rl)
	}
	if !rl.Reset.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("unexpected reset time: %v", rl.Reset)
	}
}

func TestRateTrackerIgnoresResponsesWithoutHeaders(t *testing.T) {
	tr := &rateTracker{}
	tr.update(http.Header{})
	if _, ok := tr.snapshot(); ok {
		t.Error("expected no snapshot for headerless response")
	}

	h := http.Header{}
	h.Set("X-Ratelimit-Limit", "60")
	h.Set("X-Ratelimit-Remaining", "10")
	tr.update(h)
	tr.update(http.Header{})

	rl, ok := tr.snapshot()
	if !ok || rl.Remaining != 10 {
		t.Errorf("headerless update should not clobber snapshot, got %+v ok=%v", rl, ok)
	}
}

func TestRateTrackerRejectsNegativeRemaining(t *testing.T) {
	h := http.Header{}
	h.Set("X-Ratelimit-Limit", "60")
	h.Set("X-Ratelimit-Remaining", "-5")

	tr := &rateTracker{}
	tr.update(h)

	rl, _ := tr.snapshot()
	if rl.Remaining < 0 {
		t.Errorf("remaining must never be negative, got %d", rl.Remaining)
	}
}

func TestRateLimitExhausted(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		rl   RateLimit
		want bool
	}{
		{"spent before reset", RateLimit{Remaining: 0, Reset: now.Add(time.Hour)}, true},
		{"spent after reset", RateLimit{Remaining: 0, Reset: now.Add(-time.Hour)}, false},
		{"quota left", RateLimit{Remaining: 5, Reset: now.Add(time.Hour)}, false},
		{"no reset known", RateLimit{Remaining: 0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rl.Exhausted(now); got != tc.want {
				t.Errorf("Exhausted() = %v, want %v", got, tc.want)
			}
		})
	}
}
