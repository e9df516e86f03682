package vendordocs

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// defaultRetryAfter applies when a rate-limited response carries no hint.
const defaultRetryAfter = 30 * time.Second

// RateLimiter paces requests to documentation portals.
// A token bucket spaces requests by the scrape delay; a Retry-After from
// the server pauses every request until it has passed.
type RateLimiter struct {
	mu          sync.Mutex
	bucket      *rate.Limiter
	pausedUntil time.Time
	now         func() time.Time
}

// NewRateLimiter creates a limiter allowing one request per delay.
// A zero delay disables proactive throttling.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, 1),
		now:    time.Now,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	pausedUntil := r.pausedUntil
	r.mu.Unlock()

	if wait := pausedUntil.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// CheckResponse returns a RateLimitError for 429 and 503 responses and
// pauses the limiter until the advertised retry time.
func (r *RateLimiter) CheckResponse(resp *http.Response) error {
	if resp == nil {
		return nil
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return nil
	}

	resetAt := r.now().Add(retryAfter(resp.Header.Get(HeaderRetryAfter), r.now()))

	r.mu.Lock()
	if resetAt.After(r.pausedUntil) {
		r.pausedUntil = resetAt
	}
	r.mu.Unlock()

	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}
	return &RateLimitError{URL: url, ResetAt: resetAt}
}

// PausedUntil returns the time requests are held until.
func (r *RateLimiter) PausedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pausedUntil
}

// retryAfter parses a Retry-After value.
func retryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return defaultRetryAfter
}
