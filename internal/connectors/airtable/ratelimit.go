package airtable

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond is the per-base limit documented by Airtable.
	DefaultRequestsPerSecond = 5.0

	// DefaultBurst allows a single request at a time.
	DefaultBurst = 1

	// PenaltyBackoff is the wait imposed after a 429 without Retry-After.
	PenaltyBackoff = 30 * time.Second

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter throttles requests with a token bucket and honours
// backoff periods recorded from 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second.
// A non-positive rps disables throttling.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request may be made or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimited sets a backoff period from a 429 response.
func (r *RateLimiter) RecordRateLimited(resp *http.Response) {
	backoff := PenaltyBackoff
	if resp != nil {
		if s := resp.Header.Get(HeaderRetryAfter); s != "" {
			if seconds, err := strconv.Atoi(s); err == nil && seconds > 0 {
				backoff = time.Duration(seconds) * time.Second
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(backoff)
}

// RetryAt returns the end of the current backoff period, if any.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}
