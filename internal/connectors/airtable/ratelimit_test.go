package airtable

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_RecordRateLimited(t *testing.T) {
	t.Run("uses Retry-After when present", func(t *testing.T) {
		rl := NewRateLimiter(0, 1)
		resp := &http.Response{Header: http.Header{HeaderRetryAfter: []string{"3"}}}

		rl.RecordRateLimited(resp)

		assert.WithinDuration(t, time.Now().Add(3*time.Second), rl.RetryAt(), 500*time.Millisecond)
	})

	t.Run("falls back to the penalty backoff", func(t *testing.T) {
		rl := NewRateLimiter(0, 1)

		rl.RecordRateLimited(&http.Response{Header: http.Header{}})

		assert.WithinDuration(t, time.Now().Add(PenaltyBackoff), rl.RetryAt(), 500*time.Millisecond)
	})
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("unlimited does not block", func(t *testing.T) {
		rl := NewRateLimiter(0, 1)
		for i := 0; i < 100; i++ {
			require.NoError(t, rl.Wait(context.Background()))
		}
	})

	t.Run("backoff honours context", func(t *testing.T) {
		rl := NewRateLimiter(0, 1)
		rl.RecordRateLimited(nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
	})
}
