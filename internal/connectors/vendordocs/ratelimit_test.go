package vendordocs

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

func TestRateLimiter_WaitWithoutDelay(t *testing.T) {
	r := NewRateLimiter(0)
	for range 5 {
		require.NoError(t, r.Wait(context.Background()))
	}
}

func TestRateLimiter_CheckResponse(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter(0)
	r.now = func() time.Time { return now }

	t.Run("ok response", func(t *testing.T) {
		assert.NoError(t, r.CheckResponse(&http.Response{StatusCode: http.StatusOK}))
		assert.NoError(t, r.CheckResponse(nil))
	})

	t.Run("too many requests", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
		resp.Header.Set(HeaderRetryAfter, "120")

		err := r.CheckResponse(resp)
		require.Error(t, err)
		assert.True(t, IsRateLimited(err))
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		assert.Equal(t, now.Add(2*time.Minute), r.PausedUntil())
	})

	t.Run("shorter hint keeps longer pause", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusServiceUnavailable, Header: http.Header{}}
		resp.Header.Set(HeaderRetryAfter, "5")

		require.Error(t, r.CheckResponse(resp))
		assert.Equal(t, now.Add(2*time.Minute), r.PausedUntil())
	})
}

func TestRateLimiter_WaitHonoursPause(t *testing.T) {
	r := NewRateLimiter(0)
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set(HeaderRetryAfter, "60")
	require.Error(t, r.CheckResponse(resp))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", defaultRetryAfter},
		{"seconds", "7", 7 * time.Second},
		{"zero", "0", 0},
		{"http date", now.Add(time.Minute).Format(http.TimeFormat), time.Minute},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", defaultRetryAfter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryAfter(tt.value, now))
		})
	}
}
