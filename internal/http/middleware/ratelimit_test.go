package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadrelay/internal/observability/metrics"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

func TestMemoryLimiterAllowsBurstThenBlocks(t *testing.T) {
	ml := NewMemoryLimiter(3, time.Hour)
	defer ml.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := ml.Allow(ctx, "1.1.1.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := ml.Allow(ctx, "1.1.1.1")
	assert.False(t, ok)

	ok, _ = ml.Allow(ctx, "2.2.2.2")
	assert.True(t, ok, "other keys have their own bucket")
}

func TestMemoryLimiterEvictsIdleKeys(t *testing.T) {
	ml := NewMemoryLimiter(1, time.Minute)
	defer ml.Close()

	_, _ = ml.Allow(context.Background(), "1.1.1.1")
	ml.evict(time.Now().Add(time.Second))

	ml.mu.Lock()
	defer ml.mu.Unlock()
	assert.Empty(t, ml.limiters)
}

func setupRedisLimiter(t *testing.T, requests int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, requests, time.Hour), mr
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	rl, mr := setupRedisLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "1.1.1.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, "1.1.1.1")
	require.NoError(t, err)
	assert.False(t, ok)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "leadrelay:ratelimit:1.1.1.1:")
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestRedisLimiterReportsErrors(t *testing.T) {
	rl, mr := setupRedisLimiter(t, 2)
	mr.Close()

	ok, err := rl.Allow(context.Background(), "1.1.1.1")
	assert.Error(t, err)
	assert.True(t, ok)
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.allowed, s.err }

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	m := metrics.NewLeadMetrics(prometheus.NewRegistry())

	tests := []struct {
		name    string
		limiter Limiter
		want    int
	}{
		{"allowed", stubLimiter{allowed: true}, http.StatusOK},
		{"blocked", stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"fails open", stubLimiter{allowed: true, err: errors.New("redis down")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/lead", nil)
			RateLimit(tt.limiter, m, logging.Discard())(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimitMiddlewareWithMemoryLimiter(t *testing.T) {
	ml := NewMemoryLimiter(1, time.Hour)
	defer ml.Close()
	handler := ClientIP(1)(RateLimit(ml, nil, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/lead", nil)
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
}
