package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	rl := NewRateLimiter(3, "")
	r := httptest.NewRequest(http.MethodGet, "/api/concepts", nil)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow(r, "user:1")
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, retryAfter := rl.Allow(r, "user:1")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter.Seconds(), 0.0)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, "")
	r := httptest.NewRequest(http.MethodGet, "/api/concepts", nil)

	allowed, _ := rl.Allow(r, "user:1")
	assert.True(t, allowed)
	allowed, _ = rl.Allow(r, "user:1")
	assert.False(t, allowed)

	allowed, _ = rl.Allow(r, "user:2")
	assert.True(t, allowed)
}

func TestRateLimiterSweepsStaleWindows(t *testing.T) {
	rl := NewRateLimiter(5, "")
	r := httptest.NewRequest(http.MethodGet, "/api/concepts", nil)

	stale := time.Now().Truncate(time.Minute).Add(-2 * time.Minute)
	rl.windows["ip:192.0.2.1"] = &localWindow{start: stale, count: 4}
	rl.windows["ip:192.0.2.2"] = &localWindow{start: stale, count: 1}

	rl.Allow(r, "user:1")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.windows, 1)
	assert.Contains(t, rl.windows, "user:1")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, "")
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/concepts", nil)
	req.RemoteAddr = "10.0.0.1:52000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestLimiterKeyFallsBackToIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	r.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "ip:192.0.2.7", limiterKey(r))
}
