package api

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/recallhq/recall/internal/metrics"
)

// RateLimiter enforces a fixed per-minute request budget per user (or per IP
// before authentication). With Redis configured the window counters are
// shared across instances; otherwise they live in process memory.
type RateLimiter struct {
	requestsPerMinute int
	redis             *redis.Client

	mu        sync.Mutex
	windows   map[string]*localWindow
	lastSweep time.Time
}

type localWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(requestsPerMinute int, redisAddr string) *RateLimiter {
	rl := &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		windows:           make(map[string]*localWindow),
	}
	if redisAddr != "" {
		rl.redis = redis.NewClient(&redis.Options{Addr: redisAddr})
		log.Printf("Rate limiter using Redis at %s", redisAddr)
	}
	return rl
}

// Allow reports whether the key may make another request in the current
// minute, and how long to wait when it may not.
func (rl *RateLimiter) Allow(r *http.Request, key string) (bool, time.Duration) {
	now := time.Now()
	windowStart := now.Truncate(time.Minute)
	retryAfter := windowStart.Add(time.Minute).Sub(now)

	if rl.redis != nil {
		redisKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())
		count, err := rl.redis.Incr(r.Context(), redisKey).Result()
		if err != nil {
			// Redis being down should not take the API with it.
			log.Printf("Rate limiter Redis error, allowing request: %v", err)
			return true, 0
		}
		if count == 1 {
			rl.redis.Expire(r.Context(), redisKey, time.Minute)
		}
		return count <= int64(rl.requestsPerMinute), retryAfter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweepLocked(windowStart)
	w, ok := rl.windows[key]
	if !ok || w.start.Before(windowStart) {
		w = &localWindow{start: windowStart}
		rl.windows[key] = w
	}
	w.count++
	return w.count <= rl.requestsPerMinute, retryAfter
}

// sweepLocked drops windows from past minutes so one-off keys do not pile
// up. Runs at most once per window. Caller holds mu.
func (rl *RateLimiter) sweepLocked(windowStart time.Time) {
	if !rl.lastSweep.Before(windowStart) {
		return
	}
	rl.lastSweep = windowStart
	for key, w := range rl.windows {
		if w.start.Before(windowStart) {
			delete(rl.windows, key)
		}
	}
}

// Middleware rejects requests over the budget with 429 and a Retry-After
// header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := limiterKey(r)
		allowed, retryAfter := rl.Allow(r, key)
		if !allowed {
			metrics.Get().RateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limiterKey(r *http.Request) string {
	if userID, ok := userIDFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(userID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
