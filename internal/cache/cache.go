package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend stores serialized entries under string keys with a TTL.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Stats counts hits and misses since process start.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Cache is a TTL cache for expensive analysis results. It fronts either the
// in-process memory backend or Redis when an address is configured.
type Cache struct {
	backend Backend
	ttl     time.Duration

	mu    sync.Mutex
	stats Stats
}

func New(backend Backend, ttl time.Duration) *Cache {
	return &Cache{backend: backend, ttl: ttl}
}

// Key derives a stable cache key from the request content. Identical content
// always maps to the same key, so re-submitting a conversation is a hit.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	value, ok := c.backend.Get(ctx, key)
	c.mu.Lock()
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.mu.Unlock()
	return value, ok
}

func (c *Cache) Set(ctx context.Context, key, value string) {
	c.backend.Set(ctx, key, value, c.ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) {
	c.backend.Delete(ctx, key)
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryBackend is the default process-local backend.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry)}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (m *MemoryBackend) Set(ctx context.Context, key, value string, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// RedisBackend shares cached results across server instances.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(addr, prefix string) *RedisBackend {
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, bool) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

func (r *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) {
	r.client.Set(ctx, r.prefix+key, value, ttl)
}

func (r *RedisBackend) Delete(ctx context.Context, key string) {
	r.client.Del(ctx, r.prefix+key)
}
