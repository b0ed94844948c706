// Package ratelimit guards submission endpoints with a fixed window per client.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether key may make another request in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	count int
	until time.Time
}

// MemoryLimiter keeps per-key counters in process.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewMemoryLimiter allows limit requests per window for each key.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow counts the request and reports whether it fits the window.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || now.After(b.until) {
		b = &bucket{until: now.Add(m.window)}
		m.buckets[key] = b
		m.sweep(now)
	}
	if b.count >= m.limit {
		return false, nil
	}
	b.count++
	return true, nil
}

// sweep drops expired buckets so idle clients do not accumulate.
func (m *MemoryLimiter) sweep(now time.Time) {
	for k, b := range m.buckets {
		if now.After(b.until) {
			delete(m.buckets, k)
		}
	}
}

// RedisLimiter shares counters across instances through Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter connects to redisURL and verifies the connection.
func NewRedisLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisLimiter{client: client, limit: limit, window: window, prefix: "chromadish:ratelimit:"}, nil
}

// Allow increments the key's counter for the current window.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.windowKey(key, time.Now())

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	return incr.Val() <= int64(r.limit), nil
}

// Close releases the Redis connection pool.
func (r *RedisLimiter) Close() error {
	return r.client.Close()
}

func (r *RedisLimiter) windowKey(key string, now time.Time) string {
	secs := int64(r.window / time.Second)
	if secs <= 0 {
		secs = 1
	}
	slot := now.Unix() / secs
	return fmt.Sprintf("%s%s:%d", r.prefix, key, slot)
}
