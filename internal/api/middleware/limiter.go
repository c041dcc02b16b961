package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 100
	defaultWindow = time.Minute
)

// NewLimiter returns a Redis backed limiter when client is set, so every API
// replica shares one budget, and an in-process limiter otherwise.
func NewLimiter(client *redis.Client, requests, windowSeconds int) Limiter {
	window := time.Duration(windowSeconds) * time.Second
	if client != nil {
		return NewRedisLimiter(client, requests, window)
	}
	return NewMemoryLimiter(requests, window)
}

func normalize(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if window <= 0 {
		window = defaultWindow
	}
	return limit, window
}

// MemoryLimiter is a sliding window log per key. Idle keys are swept while
// serving requests, at most once per window.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	limit, window = normalize(limit, window)
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	hits := l.hits[key]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]

	d := Decision{Limit: l.limit}
	if len(hits) >= l.limit {
		l.hits[key] = hits
		d.Reset = hits[0].Add(l.window)
		return d, nil
	}

	hits = append(hits, now)
	l.hits[key] = hits
	d.Allowed = true
	d.Remaining = l.limit - len(hits)
	d.Reset = hits[0].Add(l.window)
	return d, nil
}

func (l *MemoryLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

// RedisLimiter is a fixed window counter: one INCR per request on a key that
// expires with its window.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	limit, window = normalize(limit, window)
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "rally:ratelimit",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	start := time.Now().Truncate(l.window)
	bucket := fmt.Sprintf("%s:%s:%d", l.prefix, key, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("counting requests: %w", err)
	}

	count := int(incr.Val())
	d := Decision{
		Allowed: count <= l.limit,
		Limit:   l.limit,
		Reset:   start.Add(l.window),
	}
	if d.Allowed {
		d.Remaining = l.limit - count
	}
	return d, nil
}
