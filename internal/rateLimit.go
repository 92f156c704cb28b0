package courier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Limiter records a request for an identifier and reports whether the
// identifier is now over its limit.
type Limiter interface {
	Limited(ctx context.Context, id string) (bool, error)
}

// Clock returns the current time. Tests substitute a fake one.
type Clock func() time.Time

// MemoryLimiter is a sliding-window limiter held in process memory.
// Identifiers idle for a whole window are swept at most once per window.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    Clock

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemoryLimiter(max int, window time.Duration, now Clock) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		max:       max,
		window:    window,
		now:       now,
		hits:      map[string][]time.Time{},
		lastSweep: now(),
	}
}

// Limited never returns an error. A rejected request is not recorded.
func (l *MemoryLimiter) Limited(_ context.Context, id string) (bool, error) {
	now := l.now()
	start := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(start)
		l.lastSweep = now
	}

	hits := recentHits(l.hits[id], start)
	if len(hits) >= l.max {
		l.hits[id] = hits
		return true, nil
	}
	l.hits[id] = append(hits, now)
	return false, nil
}

// Len is the number of identifiers currently tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func (l *MemoryLimiter) sweep(start time.Time) {
	for id, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(start) {
			delete(l.hits, id)
		}
	}
}

// recentHits drops timestamps at or before start. hits is ordered oldest first.
func recentHits(hits []time.Time, start time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(start) {
		i++
	}
	return hits[i:]
}

// FallbackLimiter asks primary first and falls back to a local limiter for
// any call where primary fails. Store errors are logged, never returned.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
}

func NewFallbackLimiter(primary, fallback Limiter) *FallbackLimiter {
	return &FallbackLimiter{primary: primary, fallback: fallback}
}

func (l *FallbackLimiter) Limited(ctx context.Context, id string) (bool, error) {
	limited, err := l.primary.Limited(ctx, id)
	if err == nil {
		return limited, nil
	}
	LoggerFromContext(ctx).Warn("rate limit store failed, using local limiter", "err", err)
	return l.fallback.Limited(ctx, id)
}

// NewLimiter builds the limiter described by cfg: Redis backed by a local
// fallback when a Redis URL is configured, the local limiter alone otherwise.
// The returned close function releases the Redis client.
func NewLimiter(ctx context.Context, cfg RateCfg, logger *slog.Logger) (Limiter, func() error, error) {
	local := NewMemoryLimiter(cfg.Max, cfg.Window, time.Now)
	if cfg.RedisURL == "" {
		logger.Info("rate limiter: in-process", "max", cfg.Max, "window", cfg.Window)
		return local, func() error { return nil }, nil
	}

	client, err := NewRedisClient(cfg.RedisURL, cfg.RedisToken)
	if err != nil {
		return nil, nil, fmt.Errorf("rate limit redis: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("rate limit redis ping failed, requests will use the local limiter until it recovers", "err", err)
	}

	remote := NewRedisLimiter(client, cfg.Max, cfg.Window, cfg.KeyPrefix, time.Now)
	logger.Info("rate limiter: redis with in-process fallback", "max", cfg.Max, "window", cfg.Window)
	return NewFallbackLimiter(remote, local), client.Close, nil
}
