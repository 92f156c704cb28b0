package courier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter keeps one sorted set of request timestamps (unix millis) per
// identifier. A rejected request still occupies a slot in the window.
type RedisLimiter struct {
	client redis.Cmdable
	max    int
	window time.Duration
	prefix string
	now    Clock
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisClient accepts redis:// and rediss:// URLs. A non-empty token
// replaces the password from the URL.
func NewRedisClient(rawURL, token string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if token != "" {
		opts.Password = token
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second
	return redis.NewClient(opts), nil
}

func NewRedisLimiter(client redis.Cmdable, max int, window time.Duration, prefix string, now Clock) *RedisLimiter {
	if now == nil {
		now = time.Now
	}
	return &RedisLimiter{client: client, max: max, window: window, prefix: prefix, now: now}
}

func (l *RedisLimiter) Limited(ctx context.Context, id string) (bool, error) {
	now := l.now()
	key := l.prefix + id
	windowStart := now.Add(-l.window).UnixMilli()

	var count *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: fmt.Sprintf("%d:%s", now.UnixMilli(), uuid.NewString()),
		})
		count = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return count.Val() > int64(l.max), nil
}
