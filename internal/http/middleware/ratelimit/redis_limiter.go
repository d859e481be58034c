package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"delivery-lifecycle/internal/logx"
)

const keyPrefix = "ratelimit:"

// RedisWindowLimiter counts requests per key in a fixed window shared by all API instances.
type RedisWindowLimiter struct {
	c      redis.UniversalClient
	limit  int64
	window time.Duration
	logger logx.Logger
	now    func() time.Time
}

// NewRedisWindowLimiter allows limit requests per window for each key.
func NewRedisWindowLimiter(c redis.UniversalClient, limit int64, window time.Duration, logger logx.Logger) *RedisWindowLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RedisWindowLimiter{c: c, limit: limit, window: window, logger: logger, now: time.Now}
}

// Allow reports whether key is under its limit. Redis failures let the request through.
func (l *RedisWindowLimiter) Allow(ctx context.Context, key string) bool {
	ok, n, err := l.take(ctx, key)
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request",
			logx.String("key", key),
			logx.Any("err", err),
		)
		return true
	}
	if !ok {
		l.logger.Debug("rate limit window exhausted",
			logx.String("key", key),
			logx.Int64("count", n),
		)
	}
	return ok
}

// take increments the counter of the current window. Each window has its own key.
func (l *RedisWindowLimiter) take(ctx context.Context, key string) (bool, int64, error) {
	slot := l.now().UnixNano() / int64(l.window)
	k := keyPrefix + key + ":" + strconv.FormatInt(slot, 10)

	pipe := l.c.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit")
	}
	n := incr.Val()
	return n <= l.limit, n, nil
}
