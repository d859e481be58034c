package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"delivery-lifecycle/internal/auth"
	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/http/middleware/ratelimit"
	"delivery-lifecycle/internal/logx"
)

func newRateLimiter(cfg *config.Config, c redis.UniversalClient, logger logx.Logger) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.NopLimiter{}
	}
	if c == nil {
		logger.Warn("rate limit enabled but REDIS_ADDR is empty, limiting disabled")
		return ratelimit.NopLimiter{}
	}
	return ratelimit.NewRedisWindowLimiter(c, rl.Limit, rl.Window, logger)
}

type rateLimitIn struct {
	dig.In
	Logger   logx.Logger
	Counter  prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter  ratelimit.Limiter
	Verifier *auth.Verifier
}

// newRateLimitMiddleware keys valid tokens by actor; everything else falls back to the client address.
func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter).
		WithIdentify(func(r *http.Request) (domain.Actor, bool) {
			a, err := in.Verifier.ParseBearer(r.Header.Get("Authorization"))
			return a, err == nil
		})
}
