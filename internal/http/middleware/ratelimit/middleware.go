package ratelimit

import (
	"io"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-lifecycle/internal/auth"
	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

// Identify resolves the caller of a request that has not been authenticated yet.
type Identify func(r *http.Request) (domain.Actor, bool)

// Middleware rejects callers that exceed their request budget.
type Middleware struct {
	logger   logx.Logger
	counter  prometheus.Counter
	limiter  Limiter
	identify Identify
}

// New creates a new Middleware. A nil limiter allows everything.
func New(logger logx.Logger, counter prometheus.Counter, limiter Limiter) *Middleware {
	if limiter == nil {
		limiter = NopLimiter{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Middleware{
		logger:  logger,
		counter: counter,
		limiter: limiter,
	}
}

// WithIdentify lets the middleware key callers by actor when it runs ahead of authentication.
func (m *Middleware) WithIdentify(f Identify) *Middleware {
	m.identify = f
	return m
}

// Handler returns chi-style middleware.
func (m *Middleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := m.callerKey(r)
			if m.limiter.Allow(r.Context(), key) {
				next.ServeHTTP(w, r)
				return
			}

			if m.counter != nil {
				m.counter.Inc()
			}
			m.logger.Warn("rate limit exceeded",
				logx.String("key", key),
				logx.String("method", r.Method),
				logx.String("path", r.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := io.WriteString(w, `{"error":"too many requests","code":"rate_limited"}`); err != nil {
				m.logger.Debug("rate limit response write failed",
					logx.String("key", key),
					logx.Any("err", err),
				)
			}
		})
	}
}

// callerKey prefers the actor and falls back to the client address.
func (m *Middleware) callerKey(r *http.Request) string {
	if a, ok := auth.FromContext(r.Context()); ok && a.ID != "" {
		return "actor:" + a.ID
	}
	if m.identify != nil {
		if a, ok := m.identify(r); ok && a.ID != "" {
			return "actor:" + a.ID
		}
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
