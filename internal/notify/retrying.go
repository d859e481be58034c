package notify

import (
	"context"
	"errors"
	"time"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

type counter interface {
	Inc()
}

// permanent is implemented by errors that retrying cannot fix.
type permanent interface {
	Permanent() bool
}

// RetryConfig describes how RetryingSink backs off.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingSink retries a flaky sink with exponential backoff.
type RetryingSink struct {
	next    Sink
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	wait    func(context.Context, time.Duration) bool
}

// NewRetryingSink wraps next. It returns nil when next is nil.
func NewRetryingSink(next Sink, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingSink {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &RetryingSink{next: next, logger: logger, retries: retries, cfg: cfg, wait: sleepWithContext}
}

// Name implements Sink.
func (r *RetryingSink) Name() string { return r.next.Name() }

// Send implements Sink.
func (r *RetryingSink) Send(ctx context.Context, e domain.HistoryEvent) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := r.next.Send(ctx, e)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("event sink retry",
			logx.String("sink", r.next.Name()),
			logx.String("reference", e.Reference),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !r.wait(ctx, delay) {
			break
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	var p permanent
	if errors.As(err, &p) && p.Permanent() {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if max > 0 && d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
