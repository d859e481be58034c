// Package jobs holds scheduled background work run by the worker process.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"delivery-lifecycle/internal/domain"
	"delivery-lifecycle/internal/logx"
)

// Assigner runs one auto-assign batch.
type Assigner interface {
	AutoAssign(ctx context.Context) (domain.AutoAssignResult, error)
}

// AutoAssignJob runs auto-assign on a cron schedule. Overlapping runs are skipped.
type AutoAssignJob struct {
	assigner Assigner
	schedule string
	timeout  time.Duration
	logger   logx.Logger
}

// NewAutoAssignJob creates a job. timeout bounds a single batch.
func NewAutoAssignJob(a Assigner, schedule string, timeout time.Duration, logger logx.Logger) *AutoAssignJob {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AutoAssignJob{
		assigner: a,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger.With(logx.String("component", "auto_assign_job")),
	}
}

// Run schedules the job and blocks until ctx is done, then waits for a running batch to finish.
func (j *AutoAssignJob) Run(ctx context.Context) error {
	cl := cronLogger{j.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule auto-assign %q: %w", j.schedule, err)
	}

	c.Start()
	j.logger.Info("auto-assign job started", logx.String("schedule", j.schedule))

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("auto-assign job stopped")
	return ctx.Err()
}

// RunOnce runs a single batch and logs its outcome.
func (j *AutoAssignJob) RunOnce(ctx context.Context) domain.AutoAssignResult {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := j.assigner.AutoAssign(ctx)
	fields := []logx.Field{
		logx.Int("assigned", len(res.Assigned)),
		logx.Int("unmatched", len(res.Unmatched)),
		logx.Int("skipped", len(res.Skipped)),
		logx.Duration("duration", time.Since(start)),
	}
	switch {
	case err == nil:
		if len(res.Assigned)+len(res.Unmatched)+len(res.Skipped) > 0 {
			j.logger.Info("auto-assign batch done", fields...)
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		j.logger.Warn("auto-assign batch interrupted", append(fields, logx.Any("error", err))...)
	default:
		j.logger.Error("auto-assign batch failed", append(fields, logx.Any("error", err))...)
	}
	return res
}

// cronLogger adapts logx.Logger to cron.Logger.
type cronLogger struct{ l logx.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(kvFields(keysAndValues), logx.Any("error", err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
