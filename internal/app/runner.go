package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/notify"
	"delivery-lifecycle/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP API
type Runner struct {
	runFn func(*dig.Container) error
	exit  func(int)
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, exit: os.Exit}
}

// MustRun starts the HTTP server using the provided DI container and exits on failure
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := loggerFrom(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Any("error", err))
		_ = logger.Sync()
		if r.exit != nil {
			r.exit(1)
		}
	}
}

// MustRun runs the API with a default Runner
func MustRun(container *dig.Container) {
	NewRunner().MustRun(container)
}

func loggerFrom(container *dig.Container) logx.Logger {
	var logger logx.Logger
	if err := container.Invoke(func(l logx.Logger) { logger = l }); err != nil || logger == nil {
		return logx.New(os.Stderr, "json", "info")
	}
	return logger
}

type runIn struct {
	dig.In

	Ctx      context.Context
	Server   *http.Server
	Logger   logx.Logger
	Notifier *notify.Notifier      `optional:"true"`
	Pool     *pgxpool.Pool         `optional:"true"`
	Producer *kafka.Producer       `optional:"true"`
	Redis    redis.UniversalClient `optional:"true"`
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in runIn) error {
	g, gctx := errgroup.WithContext(in.Ctx)

	g.Go(func() error {
		in.Logger.Info("service-lifecycle listening", logx.String("addr", in.Server.Addr))
		if err := in.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		in.Logger.Info("shutting down service-lifecycle...")
		gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
		return nil
	})

	err := g.Wait()
	closeResources(in.Logger, in.Notifier, in.Pool, in.Producer, in.Redis)
	if err != nil {
		return err
	}
	return in.Ctx.Err()
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.Any("error", err))
		if err := srv.Close(); err != nil {
			logger.Warn("server close error", logx.Any("error", err))
		}
	}
}

func closeResources(logger logx.Logger, notifier *notify.Notifier, pool *pgxpool.Pool, producer *kafka.Producer, rdb redis.UniversalClient) {
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := notifier.Close(flushCtx); err != nil {
		logger.Warn("event queue not drained", logx.Any("error", err))
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka producer close error", logx.Any("error", err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", logx.Any("error", err))
		}
	}
	if pool != nil {
		pool.Close()
	}
	_ = logger.Sync()
}
