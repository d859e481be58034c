package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/jobs"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/notify"
	"delivery-lifecycle/internal/transport/kafka"
)

// WorkerRunner runs scheduled auto-assign and the intake consumer
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

type workerIn struct {
	dig.In

	Ctx      context.Context
	Config   *config.Config
	Logger   logx.Logger
	Job      *jobs.AutoAssignJob
	Consumer *kafka.Consumer       `optional:"true"`
	Notifier *notify.Notifier      `optional:"true"`
	Producer *kafka.Producer       `optional:"true"`
	Pool     *pgxpool.Pool         `optional:"true"`
	Redis    redis.UniversalClient `optional:"true"`
}

func workerRun(in workerIn) error {
	if in.Job == nil {
		return fmt.Errorf("auto-assign job is nil: worker container misconfigured")
	}
	defer closeWorker(in.Logger, in.Consumer, in.Notifier, in.Producer, in.Pool, in.Redis)

	if in.Config != nil && in.Config.Storage.Driver == config.StorageMemory {
		in.Logger.Warn("worker runs on in-memory storage, its state is not shared with the API")
	}

	g, gctx := errgroup.WithContext(in.Ctx)
	g.Go(func() error { return in.Job.Run(gctx) })
	if in.Consumer != nil {
		g.Go(func() error { return in.Consumer.Run(gctx) })
	}

	in.Logger.Info("delivery-lifecycle worker started", logx.Bool("intake", in.Consumer != nil))
	return g.Wait()
}

func closeWorker(logger logx.Logger, consumer *kafka.Consumer, notifier *notify.Notifier, producer *kafka.Producer, pool *pgxpool.Pool, rdb redis.UniversalClient) {
	if err := consumer.Close(); err != nil {
		logger.Error("kafka consumer close error", logx.Any("error", err))
	}
	closeResources(logger, notifier, pool, producer, rdb)
}
