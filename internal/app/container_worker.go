package app

import (
	"fmt"
	"time"

	"go.uber.org/dig"

	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/jobs"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/service/assignment"
	"delivery-lifecycle/internal/service/intake"
	"delivery-lifecycle/internal/transport/kafka"
)

// autoAssignBatchTimeout bounds one scheduled batch.
const autoAssignBatchTimeout = time.Minute

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		newAutoAssignJob,
		newIntakeConsumer,
	)
}

func newAutoAssignJob(cfg *config.Config, am *assignment.Manager, logger logx.Logger) *jobs.AutoAssignJob {
	return jobs.NewAutoAssignJob(am, cfg.Assignment.AutoAssignSchedule, autoAssignBatchTimeout, logger)
}

// newIntakeConsumer returns nil when no brokers are configured.
func newIntakeConsumer(cfg *config.Config, in *intake.Service, logger logx.Logger) (*kafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Warn("kafka brokers not configured, intake consumer disabled")
		return nil, nil
	}
	c, err := kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.IntakeTopic, makeIntakeKafka(in))
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return c, nil
}
