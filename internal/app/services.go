package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/metrics"
	"delivery-lifecycle/internal/notify"
	"delivery-lifecycle/internal/service/assignment"
	"delivery-lifecycle/internal/service/driver"
	"delivery-lifecycle/internal/service/intake"
	"delivery-lifecycle/internal/service/lifecycle"
	"delivery-lifecycle/internal/transport/kafka"
)

type metricsOut struct {
	dig.Out

	Registry          *prometheus.Registry
	HTTP              *metrics.HTTP
	Lifecycle         *metrics.Lifecycle
	Assignment        *metrics.Assignment
	Notifier          *metrics.Notifier
	RateLimitExceeded prometheus.Counter `name:"rate_limit_exceeded_total"`
}

// provideMetrics registers every collector on a fresh registry served by /metrics.
func provideMetrics() (metricsOut, error) {
	out := metricsOut{
		Registry:          prometheus.NewRegistry(),
		HTTP:              metrics.NewHTTP(),
		Lifecycle:         metrics.NewLifecycle(),
		Assignment:        metrics.NewAssignment(),
		Notifier:          metrics.NewNotifier(),
		RateLimitExceeded: metrics.NewRateLimitExceededTotal(),
	}

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		out.RateLimitExceeded,
	}
	cs = append(cs, out.HTTP.Collectors()...)
	cs = append(cs, out.Lifecycle.Collectors()...)
	cs = append(cs, out.Assignment.Collectors()...)
	cs = append(cs, out.Notifier.Collectors()...)

	if err := metrics.Register(out.Registry, cs...); err != nil {
		return metricsOut{}, fmt.Errorf("register metrics: %w", err)
	}
	return out, nil
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container, provideMetrics)
}

func registerEvents(container *dig.Container) error {
	return provideAll(container,
		notify.NewHub,
		newEventProducer,
		newNotifier,
	)
}

// newEventProducer returns nil when no brokers are configured.
func newEventProducer(cfg *config.Config) (*kafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	p, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

func newNotifier(
	cfg *config.Config,
	logger logx.Logger,
	hub *notify.Hub,
	producer *kafka.Producer,
	m *metrics.Notifier,
) *notify.Notifier {
	sinks := []notify.Sink{hub}
	if producer != nil {
		retrying := notify.NewRetryingSink(producer, logger, m, notify.RetryConfig{
			MaxAttempts: cfg.Notifier.MaxAttempts,
			BaseDelay:   cfg.Notifier.BaseDelay,
			MaxDelay:    cfg.Notifier.MaxDelay,
		})
		sinks = append(sinks, notify.NewAsyncSink(retrying, logger, m, cfg.Notifier.QueueSize, cfg.Notifier.SendTimeout))
	} else {
		logger.Warn("kafka brokers not configured, events stay in-process")
	}

	n := notify.New(logger, m, sinks...)
	notify.FulfillmentHooks(n, logger)
	return n
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, st *storage, n *notify.Notifier, m *metrics.Lifecycle, logger logx.Logger) *lifecycle.Service {
			return lifecycle.NewService(st.deliveries, n, m, cfg.Assignment.OperationTimeout, logger)
		},
		func(cfg *config.Config, lc *lifecycle.Service, st *storage, m *metrics.Assignment, logger logx.Logger) *assignment.Manager {
			return assignment.NewManager(lc, st.deliveries, cfg.Assignment.MaxActiveLoad, m, logger)
		},
		func(cfg *config.Config, st *storage, lc *lifecycle.Service, logger logx.Logger) *intake.Service {
			return intake.NewService(st.deliveries, lc, cfg.Assignment.OperationTimeout, logger)
		},
		func(cfg *config.Config, st *storage, locs locationStore, logger logx.Logger) *driver.Service {
			return driver.NewService(st.drivers, locs, cfg.Assignment.OperationTimeout, logger)
		},
	)
}
