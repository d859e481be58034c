package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"delivery-lifecycle/internal/auth"
	"delivery-lifecycle/internal/config"
	"delivery-lifecycle/internal/http/handlers"
	"delivery-lifecycle/internal/http/middleware"
	"delivery-lifecycle/internal/http/middleware/ratelimit"
	"delivery-lifecycle/internal/http/router"
	"delivery-lifecycle/internal/logx"
	"delivery-lifecycle/internal/metrics"
	"delivery-lifecycle/internal/notify"
	"delivery-lifecycle/internal/service/assignment"
	"delivery-lifecycle/internal/service/driver"
	"delivery-lifecycle/internal/service/intake"
	"delivery-lifecycle/internal/service/lifecycle"
)

func newVerifier(cfg *config.Config, logger logx.Logger) *auth.Verifier {
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, every authenticated route will answer 401")
	}
	return auth.NewVerifier(cfg.Auth.JWTSecret)
}

func newBaseHandlers(logger logx.Logger) *handlers.Handlers {
	return handlers.New(logger)
}

func newDeliveryHandler(
	logger logx.Logger,
	lc *lifecycle.Service,
	am *assignment.Manager,
	in *intake.Service,
) *handlers.DeliveryHandler {
	return handlers.NewDeliveryHandler(logger, lc, am, in)
}

func newDriverHandler(logger logx.Logger, uc *driver.Service) *handlers.DriverHandler {
	return handlers.NewDriverHandler(logger, uc)
}

func newStreamHandler(logger logx.Logger, hub *notify.Hub) *handlers.StreamHandler {
	return handlers.NewStreamHandler(logger, hub)
}

type routerIn struct {
	dig.In

	Config     *config.Config
	Logger     logx.Logger
	Registry   *prometheus.Registry
	HTTP       *metrics.HTTP
	RateLimit  *ratelimit.Middleware
	Verifier   *auth.Verifier
	Base       *handlers.Handlers
	Deliveries *handlers.DeliveryHandler
	Drivers    *handlers.DriverHandler
	Stream     *handlers.StreamHandler
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Base:          in.Base,
		Deliveries:    in.Deliveries,
		Drivers:       in.Drivers,
		Stream:        in.Stream,
		Verifier:      in.Verifier,
		Observability: middleware.Observability(in.Logger, in.HTTP),
		RateLimit:     in.RateLimit.Handler(),
		Metrics:       promhttp.HandlerFor(in.Registry, promhttp.HandlerOpts{Registry: in.Registry}),
		Timeout:       2 * in.Config.Assignment.OperationTimeout,
	})
}
