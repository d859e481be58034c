package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"delivery-lifecycle/internal/auth"
	"delivery-lifecycle/internal/http/handlers"
)

// Deps carries everything the router mounts. Optional middleware may be nil.
type Deps struct {
	Base       *handlers.Handlers
	Deliveries *handlers.DeliveryHandler
	Drivers    *handlers.DriverHandler
	Stream     *handlers.StreamHandler
	Verifier   *auth.Verifier

	Observability func(http.Handler) http.Handler
	RateLimit     func(http.Handler) http.Handler
	Metrics       http.Handler
	Timeout       time.Duration
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if d.Observability != nil {
		r.Use(d.Observability)
	}
	r.Use(middleware.Recoverer)

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	r.NotFound(d.Base.NotFound)
	r.MethodNotAllowed(d.Base.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		// ahead of auth so rejected tokens are limited too
		if d.RateLimit != nil {
			r.Use(d.RateLimit)
		}
		r.Use(auth.Middleware(d.Verifier))

		// long-lived, outside the request timeout
		r.Get("/events/stream", d.Stream.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(d.Timeout))

			r.Route("/deliveries", func(r chi.Router) {
				r.With(auth.AdminOnly).Post("/", d.Deliveries.Create)
				r.With(auth.AdminOnly).Get("/", d.Deliveries.List)
				r.Get("/{ref}", d.Deliveries.Get)
				r.Get("/{ref}/history", d.Deliveries.History)
				r.Post("/{ref}/transition", d.Deliveries.Transition)
				r.Post("/{ref}/assign", d.Deliveries.Assign)
			})
			r.With(auth.AdminOnly).Post("/assignments/auto", d.Deliveries.AutoAssign)

			r.Route("/drivers", func(r chi.Router) {
				r.With(auth.AdminOnly).Post("/", d.Drivers.Create)
				r.With(auth.AdminOnly).Get("/", d.Drivers.List)
				r.Get("/{id}", d.Drivers.GetByID)
				r.Patch("/{id}", d.Drivers.Update)
				r.With(auth.AdminOnly).Post("/{id}/deactivate", d.Drivers.Deactivate)
				r.Put("/{id}/location", d.Drivers.UpdateLocation)
				r.Get("/{id}/location", d.Drivers.GetLocation)
			})
		})
	})

	return r
}
