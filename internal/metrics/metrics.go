package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-lifecycle/internal/apperr"
	"delivery-lifecycle/internal/domain"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// HTTP holds request metrics labelled by method, route pattern and status.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP creates unregistered HTTP collectors.
func NewHTTP() *HTTP {
	labels := []string{"method", "path", "status"}
	return &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}
}

// Collectors returns every collector for registration.
func (m *HTTP) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.duration}
}

// Observe records one served request.
func (m *HTTP) Observe(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, status).Inc()
	m.duration.WithLabelValues(method, path, status).Observe(seconds)
}

// Requests exposes the request counter for tests.
func (m *HTTP) Requests() *prometheus.CounterVec { return m.requests }

// Duration exposes the latency histogram for tests.
func (m *HTTP) Duration() *prometheus.HistogramVec { return m.duration }

// Lifecycle holds state machine metrics. A nil *Lifecycle records nothing.
type Lifecycle struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// NewLifecycle creates unregistered lifecycle collectors.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Accepted delivery status transitions",
		}, []string{"from", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_transition_rejections_total",
			Help: "Rejected transition and assignment requests by error kind",
		}, []string{"kind"}),
	}
}

// Collectors returns every collector for registration.
func (m *Lifecycle) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.transitions, m.rejections}
}

// ObserveTransition counts an accepted transition.
func (m *Lifecycle) ObserveTransition(from, to domain.DeliveryStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveRejection counts a caller-facing error. Infrastructure errors are ignored.
func (m *Lifecycle) ObserveRejection(err error) {
	if m == nil {
		return
	}
	if kind := apperr.Kind(err); kind != "" {
		m.rejections.WithLabelValues(kind).Inc()
	}
}

// Transitions exposes the transition counter for tests.
func (m *Lifecycle) Transitions() *prometheus.CounterVec { return m.transitions }

// Rejections exposes the rejection counter for tests.
func (m *Lifecycle) Rejections() *prometheus.CounterVec { return m.rejections }

// Assignment holds auto-assign metrics. A nil *Assignment records nothing.
type Assignment struct {
	assigned  prometheus.Counter
	unmatched prometheus.Counter
}

// NewAssignment creates unregistered assignment collectors.
func NewAssignment() *Assignment {
	return &Assignment{
		assigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auto_assign_assigned_total",
			Help: "Deliveries bound to a driver by auto-assign",
		}),
		unmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auto_assign_unmatched_total",
			Help: "Pending deliveries auto-assign could not match to a driver",
		}),
	}
}

// Collectors returns every collector for registration.
func (m *Assignment) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.assigned, m.unmatched}
}

// ObserveBatch records the size of one auto-assign result.
func (m *Assignment) ObserveBatch(res domain.AutoAssignResult) {
	if m == nil {
		return
	}
	m.assigned.Add(float64(len(res.Assigned)))
	m.unmatched.Add(float64(len(res.Unmatched)))
}

// Notifier holds event publication metrics. A nil *Notifier records nothing.
type Notifier struct {
	failures *prometheus.CounterVec
	retries  prometheus.Counter
}

// NewNotifier creates unregistered notifier collectors.
func NewNotifier() *Notifier {
	return &Notifier{
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_publish_failures_total",
			Help: "Lifecycle events a sink failed to accept",
		}, []string{"sink"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifier_retries_total",
			Help: "Total number of retry attempts performed by event publishers",
		}),
	}
}

// Collectors returns every collector for registration.
func (m *Notifier) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.failures, m.retries}
}

// Failure counts one failed publication on sink.
func (m *Notifier) Failure(sink string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(sink).Inc()
}

// Inc counts one retry attempt.
func (m *Notifier) Inc() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// Failures exposes the failure counter for tests.
func (m *Notifier) Failures() *prometheus.CounterVec { return m.failures }

// Register registers all collectors on r, tolerating ones that are already registered.
func Register(r prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
