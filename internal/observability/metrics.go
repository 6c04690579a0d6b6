package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by the HTTP layer and services.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	ticketActions   *prometheus.CounterVec
	authSubmissions *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "HTTP requests that ended in a domain error.",
		}, []string{"path", "method", "code"}),
		ticketActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_actions_total",
			Help: "Ticket reducer actions dispatched.",
		}, []string{"action"}),
		authSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_submissions_total",
			Help: "Signup and login submissions by outcome.",
		}, []string{"flow", "outcome"}),
	}
	m.registry.MustRegister(m.requests, m.requestDuration, m.errors, m.ticketActions, m.authSubmissions)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordTicketAction counts a dispatched reducer action.
func (m *Metrics) RecordTicketAction(action string) {
	if m == nil {
		return
	}
	m.ticketActions.WithLabelValues(action).Inc()
}

// RecordAuthSubmission counts a completed signup or login submission.
func (m *Metrics) RecordAuthSubmission(flow, outcome string) {
	if m == nil {
		return
	}
	m.authSubmissions.WithLabelValues(flow, outcome).Inc()
}
