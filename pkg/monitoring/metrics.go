package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics collection. A nil collector is
// valid and records nothing.
type MetricsCollector struct {
	serviceName string
	registry    *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	authAttemptsTotal     *prometheus.CounterVec
	registrationsTotal    *prometheus.CounterVec
	appointmentsBooked    *prometheus.CounterVec
	appointmentTransition *prometheus.CounterVec
	dbTxDuration          *prometheus.HistogramVec
	rateLimitRejections   *prometheus.CounterVec
	systemErrors          *prometheus.CounterVec
}

// NewMetricsCollector creates a new metrics collector backed by its own
// registry, including the Go runtime and process collectors
func NewMetricsCollector(serviceName string) *MetricsCollector {
	m := &MetricsCollector{
		serviceName: serviceName,
		registry:    prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code", "service"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "service"},
		),
		authAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_attempts_total",
				Help: "Total number of authentication attempts by outcome",
			},
			[]string{"method", "status", "service"},
		),
		registrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_registrations_total",
				Help: "Total number of account registrations by kind and outcome",
			},
			[]string{"kind", "status", "service"},
		),
		appointmentsBooked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_appointments_booked_total",
				Help: "Total number of appointments requested",
			},
			[]string{"service"},
		),
		appointmentTransition: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinic_appointment_transitions_total",
				Help: "Total number of appointment status changes",
			},
			[]string{"from", "to", "service"},
		),
		dbTxDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_transaction_duration_seconds",
				Help:    "Duration of database transactions in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"name", "status", "service"},
		),
		rateLimitRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_rejections_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"endpoint", "service"},
		),
		systemErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "system_errors_total",
				Help: "Total number of system errors",
			},
			[]string{"error_type", "component", "service"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.authAttemptsTotal,
		m.registrationsTotal,
		m.appointmentsBooked,
		m.appointmentTransition,
		m.dbTxDuration,
		m.rateLimitRejections,
		m.systemErrors,
	)

	return m
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCode, m.serviceName).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint, m.serviceName).Observe(duration.Seconds())
}

// RecordAuthAttempt records authentication attempt metrics
func (m *MetricsCollector) RecordAuthAttempt(method, status string) {
	if m == nil {
		return
	}
	m.authAttemptsTotal.WithLabelValues(method, status, m.serviceName).Inc()
}

// RecordRegistration records an account registration outcome
func (m *MetricsCollector) RecordRegistration(kind, status string) {
	if m == nil {
		return
	}
	m.registrationsTotal.WithLabelValues(kind, status, m.serviceName).Inc()
}

// RecordAppointmentBooked counts a committed appointment request
func (m *MetricsCollector) RecordAppointmentBooked() {
	if m == nil {
		return
	}
	m.appointmentsBooked.WithLabelValues(m.serviceName).Inc()
}

// RecordAppointmentTransition counts a committed status change
func (m *MetricsCollector) RecordAppointmentTransition(from, to string) {
	if m == nil {
		return
	}
	m.appointmentTransition.WithLabelValues(from, to, m.serviceName).Inc()
}

// RecordDBTransaction records database transaction metrics
func (m *MetricsCollector) RecordDBTransaction(name string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "committed"
	if err != nil {
		status = "rolled_back"
		m.RecordSystemError("transaction_failed", "database")
	}
	m.dbTxDuration.WithLabelValues(name, status, m.serviceName).Observe(duration.Seconds())
}

// RecordRateLimitRejection counts a request denied by the rate limiter
func (m *MetricsCollector) RecordRateLimitRejection(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitRejections.WithLabelValues(endpoint, m.serviceName).Inc()
}

// RecordSystemError records system error metrics
func (m *MetricsCollector) RecordSystemError(errorType, component string) {
	if m == nil {
		return
	}
	m.systemErrors.WithLabelValues(errorType, component, m.serviceName).Inc()
}

// Registry exposes the underlying registry for tests and custom collectors
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
