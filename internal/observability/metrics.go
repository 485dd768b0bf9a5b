package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	created         *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	classifications *prometheus.CounterVec
	breached        prometheus.Gauge
	nearBreach      prometheus.Gauge
	published       *prometheus.CounterVec
}

// NewMetrics registers collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total number of HTTP requests."},
			[]string{"route", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_errors_total", Help: "Error responses by code."},
			[]string{"route", "method", "code"},
		),
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "complaints_created_total", Help: "Complaints filed."},
			[]string{"priority", "category"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "complaint_status_transitions_total", Help: "Accepted status changes."},
			[]string{"from", "to"},
		),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "classifications_total", Help: "Classification results by field origin."},
			[]string{"field", "origin"},
		),
		breached: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "complaints_sla_breached", Help: "Open complaints past their SLA deadline."},
		),
		nearBreach: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "complaints_sla_near_breach", Help: "Open complaints close to their SLA deadline."},
		),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "events_published_total", Help: "Domain events sent to the broker."},
			[]string{"event_type", "result"},
		),
	}
	reg.MustRegister(m.requests, m.latency, m.errors, m.created, m.transitions,
		m.classifications, m.breached, m.nearBreach, m.published)
	return m
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// ComplaintCreated counts a filed complaint.
func (m *Metrics) ComplaintCreated(p domain.Priority, c domain.Category) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(string(p), string(c)).Inc()
}

// StatusChanged counts an accepted transition.
func (m *Metrics) StatusChanged(from, to domain.ComplaintStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveClassification records where each classified field came from.
func (m *Metrics) ObserveClassification(sentiment, category domain.Origin) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues("sentiment", string(sentiment)).Inc()
	m.classifications.WithLabelValues("category", string(category)).Inc()
}

// SetSLAState publishes the latest SLA scan.
func (m *Metrics) SetSLAState(breached, nearBreach int) {
	if m == nil {
		return
	}
	m.breached.Set(float64(breached))
	m.nearBreach.Set(float64(nearBreach))
}

// EventPublished counts a broker write.
func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.published.WithLabelValues(eventType, result).Inc()
}

// Handler exposes g in the Prometheus text format on a fiber route.
func Handler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
