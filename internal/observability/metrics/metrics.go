package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for search, booking and notification flows.
type BookingMetrics struct {
	submissionsTotal      *prometheus.CounterVec
	validationErrorsTotal *prometheus.CounterVec
	searchesTotal         *prometheus.CounterVec
	emailsTotal           *prometheus.CounterVec
	activeSessions        prometheus.Gauge
	liveConnections       prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthcare",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking form submissions by outcome",
		}, []string{"outcome"}),
		validationErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthcare",
			Subsystem: "booking",
			Name:      "validation_errors_total",
			Help:      "Booking form validation errors by field",
		}, []string{"field"}),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthcare",
			Subsystem: "directory",
			Name:      "searches_total",
			Help:      "Doctor searches by whether anything matched",
		}, []string{"result"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthcare",
			Subsystem: "notify",
			Name:      "confirmation_emails_total",
			Help:      "Confirmation emails by delivery status",
		}, []string{"status"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthcare",
			Subsystem: "session",
			Name:      "active",
			Help:      "Browser sessions currently held in memory",
		}),
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthcare",
			Subsystem: "live",
			Name:      "connections",
			Help:      "Open live update websocket connections",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.submissionsTotal,
		m.validationErrorsTotal,
		m.searchesTotal,
		m.emailsTotal,
		m.activeSessions,
		m.liveConnections,
	)
	return m
}

// ObserveSubmission counts one submission: confirmed, invalid, duplicate or error.
func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveValidationError(field string) {
	if m == nil {
		return
	}
	m.validationErrorsTotal.WithLabelValues(field).Inc()
}

func (m *BookingMetrics) ObserveSearch(matched bool) {
	if m == nil {
		return
	}
	label := "empty"
	if matched {
		label = "match"
	}
	m.searchesTotal.WithLabelValues(label).Inc()
}

func (m *BookingMetrics) ObserveEmail(status string) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *BookingMetrics) AddLiveConnections(delta int) {
	if m == nil {
		return
	}
	m.liveConnections.Add(float64(delta))
}
