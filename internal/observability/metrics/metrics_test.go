package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabel(metric, label, value) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveSubmission("confirmed")
	m.ObserveSubmission("confirmed")
	m.ObserveSubmission("invalid")
	m.ObserveValidationError("patientEmail")
	m.ObserveSearch(true)
	m.ObserveSearch(false)
	m.ObserveEmail("sent")
	m.SetActiveSessions(3)
	m.AddLiveConnections(1)

	if got := counterValue(t, reg, "healthcare_booking_submissions_total", "outcome", "confirmed"); got != 2 {
		t.Fatalf("expected 2 confirmed submissions, got %v", got)
	}
	if got := counterValue(t, reg, "healthcare_booking_validation_errors_total", "field", "patientEmail"); got != 1 {
		t.Fatalf("expected 1 email validation error, got %v", got)
	}
	if got := counterValue(t, reg, "healthcare_directory_searches_total", "result", "empty"); got != 1 {
		t.Fatalf("expected 1 empty search, got %v", got)
	}
}

func TestBookingMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	defer func() { prometheus.DefaultRegisterer = prev }()

	m := NewBookingMetrics(nil)
	m.ObserveEmail("failed")
	if got := counterValue(t, reg, "healthcare_notify_confirmation_emails_total", "status", "failed"); got != 1 {
		t.Fatalf("expected failed email counted on default registerer, got %v", got)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveSubmission("confirmed")
	m.ObserveValidationError("date")
	m.ObserveSearch(true)
	m.ObserveEmail("sent")
	m.SetActiveSessions(1)
	m.AddLiveConnections(-1)
}
