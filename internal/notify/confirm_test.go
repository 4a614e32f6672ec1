package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/observability/metrics"
	"github.com/wolfman30/doctor-booking/internal/state"
)

type failingSender struct{ err error }

func (f failingSender) Send(context.Context, EmailMessage) error { return f.err }

func sampleBooking() (doctors.Doctor, state.Appointment) {
	doc := doctors.Doctor{ID: "1", Name: "Dr. Sarah Johnson", Specialization: "Cardiologist", Location: "New York Medical Center"}
	appt := state.Appointment{
		ID:           "appt-1",
		DoctorID:     "1",
		PatientName:  "Jane Doe",
		PatientEmail: "jane@example.com",
		Date:         "2024-03-10",
		Time:         "9:00 AM",
		Status:       state.StatusConfirmed,
	}
	return doc, appt
}

func TestConfirmerSendsRenderedEmail(t *testing.T) {
	stub := NewStubEmailSender(nil)
	c := NewConfirmer(stub, ConfirmerConfig{PublicBaseURL: "https://care.example.com/"}, metrics.NewBookingMetrics(prometheus.NewRegistry()), nil)

	doc, appt := sampleBooking()
	require.NoError(t, c.AppointmentConfirmed(context.Background(), doc, appt))

	sent := stub.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Jane Doe", msg.ToName)
	assert.Equal(t, "Appointment confirmed with Dr. Sarah Johnson", msg.Subject)
	assert.Contains(t, msg.Body, "Date: Sunday, March 10, 2024")
	assert.Contains(t, msg.Body, "Time: 9:00 AM")
	assert.Contains(t, msg.Body, "Reference: appt-1")
	assert.Contains(t, msg.Body, "https://care.example.com/doctors/1")
	assert.Equal(t, "appointment-confirmation", msg.Category)
}

func TestConfirmerWithoutBaseURLOmitsLink(t *testing.T) {
	stub := NewStubEmailSender(nil)
	c := NewConfirmer(stub, ConfirmerConfig{}, nil, nil)

	doc, appt := sampleBooking()
	require.NoError(t, c.AppointmentConfirmed(context.Background(), doc, appt))
	assert.False(t, strings.Contains(stub.Sent()[0].Body, "profile"))
}

func TestConfirmerNoRecipient(t *testing.T) {
	c := NewConfirmer(nil, ConfirmerConfig{}, nil, nil)
	doc, appt := sampleBooking()
	appt.PatientEmail = ""

	err := c.AppointmentConfirmed(context.Background(), doc, appt)
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestConfirmerSendFailure(t *testing.T) {
	boom := errors.New("smtp down")
	c := NewConfirmer(failingSender{err: boom}, ConfirmerConfig{}, nil, nil)
	doc, appt := sampleBooking()

	err := c.AppointmentConfirmed(context.Background(), doc, appt)
	assert.ErrorIs(t, err, boom)
}

func TestConfirmerStrictTemplate(t *testing.T) {
	c := NewConfirmer(NewStubEmailSender(nil), ConfirmerConfig{Body: "{{.Missing}}"}, nil, nil)
	doc, appt := sampleBooking()

	err := c.AppointmentConfirmed(context.Background(), doc, appt)
	assert.Error(t, err)
}

func TestRenderTextRequiresTemplate(t *testing.T) {
	_, err := renderText("empty", "", nil)
	assert.Error(t, err)
}
