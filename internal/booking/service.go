package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/idempotency"
	"github.com/wolfman30/doctor-booking/internal/observability/metrics"
	"github.com/wolfman30/doctor-booking/internal/state"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

var tracer = otel.Tracer("healthcare.internal.booking")

var (
	// ErrStaleSubmission is returned when the posted token does not belong to
	// the flow currently open for the doctor.
	ErrStaleSubmission = errors.New("booking: stale submission token")

	// ErrDuplicateSubmission is returned when the token was already used.
	ErrDuplicateSubmission = errors.New("booking: submission already processed")

	// ErrUnknownDoctor is returned when the flow's doctor is not in the store.
	ErrUnknownDoctor = errors.New("booking: unknown doctor")
)

const tokenKeyPrefix = "booking:token:"

// Notifier is told about each confirmed appointment.
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, doctor doctors.Doctor, appt state.Appointment) error
}

// Service submits booking flows against a session store.
type Service struct {
	claims   idempotency.Store
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService wires a Service. A nil claim store falls back to process memory
// and a nil notifier disables confirmation emails.
func NewService(claims idempotency.Store, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if claims == nil {
		claims = idempotency.NewMemoryStore(0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{claims: claims, notifier: notifier, metrics: m, logger: logger}
}

// NewToken returns a fresh one-shot submission token.
func NewToken() string {
	return uuid.NewString()
}

// Open starts a booking flow for doctorID with a fresh token.
func (s *Service) Open(doctorID string) Flow {
	return NewFlow(doctorID, NewToken())
}

// Submit validates flow and, when valid, appends exactly one appointment to
// store. token is the value posted with the form. Validation failures return
// the flow with field errors and a nil error.
func (s *Service) Submit(ctx context.Context, store *state.Store, flow Flow, token string) (Flow, error) {
	ctx, span := tracer.Start(ctx, "booking.submit",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("healthcare.doctor_id", flow.DoctorID)),
	)
	defer span.End()

	if token == "" || token != flow.Token {
		s.metrics.ObserveSubmission("stale")
		span.RecordError(ErrStaleSubmission)
		return flow, ErrStaleSubmission
	}

	doctor, ok := store.Doctor(flow.DoctorID)
	if !ok {
		s.metrics.ObserveSubmission("error")
		span.RecordError(ErrUnknownDoctor)
		return flow, fmt.Errorf("%w: %s", ErrUnknownDoctor, flow.DoctorID)
	}

	book := func(f Fields) (state.Appointment, error) {
		claimed, err := s.claims.Claim(ctx, tokenKeyPrefix+token)
		if err != nil {
			return state.Appointment{}, fmt.Errorf("booking: claim token: %w", err)
		}
		if !claimed {
			return state.Appointment{}, ErrDuplicateSubmission
		}
		return store.AddAppointment(state.NewAppointment{
			DoctorID:     doctor.ID,
			PatientName:  f.PatientName,
			PatientEmail: f.PatientEmail,
			Date:         f.Date,
			Time:         f.Time,
		}), nil
	}

	next, err := flow.Submit(doctor, book)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrDuplicateSubmission) || errors.Is(err, ErrNotEditable) {
			s.metrics.ObserveSubmission("duplicate")
			s.logger.Warn("duplicate booking submission ignored", "doctor_id", doctor.ID)
		} else {
			s.metrics.ObserveSubmission("error")
			s.logger.Error("booking submission failed", "doctor_id", doctor.ID, "error", err)
		}
		return flow, err
	}

	if form, ok := next.Form(); ok {
		s.metrics.ObserveSubmission("invalid")
		fields := make([]string, 0, len(form.Errors))
		for field := range form.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			s.metrics.ObserveValidationError(field)
		}
		span.SetAttributes(attribute.StringSlice("healthcare.booking.invalid_fields", fields))
		return next, nil
	}

	confirmation, _ := next.Confirmation()
	appt := confirmation.Appointment
	s.metrics.ObserveSubmission("confirmed")
	span.SetAttributes(attribute.String("healthcare.appointment_id", appt.ID))
	s.logger.Info("appointment booked", "appointment_id", appt.ID, "doctor_id", doctor.ID, "date", appt.Date, "time", appt.Time)

	if s.notifier != nil {
		if err := s.notifier.AppointmentConfirmed(ctx, doctor, appt); err != nil {
			s.logger.Warn("confirmation email not sent", "appointment_id", appt.ID, "error", err)
		}
	}
	return next, nil
}
