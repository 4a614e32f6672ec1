package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/observability/metrics"
	"github.com/wolfman30/doctor-booking/internal/state"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

// ErrNoRecipient is returned when the appointment has no patient email.
var ErrNoRecipient = errors.New("notify: appointment has no patient email")

const (
	confirmationSubject = "Appointment confirmed with {{.DoctorName}}"

	confirmationBody = `Hi {{.PatientName}},

Your appointment with {{.DoctorName}} ({{.Specialization}}) is confirmed.

Date: {{.Date}}
Time: {{.Time}}
Location: {{.Location}}

Reference: {{.AppointmentID}}
{{if .ProfileURL}}
View the doctor's profile: {{.ProfileURL}}
{{end}}`
)

type confirmationData struct {
	PatientName    string
	DoctorName     string
	Specialization string
	Date           string
	Time           string
	Location       string
	AppointmentID  string
	ProfileURL     string
}

// ConfirmerConfig configures confirmation emails.
type ConfirmerConfig struct {
	// PublicBaseURL is used to link back to the doctor's profile. Optional.
	PublicBaseURL string
	Subject       string
	Body          string
}

// Confirmer emails the patient once an appointment has been booked.
type Confirmer struct {
	sender  EmailSender
	cfg     ConfirmerConfig
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewConfirmer returns a Confirmer. A nil sender falls back to the stub.
func NewConfirmer(sender EmailSender, cfg ConfirmerConfig, m *metrics.BookingMetrics, logger *logging.Logger) *Confirmer {
	if logger == nil {
		logger = logging.Default()
	}
	if sender == nil {
		sender = NewStubEmailSender(logger)
	}
	if cfg.Subject == "" {
		cfg.Subject = confirmationSubject
	}
	if cfg.Body == "" {
		cfg.Body = confirmationBody
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &Confirmer{sender: sender, cfg: cfg, metrics: m, logger: logger}
}

// AppointmentConfirmed sends the confirmation email for appt.
func (c *Confirmer) AppointmentConfirmed(ctx context.Context, doctor doctors.Doctor, appt state.Appointment) error {
	if strings.TrimSpace(appt.PatientEmail) == "" {
		c.metrics.ObserveEmail("skipped")
		return ErrNoRecipient
	}

	msg, err := c.message(doctor, appt)
	if err != nil {
		c.metrics.ObserveEmail("failed")
		return err
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		c.metrics.ObserveEmail("failed")
		return fmt.Errorf("notify: send confirmation %s: %w", appt.ID, err)
	}
	c.metrics.ObserveEmail("sent")
	c.logger.Debug("confirmation email sent", "appointment_id", appt.ID, "doctor_id", doctor.ID)
	return nil
}

func (c *Confirmer) message(doctor doctors.Doctor, appt state.Appointment) (EmailMessage, error) {
	data := confirmationData{
		PatientName:    appt.PatientName,
		DoctorName:     doctor.Name,
		Specialization: doctor.Specialization,
		Date:           doctors.FormatDate(appt.Date, true),
		Time:           appt.Time,
		Location:       doctor.Location,
		AppointmentID:  appt.ID,
	}
	if c.cfg.PublicBaseURL != "" {
		data.ProfileURL = c.cfg.PublicBaseURL + "/doctors/" + doctor.ID
	}

	subject, err := renderText("confirmation_subject", c.cfg.Subject, data)
	if err != nil {
		return EmailMessage{}, err
	}
	body, err := renderText("confirmation_body", c.cfg.Body, data)
	if err != nil {
		return EmailMessage{}, err
	}
	return EmailMessage{
		To:       appt.PatientEmail,
		ToName:   appt.PatientName,
		Subject:  strings.TrimSpace(subject),
		Body:     body,
		Category: "appointment-confirmation",
	}, nil
}
