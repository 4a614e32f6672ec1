package booking

import (
	"errors"

	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/state"
)

var (
	// ErrNotEditable is returned when submitting a flow that already reached
	// the confirmation step.
	ErrNotEditable = errors.New("booking: flow already confirmed")

	// ErrDoctorMismatch is returned when a flow is submitted against a
	// different doctor than the one it was opened for.
	ErrDoctorMismatch = errors.New("booking: doctor does not match flow")
)

// StepKind tags the two steps of a flow.
type StepKind string

const (
	StepForm         StepKind = "form"
	StepConfirmation StepKind = "confirmation"
)

// Step is either a Form or a Confirmation.
type Step interface {
	Kind() StepKind
	step()
}

// Form is the editable step.
type Form struct {
	Fields Fields
	Errors FieldErrors
}

// Confirmation is the terminal step reached after a successful booking.
type Confirmation struct {
	Submitted   Fields
	Appointment state.Appointment
}

func (Form) Kind() StepKind         { return StepForm }
func (Form) step()                  {}
func (Confirmation) Kind() StepKind { return StepConfirmation }
func (Confirmation) step()          {}

// NewForm returns an empty form with no errors.
func NewForm() Form {
	return Form{Errors: FieldErrors{}}
}

func (f Form) WithName(name string) Form {
	f.Fields.PatientName = name
	return f
}

func (f Form) WithEmail(email string) Form {
	f.Fields.PatientEmail = email
	return f
}

// WithDate selects date. A different date clears the chosen time.
func (f Form) WithDate(date string) Form {
	if date != f.Fields.Date {
		f.Fields.Time = ""
	}
	f.Fields.Date = date
	return f
}

func (f Form) WithTime(clock string) Form {
	f.Fields.Time = clock
	return f
}

// Apply copies a full form post. The posted time is kept only when the
// posted date matches the date already selected, since the time choices on
// the page belong to that date. A different date clears the time.
func (f Form) Apply(in Fields) Form {
	prevDate := f.Fields.Date
	f = f.WithName(in.PatientName).WithEmail(in.PatientEmail).WithDate(in.Date)
	if in.Time != "" && in.Date == prevDate {
		f = f.WithTime(in.Time)
	}
	return f
}

// BookFunc records a validated booking and returns the stored appointment.
type BookFunc func(Fields) (state.Appointment, error)

// Flow is one opening of the booking form for a doctor. Token identifies the
// opening so a submission can be accepted at most once.
type Flow struct {
	DoctorID string
	Token    string
	Step     Step
}

// NewFlow opens a flow in the initial empty form step.
func NewFlow(doctorID, token string) Flow {
	return Flow{DoctorID: doctorID, Token: token, Step: NewForm()}
}

// Form returns the form step if the flow is editable.
func (f Flow) Form() (Form, bool) {
	form, ok := f.Step.(Form)
	return form, ok
}

// Confirmation returns the confirmation step if the flow was submitted.
func (f Flow) Confirmation() (Confirmation, bool) {
	c, ok := f.Step.(Confirmation)
	return c, ok
}

// Edit applies fn to the form. It is a no-op once confirmed.
func (f Flow) Edit(fn func(Form) Form) Flow {
	form, ok := f.Form()
	if !ok {
		return f
	}
	f.Step = fn(form)
	return f
}

// Submit validates the current form. Validation failures stay on the form
// with Errors set and never call book. On success book is called exactly once
// and the flow moves to the confirmation step.
func (f Flow) Submit(doctor doctors.Doctor, book BookFunc) (Flow, error) {
	form, ok := f.Form()
	if !ok {
		return f, ErrNotEditable
	}
	if doctor.ID != f.DoctorID {
		return f, ErrDoctorMismatch
	}

	form.Errors = Validate(doctor, form.Fields)
	if len(form.Errors) > 0 {
		f.Step = form
		return f, nil
	}

	appt, err := book(form.Fields)
	if err != nil {
		return f, err
	}

	f.Step = Confirmation{Submitted: form.Fields, Appointment: appt}
	return f, nil
}

// Close resets the flow to an empty form with a new token. It serves both
// cancel (from the form) and done (from the confirmation).
func (f Flow) Close(token string) Flow {
	return NewFlow(f.DoctorID, token)
}
