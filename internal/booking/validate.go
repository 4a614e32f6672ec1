// Package booking implements the two-step booking flow: a validated patient
// form that, once accepted, books a slot and shows a confirmation.
package booking

import (
	"regexp"
	"strings"

	"github.com/wolfman30/doctor-booking/internal/doctors"
)

// Field names used as FieldErrors keys and HTML input names.
const (
	FieldPatientName  = "patientName"
	FieldPatientEmail = "patientEmail"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldDoctor       = "doctor"
)

// Validation messages shown next to the offending field.
const (
	MsgNameRequired     = "Patient name is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgDateRequired     = "Please select a date"
	MsgTimeRequired     = "Please select a time"
	MsgDoctorNotBooking = "This doctor is not accepting new appointments"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Fields are the values a patient enters in the booking form.
type Fields struct {
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// FieldErrors maps a field name to its message. Empty means valid.
type FieldErrors map[string]string

// Has reports whether field has an error.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Validate checks fields against doctor's availability. It has no side
// effects and returns a new map on every call.
func Validate(doctor doctors.Doctor, f Fields) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.PatientName) == "" {
		errs[FieldPatientName] = MsgNameRequired
	}

	if strings.TrimSpace(f.PatientEmail) == "" {
		errs[FieldPatientEmail] = MsgEmailRequired
	} else if !emailPattern.MatchString(f.PatientEmail) {
		errs[FieldPatientEmail] = MsgEmailInvalid
	}

	if !doctor.Availability.Has(f.Date) {
		errs[FieldDate] = MsgDateRequired
	}

	if !doctor.Availability.HasSlot(f.Date, f.Time) {
		errs[FieldTime] = MsgTimeRequired
	}

	if !doctor.IsAvailable {
		errs[FieldDoctor] = MsgDoctorNotBooking
	}

	return errs
}

// AvailableTimes returns the selectable times for date, empty when no date
// has been chosen or the date is not offered.
func AvailableTimes(doctor doctors.Doctor, date string) []string {
	return doctor.Availability.TimesOn(date)
}
