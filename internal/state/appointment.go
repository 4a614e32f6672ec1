package state

import "time"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a patient's reservation of one doctor slot.
type Appointment struct {
	ID           string    `json:"id"`
	DoctorID     string    `json:"doctor_id"`
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAppointment is the caller-supplied part of an appointment. ID, status
// and creation time are assigned by the store.
type NewAppointment struct {
	DoctorID     string `json:"doctor_id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}
