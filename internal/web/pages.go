package web

import (
	"strings"

	"github.com/wolfman30/doctor-booking/internal/booking"
	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/state"
)

type layoutData struct {
	Title            string
	ShowBack         bool
	AppointmentCount int
}

type homePage struct {
	layoutData
	SearchTerm string
	Doctors    []doctors.Doctor
}

type profilePage struct {
	layoutData
	Doctor     doctors.Doctor
	Dates      []string
	TotalSlots int
	AboutName  string
	Booking    *bookingPanel
}

type bookingPanel struct {
	Doctor       doctors.Doctor
	Token        string
	Form         *booking.Form
	Confirmation *booking.Confirmation
	Dates        []string
	Times        []string
}

type appointmentRow struct {
	state.Appointment
	DoctorName     string
	Specialization string
}

type appointmentsPage struct {
	layoutData
	Appointments []appointmentRow
}

func newProfilePage(store *state.Store, doc doctors.Doctor, flow *booking.Flow) profilePage {
	page := profilePage{
		layoutData: layoutData{
			Title:            doc.Name,
			ShowBack:         true,
			AppointmentCount: len(store.Appointments()),
		},
		Doctor:     doc,
		Dates:      doc.Availability.Dates(),
		TotalSlots: doc.Availability.TotalSlots(),
		AboutName:  aboutName(doc.Name),
	}
	if flow != nil {
		page.Booking = newBookingPanel(doc, *flow)
	}
	return page
}

func newBookingPanel(doc doctors.Doctor, flow booking.Flow) *bookingPanel {
	panel := &bookingPanel{
		Doctor: doc,
		Token:  flow.Token,
		Dates:  doc.Availability.Dates(),
	}
	if form, ok := flow.Form(); ok {
		panel.Form = &form
		panel.Times = booking.AvailableTimes(doc, form.Fields.Date)
	}
	if c, ok := flow.Confirmation(); ok {
		panel.Confirmation = &c
	}
	return panel
}

func newAppointmentsPage(store *state.Store) appointmentsPage {
	appts := store.Appointments()
	rows := make([]appointmentRow, 0, len(appts))
	for _, a := range appts {
		row := appointmentRow{Appointment: a, DoctorName: a.DoctorID}
		if d, ok := store.Doctor(a.DoctorID); ok {
			row.DoctorName = d.Name
			row.Specialization = d.Specialization
		}
		rows = append(rows, row)
	}
	return appointmentsPage{
		layoutData: layoutData{
			Title:            "My Appointments",
			ShowBack:         true,
			AppointmentCount: len(appts),
		},
		Appointments: rows,
	}
}

// aboutName picks the given name out of "Dr. Sarah Johnson".
func aboutName(name string) string {
	parts := strings.Fields(name)
	switch {
	case len(parts) >= 2 && strings.EqualFold(strings.TrimSuffix(parts[0], "."), "dr"):
		return parts[1]
	case len(parts) >= 1:
		return parts[0]
	}
	return name
}
