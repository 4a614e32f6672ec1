package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/doctor-booking/internal/booking"
	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/session"
	"github.com/wolfman30/doctor-booking/internal/state"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

// API serves read-only JSON views of the caller's session.
type API struct {
	logger *logging.Logger
}

func NewAPI(logger *logging.Logger) *API {
	if logger == nil {
		logger = logging.Default()
	}
	return &API{logger: logger}
}

type doctorsResponse struct {
	Query   string           `json:"query"`
	Count   int              `json:"count"`
	Doctors []doctors.Doctor `json:"doctors"`
}

type timesResponse struct {
	DoctorID string   `json:"doctor_id"`
	Date     string   `json:"date"`
	Times    []string `json:"times"`
}

type appointmentsResponse struct {
	Count        int                 `json:"count"`
	Appointments []state.Appointment `json:"appointments"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (a *API) store(w http.ResponseWriter, r *http.Request) (*state.Store, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session unavailable"})
		return nil, false
	}
	return s.Store, true
}

// ListDoctors filters by q without touching the session's search term.
func (a *API) ListDoctors(w http.ResponseWriter, r *http.Request) {
	store, ok := a.store(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	list := doctors.Filter(store.Doctors(), q)
	writeJSON(w, http.StatusOK, doctorsResponse{Query: q, Count: len(list), Doctors: list})
}

func (a *API) GetDoctor(w http.ResponseWriter, r *http.Request) {
	store, ok := a.store(w, r)
	if !ok {
		return
	}
	doc, ok := store.Doctor(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "doctor not found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DoctorTimes returns the selectable times for ?date=, empty when the date is
// missing or not offered.
func (a *API) DoctorTimes(w http.ResponseWriter, r *http.Request) {
	store, ok := a.store(w, r)
	if !ok {
		return
	}
	doc, ok := store.Doctor(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "doctor not found"})
		return
	}
	date := r.URL.Query().Get("date")
	writeJSON(w, http.StatusOK, timesResponse{
		DoctorID: doc.ID,
		Date:     date,
		Times:    booking.AvailableTimes(doc, date),
	})
}

func (a *API) ListAppointments(w http.ResponseWriter, r *http.Request) {
	store, ok := a.store(w, r)
	if !ok {
		return
	}
	appts := store.Appointments()
	writeJSON(w, http.StatusOK, appointmentsResponse{Count: len(appts), Appointments: appts})
}
