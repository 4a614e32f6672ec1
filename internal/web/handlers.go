package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/doctor-booking/internal/booking"
	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/observability/metrics"
	"github.com/wolfman30/doctor-booking/internal/session"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

// Handler serves the HTML pages. Every route expects session.Middleware in
// front of it.
type Handler struct {
	views    *Views
	bookings *booking.Service
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	newToken func() string
}

// NewHandler wires the page handlers.
func NewHandler(views *Views, bookings *booking.Service, m *metrics.BookingMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if bookings == nil {
		bookings = booking.NewService(nil, nil, m, logger)
	}
	return &Handler{
		views:    views,
		bookings: bookings,
		metrics:  m,
		logger:   logger,
		newToken: booking.NewToken,
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		h.logger.Error("web: request without session", "path", r.URL.Path)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	if err := h.views.Render(w, status, page, data); err != nil {
		h.logger.Error("web: render failed", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) doctor(w http.ResponseWriter, r *http.Request, s *session.Session) (doctors.Doctor, bool) {
	doc, ok := s.Store.Doctor(chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return doctors.Doctor{}, false
	}
	return doc, true
}

func profilePath(id string) string {
	return "/doctors/" + url.PathEscape(id)
}

// Home lists doctors. A q query parameter replaces the search term first.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if q := r.URL.Query(); q.Has("q") {
		h.setSearch(s, q.Get("q"))
	}

	filtered := s.Store.FilteredDoctors()
	h.render(w, http.StatusOK, "home", homePage{
		layoutData: layoutData{
			Title:            "Find Doctors",
			AppointmentCount: len(s.Store.Appointments()),
		},
		SearchTerm: s.Store.SearchTerm(),
		Doctors:    filtered,
	})
}

// Search stores the posted term and redirects to the listing.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	h.setSearch(s, r.PostForm.Get("q"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) setSearch(s *session.Session, term string) {
	s.Store.SetSearchTerm(term)
	if term != "" {
		h.metrics.ObserveSearch(len(s.Store.FilteredDoctors()) > 0)
	}
}

// Profile shows a doctor. Unknown ids go back to the listing.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	doc, ok := h.doctor(w, r, s)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "profile", newProfilePage(s.Store, doc, nil))
}

// OpenBooking shows the profile with the doctor's booking flow open.
func (h *Handler) OpenBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	doc, ok := h.doctor(w, r, s)
	if !ok {
		return
	}
	flow := s.Flow(doc.ID, h.newToken)
	h.render(w, http.StatusOK, "profile", newProfilePage(s.Store, doc, &flow))
}

// SelectDate keeps the typed name and email, switches the date and clears
// the chosen time.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	doc, ok := h.doctor(w, r, s)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := formFields(r.PostForm)

	flow, _ := s.UpdateFlow(doc.ID, h.newToken, func(f booking.Flow) (booking.Flow, error) {
		return f.Edit(func(form booking.Form) booking.Form {
			return form.WithName(in.PatientName).WithEmail(in.PatientEmail).WithDate(in.Date)
		}), nil
	})
	h.render(w, http.StatusOK, "profile", newProfilePage(s.Store, doc, &flow))
}

// SubmitBooking validates the posted form and books the slot. Invalid input
// re-renders the form with 422. A replayed or stale post shows the flow as
// it currently is.
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	doc, ok := h.doctor(w, r, s)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := formFields(r.PostForm)
	token := r.PostForm.Get("token")

	flow, err := s.UpdateFlow(doc.ID, h.newToken, func(f booking.Flow) (booking.Flow, error) {
		edited := f.Edit(func(form booking.Form) booking.Form { return form.Apply(in) })
		return h.bookings.Submit(r.Context(), s.Store, edited, token)
	})
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrStaleSubmission),
		errors.Is(err, booking.ErrDuplicateSubmission),
		errors.Is(err, booking.ErrNotEditable):
		http.Redirect(w, r, profilePath(doc.ID)+"/book", http.StatusSeeOther)
		return
	default:
		h.logger.Error("web: booking failed", "doctor_id", doc.ID, "error", err)
		http.Error(w, "could not book appointment", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if form, ok := flow.Form(); ok && len(form.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	h.render(w, status, "profile", newProfilePage(s.Store, doc, &flow))
}

// CloseBooking handles both cancel and done: the flow returns to an empty
// form with a fresh token.
func (h *Handler) CloseBooking(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	doc, ok := h.doctor(w, r, s)
	if !ok {
		return
	}
	_, _ = s.UpdateFlow(doc.ID, h.newToken, func(f booking.Flow) (booking.Flow, error) {
		return f.Close(h.newToken()), nil
	})
	http.Redirect(w, r, profilePath(doc.ID), http.StatusSeeOther)
}

// Appointments lists what this session has booked.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, "appointments", newAppointmentsPage(s.Store))
}

func formFields(form url.Values) booking.Fields {
	return booking.Fields{
		PatientName:  form.Get(booking.FieldPatientName),
		PatientEmail: form.Get(booking.FieldPatientEmail),
		Date:         form.Get(booking.FieldDate),
		Time:         form.Get(booking.FieldTime),
	}
}
