// Package state holds the per-session application state: the seeded doctor
// list, the appointments booked so far and the current search term.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/doctor-booking/internal/doctors"
)

// ChangeKind identifies which part of the state changed.
type ChangeKind string

const (
	AppointmentAdded ChangeKind = "appointment.added"
	SearchChanged    ChangeKind = "search.changed"
)

// Change is delivered to listeners after a mutation commits.
type Change struct {
	Kind             ChangeKind
	Appointment      *Appointment
	SearchTerm       string
	AppointmentCount int
}

// Listener observes store changes. Listeners run synchronously on the
// mutating goroutine and must not call back into mutations.
type Listener func(Change)

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides appointment id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithListener registers a listener at construction time.
func WithListener(l Listener) Option {
	return func(s *Store) {
		if l != nil {
			s.listeners[s.nextListener] = l
			s.nextListener++
		}
	}
}

// Store is the single source of truth shared by every view of one session.
// AddAppointment and SetSearchTerm are the only mutations.
type Store struct {
	mu           sync.RWMutex
	doctors      []doctors.Doctor
	appointments []Appointment
	searchTerm   string

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int

	now   func() time.Time
	newID func() string
}

// New creates a store seeded with a deep copy of list.
func New(list []doctors.Doctor, opts ...Option) *Store {
	s := &Store{
		doctors:   doctors.CloneAll(list),
		listeners: make(map[int]Listener),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Doctors returns a copy of the seeded doctors in their original order.
func (s *Store) Doctors() []doctors.Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return doctors.CloneAll(s.doctors)
}

// Doctor looks up a seeded doctor by id.
func (s *Store) Doctor(id string) (doctors.Doctor, bool) {
	s.mu.RLock()
	d, ok := doctors.Find(s.doctors, id)
	s.mu.RUnlock()
	if !ok {
		return doctors.Doctor{}, false
	}
	return d.Clone(), true
}

// Appointments returns a copy of the appointment sequence in booking order.
func (s *Store) Appointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// SearchTerm returns the current search term.
func (s *Store) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerm
}

// FilteredDoctors derives the listing from the doctors and the current term.
func (s *Store) FilteredDoctors() []doctors.Doctor {
	s.mu.RLock()
	list, term := s.doctors, s.searchTerm
	s.mu.RUnlock()
	return doctors.CloneAll(doctors.Filter(list, term))
}

// AddAppointment appends a confirmed appointment built from in. It performs no
// validation; callers validate before booking.
func (s *Store) AddAppointment(in NewAppointment) Appointment {
	appt := Appointment{
		ID:           s.newID(),
		DoctorID:     in.DoctorID,
		PatientName:  in.PatientName,
		PatientEmail: in.PatientEmail,
		Date:         in.Date,
		Time:         in.Time,
		Status:       StatusConfirmed,
		CreatedAt:    s.now(),
	}

	s.mu.Lock()
	s.appointments = append(s.appointments, appt)
	count := len(s.appointments)
	s.mu.Unlock()

	notified := appt
	s.notify(Change{Kind: AppointmentAdded, Appointment: &notified, AppointmentCount: count, SearchTerm: s.SearchTerm()})
	return appt
}

// SetSearchTerm replaces the search term, including with "".
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	s.searchTerm = term
	count := len(s.appointments)
	s.mu.Unlock()

	s.notify(Change{Kind: SearchChanged, SearchTerm: term, AppointmentCount: count})
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(c Change) {
	s.listenersMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(c)
	}
}
