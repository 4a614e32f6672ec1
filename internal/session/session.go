// Package session keeps one application state per browser session.
package session

import (
	"sync"
	"time"

	"github.com/wolfman30/doctor-booking/internal/booking"
	"github.com/wolfman30/doctor-booking/internal/state"
)

// Session owns the state store of one browser session and the booking flow
// currently open for each doctor.
type Session struct {
	ID    string
	Store *state.Store

	mu       sync.Mutex
	flows    map[string]booking.Flow
	lastSeen time.Time
	closers  []func()
	closed   bool
}

func newSession(id string, store *state.Store, now time.Time) *Session {
	return &Session{
		ID:       id,
		Store:    store,
		flows:    make(map[string]booking.Flow),
		lastSeen: now,
	}
}

// Flow returns the flow open for doctorID, opening one with newToken when
// none exists yet.
func (s *Session) Flow(doctorID string, newToken func() string) booking.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flowLocked(doctorID, newToken)
}

func (s *Session) flowLocked(doctorID string, newToken func() string) booking.Flow {
	flow, ok := s.flows[doctorID]
	if !ok {
		flow = booking.NewFlow(doctorID, newToken())
		s.flows[doctorID] = flow
	}
	return flow
}

// UpdateFlow runs fn against doctorID's flow while holding the session lock
// and stores the result. If fn fails, the flow it returned is still kept so
// field edits survive a rejected submit.
func (s *Session) UpdateFlow(doctorID string, newToken func() string, fn func(booking.Flow) (booking.Flow, error)) (booking.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.flowLocked(doctorID, newToken))
	s.flows[doctorID] = next
	return next, err
}

// OnClose registers fn to run when the session is evicted.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		go fn()
		return
	}
	s.closers = append(s.closers, fn)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) >= ttl
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for _, fn := range closers {
		fn()
	}
}
