package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/observability/metrics"
	"github.com/wolfman30/doctor-booking/internal/state"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

// Option customizes a Registry.
type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(r *Registry) { r.metrics = m }
}

func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStoreOptions passes options to every session's state store.
func WithStoreOptions(opts ...state.Option) Option {
	return func(r *Registry) { r.storeOpts = append(r.storeOpts, opts...) }
}

// Registry holds live sessions in memory and evicts them after ttl of
// inactivity.
type Registry struct {
	catalog   []doctors.Doctor
	ttl       time.Duration
	storeOpts []state.Option

	mu       sync.Mutex
	sessions map[string]*Session

	now     func() time.Time
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewRegistry seeds every new session with catalog.
func NewRegistry(catalog []doctors.Doctor, ttl time.Duration, opts ...Option) *Registry {
	r := &Registry{
		catalog:  catalog,
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session for id and marks it active.
func (r *Registry) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// Create starts a new session with a fresh state store.
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), state.New(r.catalog, r.storeOpts...), r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	r.logger.Debug("session created", "session_id", s.ID)
	return s
}

// GetOrCreate returns the session for id, creating a new one when id is
// unknown or expired. created reports whether a new session was made.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := r.Get(id); ok {
		return s, false
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idle(now, r.ttl) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		r.metrics.SetActiveSessions(n)
		r.logger.Debug("sessions evicted", "count", len(expired), "active", n)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is cancelled, then closes all
// remaining sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	r.metrics.SetActiveSessions(0)
}
