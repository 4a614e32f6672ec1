package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/doctor-booking/internal/booking"
	"github.com/wolfman30/doctor-booking/internal/doctors"
)

func seedCatalog() []doctors.Doctor {
	return []doctors.Doctor{{ID: "1", Name: "Dr. Sarah Johnson", IsAvailable: true}}
}

func tokens() func() string {
	var n int32
	return func() string {
		return fmt.Sprintf("tok-%d", atomic.AddInt32(&n, 1))
	}
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := newSession("abc", nil, time.Now())
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = FromContext(WithSession(context.Background(), nil))
	assert.False(t, ok)
}

func TestRegistrySessionsAreIsolated(t *testing.T) {
	reg := NewRegistry(seedCatalog(), time.Hour)
	a := reg.Create()
	b := reg.Create()

	a.Store.SetSearchTerm("johnson")
	assert.Equal(t, "", b.Store.SearchTerm())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRegistryGetOrCreate(t *testing.T) {
	reg := NewRegistry(seedCatalog(), time.Hour)

	s, created := reg.GetOrCreate("")
	assert.True(t, created)

	again, created := reg.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	_, created = reg.GetOrCreate("unknown")
	assert.True(t, created)
}

func TestRegistrySweepEvictsIdle(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reg := NewRegistry(seedCatalog(), 10*time.Minute, WithClock(func() time.Time { return now }))

	idle := reg.Create()
	active := reg.Create()
	closed := make(chan struct{})
	idle.OnClose(func() { close(closed) })

	now = now.Add(8 * time.Minute)
	_, ok := reg.Get(active.ID)
	require.True(t, ok)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	_, ok = reg.Get(idle.ID)
	assert.False(t, ok)
	_, ok = reg.Get(active.ID)
	assert.True(t, ok)

	select {
	case <-closed:
	default:
		t.Fatal("expected close hook to run on eviction")
	}
}

func TestRegistryRunClosesOnCancel(t *testing.T) {
	reg := NewRegistry(seedCatalog(), time.Hour)
	s := reg.Create()
	closed := make(chan struct{})
	s.OnClose(func() { close(closed) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
	<-closed
	assert.Equal(t, 0, reg.Len())
}

func TestSessionFlowOpensOnce(t *testing.T) {
	s := newSession("s", nil, time.Now())
	next := tokens()

	first := s.Flow("1", next)
	second := s.Flow("1", next)
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, "1", first.DoctorID)

	other := s.Flow("2", next)
	assert.NotEqual(t, first.Token, other.Token)
}

func TestSessionUpdateFlowKeepsResultOnError(t *testing.T) {
	s := newSession("s", nil, time.Now())
	next := tokens()
	boom := errors.New("boom")

	_, err := s.UpdateFlow("1", next, func(f booking.Flow) (booking.Flow, error) {
		return f.Edit(func(form booking.Form) booking.Form { return form.WithName("Jane") }), boom
	})
	assert.ErrorIs(t, err, boom)

	form, ok := s.Flow("1", next).Form()
	require.True(t, ok)
	assert.Equal(t, "Jane", form.Fields.PatientName)
}

func TestOnCloseAfterCloseRunsImmediately(t *testing.T) {
	s := newSession("s", nil, time.Now())
	s.close()

	ran := make(chan struct{})
	s.OnClose(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("expected hook to run")
	}
}

func TestMiddlewareIssuesAndReusesCookie(t *testing.T) {
	reg := NewRegistry(seedCatalog(), time.Hour)
	var seen []string
	h := Middleware(reg, CookieConfig{Name: "sid"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = append(seen, s.ID)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies(), "existing session is not reissued")

	require.Len(t, seen, 2)
	assert.Equal(t, seen[0], seen[1])
}
