package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "listed origin", allowed: []string{"https://clinic.example"}, origin: "https://clinic.example", want: "https://clinic.example"},
		{name: "unknown origin", allowed: []string{"https://clinic.example"}, origin: "https://evil.example", want: ""},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example", want: "https://any.example"},
		{name: "no config", allowed: nil, origin: "https://clinic.example", want: ""},
		{name: "blank entries ignored", allowed: []string{" ", "https://clinic.example "}, origin: "https://clinic.example", want: "https://clinic.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(okHandler(nil)).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Fatalf("allow origin = %q, want %q", got, tt.want)
			}
			if tt.want != "" && rec.Header().Get("Access-Control-Allow-Methods") != "GET, HEAD, OPTIONS" {
				t.Fatalf("unexpected allow methods %q", rec.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodOptions, "/api/appointments", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()

	CORS([]string{"https://clinic.example"})(okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatalf("expected handler to not be called on preflight")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestCORSPreflightFromUnknownOrigin(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodOptions, "/api/doctors", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()

	CORS([]string{"https://clinic.example"})(okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Fatalf("expected handler to not be called on refused preflight")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("refused preflight must not allow the origin")
	}
}

func TestCORSSetsVaryWithoutOrigin(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS([]string{"https://clinic.example"})(okHandler(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/doctors", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("Vary") != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", rec.Header().Get("Vary"))
	}
}
