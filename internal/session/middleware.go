package session

import (
	"net/http"
	"time"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Middleware attaches the caller's session to the request context, issuing a
// new cookie when the request carries none or an expired one.
func Middleware(reg *Registry, cfg CookieConfig) func(http.Handler) http.Handler {
	if cfg.Name == "" {
		cfg.Name = "hc_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cfg.Name); err == nil {
				id = c.Value
			}

			s, created := reg.GetOrCreate(id)
			if created {
				cookie := &http.Cookie{
					Name:     cfg.Name,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.MaxAge > 0 {
					cookie.MaxAge = int(cfg.MaxAge.Seconds())
				}
				http.SetCookie(w, cookie)
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
