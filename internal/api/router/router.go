package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/doctor-booking/internal/http/middleware"
	"github.com/wolfman30/doctor-booking/internal/live"
	"github.com/wolfman30/doctor-booking/internal/session"
	"github.com/wolfman30/doctor-booking/internal/web"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Sessions       *session.Registry
	Cookie         session.CookieConfig
	Pages          *web.Handler
	API            *web.API
	Live           *live.Hub
	MetricsHandler http.Handler

	CORSAllowedOrigins []string

	// BookingLimiter throttles booking form posts per client. Optional.
	BookingLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(app chi.Router) {
		app.Use(session.Middleware(cfg.Sessions, cfg.Cookie))

		if cfg.Live != nil {
			app.Get("/live", cfg.Live.HandleWebSocket)
		}

		app.Group(func(pages chi.Router) {
			pages.Use(middleware.Compress(5))
			pages.Get("/", cfg.Pages.Home)
			pages.Post("/search", cfg.Pages.Search)
			pages.Get("/appointments", cfg.Pages.Appointments)
			pages.Route("/doctors/{id}", func(doc chi.Router) {
				doc.Get("/", cfg.Pages.Profile)
				doc.Get("/book", cfg.Pages.OpenBooking)
				doc.Group(func(post chi.Router) {
					if cfg.BookingLimiter != nil {
						post.Use(httpmiddleware.RateLimit(cfg.BookingLimiter))
					}
					post.Post("/book", cfg.Pages.SubmitBooking)
					post.Post("/book/date", cfg.Pages.SelectDate)
					post.Post("/book/close", cfg.Pages.CloseBooking)
				})
			})
		})

		if cfg.API != nil {
			app.Route("/api", func(api chi.Router) {
				if len(cfg.CORSAllowedOrigins) > 0 {
					api.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
				}
				api.Use(middleware.Compress(5))
				api.Get("/doctors", cfg.API.ListDoctors)
				api.Get("/doctors/{id}", cfg.API.GetDoctor)
				api.Get("/doctors/{id}/times", cfg.API.DoctorTimes)
				api.Get("/appointments", cfg.API.ListAppointments)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
