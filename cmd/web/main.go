package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/doctor-booking/internal/api/router"
	"github.com/wolfman30/doctor-booking/internal/app/bootstrap"
	"github.com/wolfman30/doctor-booking/internal/booking"
	appconfig "github.com/wolfman30/doctor-booking/internal/config"
	httpmiddleware "github.com/wolfman30/doctor-booking/internal/http/middleware"
	"github.com/wolfman30/doctor-booking/internal/idempotency"
	"github.com/wolfman30/doctor-booking/internal/live"
	"github.com/wolfman30/doctor-booking/internal/notify"
	"github.com/wolfman30/doctor-booking/internal/observability/metrics"
	"github.com/wolfman30/doctor-booking/internal/session"
	"github.com/wolfman30/doctor-booking/internal/web"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

const (
	sessionSweepInterval = time.Minute
	claimPruneInterval   = time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting healthcare booking server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

type application struct {
	handler  http.Handler
	sessions *session.Registry
	claims   idempotency.Store
	redis    *redis.Client
}

func (a *application) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// buildApplication wires every component selected by cfg. ctx bounds the
// background workers it starts.
func buildApplication(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*application, error) {
	catalog, err := bootstrap.BuildCatalog(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("doctor catalog loaded", "doctors", len(catalog))

	m := metrics.NewBookingMetrics(reg)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	claims := bootstrap.BuildClaimStore(redisClient, cfg, logger)

	confirmer := notify.NewConfirmer(
		bootstrap.BuildEmailSender(cfg, logger),
		notify.ConfirmerConfig{PublicBaseURL: cfg.PublicBaseURL},
		m,
		logger,
	)
	bookings := booking.NewService(claims, confirmer, m, logger)

	views, err := web.NewViews()
	if err != nil {
		return nil, err
	}

	sessions := session.NewRegistry(catalog, cfg.SessionTTL,
		session.WithMetrics(m),
		session.WithLogger(logger),
	)

	var limiter *httpmiddleware.RateLimiter
	if cfg.BookingRateLimit > 0 {
		limiter = httpmiddleware.NewRateLimiter(ctx, cfg.BookingRateLimit, cfg.BookingRateBurst)
	}

	handler := router.New(&router.Config{
		Logger:   logger,
		Sessions: sessions,
		Cookie: session.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.IsProduction(),
		},
		Pages:              web.NewHandler(views, bookings, m, logger),
		API:                web.NewAPI(logger),
		Live:               live.NewHub(m, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingLimiter:     limiter,
	})

	return &application{handler: handler, sessions: sessions, claims: claims, redis: redisClient}, nil
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	app, err := buildApplication(workerCtx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer app.Close()

	go app.sessions.Run(workerCtx, sessionSweepInterval)
	if mem, ok := app.claims.(*idempotency.MemoryStore); ok {
		go mem.Run(workerCtx, claimPruneInterval)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
