package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.IsProduction() {
		t.Fatalf("expected development env not to be production")
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.SessionCookieName != "hc_session" {
		t.Fatalf("expected default cookie name, got %s", cfg.SessionCookieName)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.BookingRateBurst != 10 {
		t.Fatalf("expected default burst, got %d", cfg.BookingRateBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SEED_FILE", "/etc/doctors.json")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("SUBMISSION_TOKEN_TTL", "1h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("BOOKING_RATE_LIMIT", "2.5")
	t.Setenv("BOOKING_RATE_BURST", "3")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("expected text log format, got %s", cfg.LogFormat)
	}
	if cfg.SeedFile != "/etc/doctors.json" {
		t.Fatalf("expected seed file override, got %s", cfg.SeedFile)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if cfg.SubmissionTokenTTL != time.Hour {
		t.Fatalf("expected token ttl override, got %s", cfg.SubmissionTokenTTL)
	}
	if cfg.RedisAddr != "localhost:6379" || !cfg.RedisTLS {
		t.Fatalf("expected redis overrides, got %s tls=%v", cfg.RedisAddr, cfg.RedisTLS)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.BookingRateLimit != 2.5 || cfg.BookingRateBurst != 3 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.BookingRateLimit, cfg.BookingRateBurst)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("BOOKING_RATE_BURST", "many")
	t.Setenv("REDIS_TLS", "maybe")
	cfg := Load()
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected fallback ttl, got %s", cfg.SessionTTL)
	}
	if cfg.BookingRateBurst != 10 {
		t.Fatalf("expected fallback burst, got %d", cfg.BookingRateBurst)
	}
	if cfg.RedisTLS {
		t.Fatalf("expected fallback tls=false")
	}
}
