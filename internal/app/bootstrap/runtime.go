// Package bootstrap builds the runtime dependencies selected by config.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/doctor-booking/internal/config"
	"github.com/wolfman30/doctor-booking/internal/doctors"
	"github.com/wolfman30/doctor-booking/internal/idempotency"
	"github.com/wolfman30/doctor-booking/internal/notify"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

const claimKeyPrefix = "healthcare:"

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildClaimStore returns the Redis-backed claim store when a client is
// available and the in-memory one otherwise.
func BuildClaimStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) idempotency.Store {
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.SubmissionTokenTTL
	if redisClient == nil {
		logger.Info("submission tokens tracked in memory")
		return idempotency.NewMemoryStore(ttl)
	}
	logger.Info("submission tokens tracked in redis", "addr", cfg.RedisAddr)
	return idempotency.NewRedisStore(redisClient, claimKeyPrefix, ttl)
}

// BuildEmailSender returns SendGrid when an API key is configured and the
// logging stub otherwise.
func BuildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if sender == nil {
		logger.Info("sendgrid not configured; confirmation emails are logged only")
		return notify.NewStubEmailSender(logger)
	}
	return sender
}

// BuildCatalog loads SEED_FILE when set and the built-in doctors otherwise.
func BuildCatalog(cfg *appconfig.Config) ([]doctors.Doctor, error) {
	path := strings.TrimSpace(cfg.SeedFile)
	if path == "" {
		return doctors.DefaultCatalog(), nil
	}
	list, err := doctors.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load catalog: %w", err)
	}
	return list, nil
}
