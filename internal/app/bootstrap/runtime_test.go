package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/doctor-booking/internal/config"
	"github.com/wolfman30/doctor-booking/internal/idempotency"
	"github.com/wolfman30/doctor-booking/internal/notify"
	"github.com/wolfman30/doctor-booking/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
	if client := BuildRedisClient(context.Background(), nil, nil, false); client != nil {
		t.Fatalf("expected nil client without config")
	}
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := logging.New("error")

	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	defer client.Close()

	addr := mr.Addr()
	mr.Close()
	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logger, true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildClaimStore(t *testing.T) {
	cfg := &appconfig.Config{SubmissionTokenTTL: time.Hour}
	logger := logging.New("error")

	if _, ok := BuildClaimStore(nil, cfg, logger).(*idempotency.MemoryStore); !ok {
		t.Fatalf("expected memory store without redis")
	}

	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	client := BuildRedisClient(context.Background(), cfg, logger, false)
	defer client.Close()

	store := BuildClaimStore(client, cfg, logger)
	if _, ok := store.(*idempotency.RedisStore); !ok {
		t.Fatalf("expected redis store, got %T", store)
	}
	ok, err := store.Claim(context.Background(), "booking:token:x")
	if err != nil || !ok {
		t.Fatalf("expected first claim to succeed, got %v %v", ok, err)
	}
	if !mr.Exists("healthcare:booking:token:x") {
		t.Fatalf("expected prefixed key in redis")
	}
}

func TestBuildEmailSender(t *testing.T) {
	logger := logging.New("error")
	if _, ok := BuildEmailSender(&appconfig.Config{}, logger).(*notify.StubEmailSender); !ok {
		t.Fatalf("expected stub sender without api key")
	}
	cfg := &appconfig.Config{SendGridAPIKey: "key", SendGridFromEmail: "bookings@example.com"}
	if _, ok := BuildEmailSender(cfg, logger).(*notify.SendGridSender); !ok {
		t.Fatalf("expected sendgrid sender with api key")
	}
}

func TestBuildCatalog(t *testing.T) {
	list, err := BuildCatalog(&appconfig.Config{})
	if err != nil || len(list) != 6 {
		t.Fatalf("expected built-in catalog, got %d doctors, err %v", len(list), err)
	}

	path := filepath.Join(t.TempDir(), "doctors.json")
	seed := `[{"id":"a","name":"Dr. Ada Park","specialization":"Neurologist","rating":4.5,"experience":9,"location":"Denver","is_available":true,"availability":{"2024-05-01":["9:00 AM"]}}]`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	list, err = BuildCatalog(&appconfig.Config{SeedFile: path})
	if err != nil || len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("expected seeded catalog, got %+v err %v", list, err)
	}

	if _, err := BuildCatalog(&appconfig.Config{SeedFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Fatalf("expected error for missing seed file")
	}
}
