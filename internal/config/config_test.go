package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OWNER_ID", "4242")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OwnerID != 4242 {
		t.Fatalf("want owner 4242, got %d", cfg.OwnerID)
	}
	if cfg.ReplyCooldown != 5*time.Minute {
		t.Fatalf("want cooldown 5m, got %s", cfg.ReplyCooldown)
	}
	if cfg.ConfirmTTL != time.Minute {
		t.Fatalf("want confirm ttl 1m, got %s", cfg.ConfirmTTL)
	}
	if cfg.StatusPollInterval != 30*time.Second {
		t.Fatalf("want poll 30s, got %s", cfg.StatusPollInterval)
	}
	if cfg.CooldownMaxTracked != 100 {
		t.Fatalf("want 100 tracked, got %d", cfg.CooldownMaxTracked)
	}
	if got := cfg.Location().String(); got != "Asia/Kolkata" {
		t.Fatalf("want Asia/Kolkata, got %s", got)
	}
}

func TestLoad_MissingOwner(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OWNER_ID", "")
	_ = os.Unsetenv("OWNER_ID")

	if _, err := Load(); err == nil {
		t.Fatalf("want error without OWNER_ID")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("REPLY_COOLDOWN=2m\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	setRequired(t)
	// godotenv never overrides variables that are already set
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REPLY_COOLDOWN", "")
	_ = os.Unsetenv("REPLY_COOLDOWN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReplyCooldown != 2*time.Minute {
		t.Fatalf("want cooldown from .env, got %s", cfg.ReplyCooldown)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("want env to win, got %s", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		OwnerID:            1,
		TZName:             "UTC",
		ReplyCooldown:      time.Minute,
		ConfirmTTL:         time.Minute,
		StatusPollInterval: time.Second,
		AwayAfter:          time.Minute,
		CooldownMaxTracked: 1,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base
	bad.TZName = "Mars/Olympus"
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "TZ_NAME") {
		t.Fatalf("want TZ_NAME error, got %v", err)
	}

	bad = base
	bad.ConfirmTTL = 0
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "CONFIRM_TTL") {
		t.Fatalf("want CONFIRM_TTL error, got %v", err)
	}
}
