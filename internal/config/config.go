package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	OwnerID  int64  `envconfig:"OWNER_ID" required:"true"`

	DBPath         string `envconfig:"DB_PATH" default:"./data/autoreply.db"`
	TZName         string `envconfig:"TZ_NAME" default:"Asia/Kolkata"`
	DefaultMessage string `envconfig:"DEFAULT_MESSAGE" default:"Hey! I'm not available right now. I'll get back to you soon."`

	ReplyCooldown      time.Duration `envconfig:"REPLY_COOLDOWN" default:"5m"`
	CooldownMaxTracked int           `envconfig:"COOLDOWN_MAX_TRACKED" default:"100"`
	ConfirmTTL         time.Duration `envconfig:"CONFIRM_TTL" default:"1m"`
	StatusPollInterval time.Duration `envconfig:"STATUS_POLL_INTERVAL" default:"30s"`
	AwayAfter          time.Duration `envconfig:"AWAY_AFTER" default:"5m"`
	SweepSpec          string        `envconfig:"SWEEP_SPEC" default:"@every 1m"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"` // healthz
}

// Load reads an optional .env file, then environment variables into Config.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	if c.OwnerID <= 0 {
		return fmt.Errorf("OWNER_ID must be a positive user id, got %d", c.OwnerID)
	}
	if _, err := time.LoadLocation(c.TZName); err != nil {
		return fmt.Errorf("TZ_NAME: %w", err)
	}
	for name, d := range map[string]time.Duration{
		"REPLY_COOLDOWN":       c.ReplyCooldown,
		"CONFIRM_TTL":          c.ConfirmTTL,
		"STATUS_POLL_INTERVAL": c.StatusPollInterval,
		"AWAY_AFTER":           c.AwayAfter,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.CooldownMaxTracked <= 0 {
		return fmt.Errorf("COOLDOWN_MAX_TRACKED must be positive, got %d", c.CooldownMaxTracked)
	}
	return nil
}

// Location is the validated timezone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZName)
	if err != nil {
		return time.UTC
	}
	return loc
}
