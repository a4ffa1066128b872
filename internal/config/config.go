package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                 int    `env:"PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL,required"`
	RedisURL             string `env:"REDIS_URL,required"`
	StripeWebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET"`
	VoiceAPIKey          string `env:"VOICE_API_KEY"`
	RealtimeBaseURL      string `env:"REALTIME_BASE_URL" envDefault:"https://api.openai.com/v1/realtime"`
	RealtimeSessionsURL  string `env:"REALTIME_SESSIONS_URL" envDefault:"https://api.openai.com/v1/realtime/sessions"`
	RealtimeModel        string `env:"REALTIME_MODEL" envDefault:"gpt-4o-realtime-preview-2024-12-17"`
	RealtimeVoice        string `env:"REALTIME_VOICE" envDefault:"verse"`
	AdminPasswordHash    string `env:"ADMIN_PASSWORD_HASH"`
	AllowTestEntitlement bool   `env:"ALLOW_TEST_ENTITLEMENT" envDefault:"false"`
	EventRetentionDays   int    `env:"EVENT_RETENTION_DAYS" envDefault:"30"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminPasswordHash != "" {
		if !strings.HasPrefix(c.AdminPasswordHash, "$2a$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2b$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2y$") {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <password>)")
		}
	}

	if isProduction {
		if c.StripeWebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set in production: unsigned billing events cannot be accepted")
		}
		if !strings.HasPrefix(c.StripeWebhookSecret, "whsec_") {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET must be a Stripe signing secret (whsec_...)")
		}
		if c.VoiceAPIKey == "" {
			return fmt.Errorf("VOICE_API_KEY must be set in production: ephemeral credentials cannot be minted without it")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.AllowTestEntitlement {
			log.Warn().Msg("ALLOW_TEST_ENTITLEMENT is enabled in production: test subscriptions will pass the access gate")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
