package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const EventPurgeInterval = 1 * time.Hour

// Webhook request bodies are signed over the raw bytes; cap them before reading.
const WebhookBodyLimit = 1 << 20

// Outbound call timeouts
const (
	CredentialMintTimeout = 10 * time.Second
	AnswerExchangeTimeout = 15 * time.Second
)

// Default per-IP rate limits for the public API surface
const (
	APIRateLimitPerMin = 60
	APIRateLimitWindow = 60 * time.Second
)
