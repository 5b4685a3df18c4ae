package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
// Auth, billing, and user management are handled by the cloud gateway;
// this service only trusts the X-User-* headers it forwards.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Storage
	DataDir     string // badger data directory (embedded mode)
	DatabaseURL string // Postgres DSN; when set it replaces badger

	// Exercise lifecycle
	ExerciseTTL   time.Duration // how long generated exercises live
	SweepInterval time.Duration // cadence of the expiry sweep

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from the cloud gateway
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		Port:          getEnv("PORT", "8080"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		ExerciseTTL:   getDuration("EXERCISE_TTL", 30*24*time.Hour),
		SweepInterval: getDuration("SWEEP_INTERVAL", time.Hour),
		SentryDSN:     getEnv("SENTRY_DSN", ""),
		AuthMode:      getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Also accept a bare number of hours.
	if h, err := strconv.Atoi(value); err == nil {
		return time.Duration(h) * time.Hour
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind the cloud gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}
