// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/currency"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// StoreDriver selects the record store: "postgres" or "memory".
	StoreDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible) for event publishing and the document cache
	ValkeyEnabled  bool
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	EventsChannel  string

	// Rendering
	DocumentCurrency string        // ISO 4217 code used by the currency filter
	DocumentTTL      time.Duration // 0 keeps documents until deleted
	DocumentCacheTTL time.Duration
	PurgeSchedule    string // cron spec for expired document purges
	RenderRateLimit  int    // render and preview requests per caller per minute, 0 disables

	// S3-compatible archive of rendered markup
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value is
// malformed or critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreDriver: envOrDefault("STORE_DRIVER", StorePostgres),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "docforge"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "docforge"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		EventsChannel:  envOrDefault("EVENTS_CHANNEL", "docforge:events"),

		DocumentCurrency: envOrDefault("DOCUMENT_CURRENCY", "RON"),
		PurgeSchedule:    envOrDefault("DOCUMENT_PURGE_SCHEDULE", "@hourly"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "docforge-documents"),
	}

	var err error
	if cfg.ValkeyEnabled, err = strconv.ParseBool(envOrDefault("VALKEY_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("VALKEY_ENABLED: %w", err)
	}
	if cfg.DocumentTTL, err = time.ParseDuration(envOrDefault("DOCUMENT_TTL", "0s")); err != nil {
		return nil, fmt.Errorf("DOCUMENT_TTL: %w", err)
	}
	if cfg.DocumentCacheTTL, err = time.ParseDuration(envOrDefault("DOCUMENT_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("DOCUMENT_CACHE_TTL: %w", err)
	}
	if cfg.RenderRateLimit, err = strconv.Atoi(envOrDefault("RENDER_RATE_LIMIT", "120")); err != nil || cfg.RenderRateLimit < 0 {
		return nil, fmt.Errorf("RENDER_RATE_LIMIT must be a non-negative integer")
	}
	if cfg.DocumentTTL < 0 || cfg.DocumentCacheTTL < 0 {
		return nil, fmt.Errorf("document TTLs must not be negative")
	}

	if _, err := currency.ParseISO(cfg.DocumentCurrency); err != nil {
		return nil, fmt.Errorf("DOCUMENT_CURRENCY %q is not an ISO 4217 code", cfg.DocumentCurrency)
	}
	if _, err := cron.ParseStandard(cfg.PurgeSchedule); err != nil {
		return nil, fmt.Errorf("DOCUMENT_PURGE_SCHEDULE: %w", err)
	}
	if cfg.StoreDriver != StorePostgres && cfg.StoreDriver != StoreMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.StoreDriver)
	}

	if cfg.Env == "production" {
		if cfg.StoreDriver == StorePostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
