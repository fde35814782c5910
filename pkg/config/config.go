package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Environment name constants used in ENVIRONMENT config field.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Config holds all configuration for the application
type Config struct {
	// Database — the URL scheme selects the item store backend:
	// postgres:// | postgresql:// | sqlite:// | redis:// | rediss://
	DatabaseURL        string `conf:"default:sqlite://items.db,env:DATABASE_URL,noprint"`
	DatabaseLogQueries bool   `conf:"default:false,env:DATABASE_LOG_QUERIES"`
	AutoMigrate        bool   `conf:"default:true,env:AUTO_MIGRATE"`

	// Events — transactional outbox; only active with the postgres backend
	EventsEnabled bool `conf:"default:true,env:EVENTS_ENABLED"`

	// HTTP
	HTTPAddr           string        `conf:"default:0.0.0.0:8080,env:HTTP_ADDR"`
	RateLimitPerMinute int           `conf:"default:100,env:RATE_LIMIT_PER_MINUTE"`
	MaxBodyBytes       int64         `conf:"default:1048576,env:HTTP_MAX_BODY_BYTES"`
	RequestTimeout     time.Duration `conf:"default:30s,env:HTTP_REQUEST_TIMEOUT"`

	// Application
	LogLevel    string `conf:"default:info,env:LOG_LEVEL"`
	LogFormat   string `conf:"default:json,enum:json|text,env:LOG_FORMAT"`
	Environment string `conf:"default:development,enum:development|testing|production,env:ENVIRONMENT"`

	// CORS — comma-separated list of allowed origins; use * to allow all (dev only)
	CORSAllowedOrigins string `conf:"default:*,env:CORS_ALLOWED_ORIGINS"`

	// Observability
	ServiceName    string `conf:"default:itemstore,env:SERVICE_NAME"`
	ServiceVersion string `conf:"default:dev,env:SERVICE_VERSION"`
	OtelEndpoint   string `conf:"env:OTEL_ENDPOINT"`
	// Fraction of root spans sampled, 0..1
	TraceSampleRatio float64 `conf:"default:1,env:OTEL_TRACE_SAMPLE_RATIO"`
	SentryDSN        string  `conf:"env:SENTRY_DSN,noprint"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()
	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// ValidateForProduction enforces safety requirements when ENVIRONMENT=production.
// Returns an error if any critical settings are missing or unsafe.
// No-ops for non-production environments.
func ValidateForProduction(cfg *Config) error {
	if cfg.Environment != EnvProduction {
		return nil
	}

	var errs []string

	if cfg.LogLevel == "debug" {
		errs = append(errs, "LOG_LEVEL must not be 'debug' in production (may leak sensitive data)")
	}

	if cfg.DatabaseLogQueries {
		errs = append(errs, "DATABASE_LOG_QUERIES must be false in production")
	}

	if strings.TrimSpace(cfg.CORSAllowedOrigins) == "*" {
		errs = append(errs, "CORS_ALLOWED_ORIGINS must list explicit origins in production")
	}

	if cfg.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Sprintf("RATE_LIMIT_PER_MINUTE must be positive (got %d)", cfg.RateLimitPerMinute))
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("production config validation failed: %s", strings.Join(errs, "; "))
}
