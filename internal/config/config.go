// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/albapepper/bbref-data/internal/store"
)

// DefaultBaseURL is the site every collector and URL registry points at.
const DefaultBaseURL = "https://www.basketball-reference.com"

// ErrNoDatabase is returned by RequireDatabase when DATABASE_URL is unset.
var ErrNoDatabase = errors.New("DATABASE_URL must be set")

// --------------------------------------------------------------------------
// Table names shared by db and load
// --------------------------------------------------------------------------

const RecordsTable = "extracted_records"

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Source site
	BaseURL      string
	FetchDelay   time.Duration
	FetchTimeout time.Duration
	UserAgent    string

	// Local storage
	RawDir       string
	ProcessedDir string
	LedgerPath   string

	// Extraction
	ExtractWorkers int

	// Object storage (upload disabled when bucket is empty)
	S3Bucket string
	S3Prefix string

	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	return &Config{
		BaseURL:      strings.TrimRight(envOr("BBREF_BASE_URL", DefaultBaseURL), "/"),
		FetchDelay:   envDuration("FETCH_DELAY_SECONDS", 3*time.Second),
		FetchTimeout: envDuration("FETCH_TIMEOUT_SECONDS", 30*time.Second),
		UserAgent:    envOr("FETCH_USER_AGENT", "bbref-data/1.0 (+https://github.com/albapepper/bbref-data)"),

		RawDir:       envOr("RAW_DIR", "data/raw"),
		ProcessedDir: envOr("PROCESSED_DIR", "data/processed"),
		LedgerPath:   envOr("LEDGER_PATH", "data/ledger.db"),

		ExtractWorkers: envInt("EXTRACT_WORKERS", 6),

		S3Bucket: envOr("S3_BUCKET", ""),
		S3Prefix: envOr("S3_PREFIX", ""),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", 60*time.Second),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RequireDatabase fails when no database URL is configured. Only loading and
// the API need one.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrNoDatabase
	}
	return nil
}

// UploadEnabled reports whether an S3 bucket is configured.
func (c *Config) UploadEnabled() bool {
	return c.S3Bucket != ""
}

// Layout returns the local storage layout.
func (c *Config) Layout() store.Layout {
	return store.Layout{RawDir: c.RawDir, ProcessedDir: c.ProcessedDir}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration reads a whole or fractional number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return time.Duration(f * float64(time.Second))
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
