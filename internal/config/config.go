// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/phmctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Persisted client keys
// --------------------------------------------------------------------------

const (
	GamePlayPeriodKey = "HOCKEY_GAME_PLAY_PERIOD"
	GamePlayTimeKey   = "HOCKEY_GAME_PLAY_TIME"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Graph database
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string
	MemoryStore   bool // serve from an in-memory graph (development only)

	// Client preferences
	PrefsDatabaseURL string // Postgres; empty selects SQLite
	PrefsSQLitePath  string
	PrefsRetention   time.Duration

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

	// S3 uploads. The access key id and the region are separate settings.
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3Bucket           string
	UploadURLExpiry    time.Duration

	// Admin
	CSRFKey   string // hex, 32 bytes
	SentryDSN string

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Neo4jURI:      envOr("NEO4J_URI", ""),
		Neo4jUser:     envOr("NEO4J_USER", "neo4j"),
		Neo4jPassword: envOr("NEO4J_PASSWORD", ""),
		Neo4jDatabase: envOr("NEO4J_DATABASE", "neo4j"),
		MemoryStore:   envBool("MEMORY_STORE", false),

		PrefsDatabaseURL: envOr("PREFS_DATABASE_URL", ""),
		PrefsSQLitePath:  envOr("PREFS_SQLITE_PATH", "phm-prefs.db"),
		PrefsRetention:   time.Duration(envInt("PREFS_RETENTION_DAYS", 180)) * 24 * time.Hour,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 4000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4000",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 300),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		AWSAccessKeyID:     envOr("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: envOr("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:          envOr("AWS_REGION", "eu-central-1"),
		S3Bucket:           envOr("S3_BUCKET", ""),
		UploadURLExpiry:    time.Duration(envInt("UPLOAD_URL_EXPIRY_SECONDS", 60)) * time.Second,

		CSRFKey:   envOr("CSRF_KEY", ""),
		SentryDSN: envOr("SENTRY_DSN", ""),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}

	if cfg.Neo4jURI == "" && !cfg.MemoryStore {
		return nil, fmt.Errorf("NEO4J_URI must be set (or MEMORY_STORE=true for development)")
	}
	if cfg.IsProduction() && cfg.CSRFKey == "" {
		return nil, fmt.Errorf("CSRF_KEY is required in production")
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
