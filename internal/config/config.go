// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/sync.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// League defaults: the major European leagues synced when no explicit
// league set is given (API-Football league IDs).
// --------------------------------------------------------------------------

// DefaultLeagues covers Premier League, La Liga, Bundesliga, Serie A, Ligue 1.
var DefaultLeagues = []string{"39", "140", "78", "135", "61"}

// --------------------------------------------------------------------------
// Table names, single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	FixturesTable     = "fixtures"
	TeamsTable        = "teams"
	FixtureStatsTable = "fixture_stats"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL        string
	DBPoolMinConns     int
	DBPoolMaxConns     int
	DBPoolMaxLife      time.Duration
	DBStatementTimeout time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Upstream provider (API-Football)
	FootballAPIKey     string
	FootballAPIBaseURL string
	FootballAPISeason  string
	FootballAPIRPM     int // requests per minute budget

	// Object storage (R2 / S3-compatible)
	StorageEndpoint    string
	StorageAccessKey   string
	StorageSecretKey   string
	StorageBucket      string
	StoragePublicURL   string
	UpstreamLogoPrefix string

	// Sync policy
	SyncLeagues     []string
	SyncWindowDays  int
	LogoBatchLimit  int
	CountEmptyStats bool
	SyncOpTimeout   time.Duration

	// Scheduler
	SchedulerEnabled bool
	DailySyncSpec    string
	LiveSyncSpec     string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("SUPABASE_DB_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or SUPABASE_DB_URL must be set")
	}

	return &Config{
		DatabaseURL:        dbURL,
		DBPoolMinConns:     envInt("DB_POOL_MIN_CONNS", 5),
		DBPoolMaxConns:     envInt("DB_POOL_MAX_CONNS", 20),
		DBPoolMaxLife:      time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
		DBStatementTimeout: time.Duration(envInt("DB_STATEMENT_TIMEOUT_SECONDS", 60)) * time.Second,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "production"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"*"}),

		FootballAPIKey:     envOr("API_FOOTBALL_KEY", ""),
		FootballAPIBaseURL: envOr("API_FOOTBALL_URL", "https://v3.football.api-sports.io"),
		FootballAPISeason:  envOr("API_FOOTBALL_SEASON", "2024"),
		FootballAPIRPM:     envInt("API_FOOTBALL_RPM", 300),

		StorageEndpoint:    envOr("R2_ENDPOINT", ""),
		StorageAccessKey:   envOr("R2_ACCESS_KEY_ID", ""),
		StorageSecretKey:   envOr("R2_SECRET_ACCESS_KEY", ""),
		StorageBucket:      envOr("R2_BUCKET_NAME", "golex-images"),
		StoragePublicURL:   strings.TrimRight(envOr("R2_PUBLIC_URL", ""), "/"),
		UpstreamLogoPrefix: envOr("UPSTREAM_LOGO_PREFIX", "https://media.api-sports.io"),

		SyncLeagues:     envList("SYNC_LEAGUES", DefaultLeagues),
		SyncWindowDays:  envInt("SYNC_WINDOW_DAYS", 7),
		LogoBatchLimit:  envInt("LOGO_BATCH_LIMIT", 50),
		CountEmptyStats: envBool("COUNT_EMPTY_STATS", true),
		SyncOpTimeout:   time.Duration(envInt("SYNC_OP_TIMEOUT_SECONDS", 60)) * time.Second,

		SchedulerEnabled: envBool("SCHEDULER_ENABLED", false),
		DailySyncSpec:    envOr("DAILY_SYNC_SPEC", "0 4 * * *"),
		LiveSyncSpec:     envOr("LIVE_SYNC_SPEC", "*/2 * * * *"),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Presence reports which credential groups are configured. Backs the
// health endpoint; values are booleans, never the secrets themselves.
func (c *Config) Presence() map[string]bool {
	return map[string]bool{
		"database":       c.DatabaseURL != "",
		"football_api":   c.FootballAPIKey != "",
		"storage":        c.StorageEndpoint != "" && c.StorageAccessKey != "" && c.StorageSecretKey != "",
		"storage_public": c.StoragePublicURL != "",
	}
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
