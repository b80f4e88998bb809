package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration for the ga-search CLI.
type Config struct {
	App     AppConfig
	Logging LoggingConfig
	Search  SearchConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Env  string
	Name string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// SearchConfig holds settings for the genetic search host process: where the
// sequencer memoization cache and the completed-run archive live. Neither
// setting is read by the core (internal/search/...) itself — both are host
// concerns bound here per spec.md §6.
type SearchConfig struct {
	// ArchiveDSN is the SQLite DSN for internal/search/archive.
	ArchiveDSN string
	// SeqCacheMaxCostBytes bounds the ristretto memoization cache used by
	// internal/search/seqcache.
	SeqCacheMaxCostBytes int64
	// SeqCacheNumCounters sizes the ristretto admission-policy counters.
	SeqCacheNumCounters int64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if present; optional outside production.
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "warning: .env file not found, using environment variables")
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Name: getEnv("APP_NAME", "ga-search"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Search: SearchConfig{
			ArchiveDSN:           getEnv("SEARCH_ARCHIVE_DSN", "reelsearch.sqlite"),
			SeqCacheMaxCostBytes: int64(getEnvAsInt("SEARCH_SEQCACHE_MAX_COST_MB", 64)) << 20,
			SeqCacheNumCounters:  int64(getEnvAsInt("SEARCH_SEQCACHE_NUM_COUNTERS", 100000)),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
