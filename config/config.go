// Package config loads daemon configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all daemon settings.
type Config struct {
	// Upstream endpoints.
	StatsAPIBaseURL string
	OddsFeedBaseURL string
	OddsFeedAPIKey  string
	RatingsPageURL  string

	// Pipeline.
	Season      int
	Concurrency int
	MinRecords  int

	// Daemon.
	RunInterval  time.Duration
	SnapshotPath string
	ListenAddr   string
	LogLevel     string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	// Missing .env is fine in production where real env vars are set.
	_ = godotenv.Load()

	cfg := &Config{
		StatsAPIBaseURL: getEnv("STATSAPI_BASE_URL", ""),
		OddsFeedBaseURL: getEnv("ODDSFEED_BASE_URL", ""),
		OddsFeedAPIKey:  os.Getenv("ODDSFEED_API_KEY"),
		RatingsPageURL:  getEnv("RATINGS_PAGE_URL", ""),
		SnapshotPath:    getEnv("SNAPSHOT_PATH", "data/snapshot.json"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Season, err = getEnvInt("SEASON", time.Now().Year()); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = getEnvInt("CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.MinRecords, err = getEnvInt("MIN_RECORDS", 24); err != nil {
		return nil, err
	}
	if cfg.RunInterval, err = getEnvDuration("RUN_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
