// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all runtime settings. Load it once at startup.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// DBPath is the SQLite file for the run-history store.
	DBPath string

	// UpstreamBaseURL is the admin backend serving the enterprise
	// directory and the batch computation.
	UpstreamBaseURL string

	// UpstreamTimeout bounds each boundary fetch.
	UpstreamTimeout time.Duration

	// Tolerance is the batch-level allowed deviation between the two
	// commission figures. Records may override it individually.
	Tolerance decimal.Decimal

	// TestEnterpriseID is excluded from the default enterprise
	// selection.
	TestEnterpriseID int64

	// PageSize is the fixed view page size.
	PageSize int
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cfg := &Config{
		Port:             envDefault("PORT", "8080"),
		DBPath:           envDefault("DB_PATH", "commission-review.db"),
		UpstreamBaseURL:  envDefault("UPSTREAM_BASE_URL", "http://localhost:8000"),
		UpstreamTimeout:  time.Duration(envIntDefault("UPSTREAM_TIMEOUT_SECONDS", 60)) * time.Second,
		TestEnterpriseID: int64(envIntDefault("TEST_ENTERPRISE_ID", 36)),
		PageSize:         envIntDefault("PAGE_SIZE", 10),
	}

	tol := envDefault("TOLERANCE", "0.00")
	d, err := decimal.NewFromString(tol)
	if err != nil {
		return nil, fmt.Errorf("TOLERANCE %q: %w", tol, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("TOLERANCE must be non-negative, got %s", d)
	}
	cfg.Tolerance = d

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be at least 1, got %d", cfg.PageSize)
	}

	return cfg, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
