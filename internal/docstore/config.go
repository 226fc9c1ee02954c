// File path: internal/docstore/config.go
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config controls the SQLite connection backing the document catalog.
type Config struct {
	Path            string
	BusyTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SeedDir         string
}

// DefaultConfig returns the baseline configuration used when no overrides
// are supplied.
func DefaultConfig() Config {
	return Config{
		Path:            filepath.Join("data", "documents.db"),
		BusyTimeout:     5 * time.Second,
		MaxOpenConns:    4,
		MaxIdleConns:    4,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		SeedDir:         "example_notes",
	}
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_DB_PATH")); value != "" {
		cfg.Path = value
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_DB_BUSY_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse MEDSCRIBE_DB_BUSY_TIMEOUT: %w", err)
		}
		cfg.BusyTimeout = dur
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_DB_MAX_CONNS")); value != "" {
		conns, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse MEDSCRIBE_DB_MAX_CONNS: %w", err)
		}
		if conns > 0 {
			cfg.MaxOpenConns = conns
		}
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_SEED_DIR")); value != "" {
		cfg.SeedDir = value
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.Path) == "" {
		cfg.Path = defaults.Path
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = defaults.BusyTimeout
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = defaults.MaxOpenConns
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = defaults.MaxIdleConns
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime <= 0 {
		cfg.ConnMaxIdleTime = defaults.ConnMaxIdleTime
	}
	return cfg
}
