// File path: internal/vector/config.go
package vector

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config controls the ChromaDB connection used for note chunk embeddings.
type Config struct {
	Host       string
	Port       string
	Scheme     string
	Collection string
	APIKey     string
	Timeout    time.Duration
}

// DefaultConfig returns the baseline configuration for a local ChromaDB.
func DefaultConfig() Config {
	return Config{
		Host:       "127.0.0.1",
		Port:       "8000",
		Scheme:     "http",
		Collection: "medical_documents",
		Timeout:    20 * time.Second,
	}
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_CHROMA_HOST")); value != "" {
		cfg.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_CHROMA_PORT")); value != "" {
		cfg.Port = value
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_CHROMA_SCHEME")); value != "" {
		cfg.Scheme = value
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_CHROMA_COLLECTION")); value != "" {
		cfg.Collection = value
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_CHROMA_API_KEY")); value != "" {
		cfg.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_CHROMA_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse MEDSCRIBE_CHROMA_TIMEOUT: %w", err)
		}
		cfg.Timeout = dur
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = defaults.Host
	}
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = defaults.Port
	}
	if strings.TrimSpace(cfg.Scheme) == "" {
		cfg.Scheme = defaults.Scheme
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		cfg.Collection = defaults.Collection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return cfg
}
