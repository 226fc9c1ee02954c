// File path: internal/terminology/config.go
package terminology

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config controls the endpoints and retry policy of the terminology client.
type Config struct {
	RxNormBaseURL         string
	ClinicalTablesBaseURL string
	Timeout               time.Duration
	MaxAttempts           int
	InitialBackoff        time.Duration
	MaxBackoff            time.Duration
}

// DefaultConfig returns the baseline configuration pointing at the public NLM
// endpoints.
func DefaultConfig() Config {
	return Config{
		RxNormBaseURL:         "https://rxnav.nlm.nih.gov/REST",
		ClinicalTablesBaseURL: "https://clinicaltables.nlm.nih.gov/api",
		Timeout:               30 * time.Second,
		MaxAttempts:           3,
		InitialBackoff:        time.Second,
		MaxBackoff:            10 * time.Second,
	}
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_RXNORM_URL")); value != "" {
		cfg.RxNormBaseURL = strings.TrimRight(value, "/")
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_CLINICALTABLES_URL")); value != "" {
		cfg.ClinicalTablesBaseURL = strings.TrimRight(value, "/")
	}
	if value := strings.TrimSpace(os.Getenv("MEDSCRIBE_TERMINOLOGY_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse MEDSCRIBE_TERMINOLOGY_TIMEOUT: %w", err)
		}
		cfg.Timeout = dur
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.RxNormBaseURL) == "" {
		cfg.RxNormBaseURL = defaults.RxNormBaseURL
	}
	if strings.TrimSpace(cfg.ClinicalTablesBaseURL) == "" {
		cfg.ClinicalTablesBaseURL = defaults.ClinicalTablesBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaults.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaults.MaxBackoff
	}
	return cfg
}
