// File path: internal/terminology/client.go
package terminology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/common/telemetry"
)

// ErrNotFound marks a lookup that completed but matched no code. It is a
// final answer, not a failure: callers must not retry it and enrichment
// degrades to an absent validated code.
var ErrNotFound = errors.New("terminology: no match")

// Resolver maps clinical item names to standardized codes.
type Resolver interface {
	// MedicationCode returns the RxNorm concept identifier for a medication
	// name, or ErrNotFound.
	MedicationCode(ctx context.Context, name string) (string, error)
	// ConditionCode returns the top-ranked ICD-10-CM code for a condition
	// name, or ErrNotFound.
	ConditionCode(ctx context.Context, name string) (string, error)
}

// Client resolves codes against the NLM RxNorm and Clinical Tables services.
// Transient failures are retried with exponential backoff; a zero-result
// response is returned immediately as ErrNotFound.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewFromEnv constructs a client from environment configuration.
func NewFromEnv() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// New constructs a client using the provided configuration.
func New(cfg Config) *Client {
	cfg = applyDefaults(cfg)
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

func (c *Client) MedicationCode(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("terminology: medication name required")
	}
	endpoint := fmt.Sprintf("%s/rxcui.json?name=%s", c.cfg.RxNormBaseURL, url.QueryEscape(name))
	return c.withRetry(ctx, "rxnorm", name, func() (string, error) {
		var resp struct {
			IDGroup struct {
				RxNormID []string `json:"rxnormId"`
			} `json:"idGroup"`
		}
		if err := c.get(ctx, endpoint, &resp); err != nil {
			return "", err
		}
		if len(resp.IDGroup.RxNormID) == 0 {
			return "", ErrNotFound
		}
		return resp.IDGroup.RxNormID[0], nil
	})
}

func (c *Client) ConditionCode(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("terminology: condition name required")
	}
	endpoint := fmt.Sprintf("%s/icd10cm/v3/search?sf=code,name&terms=%s&maxList=1",
		c.cfg.ClinicalTablesBaseURL, url.QueryEscape(name))
	return c.withRetry(ctx, "icd10cm", name, func() (string, error) {
		// Clinical Tables responds with a positional array:
		// [total, codes, extras, [[code, display], ...]].
		var resp []json.RawMessage
		if err := c.get(ctx, endpoint, &resp); err != nil {
			return "", err
		}
		if len(resp) < 4 {
			return "", ErrNotFound
		}
		var results [][]string
		if err := json.Unmarshal(resp[3], &results); err != nil {
			return "", fmt.Errorf("decode icd10 results: %w", err)
		}
		if len(results) == 0 || len(results[0]) == 0 || results[0][0] == "" {
			return "", ErrNotFound
		}
		return results[0][0], nil
	})
}

func (c *Client) withRetry(ctx context.Context, vocabulary, name string, op func() (string, error)) (string, error) {
	logger := common.Logger()
	started := time.Now()
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.cfg.InitialBackoff
	expo.MaxInterval = c.cfg.MaxBackoff
	expo.MaxElapsedTime = 0
	retries := uint64(0)
	if c.cfg.MaxAttempts > 1 {
		retries = uint64(c.cfg.MaxAttempts - 1)
	}
	var code string
	err := backoff.Retry(func() error {
		result, err := op()
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return backoff.Permanent(err)
			}
			logger.Warn("terminology: lookup attempt failed", "name", name, "error", err)
			return err
		}
		code = result
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(expo, retries), ctx))
	telemetry.RecordTerminologyLookup(vocabulary, err == nil, time.Since(started))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error("terminology: lookup exhausted retries", "name", name, "error", err)
		}
		return "", err
	}
	return code, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("terminology GET %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Resolver = (*Client)(nil)
