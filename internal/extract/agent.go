// File path: internal/extract/agent.go

// Package extract turns free-text clinical notes into structured records.
// The agent asks the LLM for a draft record, then runs the terminology
// enrichment pass so every returned record is dual-code annotated.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/common/telemetry"
	"github.com/kestrelhealth/medscribe/internal/enrich"
	"github.com/kestrelhealth/medscribe/internal/llm"
	"github.com/kestrelhealth/medscribe/internal/record"
)

// Agent extracts structured medical data from note text.
type Agent struct {
	provider llm.Provider
	enricher *enrich.Enricher
}

// NewAgent constructs an extraction agent with its collaborators injected.
func NewAgent(provider llm.Provider, enricher *enrich.Enricher) *Agent {
	return &Agent{provider: provider, enricher: enricher}
}

// Extract produces an enriched structured record for one note. Terminology
// lookup failures degrade to absent validated codes; a malformed LLM payload
// is the only error surfaced to the caller.
func (a *Agent) Extract(ctx context.Context, noteText string) (rec *record.StructuredRecord, err error) {
	logger := common.Logger()
	if a.provider == nil {
		return nil, fmt.Errorf("extract: provider required")
	}
	started := time.Now()
	defer func() { telemetry.RecordExtraction(time.Since(started), err) }()
	messages := []llm.Message{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: "Medical Note:\n\n" + noteText},
	}
	raw, err := a.provider.Chat(ctx, messages)
	if err != nil {
		logger.Error("extract: llm call failed", "error", err)
		return nil, fmt.Errorf("extract note: %w", err)
	}
	rec, err = record.Parse(raw)
	if err != nil {
		logger.Error("extract: malformed llm payload", "error", err)
		return nil, err
	}
	if a.enricher != nil {
		a.enricher.EnrichRecord(ctx, rec)
	}
	logger.Debug("extract: record ready", "conditions", len(rec.Conditions), "medications", len(rec.Medications))
	return rec, nil
}
