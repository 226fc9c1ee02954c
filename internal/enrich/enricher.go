// File path: internal/enrich/enricher.go

// Package enrich merges model-proposed codes with independently validated
// codes from the terminology services. Each clinical item keeps both slots:
// the AI code records what the extraction model suggested, the validated code
// records what the authoritative lookup confirmed. A failed or empty lookup
// leaves the validated slot absent; it never aborts the rest of the batch.
package enrich

import (
	"context"
	"errors"
	"strings"

	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/record"
	"github.com/kestrelhealth/medscribe/internal/terminology"
)

// Enricher resolves validated codes for conditions and medications.
type Enricher struct {
	resolver terminology.Resolver
}

// New constructs an Enricher backed by the given resolver.
func New(resolver terminology.Resolver) *Enricher {
	return &Enricher{resolver: resolver}
}

// EnrichConditions produces dual-code conditions: the model's suggested code
// is preserved under AICode and an ICD-10 lookup result, when found, is
// stored as ValidatedCode. Items without a name are dropped.
func (e *Enricher) EnrichConditions(ctx context.Context, conditions []record.Condition) []record.Condition {
	logger := common.Logger()
	enriched := make([]record.Condition, 0, len(conditions))
	for _, cond := range conditions {
		if strings.TrimSpace(cond.Name) == "" {
			continue
		}
		if cond.SuggestedCode != "" {
			cond.AICode = cond.SuggestedCode
			cond.SuggestedCode = ""
		}
		if e.resolver != nil {
			code, err := e.resolver.ConditionCode(ctx, cond.Name)
			switch {
			case err == nil:
				cond.ValidatedCode = code
			case errors.Is(err, terminology.ErrNotFound):
				logger.Warn("enrich: no icd10 match", "condition", cond.Name)
			default:
				logger.Error("enrich: icd10 lookup failed", "condition", cond.Name, "error", err)
			}
		}
		enriched = append(enriched, cond)
	}
	return enriched
}

// EnrichMedications resolves RxNorm identifiers for each named medication.
// Items without a name are dropped; lookup failures leave the code absent.
func (e *Enricher) EnrichMedications(ctx context.Context, medications []record.Medication) []record.Medication {
	logger := common.Logger()
	enriched := make([]record.Medication, 0, len(medications))
	for _, med := range medications {
		if strings.TrimSpace(med.Name) == "" {
			continue
		}
		if e.resolver != nil {
			code, err := e.resolver.MedicationCode(ctx, med.Name)
			switch {
			case err == nil:
				med.ValidatedCode = code
			case errors.Is(err, terminology.ErrNotFound):
				logger.Warn("enrich: no rxnorm match", "medication", med.Name)
			default:
				logger.Error("enrich: rxnorm lookup failed", "medication", med.Name, "error", err)
			}
		}
		enriched = append(enriched, med)
	}
	return enriched
}

// EnrichRecord applies both enrichment passes to a freshly extracted record.
func (e *Enricher) EnrichRecord(ctx context.Context, rec *record.StructuredRecord) {
	if rec == nil {
		return
	}
	rec.Conditions = e.EnrichConditions(ctx, rec.Conditions)
	rec.Medications = e.EnrichMedications(ctx, rec.Medications)
}
