// File path: internal/record/normalize.go
package record

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse decodes extraction output into a StructuredRecord. Model output is
// frequently wrapped in a markdown code fence; the fence is stripped before
// decoding. Older extraction prompts emitted conditions under a "diagnoses"
// key — that legacy shape is accepted here, and only here, so downstream
// consumers always see the single "conditions" field.
func Parse(raw string) (*StructuredRecord, error) {
	cleaned := stripFence(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty extraction payload")
	}
	var envelope struct {
		StructuredRecord
		Diagnoses []Condition `json:"diagnoses"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, fmt.Errorf("decode structured record: %w", err)
	}
	rec := envelope.StructuredRecord
	if len(rec.Conditions) == 0 && len(envelope.Diagnoses) > 0 {
		rec.Conditions = envelope.Diagnoses
	}
	normalize(&rec)
	return &rec, nil
}

func normalize(rec *StructuredRecord) {
	for i := range rec.Conditions {
		cond := &rec.Conditions[i]
		cond.Name = strings.TrimSpace(cond.Name)
		cond.Confidence = cond.Confidence.Normalize()
	}
	for i := range rec.Medications {
		rec.Medications[i].Name = strings.TrimSpace(rec.Medications[i].Name)
	}
}

func stripFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}
