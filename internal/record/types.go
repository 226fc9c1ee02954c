// File path: internal/record/types.go
package record

import "strings"

// Confidence grades how clearly a condition was documented in the source note.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Normalize lowercases and validates a confidence value, returning the empty
// string for anything outside the known grades.
func (c Confidence) Normalize() Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(string(c)))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ""
	}
}

// Condition is a diagnosed or suspected clinical condition. It carries two
// independent code slots: AICode is the code the extraction model proposed,
// ValidatedCode is the code confirmed against the ICD-10 terminology service.
// An empty ValidatedCode after enrichment means the lookup found nothing; the
// two codes are never assumed equal.
type Condition struct {
	Name          string     `json:"name"`
	Status        string     `json:"status,omitempty"`
	SuggestedCode string     `json:"suggested_icd10_code,omitempty"`
	AICode        string     `json:"ai_icd10_code,omitempty"`
	ValidatedCode string     `json:"validated_icd10_code,omitempty"`
	LegacyCode    string     `json:"icd10_code,omitempty"`
	Confidence    Confidence `json:"confidence,omitempty"`
	Reasoning     string     `json:"code_reasoning,omitempty"`
}

// Medication is a prescribed or reported medication. ValidatedCode holds the
// RxNorm concept identifier confirmed by the terminology service; AICode holds
// a model-proposed code when one was given.
type Medication struct {
	Name          string `json:"name"`
	Dosage        string `json:"dosage,omitempty"`
	Frequency     string `json:"frequency,omitempty"`
	Route         string `json:"route,omitempty"`
	AICode        string `json:"ai_rxnorm_code,omitempty"`
	ValidatedCode string `json:"rxnorm_code,omitempty"`
}

// LabResult is a single laboratory measurement pulled from a note.
type LabResult struct {
	TestName       string `json:"test_name"`
	Value          string `json:"value,omitempty"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
}

// PlanAction is one step of the documented treatment plan.
type PlanAction struct {
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
	Timing      string `json:"timing,omitempty"`
}

// VitalSigns captures the standard vitals block of a clinical note.
type VitalSigns struct {
	BloodPressure    string `json:"blood_pressure,omitempty"`
	HeartRate        string `json:"heart_rate,omitempty"`
	Temperature      string `json:"temperature,omitempty"`
	RespiratoryRate  string `json:"respiratory_rate,omitempty"`
	OxygenSaturation string `json:"oxygen_saturation,omitempty"`
}

// Patient holds the demographics extracted from a note.
type Patient struct {
	Name        string `json:"name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	PatientID   string `json:"patient_id,omitempty"`
}

// StructuredRecord is the full structured view of one clinical note. A record
// is built fresh per extraction call and treated as immutable once enrichment
// has completed.
type StructuredRecord struct {
	Patient        *Patient     `json:"patient,omitempty"`
	EncounterDate  string       `json:"encounter_date,omitempty"`
	ChiefComplaint string       `json:"chief_complaint,omitempty"`
	Subjective     string       `json:"subjective,omitempty"`
	Objective      string       `json:"objective,omitempty"`
	VitalSigns     *VitalSigns  `json:"vital_signs,omitempty"`
	Conditions     []Condition  `json:"conditions,omitempty"`
	Medications    []Medication `json:"medications,omitempty"`
	LabResults     []LabResult  `json:"lab_results,omitempty"`
	Assessment     string       `json:"assessment,omitempty"`
	PlanActions    []PlanAction `json:"plan_actions,omitempty"`
}

// Empty reports whether the record carries no conditions and no medications.
func (r *StructuredRecord) Empty() bool {
	return r == nil || (len(r.Conditions) == 0 && len(r.Medications) == 0)
}
