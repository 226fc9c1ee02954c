// File path: internal/fhir/types.go

// Package fhir converts structured note records into simplified FHIR R4
// resources for interoperability with downstream clinical systems.
package fhir

// Terminology system URLs used in codings.
const (
	SystemICD10CM = "http://hl7.org/fhir/sid/icd-10-cm"
	SystemRxNorm  = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemLOINC   = "http://loinc.org"
)

// Coding is a single code from a terminology system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept wraps codings with a human readable text.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Quantity is a measured amount with its unit. The value stays textual
// because note extractions frequently carry ranges and qualifiers.
type Quantity struct {
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Reference points at another resource, e.g. "Patient/12345".
type Reference struct {
	Reference string `json:"reference"`
}

// Patient is a simplified FHIR R4 Patient resource.
type Patient struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Gender       string `json:"gender,omitempty"`
	BirthDate    string `json:"birthDate,omitempty"`
}

// Condition is a simplified FHIR R4 Condition resource. Code carries the
// condition name plus any ICD-10 codings that survived enrichment.
type Condition struct {
	ResourceType       string           `json:"resourceType"`
	Code               *CodeableConcept `json:"code"`
	ClinicalStatus     string           `json:"clinicalStatus,omitempty"`
	VerificationStatus string           `json:"verificationStatus,omitempty"`
	Subject            *Reference       `json:"subject,omitempty"`
	RecordedDate       string           `json:"recordedDate,omitempty"`
}

// Dosage describes how a medication is taken.
type Dosage struct {
	Text  string           `json:"text,omitempty"`
	Route *CodeableConcept `json:"route,omitempty"`
}

// MedicationRequest is a simplified FHIR R4 MedicationRequest resource.
type MedicationRequest struct {
	ResourceType              string           `json:"resourceType"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept"`
	Subject                   *Reference       `json:"subject,omitempty"`
	DosageInstruction         []Dosage         `json:"dosageInstruction,omitempty"`
}

// Observation is a simplified FHIR R4 Observation resource covering both
// vital signs and laboratory results.
type Observation struct {
	ResourceType  string           `json:"resourceType"`
	Code          *CodeableConcept `json:"code"`
	Status        string           `json:"status"`
	Subject       *Reference       `json:"subject,omitempty"`
	ValueQuantity *Quantity        `json:"valueQuantity,omitempty"`
	ValueString   string           `json:"valueString,omitempty"`
}

// CarePlanDetail is the detail block of one planned activity.
type CarePlanDetail struct {
	Kind            string `json:"kind,omitempty"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status,omitempty"`
	ScheduledString string `json:"scheduledString,omitempty"`
}

// CarePlanActivity wraps one planned action.
type CarePlanActivity struct {
	Detail CarePlanDetail `json:"detail"`
}

// CarePlan is a simplified FHIR R4 CarePlan resource.
type CarePlan struct {
	ResourceType string             `json:"resourceType"`
	Status       string             `json:"status"`
	Intent       string             `json:"intent"`
	Subject      *Reference         `json:"subject,omitempty"`
	Activity     []CarePlanActivity `json:"activity,omitempty"`
}

// Bundle groups the converted resources for one note record.
type Bundle struct {
	Patient      *Patient            `json:"patient,omitempty"`
	Conditions   []Condition         `json:"conditions"`
	Medications  []MedicationRequest `json:"medications"`
	Observations []Observation       `json:"observations"`
	CarePlan     *CarePlan           `json:"care_plan,omitempty"`
}
