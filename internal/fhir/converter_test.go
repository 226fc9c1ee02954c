// File path: internal/fhir/converter_test.go
package fhir

import (
	"testing"

	"github.com/kestrelhealth/medscribe/internal/record"
)

func TestConvertNilRecord(t *testing.T) {
	bundle := Convert(nil)
	if bundle == nil {
		t.Fatal("expected bundle for nil record")
	}
	if bundle.Patient != nil || bundle.CarePlan != nil {
		t.Fatal("expected no patient or care plan for nil record")
	}
	if len(bundle.Conditions) != 0 || len(bundle.Medications) != 0 || len(bundle.Observations) != 0 {
		t.Fatal("expected empty resource lists for nil record")
	}
}

func TestConvertPatientAndSubject(t *testing.T) {
	rec := &record.StructuredRecord{
		Patient: &record.Patient{
			Name:        "Jane Doe",
			Gender:      "Female",
			DateOfBirth: "1980-04-12",
			PatientID:   "MRN-123",
		},
		Conditions: []record.Condition{{Name: "Hypertension"}},
	}
	bundle := Convert(rec)
	if bundle.Patient == nil {
		t.Fatal("expected patient resource")
	}
	if bundle.Patient.ResourceType != "Patient" {
		t.Fatalf("unexpected resourceType %q", bundle.Patient.ResourceType)
	}
	if bundle.Patient.Gender != "female" {
		t.Fatalf("expected lowercased gender, got %q", bundle.Patient.Gender)
	}
	if len(bundle.Conditions) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(bundle.Conditions))
	}
	subject := bundle.Conditions[0].Subject
	if subject == nil || subject.Reference != "Patient/MRN-123" {
		t.Fatalf("unexpected condition subject %+v", subject)
	}
}

func TestConvertNoSubjectWithoutPatientID(t *testing.T) {
	rec := &record.StructuredRecord{
		Patient:    &record.Patient{Name: "John Doe"},
		Conditions: []record.Condition{{Name: "Asthma"}},
	}
	bundle := Convert(rec)
	if bundle.Conditions[0].Subject != nil {
		t.Fatal("expected nil subject when patient id is absent")
	}
}

func TestConvertConditionStatusAndCoding(t *testing.T) {
	tests := []struct {
		name           string
		condition      record.Condition
		wantStatus     string
		wantCode       string
		wantCodingsLen int
	}{
		{
			name:           "validated code preferred",
			condition:      record.Condition{Name: "Type 2 diabetes", AICode: "E11.9", ValidatedCode: "E11.65"},
			wantStatus:     "active",
			wantCode:       "E11.65",
			wantCodingsLen: 1,
		},
		{
			name:           "ai code fallback",
			condition:      record.Condition{Name: "Migraine", AICode: "G43.909"},
			wantStatus:     "active",
			wantCode:       "G43.909",
			wantCodingsLen: 1,
		},
		{
			name:           "resolved status",
			condition:      record.Condition{Name: "Pneumonia", Status: "Resolved after treatment"},
			wantStatus:     "resolved",
			wantCodingsLen: 0,
		},
		{
			name:           "inactive maps to resolved",
			condition:      record.Condition{Name: "Gout", Status: "currently inactive"},
			wantStatus:     "resolved",
			wantCodingsLen: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bundle := Convert(&record.StructuredRecord{Conditions: []record.Condition{tc.condition}})
			cond := bundle.Conditions[0]
			if cond.ClinicalStatus != tc.wantStatus {
				t.Fatalf("clinicalStatus = %q, want %q", cond.ClinicalStatus, tc.wantStatus)
			}
			if cond.VerificationStatus != "confirmed" {
				t.Fatalf("verificationStatus = %q", cond.VerificationStatus)
			}
			if len(cond.Code.Coding) != tc.wantCodingsLen {
				t.Fatalf("codings = %d, want %d", len(cond.Code.Coding), tc.wantCodingsLen)
			}
			if tc.wantCodingsLen > 0 {
				coding := cond.Code.Coding[0]
				if coding.Code != tc.wantCode {
					t.Fatalf("code = %q, want %q", coding.Code, tc.wantCode)
				}
				if coding.System != SystemICD10CM {
					t.Fatalf("system = %q", coding.System)
				}
			}
		})
	}
}

func TestConvertMedicationCodingAndDosage(t *testing.T) {
	rec := &record.StructuredRecord{
		Medications: []record.Medication{
			{Name: "Lisinopril", Dosage: "10mg", Frequency: "once daily", Route: "oral", ValidatedCode: "29046"},
			{Name: "Unknown elixir"},
		},
	}
	bundle := Convert(rec)
	if len(bundle.Medications) != 2 {
		t.Fatalf("expected 2 medication requests, got %d", len(bundle.Medications))
	}
	first := bundle.Medications[0]
	if first.ResourceType != "MedicationRequest" {
		t.Fatalf("unexpected resourceType %q", first.ResourceType)
	}
	if len(first.MedicationCodeableConcept.Coding) != 1 {
		t.Fatal("expected rxnorm coding on validated medication")
	}
	coding := first.MedicationCodeableConcept.Coding[0]
	if coding.System != SystemRxNorm || coding.Code != "29046" {
		t.Fatalf("unexpected coding %+v", coding)
	}
	if len(first.DosageInstruction) != 1 {
		t.Fatal("expected dosage instruction")
	}
	if got := first.DosageInstruction[0].Text; got != "10mg once daily oral" {
		t.Fatalf("dosage text = %q", got)
	}
	if first.DosageInstruction[0].Route == nil || first.DosageInstruction[0].Route.Text != "oral" {
		t.Fatal("expected route concept")
	}
	second := bundle.Medications[1]
	if len(second.MedicationCodeableConcept.Coding) != 0 {
		t.Fatal("expected no coding without validated code")
	}
	if second.DosageInstruction != nil {
		t.Fatal("expected no dosage instruction without dosage fields")
	}
}

func TestConvertVitalSignsObservations(t *testing.T) {
	rec := &record.StructuredRecord{
		VitalSigns: &record.VitalSigns{
			BloodPressure: "128/82",
			HeartRate:     "72 bpm",
		},
	}
	bundle := Convert(rec)
	if len(bundle.Observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(bundle.Observations))
	}
	bp := bundle.Observations[0]
	if bp.Code.Coding[0].Code != "85354-9" || bp.Code.Coding[0].System != SystemLOINC {
		t.Fatalf("unexpected blood pressure coding %+v", bp.Code.Coding[0])
	}
	if bp.ValueString != "128/82" {
		t.Fatalf("valueString = %q", bp.ValueString)
	}
	hr := bundle.Observations[1]
	if hr.Code.Coding[0].Code != "8867-4" {
		t.Fatalf("unexpected heart rate coding %+v", hr.Code.Coding[0])
	}
	if bp.Status != "final" || hr.Status != "final" {
		t.Fatal("expected final status on vitals")
	}
}

func TestConvertLabResults(t *testing.T) {
	rec := &record.StructuredRecord{
		LabResults: []record.LabResult{
			{TestName: "HbA1c", Value: "7.2", Unit: "%"},
			{TestName: "Urinalysis", Value: "negative"},
			{TestName: "Pending culture"},
		},
	}
	bundle := Convert(rec)
	if len(bundle.Observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(bundle.Observations))
	}
	withUnit := bundle.Observations[0]
	if withUnit.ValueQuantity == nil || withUnit.ValueQuantity.Value != "7.2" || withUnit.ValueQuantity.Unit != "%" {
		t.Fatalf("unexpected valueQuantity %+v", withUnit.ValueQuantity)
	}
	if withUnit.ValueString != "" {
		t.Fatal("expected no valueString when valueQuantity set")
	}
	withoutUnit := bundle.Observations[1]
	if withoutUnit.ValueQuantity != nil || withoutUnit.ValueString != "negative" {
		t.Fatalf("unexpected lab observation %+v", withoutUnit)
	}
	pending := bundle.Observations[2]
	if pending.ValueQuantity != nil || pending.ValueString != "" {
		t.Fatal("expected bare observation for valueless lab")
	}
}

func TestConvertCarePlan(t *testing.T) {
	rec := &record.StructuredRecord{
		PlanActions: []record.PlanAction{
			{ActionType: "follow_up", Description: "Return for BP check", Timing: "2 weeks"},
			{ActionType: "test", Description: "Repeat HbA1c"},
		},
	}
	bundle := Convert(rec)
	if bundle.CarePlan == nil {
		t.Fatal("expected care plan")
	}
	if bundle.CarePlan.Status != "active" || bundle.CarePlan.Intent != "plan" {
		t.Fatalf("unexpected care plan status/intent %+v", bundle.CarePlan)
	}
	if len(bundle.CarePlan.Activity) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(bundle.CarePlan.Activity))
	}
	first := bundle.CarePlan.Activity[0].Detail
	if first.Kind != "follow_up" || first.ScheduledString != "2 weeks" || first.Status != "scheduled" {
		t.Fatalf("unexpected activity detail %+v", first)
	}
	second := bundle.CarePlan.Activity[1].Detail
	if second.ScheduledString != "" {
		t.Fatal("expected empty scheduledString without timing")
	}
}
