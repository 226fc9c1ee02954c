// File path: internal/fhir/converter.go
package fhir

import (
	"strings"

	"github.com/kestrelhealth/medscribe/internal/record"
)

// vitalCodings maps vital sign fields to their LOINC codes.
var vitalCodings = []struct {
	value   func(*record.VitalSigns) string
	display string
	loinc   string
}{
	{func(v *record.VitalSigns) string { return v.BloodPressure }, "Blood Pressure", "85354-9"},
	{func(v *record.VitalSigns) string { return v.HeartRate }, "Heart Rate", "8867-4"},
	{func(v *record.VitalSigns) string { return v.Temperature }, "Body Temperature", "8310-5"},
	{func(v *record.VitalSigns) string { return v.RespiratoryRate }, "Respiratory Rate", "9279-1"},
	{func(v *record.VitalSigns) string { return v.OxygenSaturation }, "Oxygen Saturation", "2708-6"},
}

// Convert transforms a structured note record into a bundle of FHIR
// resources. Conversion is pure and never fails; missing sections simply
// produce no resources.
func Convert(rec *record.StructuredRecord) *Bundle {
	bundle := &Bundle{
		Conditions:   []Condition{},
		Medications:  []MedicationRequest{},
		Observations: []Observation{},
	}
	if rec == nil {
		return bundle
	}
	subject := patientReference(rec.Patient)

	if rec.Patient != nil {
		bundle.Patient = convertPatient(rec.Patient)
	}
	for _, cond := range rec.Conditions {
		bundle.Conditions = append(bundle.Conditions, convertCondition(cond, subject, rec.EncounterDate))
	}
	for _, med := range rec.Medications {
		bundle.Medications = append(bundle.Medications, convertMedication(med, subject))
	}
	if rec.VitalSigns != nil {
		bundle.Observations = append(bundle.Observations, convertVitalSigns(rec.VitalSigns, subject)...)
	}
	for _, lab := range rec.LabResults {
		bundle.Observations = append(bundle.Observations, convertLabResult(lab, subject))
	}
	if len(rec.PlanActions) > 0 {
		bundle.CarePlan = convertCarePlan(rec.PlanActions, subject)
	}
	return bundle
}

func patientReference(patient *record.Patient) *Reference {
	if patient == nil || strings.TrimSpace(patient.PatientID) == "" {
		return nil
	}
	return &Reference{Reference: "Patient/" + patient.PatientID}
}

func convertPatient(patient *record.Patient) *Patient {
	return &Patient{
		ResourceType: "Patient",
		ID:           patient.PatientID,
		Name:         patient.Name,
		Gender:       strings.ToLower(patient.Gender),
		BirthDate:    patient.DateOfBirth,
	}
}

func convertCondition(cond record.Condition, subject *Reference, recordedDate string) Condition {
	clinicalStatus := "active"
	statusLower := strings.ToLower(cond.Status)
	if strings.Contains(statusLower, "resolved") || strings.Contains(statusLower, "inactive") {
		clinicalStatus = "resolved"
	}
	code := &CodeableConcept{Text: cond.Name}
	// The validated code is authoritative; the model-proposed code is kept
	// only when no validated one exists.
	if cond.ValidatedCode != "" {
		code.Coding = append(code.Coding, Coding{
			System:  SystemICD10CM,
			Code:    cond.ValidatedCode,
			Display: cond.Name,
		})
	} else if cond.AICode != "" {
		code.Coding = append(code.Coding, Coding{
			System:  SystemICD10CM,
			Code:    cond.AICode,
			Display: cond.Name,
		})
	}
	return Condition{
		ResourceType:       "Condition",
		Code:               code,
		ClinicalStatus:     clinicalStatus,
		VerificationStatus: "confirmed",
		Subject:            subject,
		RecordedDate:       recordedDate,
	}
}

func convertMedication(med record.Medication, subject *Reference) MedicationRequest {
	concept := &CodeableConcept{Text: med.Name}
	if med.ValidatedCode != "" {
		concept.Coding = append(concept.Coding, Coding{
			System:  SystemRxNorm,
			Code:    med.ValidatedCode,
			Display: med.Name,
		})
	}
	request := MedicationRequest{
		ResourceType:              "MedicationRequest",
		MedicationCodeableConcept: concept,
		Subject:                   subject,
	}
	if med.Dosage != "" || med.Frequency != "" || med.Route != "" {
		dosage := Dosage{
			Text: strings.TrimSpace(strings.Join([]string{med.Dosage, med.Frequency, med.Route}, " ")),
		}
		if med.Route != "" {
			dosage.Route = &CodeableConcept{Text: med.Route}
		}
		request.DosageInstruction = []Dosage{dosage}
	}
	return request
}

func convertVitalSigns(vitals *record.VitalSigns, subject *Reference) []Observation {
	var observations []Observation
	for _, mapping := range vitalCodings {
		value := mapping.value(vitals)
		if strings.TrimSpace(value) == "" {
			continue
		}
		observations = append(observations, Observation{
			ResourceType: "Observation",
			Status:       "final",
			Subject:      subject,
			Code: &CodeableConcept{
				Coding: []Coding{{System: SystemLOINC, Code: mapping.loinc, Display: mapping.display}},
				Text:   mapping.display,
			},
			ValueString: value,
		})
	}
	return observations
}

func convertLabResult(lab record.LabResult, subject *Reference) Observation {
	observation := Observation{
		ResourceType: "Observation",
		Status:       "final",
		Subject:      subject,
		Code:         &CodeableConcept{Text: lab.TestName},
	}
	switch {
	case lab.Value != "" && lab.Unit != "":
		observation.ValueQuantity = &Quantity{Value: lab.Value, Unit: lab.Unit}
	case lab.Value != "":
		observation.ValueString = lab.Value
	}
	return observation
}

func convertCarePlan(actions []record.PlanAction, subject *Reference) *CarePlan {
	plan := &CarePlan{
		ResourceType: "CarePlan",
		Status:       "active",
		Intent:       "plan",
		Subject:      subject,
	}
	for _, action := range actions {
		detail := CarePlanDetail{
			Kind:        action.ActionType,
			Description: action.Description,
			Status:      "scheduled",
		}
		if action.Timing != "" {
			detail.ScheduledString = action.Timing
		}
		plan.Activity = append(plan.Activity, CarePlanActivity{Detail: detail})
	}
	return plan
}
