// File path: internal/record/normalize_test.go
package record

import "testing"

func TestParsePlainJSON(t *testing.T) {
	raw := `{"chief_complaint":"Chest pain","conditions":[{"name":"Angina","confidence":"HIGH"}]}`
	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ChiefComplaint != "Chest pain" {
		t.Fatalf("chief complaint = %q", rec.ChiefComplaint)
	}
	if len(rec.Conditions) != 1 {
		t.Fatalf("conditions = %d", len(rec.Conditions))
	}
	if rec.Conditions[0].Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %q, want normalized high", rec.Conditions[0].Confidence)
	}
}

func TestParseStripsMarkdownFence(t *testing.T) {
	cases := []string{
		"```json\n{\"conditions\":[{\"name\":\"Asthma\"}]}\n```",
		"```\n{\"conditions\":[{\"name\":\"Asthma\"}]}\n```",
		"  {\"conditions\":[{\"name\":\"Asthma\"}]}  ",
	}
	for _, raw := range cases {
		rec, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if len(rec.Conditions) != 1 || rec.Conditions[0].Name != "Asthma" {
			t.Fatalf("Parse(%q) conditions = %+v", raw, rec.Conditions)
		}
	}
}

func TestParseLegacyDiagnosesKey(t *testing.T) {
	raw := `{"diagnoses":[{"name":"Hypertension","icd10_code":"I10"}]}`
	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rec.Conditions) != 1 {
		t.Fatalf("conditions = %d, want legacy diagnoses mapped", len(rec.Conditions))
	}
	if rec.Conditions[0].LegacyCode != "I10" {
		t.Fatalf("legacy code = %q", rec.Conditions[0].LegacyCode)
	}
}

func TestParseConditionsKeyWinsOverDiagnoses(t *testing.T) {
	raw := `{"conditions":[{"name":"New"}],"diagnoses":[{"name":"Old"}]}`
	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rec.Conditions) != 1 || rec.Conditions[0].Name != "New" {
		t.Fatalf("conditions = %+v", rec.Conditions)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", "```\n```"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) expected error", raw)
		}
	}
}

func TestParseTrimsNames(t *testing.T) {
	raw := `{"conditions":[{"name":"  Diabetes  "}],"medications":[{"name":" Metformin "}]}`
	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Conditions[0].Name != "Diabetes" {
		t.Fatalf("condition name = %q", rec.Conditions[0].Name)
	}
	if rec.Medications[0].Name != "Metformin" {
		t.Fatalf("medication name = %q", rec.Medications[0].Name)
	}
}

func TestConfidenceNormalize(t *testing.T) {
	cases := map[Confidence]Confidence{
		"high":     ConfidenceHigh,
		"HIGH":     ConfidenceHigh,
		" Medium ": ConfidenceMedium,
		"low":      ConfidenceLow,
		"certain":  "",
		"":         "",
	}
	for in, want := range cases {
		if got := in.Normalize(); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecordEmpty(t *testing.T) {
	var nilRec *StructuredRecord
	if !nilRec.Empty() {
		t.Fatal("nil record should be empty")
	}
	if !(&StructuredRecord{Assessment: "stable"}).Empty() {
		t.Fatal("record without conditions or medications should be empty")
	}
	if (&StructuredRecord{Conditions: []Condition{{Name: "Flu"}}}).Empty() {
		t.Fatal("record with a condition should not be empty")
	}
}
