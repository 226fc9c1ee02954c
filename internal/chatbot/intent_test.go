// File path: internal/chatbot/intent_test.go
package chatbot

import "testing"

func TestClassifyIntentSummary(t *testing.T) {
	positives := []string{
		"summarize this document",
		"give me a summary",
		"provide an overview",
		"brief summary please",
		"summaries for docs 1 and 2",
	}
	for _, msg := range positives {
		if !ClassifyIntent(msg).Summary {
			t.Errorf("expected summary intent for %q", msg)
		}
	}
	negatives := []string{
		"extract codes",
		"what are the medications",
		"show me patient data",
	}
	for _, msg := range negatives {
		if ClassifyIntent(msg).Summary {
			t.Errorf("unexpected summary intent for %q", msg)
		}
	}
}

func TestClassifyIntentCodes(t *testing.T) {
	positives := []string{
		"extract ICD-10 codes",
		"what are the icd10 codes",
		"show me diagnosis codes",
		"get rxnorm codes",
		"extract medication codes",
		"billing codes for this patient",
	}
	for _, msg := range positives {
		if !ClassifyIntent(msg).Codes {
			t.Errorf("expected codes intent for %q", msg)
		}
	}
	negatives := []string{
		"summarize the document",
		"what medications were prescribed",
		"show me the patient info",
	}
	for _, msg := range negatives {
		if ClassifyIntent(msg).Codes {
			t.Errorf("unexpected codes intent for %q", msg)
		}
	}
}

func TestFormatKeywordsImplyCodes(t *testing.T) {
	tests := []struct {
		message string
		format  Format
	}{
		{"give me the data in a table", FormatTable},
		{"export to csv", FormatCSV},
		{"put it in a spreadsheet", FormatCSV},
		{"export the codes", FormatAuto},
	}
	for _, tc := range tests {
		intent := ClassifyIntent(tc.message)
		if !intent.Codes {
			t.Errorf("expected codes intent for %q", tc.message)
		}
		if intent.Format != tc.format {
			t.Errorf("format for %q = %v, want %v", tc.message, intent.Format, tc.format)
		}
	}
}

func TestFormatPriorityCSVOverTable(t *testing.T) {
	intent := ClassifyIntent("export the table as csv")
	if intent.Format != FormatCSV {
		t.Fatalf("expected CSV to win over table, got %v", intent.Format)
	}
	intent = ClassifyIntent("show the icd10 codes in a table")
	if intent.Format != FormatTable {
		t.Fatalf("expected table format, got %v", intent.Format)
	}
}

func TestResolveFormatDocCountDefault(t *testing.T) {
	if got := ResolveFormat(FormatAuto, 1); got != FormatList {
		t.Fatalf("single doc default = %v, want list", got)
	}
	if got := ResolveFormat(FormatAuto, 2); got != FormatTable {
		t.Fatalf("two doc default = %v, want table", got)
	}
	if got := ResolveFormat(FormatCSV, 1); got != FormatCSV {
		t.Fatalf("explicit format must win, got %v", got)
	}
}
