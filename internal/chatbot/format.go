// File path: internal/chatbot/format.go
package chatbot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelhealth/medscribe/internal/record"
)

// DocumentResult pairs a document with its extracted record for rendering.
// A nil Record marks a document whose extraction failed; the formatters
// render it as a placeholder row instead of dropping it.
type DocumentResult struct {
	ID     int64
	Title  string
	Record *record.StructuredRecord
}

const noDataMessage = "No data to display."

const tableHeader = "| Case | Document Title | Diagnoses | ICD-10 (AI) | Confidence | ICD-10 (Validated) | Medications | RxNorm |"
const tableSeparator = "|------|----------------|-----------|-------------|------------|--------------------|-------------|--------|"

const csvHeader = "Case,Document Title,Diagnosis,ICD-10 (AI),Confidence,ICD-10 (Validated),Medication,RxNorm,Reasoning"

func confidenceStars(c record.Confidence) string {
	switch c.Normalize() {
	case record.ConfidenceHigh:
		return "★★★"
	case record.ConfidenceMedium:
		return "★★"
	case record.ConfidenceLow:
		return "★"
	default:
		return "-"
	}
}

// conditionAICode prefers the model-proposed slot, falling back to the
// legacy single-code field for older record shapes.
func conditionAICode(cond record.Condition) string {
	if cond.AICode != "" {
		return cond.AICode
	}
	return cond.LegacyCode
}

func medicationCode(med record.Medication) string {
	if med.ValidatedCode != "" {
		return med.ValidatedCode
	}
	return med.AICode
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

// tableRow is one logical row shared by the table and CSV renderers. Empty
// strings mark cells that the renderer fills with its own blank marker.
type tableRow struct {
	caseID     string
	title      string
	diagnosis  string
	aiCode     string
	confidence string
	validated  string
	medication string
	rxnorm     string
	reasoning  string
	// placeholder rows ("No data", "None found") skip the blank markers in
	// the diagnosis column.
	placeholder bool
}

func documentRows(result DocumentResult) []tableRow {
	id := strconv.FormatInt(result.ID, 10)
	if result.Record == nil {
		return []tableRow{{caseID: id, title: result.Title, diagnosis: "No data", placeholder: true}}
	}
	conditions := result.Record.Conditions
	medications := result.Record.Medications
	if len(conditions) == 0 && len(medications) == 0 {
		return []tableRow{{caseID: id, title: result.Title, diagnosis: "None found", placeholder: true}}
	}
	count := len(conditions)
	if len(medications) > count {
		count = len(medications)
	}
	rows := make([]tableRow, 0, count)
	for i := 0; i < count; i++ {
		row := tableRow{}
		if i == 0 {
			row.caseID = id
			row.title = result.Title
		}
		if i < len(conditions) {
			cond := conditions[i]
			row.diagnosis = cond.Name
			row.aiCode = orNA(conditionAICode(cond))
			row.confidence = confidenceStars(cond.Confidence)
			row.validated = orNA(cond.ValidatedCode)
			row.reasoning = cond.Reasoning
		}
		if i < len(medications) {
			med := medications[i]
			row.medication = med.Name
			row.rxnorm = orNA(medicationCode(med))
		}
		rows = append(rows, row)
	}
	return rows
}

func blankDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// RenderTable renders the results as one fixed-header markdown table. The
// first row of each document carries its id and title; continuation rows
// leave those columns blank.
func RenderTable(results []DocumentResult) string {
	if len(results) == 0 {
		return noDataMessage
	}
	var b strings.Builder
	b.WriteString(tableHeader)
	b.WriteString("\n")
	b.WriteString(tableSeparator)
	for _, result := range results {
		for _, row := range documentRows(result) {
			diagnosis := row.diagnosis
			if !row.placeholder {
				diagnosis = blankDash(diagnosis)
			}
			b.WriteString(fmt.Sprintf("\n| %s | %s | %s | %s | %s | %s | %s | %s |",
				row.caseID, row.title,
				diagnosis,
				blankDash(row.aiCode), blankDash(row.confidence), blankDash(row.validated),
				blankDash(row.medication), blankDash(row.rxnorm)))
		}
	}
	return b.String()
}

// csvEscape substitutes embedded commas so rows stay aligned in plain
// comma-delimited output.
func csvEscape(value string) string {
	return strings.ReplaceAll(value, ",", ";")
}

// RenderCSV renders the same logical rows as RenderTable in CSV, wrapped in
// a fenced code block with a copy instruction.
func RenderCSV(results []DocumentResult) string {
	if len(results) == 0 {
		return noDataMessage
	}
	var b strings.Builder
	b.WriteString(csvHeader)
	for _, result := range results {
		for _, row := range documentRows(result) {
			reasoning := ""
			if row.reasoning != "" {
				reasoning = `"` + csvEscape(row.reasoning) + `"`
			}
			confidence := row.confidence
			if confidence == "-" {
				confidence = ""
			}
			cells := []string{
				row.caseID,
				csvEscape(row.title),
				csvEscape(row.diagnosis),
				row.aiCode,
				confidence,
				row.validated,
				csvEscape(row.medication),
				row.rxnorm,
				reasoning,
			}
			b.WriteString("\n")
			b.WriteString(strings.Join(cells, ","))
		}
	}
	return "Here are the extracted codes in CSV format. Copy the block below and save it as a .csv file to open in a spreadsheet:\n\n```csv\n" +
		b.String() + "\n```"
}

// RenderList renders the results as prose. Conditions appear in an
// AI-inferred block and, when at least one carries a validated code, a
// parallel API-validated block; records that predate the dual-code fields
// fall back to a single legacy block.
func RenderList(results []DocumentResult) string {
	if len(results) == 0 {
		return noDataMessage
	}
	sections := make([]string, 0, len(results))
	for _, result := range results {
		sections = append(sections, formatDocumentProse(result))
	}
	return strings.Join(sections, "\n\n---\n\n")
}

func formatDocumentProse(result DocumentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Document %d - %s**\n", result.ID, result.Title)
	rec := result.Record
	if rec == nil {
		b.WriteString("\nNo data extracted for this document.")
		return b.String()
	}
	if len(rec.Conditions) == 0 && len(rec.Medications) == 0 {
		b.WriteString("\nNo conditions or medications found.")
		return b.String()
	}

	if len(rec.Conditions) > 0 {
		if legacyOnly(rec.Conditions) {
			b.WriteString("\n**Diagnoses:**\n")
			for _, cond := range rec.Conditions {
				fmt.Fprintf(&b, "  - %s (ICD-10: %s)\n", cond.Name, orNA(cond.LegacyCode))
			}
		} else {
			b.WriteString("\n**Diagnoses (AI-Inferred Codes):**\n")
			for _, cond := range rec.Conditions {
				code := conditionAICode(cond)
				if code == "" {
					code = "Not assigned"
				}
				fmt.Fprintf(&b, "  - %s (ICD-10: %s)", cond.Name, code)
				if stars := confidenceStars(cond.Confidence); stars != "-" {
					fmt.Fprintf(&b, " %s", stars)
				}
				b.WriteString("\n")
				if cond.Reasoning != "" {
					fmt.Fprintf(&b, "      Reasoning: %s\n", cond.Reasoning)
				}
			}
			if anyValidated(rec.Conditions) {
				b.WriteString("\n**Diagnoses (API-Validated Codes):**\n")
				for _, cond := range rec.Conditions {
					if cond.ValidatedCode != "" {
						fmt.Fprintf(&b, "  - %s (ICD-10: %s)\n", cond.Name, cond.ValidatedCode)
					} else {
						fmt.Fprintf(&b, "  - %s: Not found in database\n", cond.Name)
					}
				}
			}
		}
	}

	if len(rec.Medications) > 0 {
		b.WriteString("\n**Medications:**\n")
		for _, med := range rec.Medications {
			fmt.Fprintf(&b, "  - %s (RxNorm: %s)", med.Name, orNA(medicationCode(med)))
			details := medicationDetails(med)
			if details != "" {
				fmt.Fprintf(&b, " - %s", details)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// legacyOnly reports whether every coded condition uses only the legacy
// single-code field, which selects the backward-compatible block.
func legacyOnly(conditions []record.Condition) bool {
	sawLegacy := false
	for _, cond := range conditions {
		if cond.AICode != "" || cond.ValidatedCode != "" {
			return false
		}
		if cond.LegacyCode != "" {
			sawLegacy = true
		}
	}
	return sawLegacy
}

func anyValidated(conditions []record.Condition) bool {
	for _, cond := range conditions {
		if cond.ValidatedCode != "" {
			return true
		}
	}
	return false
}

func medicationDetails(med record.Medication) string {
	var parts []string
	if med.Dosage != "" {
		parts = append(parts, med.Dosage)
	}
	if med.Frequency != "" {
		parts = append(parts, med.Frequency)
	}
	if med.Route != "" {
		parts = append(parts, med.Route)
	}
	return strings.Join(parts, ", ")
}
