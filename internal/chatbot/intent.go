// File path: internal/chatbot/intent.go
package chatbot

import "strings"

// Format selects the rendering of a code-extraction response.
type Format int

const (
	// FormatAuto defers to the document-count default at render time.
	FormatAuto Format = iota
	FormatList
	FormatTable
	FormatCSV
)

// Intent is the classification of one user message. Summary and Codes may
// both be false, in which case the router treats the message as an open
// question.
type Intent struct {
	Summary bool
	Codes   bool
	Format  Format
}

// intentRules is evaluated in order against the lowercased message. The
// order encodes the format priority: CSV beats table beats list, and a
// format keyword alone is enough to imply the codes intent. Asking for a
// spreadsheet of a medical note only ever means one thing here.
var intentRules = []struct {
	keywords []string
	apply    func(*Intent)
}{
	{
		keywords: []string{"summarize", "summaries", "summary", "overview", "brief"},
		apply:    func(i *Intent) { i.Summary = true },
	},
	{
		keywords: []string{"csv", "spreadsheet"},
		apply: func(i *Intent) {
			i.Codes = true
			if i.Format == FormatAuto {
				i.Format = FormatCSV
			}
		},
	},
	{
		keywords: []string{"table"},
		apply: func(i *Intent) {
			i.Codes = true
			if i.Format == FormatAuto {
				i.Format = FormatTable
			}
		},
	},
	{
		keywords: []string{"detailed list", "as a list"},
		apply: func(i *Intent) {
			i.Codes = true
			if i.Format == FormatAuto {
				i.Format = FormatList
			}
		},
	},
	{
		keywords: []string{"export", "list"},
		apply:    func(i *Intent) { i.Codes = true },
	},
	{
		keywords: []string{
			"icd-10", "icd10", "icd", "rxnorm",
			"diagnosis code", "diagnoses code", "medical code", "billing code",
			"medication code", "coding",
			"extract code", "get code", "show code", "code extraction",
		},
		apply: func(i *Intent) { i.Codes = true },
	},
}

// ClassifyIntent inspects a message for the summary and code-extraction
// keyword families. Stateless; the router decides precedence between the
// two intents.
func ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)
	var intent Intent
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				rule.apply(&intent)
				break
			}
		}
	}
	return intent
}

// ResolveFormat applies the document-count default when no explicit format
// keyword was present: one document reads best as a list, several as a
// comparison table.
func ResolveFormat(format Format, docCount int) Format {
	if format != FormatAuto {
		return format
	}
	if docCount <= 1 {
		return FormatList
	}
	return FormatTable
}
