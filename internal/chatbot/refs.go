// File path: internal/chatbot/refs.go

// Package chatbot routes free-text questions about stored clinical notes to
// the summarization, code-extraction, and retrieval collaborators, and
// renders the results as prose, markdown tables, or CSV.
package chatbot

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// A reference phrase is a keyword followed by a run of numbers joined by
// commas, "and", spaces, or hyphens. Every integer embedded in the run is
// collected; "1-3" therefore yields 1 and 3, never the full range.
var (
	refRunPattern  = regexp.MustCompile(`\b(?:documents?|docs?|patients?|cases?|notes?|id)\s+(\d[\d\s,and\-]*)`)
	refHashPattern = regexp.MustCompile(`#(\d+)`)
	digitPattern   = regexp.MustCompile(`\d+`)
)

// ExtractDocumentIDs parses candidate document identifiers out of free text.
// The result is deduplicated and sorted ascending; existence of the ids is
// for the document store to decide. Pure function.
func ExtractDocumentIDs(text string) []int64 {
	lower := strings.ToLower(text)
	seen := make(map[int64]bool)
	collect := func(run string) {
		for _, token := range digitPattern.FindAllString(run, -1) {
			id, err := strconv.ParseInt(token, 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			seen[id] = true
		}
	}
	for _, match := range refRunPattern.FindAllStringSubmatch(lower, -1) {
		collect(match[1])
	}
	for _, match := range refHashPattern.FindAllStringSubmatch(lower, -1) {
		collect(match[1])
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
