// File path: internal/extract/summarizer.go
package extract

import (
	"context"
	"fmt"

	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/llm"
)

// Summarizer produces concise clinical summaries of note text.
type Summarizer struct {
	provider llm.Provider
}

// NewSummarizer constructs a Summarizer backed by the given provider.
func NewSummarizer(provider llm.Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Summarize returns a short professional summary of the note.
func (s *Summarizer) Summarize(ctx context.Context, noteText string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("summarize: provider required")
	}
	messages := []llm.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: noteText},
	}
	summary, err := s.provider.Chat(ctx, messages)
	if err != nil {
		common.Logger().Error("summarize: llm call failed", "error", err)
		return "", fmt.Errorf("summarize note: %w", err)
	}
	return summary, nil
}
