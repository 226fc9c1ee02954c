// File path: internal/extract/agent_test.go
package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kestrelhealth/medscribe/internal/enrich"
	"github.com/kestrelhealth/medscribe/internal/llm"
	"github.com/kestrelhealth/medscribe/internal/terminology"
)

type stubProvider struct {
	reply string
	err   error

	lastMessages []llm.Message
}

func (p *stubProvider) Chat(_ context.Context, messages []llm.Message) (string, error) {
	p.lastMessages = messages
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *stubProvider) Embed(_ context.Context, input []string) ([][]float32, error) {
	return make([][]float32, len(input)), nil
}

func (p *stubProvider) Name() string { return "stub" }

type fixedResolver struct {
	conditionCode string
}

func (r *fixedResolver) ConditionCode(_ context.Context, _ string) (string, error) {
	if r.conditionCode == "" {
		return "", terminology.ErrNotFound
	}
	return r.conditionCode, nil
}

func (r *fixedResolver) MedicationCode(_ context.Context, _ string) (string, error) {
	return "", terminology.ErrNotFound
}

func TestExtractParsesAndEnriches(t *testing.T) {
	provider := &stubProvider{
		reply: `{"conditions":[{"name":"Hypertension","suggested_icd10_code":"I10.9","confidence":"high"}]}`,
	}
	agent := NewAgent(provider, enrich.New(&fixedResolver{conditionCode: "I10"}))
	rec, err := agent.Extract(context.Background(), "BP 160/95, known hypertensive.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rec.Conditions) != 1 {
		t.Fatalf("conditions = %d", len(rec.Conditions))
	}
	cond := rec.Conditions[0]
	if cond.AICode != "I10.9" {
		t.Fatalf("ai code = %q", cond.AICode)
	}
	if cond.ValidatedCode != "I10" {
		t.Fatalf("validated code = %q", cond.ValidatedCode)
	}
	if len(provider.lastMessages) != 2 || provider.lastMessages[0].Role != "system" {
		t.Fatalf("messages = %+v", provider.lastMessages)
	}
	if !strings.Contains(provider.lastMessages[1].Content, "BP 160/95") {
		t.Fatalf("note text missing from prompt: %q", provider.lastMessages[1].Content)
	}
}

func TestExtractAcceptsFencedPayload(t *testing.T) {
	provider := &stubProvider{reply: "```json\n{\"conditions\":[{\"name\":\"Asthma\"}]}\n```"}
	agent := NewAgent(provider, nil)
	rec, err := agent.Extract(context.Background(), "wheezing")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rec.Conditions) != 1 || rec.Conditions[0].Name != "Asthma" {
		t.Fatalf("conditions = %+v", rec.Conditions)
	}
}

func TestExtractProviderFailure(t *testing.T) {
	agent := NewAgent(&stubProvider{err: errors.New("rate limited")}, nil)
	if _, err := agent.Extract(context.Background(), "note"); err == nil {
		t.Fatal("expected provider error to surface")
	}
}

func TestExtractMalformedPayload(t *testing.T) {
	agent := NewAgent(&stubProvider{reply: "I could not process that note."}, nil)
	if _, err := agent.Extract(context.Background(), "note"); err == nil {
		t.Fatal("expected parse error for non-JSON payload")
	}
}

func TestSummarize(t *testing.T) {
	provider := &stubProvider{reply: "Patient stable, continue current therapy."}
	summarizer := NewSummarizer(provider)
	summary, err := summarizer.Summarize(context.Background(), "long note text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "Patient stable, continue current therapy." {
		t.Fatalf("summary = %q", summary)
	}
	if provider.lastMessages[1].Content != "long note text" {
		t.Fatalf("note not forwarded: %q", provider.lastMessages[1].Content)
	}
}

func TestSummarizeProviderFailure(t *testing.T) {
	summarizer := NewSummarizer(&stubProvider{err: errors.New("timeout")})
	if _, err := summarizer.Summarize(context.Background(), "note"); err == nil {
		t.Fatal("expected provider error to surface")
	}
}
