// File path: internal/chatbot/router_test.go
package chatbot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kestrelhealth/medscribe/internal/docstore"
	"github.com/kestrelhealth/medscribe/internal/rag"
	"github.com/kestrelhealth/medscribe/internal/record"
)

type stubDocs struct {
	docs map[int64]docstore.Document
}

func (s *stubDocs) Get(_ context.Context, id int64) (*docstore.Document, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	found := doc
	return &found, nil
}

func (s *stubDocs) List(_ context.Context) ([]docstore.Document, error) {
	ids, _ := s.ListIDs(context.Background())
	out := make([]docstore.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.docs[id])
	}
	return out, nil
}

func (s *stubDocs) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(s.docs))
	for id := int64(1); id <= 100; id++ {
		if _, ok := s.docs[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type stubExtractor struct {
	records map[string]*record.StructuredRecord
	err     error
	calls   int
}

func (s *stubExtractor) Extract(_ context.Context, noteText string) (*record.StructuredRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if rec, ok := s.records[noteText]; ok {
		return rec, nil
	}
	return &record.StructuredRecord{}, nil
}

type stubSummarizer struct {
	calls int
}

func (s *stubSummarizer) Summarize(_ context.Context, noteText string) (string, error) {
	s.calls++
	return "Summary of: " + noteText, nil
}

type stubAnswerer struct {
	answer *rag.Answer
	err    error
}

func (s *stubAnswerer) Answer(_ context.Context, _ string, _ int) (*rag.Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

type panickyExtractor struct{}

func (panickyExtractor) Extract(_ context.Context, _ string) (*record.StructuredRecord, error) {
	panic("extraction exploded")
}

func newTestRouter(docs *stubDocs, extractor Extractor, answerer Answerer) (*Router, *stubSummarizer) {
	summarizer := &stubSummarizer{}
	if extractor == nil {
		extractor = &stubExtractor{}
	}
	return NewRouter(docs, extractor, summarizer, answerer, NewMemorySessionStore()), summarizer
}

func twoDocStore() *stubDocs {
	return &stubDocs{docs: map[int64]docstore.Document{
		1: {ID: 1, Title: "Medical Note - Case 01", Content: "note one"},
		2: {ID: 2, Title: "Medical Note - Case 02", Content: "note two"},
		5: {ID: 5, Title: "Medical Note - Case 05", Content: "note five"},
	}}
}

func TestChatSummarizesReferencedDocuments(t *testing.T) {
	router, summarizer := newTestRouter(twoDocStore(), nil, nil)
	reply := router.Chat(context.Background(), "s", "summarize documents 1 and 2", 0)
	if summarizer.calls != 2 {
		t.Fatalf("summarizer calls = %d, want 2", summarizer.calls)
	}
	for _, want := range []string{"Medical Note - Case 01", "Medical Note - Case 02", "Summary of: note one", "Summary of: note two", "---"} {
		if !strings.Contains(reply, want) {
			t.Errorf("missing %q in reply:\n%s", want, reply)
		}
	}
}

func TestChatSummaryMissingDocumentPlaceholder(t *testing.T) {
	router, _ := newTestRouter(twoDocStore(), nil, nil)
	reply := router.Chat(context.Background(), "s", "summarize doc 1 and 99", 0)
	if !strings.Contains(reply, "Summary of: note one") {
		t.Fatalf("existing document not summarized:\n%s", reply)
	}
	if !strings.Contains(reply, "Document 99 was not found.") {
		t.Fatalf("missing placeholder for absent document:\n%s", reply)
	}
}

func TestChatTwoDocCodeRequestDefaultsToTable(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note one": {Conditions: []record.Condition{{Name: "Hypertension", AICode: "I10", ValidatedCode: "I10"}}},
		"note two": {Conditions: []record.Condition{{Name: "Diabetes", AICode: "E11.9"}}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	reply := router.Chat(context.Background(), "s", "extract the icd10 codes from doc 1 and 2", 0)
	lines := strings.Split(reply, "\n")
	if len(lines) < 4 {
		t.Fatalf("expected table reply, got:\n%s", reply)
	}
	if strings.Count(lines[0], "|") != 9 || strings.Count(lines[1], "|") != 9 {
		t.Fatalf("expected 8-column table header and separator:\n%s", reply)
	}
	for _, want := range []string{"Hypertension", "Diabetes", "ICD-10 (AI)", "ICD-10 (Validated)"} {
		if !strings.Contains(reply, want) {
			t.Errorf("missing %q in:\n%s", want, reply)
		}
	}
}

func TestChatSingleDocCodeRequestDefaultsToList(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note one": {Conditions: []record.Condition{{Name: "Hypertension", AICode: "I10", ValidatedCode: "I10"}}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	reply := router.Chat(context.Background(), "s", "extract the icd10 codes from doc 1", 0)
	if !strings.Contains(reply, "Diagnoses (AI-Inferred Codes):") {
		t.Fatalf("expected list rendering for a single document:\n%s", reply)
	}
}

func TestChatHistoryLookbackResolvesIt(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note five": {Conditions: []record.Condition{{Name: "Diabetes", AICode: "E11.9"}}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	ctx := context.Background()
	router.Chat(ctx, "s", "summarize document 5", 0)
	reply := router.Chat(ctx, "s", "what icd10 codes does it have", 0)
	if extractor.calls != 1 {
		t.Fatalf("extractor calls = %d, want 1", extractor.calls)
	}
	if !strings.Contains(reply, "Diabetes") || !strings.Contains(reply, "E11.9") {
		t.Fatalf("expected codes for document 5 resolved from history:\n%s", reply)
	}
}

func TestChatLookbackLimitedToRecentTurns(t *testing.T) {
	router, _ := newTestRouter(twoDocStore(), &stubExtractor{}, nil)
	sessions := router.Sessions()
	sessions.Append("s",
		Turn{Role: "user", Content: "show me document 1"},
		Turn{Role: "assistant", Content: "Document 1..."},
		Turn{Role: "user", Content: "what about general information?"},
		Turn{Role: "assistant", Content: "General info..."},
		Turn{Role: "user", Content: "tell me more"},
		Turn{Role: "assistant", Content: "More info..."},
		Turn{Role: "user", Content: "and another question"},
		Turn{Role: "assistant", Content: "Another answer..."},
	)
	reply := router.Chat(context.Background(), "s", "what icd10 codes does it have", 0)
	if !strings.Contains(reply, "specify") {
		t.Fatalf("expected clarification when reference is outside the lookback window:\n%s", reply)
	}
}

func TestChatExplicitDocIDFallback(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note two": {Conditions: []record.Condition{{Name: "Asthma", AICode: "J45.909"}}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	reply := router.Chat(context.Background(), "s", "extract the icd-10 codes please", 2)
	if !strings.Contains(reply, "Asthma") {
		t.Fatalf("expected explicit document id to be used:\n%s", reply)
	}
}

func TestChatCSVExportWithHistoryContext(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note one": {Conditions: []record.Condition{{Name: "Hypertension", AICode: "I10", ValidatedCode: "I10"}}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	ctx := context.Background()
	router.Chat(ctx, "s", "extract codes from document 1", 0)
	reply := router.Chat(ctx, "s", "export to csv", 0)
	if !strings.Contains(reply, "```") {
		t.Fatalf("expected fenced CSV block:\n%s", reply)
	}
	if !strings.Contains(reply, "Case,Document Title,") {
		t.Fatalf("expected CSV header:\n%s", reply)
	}
	if !strings.Contains(reply, "Hypertension") {
		t.Fatalf("expected document 1 data in CSV:\n%s", reply)
	}
}

func TestChatClarificationWithoutReferences(t *testing.T) {
	router, _ := newTestRouter(twoDocStore(), nil, nil)
	reply := router.Chat(context.Background(), "s", "extract the icd10 codes", 0)
	if !strings.Contains(strings.ToLower(reply), "specify") {
		t.Fatalf("expected clarification prompt:\n%s", reply)
	}
}

func TestChatSummarizeAllFanOut(t *testing.T) {
	router, summarizer := newTestRouter(twoDocStore(), nil, nil)
	reply := router.Chat(context.Background(), "s", "summarize all documents", 0)
	if summarizer.calls != 3 {
		t.Fatalf("summarizer calls = %d, want 3", summarizer.calls)
	}
	for _, want := range []string{"Case 01", "Case 02", "Case 05"} {
		if !strings.Contains(reply, want) {
			t.Errorf("missing %q in fan-out reply:\n%s", want, reply)
		}
	}
}

func TestChatCodesForAllDocumentsDegradesToSummaries(t *testing.T) {
	extractor := &stubExtractor{}
	router, summarizer := newTestRouter(twoDocStore(), extractor, nil)
	reply := router.Chat(context.Background(), "s", "extract the icd10 codes from all documents", 0)
	if extractor.calls != 0 {
		t.Fatalf("extractor calls = %d, want 0", extractor.calls)
	}
	if summarizer.calls != 3 {
		t.Fatalf("summarizer calls = %d, want 3", summarizer.calls)
	}
	for _, want := range []string{"Summary of: note one", "Summary of: note two", "Summary of: note five"} {
		if !strings.Contains(reply, want) {
			t.Errorf("missing %q in reply:\n%s", want, reply)
		}
	}
}

func TestChatFallbackToRAGAnswer(t *testing.T) {
	answerer := &stubAnswerer{answer: &rag.Answer{
		Answer: "The patient takes Metformin.",
		Sources: []rag.Source{
			{DocumentID: 2, Title: "Medical Note - Case 02"},
		},
	}}
	router, _ := newTestRouter(twoDocStore(), nil, answerer)
	reply := router.Chat(context.Background(), "s", "what medications is the patient taking?", 0)
	if !strings.Contains(reply, "The patient takes Metformin.") {
		t.Fatalf("missing RAG answer:\n%s", reply)
	}
	if !strings.Contains(reply, "- Document 2: Medical Note - Case 02") {
		t.Fatalf("missing source citation:\n%s", reply)
	}
}

func TestChatFallbackToDocumentListing(t *testing.T) {
	answerer := &stubAnswerer{answer: &rag.Answer{Answer: "No relevant information found in the knowledge base."}}
	router, _ := newTestRouter(twoDocStore(), nil, answerer)
	reply := router.Chat(context.Background(), "s", "tell me something", 0)
	for _, want := range []string{"Document 1: Medical Note - Case 01", "Document 2: Medical Note - Case 02", "Document 5: Medical Note - Case 05"} {
		if !strings.Contains(reply, want) {
			t.Errorf("missing %q in listing:\n%s", want, reply)
		}
	}
}

func TestChatPanicBecomesApology(t *testing.T) {
	router, _ := newTestRouter(twoDocStore(), panickyExtractor{}, nil)
	reply := router.Chat(context.Background(), "s", "extract icd10 codes from doc 1", 0)
	if reply != apologyReply {
		t.Fatalf("expected apology reply, got:\n%s", reply)
	}
	history := router.Sessions().History("s")
	if len(history) != 2 || history[1].Content != apologyReply {
		t.Fatalf("expected apology appended to history, got %+v", history)
	}
}

func TestChatAppendsHistoryAfterResponse(t *testing.T) {
	router, _ := newTestRouter(twoDocStore(), nil, nil)
	reply := router.Chat(context.Background(), "s", "summarize document 1", 0)
	history := router.Sessions().History("s")
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "summarize document 1" {
		t.Fatalf("unexpected user turn %+v", history[0])
	}
	if history[1].Role != "assistant" || history[1].Content != reply {
		t.Fatalf("unexpected assistant turn %+v", history[1])
	}
}

func TestChatDualCodeEndToEnd(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note one": {Conditions: []record.Condition{
			{Name: "Annual health examination", AICode: "Z00.00"},
			{Name: "Type 2 Diabetes", AICode: "E11.9", ValidatedCode: "E11.9"},
		}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	reply := router.Chat(context.Background(), "s", "show the icd-10 codes for document 1", 0)
	if !strings.Contains(reply, "Annual health examination (ICD-10: Z00.00)") {
		t.Fatalf("AI code missing:\n%s", reply)
	}
	if !strings.Contains(reply, "Annual health examination: Not found in database") {
		t.Fatalf("validated-block marker missing:\n%s", reply)
	}
}

func TestChatSessionsDoNotInterfere(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note one": {Conditions: []record.Condition{{Name: "CondOne", AICode: "A1"}}},
		"note two": {Conditions: []record.Condition{{Name: "CondTwo", AICode: "A2"}}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	ctx := context.Background()
	router.Chat(ctx, "alpha", "summarize document 1", 0)
	router.Chat(ctx, "beta", "summarize document 2", 0)
	replyAlpha := router.Chat(ctx, "alpha", "what icd10 codes does it have", 0)
	replyBeta := router.Chat(ctx, "beta", "what icd10 codes does it have", 0)
	if !strings.Contains(replyAlpha, "CondOne") || strings.Contains(replyAlpha, "CondTwo") {
		t.Fatalf("session alpha resolved wrong document:\n%s", replyAlpha)
	}
	if !strings.Contains(replyBeta, "CondTwo") || strings.Contains(replyBeta, "CondOne") {
		t.Fatalf("session beta resolved wrong document:\n%s", replyBeta)
	}
}

func TestChatManyDocumentsStillRendersResolvedOnes(t *testing.T) {
	extractor := &stubExtractor{records: map[string]*record.StructuredRecord{
		"note one": {Conditions: []record.Condition{{Name: "Hypertension", AICode: "I10"}}},
	}}
	router, _ := newTestRouter(twoDocStore(), extractor, nil)
	reply := router.Chat(context.Background(), "s", fmt.Sprintf("icd10 codes for doc %d and %d in a table", 1, 42), 0)
	if !strings.Contains(reply, "Hypertension") {
		t.Fatalf("resolved document missing:\n%s", reply)
	}
	if !strings.Contains(reply, "No data") {
		t.Fatalf("placeholder for unknown document missing:\n%s", reply)
	}
}
