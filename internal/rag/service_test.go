// File path: internal/rag/service_test.go
package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/kestrelhealth/medscribe/internal/docstore"
	"github.com/kestrelhealth/medscribe/internal/llm"
	"github.com/kestrelhealth/medscribe/internal/vector"
)

type stubStore struct {
	available bool
	results   []vector.SearchResult

	upserted    []vector.Chunk
	searchLimit int
}

func (s *stubStore) Available() bool    { return s.available }
func (s *stubStore) Collection() string { return "test" }

func (s *stubStore) UpsertChunks(_ context.Context, chunks []vector.Chunk, _ [][]float32) error {
	s.upserted = append(s.upserted, chunks...)
	return nil
}

func (s *stubStore) Search(_ context.Context, _ []float32, limit int) ([]vector.SearchResult, error) {
	s.searchLimit = limit
	return s.results, nil
}

type stubProvider struct {
	reply string
}

func (p *stubProvider) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return p.reply, nil
}

func (p *stubProvider) Embed(_ context.Context, input []string) ([][]float32, error) {
	vectors := make([][]float32, len(input))
	for i := range input {
		vectors[i] = []float32{0.5}
	}
	return vectors, nil
}

func (p *stubProvider) Name() string { return "stub" }

func TestIndexDocumentsChunksWithIDs(t *testing.T) {
	store := &stubStore{available: true}
	svc := New(store, &stubProvider{})
	docs := []docstore.Document{
		{ID: 1, Title: "Case 01", Content: "short note"},
		{ID: 2, Title: "Case 02", Content: strings.Repeat("history of present illness. ", 60)},
	}
	if err := svc.IndexDocuments(context.Background(), docs); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	if len(store.upserted) < 3 {
		t.Fatalf("chunks = %d, want the long note split", len(store.upserted))
	}
	if store.upserted[0].ID != "1:0" {
		t.Fatalf("chunk id = %q", store.upserted[0].ID)
	}
	seenDoc2 := false
	for _, chunk := range store.upserted {
		if chunk.DocumentID == 2 {
			seenDoc2 = true
			if chunk.Title != "Case 02" {
				t.Fatalf("chunk title = %q", chunk.Title)
			}
		}
	}
	if !seenDoc2 {
		t.Fatal("no chunks for document 2")
	}
}

func TestIndexDocumentsUnavailableStore(t *testing.T) {
	svc := New(&stubStore{available: false}, &stubProvider{})
	if err := svc.IndexDocuments(context.Background(), []docstore.Document{{ID: 1, Content: "x"}}); err == nil {
		t.Fatal("expected error when the vector store is unavailable")
	}
}

func TestAnswerReturnsSources(t *testing.T) {
	store := &stubStore{
		available: true,
		results: []vector.SearchResult{
			{
				ID:    "3:0",
				Score: 0.9,
				Payload: map[string]interface{}{
					"content":     "Patient diagnosed with hypertension, started on lisinopril.",
					"document_id": float64(3),
					"title":       "Case 03",
					"chunk_index": float64(0),
				},
			},
		},
	}
	svc := New(store, &stubProvider{reply: "The patient has hypertension."})
	answer, err := svc.Answer(context.Background(), "what was diagnosed?", 0)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if store.searchLimit != defaultTopK {
		t.Fatalf("search limit = %d, want default", store.searchLimit)
	}
	if answer.Answer != "The patient has hypertension." {
		t.Fatalf("answer = %q", answer.Answer)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("sources = %d", len(answer.Sources))
	}
	src := answer.Sources[0]
	if src.DocumentID != 3 || src.Title != "Case 03" || src.ChunkIndex != 0 {
		t.Fatalf("source = %+v", src)
	}
	if !strings.Contains(src.Preview, "hypertension") {
		t.Fatalf("preview = %q", src.Preview)
	}
}

func TestAnswerNoResultsIsNotAnError(t *testing.T) {
	svc := New(&stubStore{available: true}, &stubProvider{reply: "unused"})
	answer, err := svc.Answer(context.Background(), "anything indexed?", 5)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(answer.Sources) != 0 {
		t.Fatalf("sources = %d, want none", len(answer.Sources))
	}
	if !strings.Contains(answer.Answer, "No relevant information") {
		t.Fatalf("answer = %q", answer.Answer)
	}
}

func TestAnswerTruncatesLongPreviews(t *testing.T) {
	long := strings.Repeat("a", previewRunes+50)
	store := &stubStore{
		available: true,
		results: []vector.SearchResult{
			{ID: "1:0", Payload: map[string]interface{}{"content": long, "document_id": float64(1)}},
		},
	}
	svc := New(store, &stubProvider{reply: "ok"})
	answer, err := svc.Answer(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	preview := answer.Sources[0].Preview
	if !strings.HasSuffix(preview, "...") {
		t.Fatalf("preview not truncated: %q", preview)
	}
	if len([]rune(preview)) != previewRunes+3 {
		t.Fatalf("preview length = %d", len([]rune(preview)))
	}
}
