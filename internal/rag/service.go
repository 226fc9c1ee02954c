// File path: internal/rag/service.go

// Package rag indexes note documents into the vector store and answers
// questions grounded in the retrieved chunks.
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/common/telemetry"
	"github.com/kestrelhealth/medscribe/internal/docstore"
	"github.com/kestrelhealth/medscribe/internal/llm"
	"github.com/kestrelhealth/medscribe/internal/vector"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
	defaultTopK  = 3
	previewRunes = 200
)

const answerSystemPrompt = `You are a helpful medical information assistant.
Answer the question based ONLY on the provided context from medical documents.
If the context doesn't contain enough information to answer, say so clearly.
Be precise and cite specific information from the context.`

// Source identifies one retrieved chunk supporting an answer.
type Source struct {
	DocumentID int64   `json:"document_id"`
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
	Preview    string  `json:"content_preview"`
	Score      float32 `json:"relevance_score"`
}

// Answer is the grounded response to a question. Empty sources mean nothing
// relevant was indexed; that is an answer, not an error.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Service performs chunking, indexing, and retrieval-augmented answering.
type Service struct {
	store    vector.Store
	provider llm.Provider
	splitter textsplitter.RecursiveCharacter
}

// New constructs a Service over the given vector store and LLM provider.
func New(store vector.Store, provider llm.Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// IndexDocuments chunks and embeds each document into the vector store.
func (s *Service) IndexDocuments(ctx context.Context, docs []docstore.Document) error {
	logger := common.Logger()
	if s.store == nil || !s.store.Available() {
		return fmt.Errorf("rag: vector store unavailable")
	}
	var chunks []vector.Chunk
	var texts []string
	for _, doc := range docs {
		parts, err := s.splitter.SplitText(doc.Content)
		if err != nil {
			return fmt.Errorf("split document %d: %w", doc.ID, err)
		}
		for idx, part := range parts {
			chunks = append(chunks, vector.Chunk{
				ID:         fmt.Sprintf("%d:%d", doc.ID, idx),
				DocumentID: doc.ID,
				Title:      doc.Title,
				Index:      idx,
				Content:    part,
			})
			texts = append(texts, part)
		}
	}
	if len(chunks) == 0 {
		return nil
	}
	vectors, err := s.provider.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if err := s.store.UpsertChunks(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	telemetry.RecordIndexedChunks(len(chunks))
	logger.Info("rag: indexed documents", "documents", len(docs), "chunks", len(chunks))
	return nil
}

// Answer retrieves the top-k chunks for the question and asks the LLM for a
// grounded answer. When nothing relevant is indexed, the returned Answer has
// no sources.
func (s *Service) Answer(ctx context.Context, question string, topK int) (*Answer, error) {
	logger := common.Logger()
	if topK <= 0 {
		topK = defaultTopK
	}
	if s.store == nil || !s.store.Available() {
		return nil, fmt.Errorf("rag: vector store unavailable")
	}
	queryVectors, err := s.provider.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(queryVectors) == 0 {
		return nil, fmt.Errorf("rag: empty question embedding")
	}
	searchStarted := time.Now()
	results, err := s.store.Search(ctx, queryVectors[0], topK)
	telemetry.RecordKnowledgeSearch(time.Since(searchStarted))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(results) == 0 {
		logger.Debug("rag: no relevant chunks", "question_length", len(question))
		return &Answer{Answer: "No relevant information found in the knowledge base."}, nil
	}

	var contextParts []string
	sources := make([]Source, 0, len(results))
	for _, res := range results {
		content, _ := res.Payload["content"].(string)
		if strings.TrimSpace(content) == "" {
			continue
		}
		contextParts = append(contextParts, content)
		sources = append(sources, Source{
			DocumentID: payloadInt(res.Payload["document_id"]),
			Title:      payloadString(res.Payload["title"]),
			ChunkIndex: int(payloadInt(res.Payload["chunk_index"])),
			Preview:    preview(content),
			Score:      res.Score,
		})
	}
	if len(contextParts) == 0 {
		return &Answer{Answer: "No relevant information found in the knowledge base."}, nil
	}

	userPrompt := fmt.Sprintf("Context from medical documents:\n%s\n\nQuestion: %s\n\nAnswer:",
		strings.Join(contextParts, "\n\n"), question)
	answer, err := s.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	return &Answer{Answer: answer, Sources: sources}, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + "..."
}

func payloadInt(v interface{}) int64 {
	switch value := v.(type) {
	case int64:
		return value
	case int:
		return int64(value)
	case float64:
		return int64(value)
	case float32:
		return int64(value)
	default:
		return 0
	}
}

func payloadString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
