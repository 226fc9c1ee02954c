// File path: internal/chatbot/router.go
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/common/telemetry"
	"github.com/kestrelhealth/medscribe/internal/docstore"
	"github.com/kestrelhealth/medscribe/internal/rag"
	"github.com/kestrelhealth/medscribe/internal/record"
)

// DocumentSource is the slice of the document store the router needs.
type DocumentSource interface {
	Get(ctx context.Context, id int64) (*docstore.Document, error)
	List(ctx context.Context) ([]docstore.Document, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

// Extractor turns note text into an enriched structured record.
type Extractor interface {
	Extract(ctx context.Context, noteText string) (*record.StructuredRecord, error)
}

// Summarizer produces a free-text summary of note text.
type Summarizer interface {
	Summarize(ctx context.Context, noteText string) (string, error)
}

// Answerer resolves an open question against the indexed notes. May be
// absent when no vector store is configured.
type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (*rag.Answer, error)
}

// Router orchestrates one chat turn: document reference resolution, intent
// classification, collaborator calls, and formatting.
type Router struct {
	docs       DocumentSource
	extractor  Extractor
	summarizer Summarizer
	answerer   Answerer
	sessions   SessionStore
}

// NewRouter wires a Router from its collaborators. answerer may be nil.
func NewRouter(docs DocumentSource, extractor Extractor, summarizer Summarizer, answerer Answerer, sessions SessionStore) *Router {
	return &Router{
		docs:       docs,
		extractor:  extractor,
		summarizer: summarizer,
		answerer:   answerer,
		sessions:   sessions,
	}
}

// Sessions exposes the underlying session store for reset handling.
func (r *Router) Sessions() SessionStore {
	return r.sessions
}

const apologyReply = "I'm sorry, something went wrong while processing your request. Please try again."

const clarificationReply = `Please specify which document you mean, for example "summarize document 1" or "extract codes from doc 2 and 3". Ask "what documents do you have?" to see the catalog.`

var contextCuePattern = regexp.MustCompile(`\b(it|this|that|them|these|those|same|previous)\b`)

var allDocsCuePattern = regexp.MustCompile(`\b(all|every|everything)\b`)

func hasContextCue(lower string) bool {
	if contextCuePattern.MatchString(lower) {
		return true
	}
	for _, keyword := range []string{"export", "show", "table", "csv"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Chat processes one user message for a session and returns the reply text.
// The user and assistant turns are appended to the session only after the
// reply is computed, and any internal failure becomes an apologetic reply
// rather than an error.
func (r *Router) Chat(ctx context.Context, sessionID, message string, explicitDocID int64) (reply string) {
	logger := common.Logger()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("chatbot: panic during routing", "session", sessionID, "panic", rec)
			reply = apologyReply
		}
		r.sessions.Append(sessionID,
			Turn{Role: "user", Content: message},
			Turn{Role: "assistant", Content: reply},
		)
	}()

	lower := strings.ToLower(message)
	ids := ExtractDocumentIDs(message)
	if len(ids) == 0 && hasContextCue(lower) {
		ids = r.idsFromHistory(sessionID)
		if len(ids) > 0 {
			logger.Debug("chatbot: resolved document context from history", "session", sessionID, "ids", ids)
		}
	}
	if len(ids) == 0 && explicitDocID > 0 {
		ids = []int64{explicitDocID}
	}

	intent := ClassifyIntent(message)
	switch {
	case intent.Summary:
		telemetry.RecordChatTurn("summary")
		if len(ids) > 0 {
			return r.summarizeDocuments(ctx, ids)
		}
		if allDocsCuePattern.MatchString(lower) {
			return r.summarizeAll(ctx)
		}
		return clarificationReply
	case intent.Codes:
		telemetry.RecordChatTurn("codes")
		if len(ids) > 0 {
			return r.extractCodes(ctx, ids, intent.Format)
		}
		if allDocsCuePattern.MatchString(lower) {
			// Intentional: a codes request naming no documents but carrying
			// an "all" cue degrades to the summary fan-out, not a catalog
			// wide extraction.
			return r.summarizeAll(ctx)
		}
		return clarificationReply
	default:
		telemetry.RecordChatTurn("question")
		return r.answerQuestion(ctx, message)
	}
}

// idsFromHistory scans the most recent turns, newest first, for document
// references. Best-effort anaphora resolution; an empty result is fine.
func (r *Router) idsFromHistory(sessionID string) []int64 {
	history := r.sessions.History(sessionID)
	if len(history) == 0 {
		return nil
	}
	start := len(history) - historyLookback
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	for i := len(recent) - 1; i >= 0; i-- {
		if ids := ExtractDocumentIDs(recent[i].Content); len(ids) > 0 {
			return ids
		}
	}
	return nil
}

func (r *Router) summarizeDocuments(ctx context.Context, ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, r.summarizeOne(ctx, id))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func (r *Router) summarizeOne(ctx context.Context, id int64) string {
	logger := common.Logger()
	doc, err := r.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Sprintf("Document %d was not found.", id)
	}
	if err != nil {
		logger.Error("chatbot: document fetch failed", "document_id", id, "error", err)
		return fmt.Sprintf("Document %d could not be loaded.", id)
	}
	summary, err := r.summarizer.Summarize(ctx, doc.Content)
	if err != nil {
		logger.Error("chatbot: summarization failed", "document_id", id, "error", err)
		return fmt.Sprintf("**Document %d - %s**\n\nSummary unavailable.", doc.ID, doc.Title)
	}
	return fmt.Sprintf("**Document %d - %s**\n\n%s", doc.ID, doc.Title, summary)
}

// summarizeAll fans out one summarization task per known document. Each
// goroutine writes only its own slot; the join barrier is the only
// coordination needed.
func (r *Router) summarizeAll(ctx context.Context) string {
	ids, err := r.docs.ListIDs(ctx)
	if err != nil {
		common.Logger().Error("chatbot: listing documents failed", "error", err)
		return apologyReply
	}
	if len(ids) == 0 {
		return "No documents are stored yet."
	}
	parts := make([]string, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(slot int, id int64) {
			defer wg.Done()
			parts[slot] = r.summarizeOne(ctx, id)
		}(i, id)
	}
	wg.Wait()
	return strings.Join(parts, "\n\n---\n\n")
}

// extractCodes runs the extraction pipeline per referenced document and
// renders the batch. A failed document becomes a placeholder row; it never
// suppresses its siblings.
func (r *Router) extractCodes(ctx context.Context, ids []int64, format Format) string {
	logger := common.Logger()
	results := make([]DocumentResult, 0, len(ids))
	for _, id := range ids {
		doc, err := r.docs.Get(ctx, id)
		if errors.Is(err, docstore.ErrNotFound) {
			results = append(results, DocumentResult{ID: id, Title: "Unknown document"})
			continue
		}
		if err != nil {
			logger.Error("chatbot: document fetch failed", "document_id", id, "error", err)
			results = append(results, DocumentResult{ID: id, Title: "Unknown document"})
			continue
		}
		rec, err := r.extractor.Extract(ctx, doc.Content)
		if err != nil {
			logger.Error("chatbot: extraction failed", "document_id", id, "error", err)
			results = append(results, DocumentResult{ID: doc.ID, Title: doc.Title})
			continue
		}
		results = append(results, DocumentResult{ID: doc.ID, Title: doc.Title, Record: rec})
	}
	switch ResolveFormat(format, len(ids)) {
	case FormatCSV:
		return RenderCSV(results)
	case FormatTable:
		return RenderTable(results)
	default:
		return RenderList(results)
	}
}

// answerQuestion delegates to the retrieval collaborator, falling back to a
// catalog listing when nothing relevant is indexed.
func (r *Router) answerQuestion(ctx context.Context, message string) string {
	logger := common.Logger()
	if r.answerer != nil {
		answer, err := r.answerer.Answer(ctx, message, 0)
		if err != nil {
			logger.Warn("chatbot: retrieval answer failed", "error", err)
		} else if answer != nil && len(answer.Sources) > 0 {
			var b strings.Builder
			b.WriteString(answer.Answer)
			b.WriteString("\n\nSources:")
			for _, src := range answer.Sources {
				fmt.Fprintf(&b, "\n- Document %d: %s", src.DocumentID, src.Title)
			}
			return b.String()
		}
	}
	return r.listDocuments(ctx)
}

func (r *Router) listDocuments(ctx context.Context) string {
	docs, err := r.docs.List(ctx)
	if err != nil {
		common.Logger().Error("chatbot: listing documents failed", "error", err)
		return apologyReply
	}
	if len(docs) == 0 {
		return "No documents are stored yet."
	}
	var b strings.Builder
	b.WriteString("I can help with summaries, code extraction, and questions about these documents:")
	for _, doc := range docs {
		fmt.Fprintf(&b, "\n- Document %d: %s", doc.ID, doc.Title)
	}
	b.WriteString("\n\nTry \"summarize document 1\" or \"extract ICD-10 codes from doc 2 in a table\".")
	return b.String()
}
