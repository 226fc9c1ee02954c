// File path: internal/api/server.go

// Package api exposes the note processing pipeline over HTTP.
package api

import (
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/kestrelhealth/medscribe/internal/chatbot"
	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/docstore"
	"github.com/kestrelhealth/medscribe/internal/extract"
	"github.com/kestrelhealth/medscribe/internal/llm"
	"github.com/kestrelhealth/medscribe/internal/rag"
)

// Server routes HTTP requests to the document catalog, the extraction and
// summarization agents, the retrieval service, and the chatbot router.
type Server struct {
	router     chi.Router
	docs       *docstore.Store
	provider   llm.Provider
	extractor  *extract.Agent
	summarizer *extract.Summarizer
	answers    *rag.Service
	chat       *chatbot.Router
}

// NewServer wires the HTTP surface from explicitly constructed
// collaborators. answers may be nil when no vector store is configured.
func NewServer(docs *docstore.Store, provider llm.Provider, extractor *extract.Agent, summarizer *extract.Summarizer, answers *rag.Service, chat *chatbot.Router) (*Server, error) {
	logger := common.Logger()
	if docs == nil {
		return nil, fmt.Errorf("document store required")
	}
	if extractor == nil || summarizer == nil {
		return nil, fmt.Errorf("extraction and summarization agents required")
	}
	if chat == nil {
		return nil, fmt.Errorf("chatbot router required")
	}
	providerName := "unknown"
	if provider != nil {
		providerName = provider.Name()
	}
	srv := &Server{
		router:     chi.NewRouter(),
		docs:       docs,
		provider:   provider,
		extractor:  extractor,
		summarizer: summarizer,
		answers:    answers,
		chat:       chat,
	}
	srv.routes()
	logger.Info("api: server ready", "provider", providerName, "rag_enabled", answers != nil)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Get("/v1/documents", s.handleListDocuments)
	s.router.Post("/v1/documents", s.handleCreateDocument)
	s.router.Get("/v1/documents/{id}", s.handleGetDocument)
	s.router.Put("/v1/documents/{id}", s.handleUpdateDocument)
	s.router.Delete("/v1/documents/{id}", s.handleDeleteDocument)
	s.router.Post("/v1/summarize", s.handleSummarize)
	s.router.Post("/v1/extract", s.handleExtract)
	s.router.Post("/v1/fhir", s.handleFHIR)
	s.router.Post("/v1/answer", s.handleAnswer)
	s.router.Post("/v1/index", s.handleIndex)
	s.router.Post("/v1/chat", s.handleChat)
	s.router.Post("/v1/chat/reset", s.handleChatReset)
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Method(http.MethodGet, "/debug/vars", expvar.Handler())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
