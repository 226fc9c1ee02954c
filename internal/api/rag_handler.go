// File path: internal/api/rag_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kestrelhealth/medscribe/internal/common"
)

type answerRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if s.answers == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("retrieval service not configured"))
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("question required"))
		return
	}
	answer, err := s.answers.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if s.answers == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("retrieval service not configured"))
		return
	}
	docs, err := s.docs.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.answers.IndexDocuments(r.Context(), docs); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: documents indexed", "count", len(docs))
	writeJSON(w, http.StatusOK, map[string]interface{}{"indexed_documents": len(docs)})
}
