// File path: internal/api/llm_handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kestrelhealth/medscribe/internal/common"
	"github.com/kestrelhealth/medscribe/internal/docstore"
)

// noteRequest accepts either inline note text or a stored document id.
type noteRequest struct {
	Text       string `json:"text"`
	DocumentID int64  `json:"document_id"`
}

// resolveNoteText loads the document content when only an id was given.
func (s *Server) resolveNoteText(ctx context.Context, req noteRequest) (string, int, error) {
	if strings.TrimSpace(req.Text) != "" {
		return req.Text, 0, nil
	}
	if req.DocumentID <= 0 {
		return "", http.StatusBadRequest, fmt.Errorf("text or document_id required")
	}
	doc, err := s.docs.Get(ctx, req.DocumentID)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", http.StatusNotFound, err
	}
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	return doc.Content, 0, nil
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	text, status, err := s.resolveNoteText(r.Context(), req)
	if err != nil {
		writeError(w, status, err)
		return
	}
	summary, err := s.summarizer.Summarize(r.Context(), text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: note summarized", "note_length", len(text))
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	text, status, err := s.resolveNoteText(r.Context(), req)
	if err != nil {
		writeError(w, status, err)
		return
	}
	rec, err := s.extractor.Extract(r.Context(), text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: note extracted",
		"conditions", len(rec.Conditions), "medications", len(rec.Medications))
	writeJSON(w, http.StatusOK, map[string]interface{}{"structured_data": rec})
}
