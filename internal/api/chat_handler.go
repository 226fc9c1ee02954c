// File path: internal/api/chat_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kestrelhealth/medscribe/internal/common"
)

type chatRequest struct {
	Message   string `json:"message"`
	NoteID    int64  `json:"note_id"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response           string `json:"response"`
	SessionID          string `json:"session_id"`
	ConversationLength int    `json:"conversation_length"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("message required"))
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger.Info("api: chat request", "session", sessionID, "note_id", req.NoteID, "message_length", len(req.Message))
	reply := s.chat.Chat(r.Context(), sessionID, req.Message, req.NoteID)
	writeJSON(w, http.StatusOK, chatResponse{
		Response:           reply,
		SessionID:          sessionID,
		ConversationLength: len(s.chat.Sessions().History(sessionID)),
	})
}

type chatResetRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chatResetRequest
	if r.Body != nil {
		// Body is optional; an empty or absent payload resets everything.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	sessions := s.chat.Sessions()
	if strings.TrimSpace(req.SessionID) != "" {
		sessions.Reset(req.SessionID)
		logger.Info("api: conversation reset", "session", req.SessionID)
	} else {
		sessions.ResetAll()
		logger.Info("api: all conversations reset")
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation history cleared."})
}
