// File path: internal/chatbot/session.go
package chatbot

import "sync"

const (
	// maxHistoryTurns bounds the per-session sliding window; older turns
	// are discarded silently.
	maxHistoryTurns = 20
	// historyLookback is how many recent turns the router scans when a
	// message refers back to an earlier document ("it", "them").
	historyLookback = 4
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionStore keeps per-session conversation history. Implementations must
// be safe for concurrent use across sessions and serialize writes within a
// session.
type SessionStore interface {
	History(sessionID string) []Turn
	Append(sessionID string, turns ...Turn)
	Reset(sessionID string)
	ResetAll()
}

// MemorySessionStore is the in-process SessionStore. Each session carries
// its own mutex so concurrent appends under the same key are serialized
// without blocking other sessions.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	turns []Turn
}

// NewMemorySessionStore constructs an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*session)}
}

func (s *MemorySessionStore) get(sessionID string, create bool) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok && create {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	return sess
}

// History returns a copy of the session's turns, oldest first.
func (s *MemorySessionStore) History(sessionID string) []Turn {
	sess := s.get(sessionID, false)
	if sess == nil {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	turns := make([]Turn, len(sess.turns))
	copy(turns, sess.turns)
	return turns
}

// Append adds turns to the session, trimming the window to the most recent
// maxHistoryTurns entries.
func (s *MemorySessionStore) Append(sessionID string, turns ...Turn) {
	if len(turns) == 0 {
		return
	}
	sess := s.get(sessionID, true)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = append(sess.turns, turns...)
	if excess := len(sess.turns) - maxHistoryTurns; excess > 0 {
		sess.turns = append([]Turn(nil), sess.turns[excess:]...)
	}
}

// Reset discards one session's history.
func (s *MemorySessionStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// ResetAll discards every session.
func (s *MemorySessionStore) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*session)
}

var _ SessionStore = (*MemorySessionStore)(nil)
