package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionState represents the lifecycle state of a conversation session
type SessionState string

const (
	SessionStateIdle       SessionState = "idle"
	SessionStateConnecting SessionState = "connecting"
	SessionStateConnected  SessionState = "connected"
	SessionStateEnded      SessionState = "ended"
	SessionStateError      SessionState = "error"
)

// Session represents one connect-to-disconnect conversation lifecycle.
// LocalID is assigned by this client for log correlation; ConversationID
// is assigned by the remote agent once the channel acknowledges the connect.
type Session struct {
	LocalID        string        `json:"local_id"`
	ConversationID string        `json:"conversation_id,omitempty"`
	State          SessionState  `json:"state"`
	StartedAt      time.Time     `json:"started_at"`
	LastError      *SessionError `json:"last_error,omitempty"`
}

// NewSession creates a session in the idle state with a fresh local ID
func NewSession() *Session {
	return &Session{
		LocalID: uuid.New().String(),
		State:   SessionStateIdle,
	}
}

// Live reports whether the session still owns an open channel
func (s *Session) Live() bool {
	return s.State == SessionStateConnecting || s.State == SessionStateConnected
}

// Restartable reports whether a new Start is allowed from the current state
func (s *Session) Restartable() bool {
	return s.State == SessionStateIdle || s.State == SessionStateEnded || s.State == SessionStateError
}

// Status summarizes the session for callers polling the client
type Status struct {
	State          SessionState  `json:"state"`
	Speaking       bool          `json:"speaking"`
	ConversationID string        `json:"conversation_id,omitempty"`
	LastError      *SessionError `json:"last_error,omitempty"`
}
