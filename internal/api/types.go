package api

import "github.com/saptono/wicara/domain/entities"

// StartResponse represents the response payload after a session starts
type StartResponse struct {
	ConversationID string                `json:"conversation_id"`
	State          entities.SessionState `json:"state"`
}

// StopResponse represents the response payload after a session stops
type StopResponse struct {
	State entities.SessionState `json:"state"`
}

// TranscriptResponse wraps the transcript entries for the history endpoint
type TranscriptResponse struct {
	Entries []entities.TranscriptEntry `json:"entries"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
