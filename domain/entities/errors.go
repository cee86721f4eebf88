package entities

import "fmt"

// ErrorKind classifies session-visible failures
type ErrorKind string

const (
	// ErrorKindPermission means microphone access was denied; fatal to session start
	ErrorKindPermission ErrorKind = "permission"
	// ErrorKindConnect means the channel failed to establish; retryable via a new Start
	ErrorKindConnect ErrorKind = "connect"
	// ErrorKindChannel means the established channel faulted at runtime
	ErrorKindChannel ErrorKind = "channel"
	// ErrorKindDecode means one audio payload was malformed; the session continues
	ErrorKindDecode ErrorKind = "decode"
	// ErrorKindPlayback means the playback engine failed on one chunk; the session continues
	ErrorKindPlayback ErrorKind = "playback"
)

// SessionError is the single current-error descriptor surfaced to callers.
// Decode and playback kinds are logged only and never stored on the session.
type SessionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	cause   error
}

// NewSessionError wraps a cause into a classified session error
func NewSessionError(kind ErrorKind, message string, cause error) *SessionError {
	return &SessionError{Kind: kind, Message: message, cause: cause}
}

func (e *SessionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.cause
}
