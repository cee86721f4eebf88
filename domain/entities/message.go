package entities

import (
	"encoding/json"
	"time"
)

// RawMessage is the JSON shape received over the agent channel. Any
// combination of fields may be present; classification resolves ambiguity.
type RawMessage struct {
	Type           string          `json:"type,omitempty"`
	AgentResponse  string          `json:"agent_response,omitempty"`
	UserTranscript string          `json:"user_transcript,omitempty"`
	Message        string          `json:"message,omitempty"`
	AudioBase64    string          `json:"audio_base_64,omitempty"`
	Raw            json.RawMessage `json:"-"`
}

// MessageKind is the semantic tag assigned to an inbound message
type MessageKind string

const (
	MessageKindAgentSpeech    MessageKind = "agent-speech"
	MessageKindUserTranscript MessageKind = "user-transcript"
	MessageKindAudioChunk     MessageKind = "audio-chunk"
	MessageKindGenericEvent   MessageKind = "generic-event"
)

// InboundMessage is a classified inbound message. Never mutated after creation.
type InboundMessage struct {
	Kind        MessageKind     `json:"kind"`
	Text        string          `json:"text,omitempty"`
	AudioBase64 string          `json:"audio_base_64,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// TranscriptEntry is one chronological transcript line. Immutable once appended.
type TranscriptEntry struct {
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"kind"`
	Text      string      `json:"text"`
}
