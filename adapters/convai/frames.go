package convai

import (
	"encoding/json"

	"github.com/saptono/wicara/domain/entities"
)

// wireFrame is the superset of frames the agent sends. Newer agents flatten
// the transcript and audio fields onto the top level; older ones nest them
// inside per-type event objects, so both spellings are accepted.
type wireFrame struct {
	Type           string `json:"type"`
	AgentResponse  string `json:"agent_response"`
	UserTranscript string `json:"user_transcript"`
	Message        string `json:"message"`
	AudioBase64    string `json:"audio_base_64"`

	AudioEvent struct {
		AudioBase64 string `json:"audio_base_64"`
	} `json:"audio_event"`

	AgentResponseEvent struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event"`

	UserTranscriptEvent struct {
		UserTranscript string `json:"user_transcript"`
	} `json:"user_transcription_event"`

	PingEvent struct {
		EventID int64 `json:"event_id"`
	} `json:"ping_event"`

	InitEvent struct {
		ConversationID string `json:"conversation_id"`
	} `json:"conversation_initiation_metadata_event"`
}

// toRawMessage flattens a wire frame into the channel's message shape,
// retaining the original payload for generic-event consumers
func (f wireFrame) toRawMessage(payload []byte) entities.RawMessage {
	raw := entities.RawMessage{
		Type:           f.Type,
		AgentResponse:  f.AgentResponse,
		UserTranscript: f.UserTranscript,
		Message:        f.Message,
		AudioBase64:    f.AudioBase64,
		Raw:            json.RawMessage(append([]byte(nil), payload...)),
	}
	if raw.AudioBase64 == "" {
		raw.AudioBase64 = f.AudioEvent.AudioBase64
	}
	if raw.AgentResponse == "" {
		raw.AgentResponse = f.AgentResponseEvent.AgentResponse
	}
	if raw.UserTranscript == "" {
		raw.UserTranscript = f.UserTranscriptEvent.UserTranscript
	}
	return raw
}

// userAudioChunkFrame is the outbound microphone audio frame
type userAudioChunkFrame struct {
	UserAudioChunk string `json:"user_audio_chunk"`
}

// pongFrame answers the agent's keepalive pings
type pongFrame struct {
	Type    string `json:"type"`
	EventID int64  `json:"event_id"`
}
