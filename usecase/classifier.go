package usecase

import (
	"github.com/saptono/wicara/domain/entities"
)

// rawTypeAudio is the discriminator value the agent uses for audio events
const rawTypeAudio = "audio"

// Classify tags a raw channel message with its semantic kind. It is a pure
// function over the payload shape; field combinations may overlap, so the
// first matching rule wins:
//
//  1. type == "audio" with an audio payload   -> audio-chunk
//  2. agent_response present                  -> agent-speech
//  3. user_transcript present                 -> user-transcript
//  4. anything else                           -> generic-event
func Classify(raw entities.RawMessage) entities.InboundMessage {
	switch {
	case raw.Type == rawTypeAudio && raw.AudioBase64 != "":
		return entities.InboundMessage{
			Kind:        entities.MessageKindAudioChunk,
			AudioBase64: raw.AudioBase64,
			Raw:         raw.Raw,
		}
	case raw.AgentResponse != "":
		return entities.InboundMessage{
			Kind: entities.MessageKindAgentSpeech,
			Text: raw.AgentResponse,
			Raw:  raw.Raw,
		}
	case raw.UserTranscript != "":
		return entities.InboundMessage{
			Kind: entities.MessageKindUserTranscript,
			Text: raw.UserTranscript,
			Raw:  raw.Raw,
		}
	default:
		return entities.InboundMessage{
			Kind: entities.MessageKindGenericEvent,
			Text: raw.Message,
			Raw:  raw.Raw,
		}
	}
}
