package usecase

import (
	"testing"

	"github.com/saptono/wicara/domain/entities"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      entities.RawMessage
		wantKind entities.MessageKind
		wantText string
	}{
		{
			name:     "audio chunk",
			raw:      entities.RawMessage{Type: "audio", AudioBase64: "SGVsbG8="},
			wantKind: entities.MessageKindAudioChunk,
		},
		{
			name:     "agent speech",
			raw:      entities.RawMessage{Type: "agent_response", AgentResponse: "hello there"},
			wantKind: entities.MessageKindAgentSpeech,
			wantText: "hello there",
		},
		{
			name:     "user transcript",
			raw:      entities.RawMessage{Type: "transcript", UserTranscript: "hi"},
			wantKind: entities.MessageKindUserTranscript,
			wantText: "hi",
		},
		{
			name:     "generic event with message",
			raw:      entities.RawMessage{Type: "interruption", Message: "conversation interrupted"},
			wantKind: entities.MessageKindGenericEvent,
			wantText: "conversation interrupted",
		},
		{
			name:     "empty payload",
			raw:      entities.RawMessage{},
			wantKind: entities.MessageKindGenericEvent,
		},
		{
			name: "audio wins over overlapping text fields",
			raw: entities.RawMessage{
				Type:           "audio",
				AudioBase64:    "SGVsbG8=",
				AgentResponse:  "spoken text",
				UserTranscript: "heard text",
			},
			wantKind: entities.MessageKindAudioChunk,
		},
		{
			name: "agent speech wins over user transcript",
			raw: entities.RawMessage{
				AgentResponse:  "agent",
				UserTranscript: "user",
			},
			wantKind: entities.MessageKindAgentSpeech,
			wantText: "agent",
		},
		{
			name:     "audio type without payload is generic",
			raw:      entities.RawMessage{Type: "audio"},
			wantKind: entities.MessageKindGenericEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)
			if got.Kind != tt.wantKind {
				t.Fatalf("Classify() kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.Text != tt.wantText {
				t.Fatalf("Classify() text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()

	raw := entities.RawMessage{Type: "audio", AudioBase64: "SGVsbG8=", AgentResponse: "x"}
	first := Classify(raw)
	for i := 0; i < 100; i++ {
		if got := Classify(raw); got.Kind != first.Kind || got.Text != first.Text {
			t.Fatalf("classification changed on repeat %d: %+v vs %+v", i, got, first)
		}
	}
}

func TestClassifyPreservesAudioPayload(t *testing.T) {
	t.Parallel()

	raw := entities.RawMessage{Type: "audio", AudioBase64: "YWJjZGVm"}
	got := Classify(raw)
	if got.AudioBase64 != raw.AudioBase64 {
		t.Fatalf("audio payload not preserved: %q", got.AudioBase64)
	}
}
