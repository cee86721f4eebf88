package repositories

import (
	"context"

	"github.com/saptono/wicara/domain/entities"
)

// StreamConfig represents audio streaming settings negotiated with the agent
type StreamConfig struct {
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Encoding   string `json:"encoding"`
}

// AgentChannel is an established bidirectional conversation with the remote agent.
// The channel owns the underlying connection; callers interact only through
// these methods and never see the transport.
type AgentChannel interface {
	// ConversationID returns the identifier the remote side assigned on connect
	ConversationID() string
	// Events yields inbound messages in arrival order. The channel closes the
	// stream when the conversation terminates, remotely or via Close.
	Events() <-chan entities.RawMessage
	// SendAudio forwards one captured audio chunk to the agent
	SendAudio(chunk []byte) error
	// Close tears the channel down; safe to call more than once
	Close() error
	// Err reports the terminal channel fault after Events is closed.
	// A clean remote close yields nil.
	Err() error
}

// AgentDialer establishes conversation channels. Dial blocks until the remote
// side acknowledges the conversation, so a non-error return carries a
// conversation ID.
type AgentDialer interface {
	Dial(ctx context.Context, config StreamConfig) (AgentChannel, error)
}
