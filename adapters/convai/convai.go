package convai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saptono/wicara/domain/entities"
	"github.com/saptono/wicara/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api.elevenlabs.io/v1"
	defaultAckTimeout = 10 * time.Second

	eventTypePing       = "ping"
	eventTypeConvaiInit = "conversation_initiation_metadata"
)

// Config holds configuration for the ElevenLabs Conversational AI channel.
// Required fields:
// - APIKey: Your Eleven Labs API key
// - AgentID: The conversational agent to talk to
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Eleven Labs API (default: "https://api.elevenlabs.io/v1")
// - AckTimeout: How long to wait for the conversation acknowledgment (default: 10s)
type Config struct {
	APIKey     string
	AgentID    string
	APIBaseURL string
	AckTimeout time.Duration
}

// NewConfigFromEnv creates a Config from environment variables, matching the
// variables the agent relay has always used
func NewConfigFromEnv() Config {
	return Config{
		APIKey:     os.Getenv("ELEVENLABS_API_KEY"),
		AgentID:    os.Getenv("ELEVENLABS_AGENT_ID"),
		APIBaseURL: os.Getenv("ELEVENLABS_API_BASE_URL"),
	}
}

// ValidateConfig validates the channel configuration
func ValidateConfig(config Config) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}
	if config.AgentID == "" {
		return fmt.Errorf("eleven labs agent ID is required")
	}
	return nil
}

// Dialer establishes conversation channels against the ElevenLabs
// Conversational AI websocket endpoint
type Dialer struct {
	cfg    Config
	logger *zap.Logger
}

// Ensure Dialer implements the AgentDialer interface
var _ repositories.AgentDialer = (*Dialer)(nil)

// NewDialer creates a new conversation dialer
func NewDialer(config Config, logger *zap.Logger) (*Dialer, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaultAPIBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", config.APIBaseURL))
	}
	if config.AckTimeout <= 0 {
		config.AckTimeout = defaultAckTimeout
	}
	return &Dialer{cfg: config, logger: logger}, nil
}

// Dial opens the websocket, waits for the conversation initiation metadata
// that acknowledges the connect, and returns a live channel carrying the
// remote conversation ID.
func (d *Dialer) Dial(ctx context.Context, config repositories.StreamConfig) (repositories.AgentChannel, error) {
	wsURL, err := buildConversationURL(d.cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("xi-api-key", d.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to conversational agent: %w", err)
	}

	conversationID, err := awaitConversationAck(conn, d.cfg.AckTimeout)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	d.logger.Info("Conversation acknowledged", zap.String("conversationID", conversationID))

	ch := &channel{
		conn:           conn,
		conversationID: conversationID,
		logger:         d.logger,
		events:         make(chan entities.RawMessage, 64),
		outbound:       make(chan []byte, 32),
		closing:        make(chan struct{}),
		done:           make(chan struct{}),
	}

	ch.wg.Add(2)
	go ch.readLoop()
	go ch.writeLoop()
	go func() {
		ch.wg.Wait()
		close(ch.events)
		close(ch.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = ch.Close()
	}()

	return ch, nil
}

// channel is one live conversation over a websocket
type channel struct {
	conn           *websocket.Conn
	conversationID string
	logger         *zap.Logger

	events   chan entities.RawMessage
	outbound chan []byte
	closing  chan struct{}
	done     chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	closeOnce sync.Once
}

func (c *channel) ConversationID() string {
	return c.conversationID
}

func (c *channel) Events() <-chan entities.RawMessage {
	return c.events
}

// SendAudio wraps one captured chunk into the agent's user_audio_chunk frame
func (c *channel) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	select {
	case <-c.closing:
		return errors.New("conversation channel is already closed")
	default:
	}

	frame, err := json.Marshal(userAudioChunkFrame{
		UserAudioChunk: base64.StdEncoding.EncodeToString(chunk),
	})
	if err != nil {
		return fmt.Errorf("failed to encode audio frame: %w", err)
	}

	select {
	case c.outbound <- frame:
		return nil
	case <-c.closing:
		return errors.New("conversation channel is already closed")
	case <-c.done:
		if err := c.Err(); err != nil {
			return err
		}
		return errors.New("conversation channel closed")
	}
}

func (c *channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closing)
		_ = c.conn.Close()
	})
	<-c.done
	return nil
}

func (c *channel) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *channel) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		c.err = fmt.Errorf("conversation channel fault: %w", err)
	}
}

func (c *channel) readLoop() {
	defer c.wg.Done()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.setErr(err)
			return
		}

		var frame wireFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.logger.Warn("Discarding malformed channel frame", zap.Error(err))
			continue
		}

		if frame.Type == eventTypePing {
			c.answerPing(frame.PingEvent.EventID)
			continue
		}

		c.emit(frame.toRawMessage(payload))
	}
}

func (c *channel) writeLoop() {
	defer c.wg.Done()

	for {
		select {
		case frame := <-c.outbound:
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.setErr(fmt.Errorf("failed to send frame: %w", err))
				// Tear the connection down so the read side unblocks
				// and the events stream terminates with this fault.
				_ = c.conn.Close()
				return
			}
		case <-c.closing:
			return
		}
	}
}

// answerPing responds to protocol keepalives without surfacing them as
// conversation content
func (c *channel) answerPing(eventID int64) {
	pong, err := json.Marshal(pongFrame{Type: "pong", EventID: eventID})
	if err != nil {
		return
	}
	select {
	case c.outbound <- pong:
	case <-c.closing:
	default:
		c.logger.Warn("Dropping pong, outbound queue is full")
	}
}

func (c *channel) emit(raw entities.RawMessage) {
	select {
	case c.events <- raw:
	case <-c.done:
	}
}

// awaitConversationAck consumes frames until the agent sends its conversation
// initiation metadata. Anything received before the acknowledgment is
// protocol preamble, not conversation content.
func awaitConversationAck(conn *websocket.Conn, timeout time.Duration) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("failed to arm ack deadline: %w", err)
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("conversation was not acknowledged: %w", err)
		}

		var frame wireFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			continue
		}
		if frame.Type == eventTypeConvaiInit {
			id := frame.InitEvent.ConversationID
			if id == "" {
				return "", errors.New("conversation acknowledgment carried no conversation ID")
			}
			return id, nil
		}
	}
}

// buildConversationURL derives the websocket endpoint from the configured
// HTTP base URL
func buildConversationURL(cfg Config) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if base == "" {
		base = defaultAPIBaseURL
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	conversationURL, err := url.Parse(base + "/convai/conversation")
	if err != nil {
		return "", fmt.Errorf("invalid API base URL: %w", err)
	}

	query := conversationURL.Query()
	query.Set("agent_id", cfg.AgentID)
	conversationURL.RawQuery = query.Encode()
	return conversationURL.String(), nil
}
