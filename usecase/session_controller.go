package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saptono/wicara/domain/entities"
	"github.com/saptono/wicara/domain/repositories"
)

// Config controls session audio and streaming behavior
type Config struct {
	Stream    repositories.StreamConfig
	Capture   repositories.CaptureConfig
	ChunkSize int
}

// SessionController is the state machine driving one conversation at a time:
// idle -> connecting -> connected -> ended, with error reachable from
// connecting and connected. It owns the channel and wires inbound messages
// through classification into the transcript and the playback queue.
type SessionController struct {
	dialer     repositories.AgentDialer
	microphone repositories.Microphone
	queue      *PlaybackQueue
	transcript *TranscriptLog
	logger     *zap.Logger
	cfg        Config

	mu          sync.Mutex
	session     *entities.Session
	channel     repositories.AgentChannel
	capture     repositories.CaptureSession
	cancel      context.CancelFunc
	consumeDone chan struct{}
	pumpDone    chan struct{}
}

// NewSessionController creates a controller in the idle state
func NewSessionController(
	dialer repositories.AgentDialer,
	microphone repositories.Microphone,
	player repositories.SpeechPlayer,
	logger *zap.Logger,
	cfg Config,
) *SessionController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	return &SessionController{
		dialer:     dialer,
		microphone: microphone,
		queue:      NewPlaybackQueue(player, logger),
		transcript: NewTranscriptLog(),
		logger:     logger,
		cfg:        cfg,
	}
}

// Start begins a new conversation session. It is valid only from the idle,
// ended, or error states. Microphone access is requested first; a denial
// fails the start before any channel is dialed. On success the controller is
// connected and audio flows both ways until Stop or a channel-side
// termination.
func (c *SessionController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.session != nil && !c.session.Restartable() {
		state := c.session.State
		c.mu.Unlock()
		return fmt.Errorf("cannot start: session is %s", state)
	}
	session := entities.NewSession()
	session.StartedAt = time.Now()
	session.State = entities.SessionStateConnecting
	sessionCtx, cancel := context.WithCancel(ctx)
	c.session = session
	c.cancel = cancel
	c.mu.Unlock()

	c.transcript.Clear()

	capture, err := c.microphone.Acquire(sessionCtx, c.cfg.Capture)
	if err != nil {
		cancel()
		return c.fail(session, entities.ErrorKindPermission, "microphone access denied", err)
	}

	c.mu.Lock()
	if session.State != entities.SessionStateConnecting {
		// Stop won the race while the microphone was starting
		c.mu.Unlock()
		_ = capture.Stop()
		return nil
	}
	c.capture = capture
	c.mu.Unlock()

	c.logger.Info("Dialing conversational agent", zap.String("localID", session.LocalID))

	channel, err := c.dialer.Dial(sessionCtx, c.cfg.Stream)
	if err != nil {
		cancel()
		_ = capture.Stop()
		return c.fail(session, entities.ErrorKindConnect, "failed to establish conversation channel", err)
	}

	consumeDone := make(chan struct{})
	pumpDone := make(chan struct{})

	c.mu.Lock()
	if session.State != entities.SessionStateConnecting {
		// Stop won the race during the dial
		c.mu.Unlock()
		_ = channel.Close()
		_ = capture.Stop()
		return nil
	}
	session.ConversationID = channel.ConversationID()
	session.State = entities.SessionStateConnected
	c.channel = channel
	c.consumeDone = consumeDone
	c.pumpDone = pumpDone
	c.mu.Unlock()

	go c.consumeEvents(channel, consumeDone)
	go pumpMicAudio(capture, channel, c.cfg.ChunkSize, c.logger, pumpDone)

	c.logger.Info("Session connected",
		zap.String("localID", session.LocalID),
		zap.String("conversationID", session.ConversationID))
	return nil
}

// Stop ends the current session. Valid from connected, or from connecting as
// a cancellation; calling it when the session is already idle, ended, or in
// error is a no-op. It cancels the in-flight connect or mic pump, drops
// pending playback, and best-effort closes the channel, swallowing close
// failures since the session is ending either way.
func (c *SessionController) Stop() error {
	c.mu.Lock()
	if c.session == nil || !c.session.Live() {
		c.mu.Unlock()
		return nil
	}
	session := c.session
	channel, capture, cancel := c.channel, c.capture, c.cancel
	consumeDone, pumpDone := c.consumeDone, c.pumpDone
	session.State = entities.SessionStateEnded
	c.channel = nil
	c.capture = nil
	c.cancel = nil
	c.consumeDone = nil
	c.pumpDone = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if capture != nil {
		_ = capture.Stop()
	}
	if channel != nil {
		if err := channel.Close(); err != nil {
			c.logger.Warn("Channel did not close cleanly", zap.Error(err))
		}
	}
	// The channel may close its events stream with frames still buffered.
	// Wait for the consumer to drain them (it drops messages once the
	// session is no longer live) before resetting playback, so nothing can
	// enqueue audio after the reset.
	if consumeDone != nil {
		<-consumeDone
	}
	if pumpDone != nil {
		<-pumpDone
	}
	c.queue.Reset()

	c.logger.Info("Session ended", zap.String("localID", session.LocalID))
	return nil
}

// Status returns the current lifecycle state plus a speaking flag that is
// true while the playback queue has an active or pending chunk
func (c *SessionController) Status() entities.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := entities.Status{
		State:    entities.SessionStateIdle,
		Speaking: c.queue.Speaking(),
	}
	if c.session != nil {
		status.State = c.session.State
		status.ConversationID = c.session.ConversationID
		status.LastError = c.session.LastError
	}
	return status
}

// Transcript returns a point-in-time copy of the session transcript
func (c *SessionController) Transcript() []entities.TranscriptEntry {
	return c.transcript.Snapshot()
}

// consumeEvents drains the channel's inbound stream in arrival order and,
// once the stream closes, resolves the session's terminal state from the
// channel's fault status.
func (c *SessionController) consumeEvents(channel repositories.AgentChannel, done chan struct{}) {
	defer close(done)

	for raw := range channel.Events() {
		c.handleMessage(raw)
	}
	c.finishFromChannel(channel.Err())
}

// handleMessage classifies one inbound message, appends it to the transcript,
// and routes audio chunks into the playback pipeline. Decode failures are
// logged and skipped; they never escalate past the offending chunk. Messages
// that surface after the session left the live states are residue from the
// channel's buffer and are dropped.
func (c *SessionController) handleMessage(raw entities.RawMessage) {
	c.mu.Lock()
	live := c.session != nil && c.session.Live()
	c.mu.Unlock()
	if !live {
		c.logger.Debug("Dropping message received after session end", zap.String("type", raw.Type))
		return
	}

	msg := Classify(raw)
	c.transcript.Append(msg.Kind, msg.Text)

	switch msg.Kind {
	case entities.MessageKindAudioChunk:
		audio, err := DecodeAudioChunk(msg.AudioBase64)
		if err != nil {
			c.logger.Warn("Dropping undecodable audio chunk", zap.Error(err))
			return
		}
		c.queue.Enqueue(audio)
	case entities.MessageKindGenericEvent:
		c.logger.Debug("Received agent event", zap.String("type", raw.Type))
	}
}

// finishFromChannel applies a channel-initiated termination: ended on a clean
// remote close, error on a channel fault. If Stop already won the race, the
// session keeps the state that terminal event set.
func (c *SessionController) finishFromChannel(err error) {
	c.mu.Lock()
	if c.session == nil || !c.session.Live() {
		c.mu.Unlock()
		return
	}
	session := c.session
	capture, cancel := c.capture, c.cancel
	if err != nil {
		session.State = entities.SessionStateError
		session.LastError = entities.NewSessionError(entities.ErrorKindChannel, "conversation channel failed", err)
	} else {
		session.State = entities.SessionStateEnded
	}
	c.channel = nil
	c.capture = nil
	c.cancel = nil
	c.consumeDone = nil
	c.pumpDone = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if capture != nil {
		_ = capture.Stop()
	}

	if err != nil {
		c.logger.Error("Session terminated by channel fault",
			zap.String("localID", session.LocalID),
			zap.Error(err))
	} else {
		c.logger.Info("Session closed by remote", zap.String("localID", session.LocalID))
	}
}

// fail records a start-phase failure as the session's current error. A
// session Stop already resolved keeps its ended state.
func (c *SessionController) fail(session *entities.Session, kind entities.ErrorKind, message string, cause error) error {
	sessionErr := entities.NewSessionError(kind, message, cause)

	c.mu.Lock()
	if session.State == entities.SessionStateEnded {
		c.mu.Unlock()
		return nil
	}
	session.State = entities.SessionStateError
	session.LastError = sessionErr
	c.mu.Unlock()

	c.logger.Error("Session start failed",
		zap.String("localID", session.LocalID),
		zap.Error(sessionErr))
	return sessionErr
}
