package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/saptono/wicara/domain/entities"
	"github.com/saptono/wicara/domain/repositories"
)

// PlaybackQueue plays decoded audio chunks strictly in arrival order. At most
// one chunk is playing at any instant; chunks arriving mid-playback wait
// their turn instead of mixing. Enqueue never blocks on playback.
type PlaybackQueue struct {
	player repositories.SpeechPlayer
	logger *zap.Logger

	mu      sync.Mutex
	pending [][]byte
	playing bool
	cancel  context.CancelFunc
}

// NewPlaybackQueue creates a queue that plays through the given player
func NewPlaybackQueue(player repositories.SpeechPlayer, logger *zap.Logger) *PlaybackQueue {
	return &PlaybackQueue{
		player: player,
		logger: logger,
	}
}

// Enqueue schedules one decoded audio chunk for playback and returns
// immediately. If nothing is playing, playback starts asynchronously.
func (q *PlaybackQueue) Enqueue(audio []byte) {
	if len(audio) == 0 {
		return
	}

	q.mu.Lock()
	q.pending = append(q.pending, audio)
	if !q.playing {
		q.playing = true
		go q.drain()
	}
	q.mu.Unlock()
}

// Speaking reports whether a chunk is currently playing or queued
func (q *PlaybackQueue) Speaking() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Reset drops all pending chunks and cancels the active playback, if any.
// Errors from stopping the active chunk are swallowed; the session is ending
// regardless.
func (q *PlaybackQueue) Reset() {
	q.mu.Lock()
	q.pending = nil
	cancel := q.cancel
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// drain plays queued chunks one at a time until the queue empties. Playback
// failures are logged and never stop the queue from advancing.
func (q *PlaybackQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.playing = false
			q.cancel = nil
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		q.mu.Unlock()

		err := q.player.Play(ctx, next)
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			playbackErr := entities.NewSessionError(entities.ErrorKindPlayback, "audio chunk playback failed", err)
			q.logger.Warn("Skipping failed playback", zap.Error(playbackErr), zap.Int("chunkBytes", len(next)))
		}
	}
}
