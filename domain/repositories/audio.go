package repositories

import (
	"context"
	"errors"
	"io"
)

// ErrMicrophoneDenied is returned when the environment refuses microphone access
var ErrMicrophoneDenied = errors.New("microphone access denied")

// CaptureConfig describes how the microphone should be captured
type CaptureConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// CaptureSession is a live microphone capture stream
type CaptureSession interface {
	io.ReadCloser
	Stop() error
}

// Microphone acquires live audio-capture sessions from the environment
type Microphone interface {
	Acquire(ctx context.Context, config CaptureConfig) (CaptureSession, error)
}

// SpeechPlayer plays one decoded audio object and blocks until playback
// completes, fails, or ctx is cancelled. Implementations must release any
// transient resource on every exit path.
type SpeechPlayer interface {
	Play(ctx context.Context, audio []byte) error
}
