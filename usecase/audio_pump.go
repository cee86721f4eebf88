package usecase

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/saptono/wicara/domain/repositories"
)

// pumpMicAudio forwards captured microphone audio to the agent channel in
// fixed-size chunks until the capture stream ends or the channel refuses a
// send. It never touches controller state; the channel consumer owns the
// session's terminal transition.
func pumpMicAudio(
	capture repositories.CaptureSession,
	channel repositories.AgentChannel,
	chunkSize int,
	logger *zap.Logger,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := capture.Read(buf)
		if n > 0 {
			if sendErr := channel.SendAudio(buf[:n]); sendErr != nil {
				logger.Warn("Failed to forward microphone audio", zap.Error(sendErr))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("Microphone capture ended unexpectedly", zap.Error(err))
			}
			return
		}
	}
}
