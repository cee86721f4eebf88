package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/saptono/wicara/domain/repositories"
)

const (
	// FormatMP3 is the compressed stream the agent sends by default
	FormatMP3 = "mp3"
	// FormatPCM16 is raw little-endian 16-bit PCM, used when the
	// conversation negotiated a pcm output format
	FormatPCM16 = "pcm_s16le"
)

// FFPlayPlayer plays one decoded audio chunk per ffplay process. The process
// is the transient playback resource: it exits on its own when the chunk
// finishes, and context cancellation kills it, so the resource is released on
// every exit path.
type FFPlayPlayer struct {
	command    string
	format     string
	sampleRate int
	channels   int
	logger     *zap.Logger
}

// Ensure FFPlayPlayer implements the SpeechPlayer interface
var _ repositories.SpeechPlayer = (*FFPlayPlayer)(nil)

// NewFFPlayPlayer creates a player backed by the given playback command
func NewFFPlayPlayer(command, format string, sampleRate, channels int, logger *zap.Logger) *FFPlayPlayer {
	if command == "" {
		command = "ffplay"
	}
	if format == "" {
		format = FormatMP3
	}
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	if channels <= 0 {
		channels = defaultChannels
	}
	return &FFPlayPlayer{
		command:    command,
		format:     format,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logger,
	}
}

// Play streams the chunk into ffplay and blocks until playback completes or
// ctx is cancelled
func (p *FFPlayPlayer) Play(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return nil
	}

	args := buildPlaybackArgs(p.format, p.sampleRate, p.channels)
	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdin = bytes.NewReader(audio)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	p.logger.Debug("Playing audio chunk", zap.Int("bytes", len(audio)), zap.String("format", p.format))

	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("playback process failed: %w: %s", err, detail)
		}
		return fmt.Errorf("playback process failed: %w", err)
	}
	return nil
}

func buildPlaybackArgs(format string, sampleRate, channels int) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostats",
		"-autoexit",
		"-nodisp",
	}
	if format == FormatPCM16 {
		chLayout := "mono"
		if channels == 2 {
			chLayout = "stereo"
		}
		args = append(args,
			"-f", "s16le",
			"-ch_layout", chLayout,
			"-ar", strconv.Itoa(sampleRate),
		)
	}
	args = append(args, "-i", "-")
	return args
}
