package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saptono/wicara/domain/repositories"
)

const (
	defaultSampleRate  = 16000
	defaultChannels    = 1
	defaultInputFormat = "pulse"
	defaultInputDevice = "default"

	// startupProbe is how long the capture process must survive before the
	// microphone is considered granted.
	startupProbe = 250 * time.Millisecond
	// stopGrace is how long a capture process gets to exit after an
	// interrupt before it is killed.
	stopGrace = 1200 * time.Millisecond
)

// FFMPEGMicrophone acquires live microphone capture sessions by spawning an
// ffmpeg process that emits s16le PCM on stdout. An immediate process exit is
// treated as a denied or unavailable microphone.
type FFMPEGMicrophone struct {
	command string
	logger  *zap.Logger
}

// Ensure FFMPEGMicrophone implements the Microphone interface
var _ repositories.Microphone = (*FFMPEGMicrophone)(nil)

// NewFFMPEGMicrophone creates a microphone backed by the given capture command
func NewFFMPEGMicrophone(command string, logger *zap.Logger) *FFMPEGMicrophone {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGMicrophone{command: command, logger: logger}
}

// Acquire starts a capture process and verifies it survives the startup
// probe. A process that dies inside the probe window maps to
// ErrMicrophoneDenied so callers can distinguish a permission problem from a
// runtime fault.
func (m *FFMPEGMicrophone) Acquire(ctx context.Context, config repositories.CaptureConfig) (repositories.CaptureSession, error) {
	config = applyCaptureDefaults(config)

	args := buildCaptureArgs(config)
	cmd := exec.CommandContext(ctx, m.command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrMicrophoneDenied, err)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
		close(exited)
	}()

	select {
	case err := <-exited:
		detail := strings.TrimSpace(stderr.String())
		if detail == "" && err != nil {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: capture process exited immediately: %s", repositories.ErrMicrophoneDenied, detail)
	case <-time.After(startupProbe):
	}

	m.logger.Info("Microphone capture started",
		zap.Int("sampleRate", config.SampleRate),
		zap.Int("channels", config.Channels),
		zap.String("device", config.InputDevice))

	return &micSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		exited:  exited,
	}, nil
}

func applyCaptureDefaults(config repositories.CaptureConfig) repositories.CaptureConfig {
	if config.SampleRate <= 0 {
		config.SampleRate = defaultSampleRate
	}
	if config.Channels <= 0 {
		config.Channels = defaultChannels
	}
	if config.InputFormat == "" {
		config.InputFormat = defaultInputFormat
	}
	if config.InputDevice == "" {
		config.InputDevice = defaultInputDevice
	}
	return config
}

func buildCaptureArgs(config repositories.CaptureConfig) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", config.InputFormat,
		"-i", config.InputDevice,
		"-ac", strconv.Itoa(config.Channels),
		"-ar", strconv.Itoa(config.SampleRate),
		"-f", "s16le",
		"-",
	}
}

// micSession is one live capture stream
type micSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	exited  <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *micSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *micSession) Close() error {
	return s.Stop()
}

// Stop interrupts the capture process, escalating to a kill if it lingers,
// and releases the stdout pipe. Safe to call more than once.
func (s *micSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.exited:
			if ok {
				s.stopErr = ignoreExitStatus(err)
			}
		case <-time.After(stopGrace):
			if s.process != nil {
				_ = s.process.Kill()
			}
			if err, ok := <-s.exited; ok {
				s.stopErr = ignoreExitStatus(err)
			}
		}

		if err := s.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) && s.stopErr == nil {
			s.stopErr = err
		}
	})
	return s.stopErr
}

// ignoreExitStatus drops the nonzero exit code a capture process reports when
// it is interrupted; only transport-level failures matter to the caller
func ignoreExitStatus(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
