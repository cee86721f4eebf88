package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/saptono/wicara/adapters/audio"
	"github.com/saptono/wicara/adapters/convai"
	"github.com/saptono/wicara/domain/repositories"
)

// ServerConfig holds the HTTP control surface settings
type ServerConfig struct {
	Port string
}

// AudioConfig holds capture and playback settings
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
	ChunkSize   int

	CaptureCommand  string
	PlaybackCommand string
	PlaybackFormat  string
}

// Config is the full runtime configuration, loaded from the environment
type Config struct {
	Server     ServerConfig
	ElevenLabs convai.Config
	Audio      AudioConfig
}

// Load reads configuration from environment variables, applying defaults for
// everything except the ElevenLabs credentials
func Load() (Config, error) {
	sampleRate, err := envIntOrDefault("AUDIO_SAMPLE_RATE", 16000)
	if err != nil {
		return Config{}, err
	}
	channels, err := envIntOrDefault("AUDIO_CHANNELS", 1)
	if err != nil {
		return Config{}, err
	}
	chunkSize, err := envIntOrDefault("AUDIO_CHUNK_SIZE", 4096)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Port: envOrDefault("PORT", "8080"),
		},
		ElevenLabs: convai.NewConfigFromEnv(),
		Audio: AudioConfig{
			SampleRate:      sampleRate,
			Channels:        channels,
			InputFormat:     envOrDefault("AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("AUDIO_INPUT_DEVICE", "default"),
			ChunkSize:       chunkSize,
			CaptureCommand:  envOrDefault("AUDIO_CAPTURE_COMMAND", "ffmpeg"),
			PlaybackCommand: envOrDefault("AUDIO_PLAYBACK_COMMAND", "ffplay"),
			PlaybackFormat:  envOrDefault("AUDIO_PLAYBACK_FORMAT", audio.FormatMP3),
		},
	}

	if timeout := os.Getenv("ELEVENLABS_ACK_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ELEVENLABS_ACK_TIMEOUT: %w", err)
		}
		cfg.ElevenLabs.AckTimeout = parsed
	}

	if err := convai.ValidateConfig(cfg.ElevenLabs); err != nil {
		return Config{}, err
	}
	if cfg.Audio.SampleRate <= 0 {
		return Config{}, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 && cfg.Audio.Channels != 2 {
		return Config{}, fmt.Errorf("AUDIO_CHANNELS must be 1 or 2, got %d", cfg.Audio.Channels)
	}

	return cfg, nil
}

// StreamConfig derives the channel stream settings from the audio section
func (c Config) StreamConfig() repositories.StreamConfig {
	return repositories.StreamConfig{
		SampleRate: c.Audio.SampleRate,
		Channels:   c.Audio.Channels,
		Encoding:   "pcm_s16le",
	}
}

// CaptureConfig derives the microphone settings from the audio section
func (c Config) CaptureConfig() repositories.CaptureConfig {
	return repositories.CaptureConfig{
		SampleRate:  c.Audio.SampleRate,
		Channels:    c.Audio.Channels,
		InputFormat: c.Audio.InputFormat,
		InputDevice: c.Audio.InputDevice,
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
