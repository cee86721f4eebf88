package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ELEVENLABS_API_KEY", "test-key")
	t.Setenv("ELEVENLABS_AGENT_ID", "test-agent")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port: %q", cfg.Server.Port)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Audio.CaptureCommand != "ffmpeg" || cfg.Audio.PlaybackCommand != "ffplay" {
		t.Fatalf("unexpected audio commands: %+v", cfg.Audio)
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("ELEVENLABS_AGENT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AUDIO_SAMPLE_RATE", "24000")
	t.Setenv("AUDIO_CHANNELS", "2")
	t.Setenv("ELEVENLABS_ACK_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port override lost: %q", cfg.Server.Port)
	}
	if cfg.Audio.SampleRate != 24000 || cfg.Audio.Channels != 2 {
		t.Fatalf("audio overrides lost: %+v", cfg.Audio)
	}
	if cfg.ElevenLabs.AckTimeout != 3*time.Second {
		t.Fatalf("ack timeout override lost: %v", cfg.ElevenLabs.AckTimeout)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUDIO_CHANNELS", "6")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to reject a bad channel count")
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUDIO_SAMPLE_RATE", "fast")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to reject a malformed sample rate")
	}
}

func TestDerivedConfigs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUDIO_INPUT_DEVICE", "hw:1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	stream := cfg.StreamConfig()
	if stream.SampleRate != 16000 || stream.Encoding != "pcm_s16le" {
		t.Fatalf("unexpected stream config: %+v", stream)
	}
	capture := cfg.CaptureConfig()
	if capture.InputDevice != "hw:1" {
		t.Fatalf("unexpected capture config: %+v", capture)
	}
}
