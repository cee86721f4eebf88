package usecase

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/saptono/wicara/domain/entities"
)

func TestDecodeAudioChunkRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := [][]byte{
		[]byte("short"),
		{0x00, 0xFF, 0x10, 0x80, 0x7F},
		bytes.Repeat([]byte{0xAB, 0xCD}, 4096),
	}

	for _, payload := range payloads {
		encoded := base64.StdEncoding.EncodeToString(payload)
		decoded, err := DecodeAudioChunk(encoded)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if !bytes.Equal(decoded, payload) {
			t.Fatalf("decode is lossy for %d byte payload", len(payload))
		}
	}
}

func TestDecodeAudioChunkMalformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeAudioChunk("not!!valid@@base64")
	if err == nil {
		t.Fatal("expected decode error")
	}

	var sessionErr *entities.SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("expected a session error, got %T", err)
	}
	if sessionErr.Kind != entities.ErrorKindDecode {
		t.Fatalf("expected decode kind, got %s", sessionErr.Kind)
	}
}

func TestDecodeAudioChunkEmpty(t *testing.T) {
	t.Parallel()

	_, err := DecodeAudioChunk("")
	if err == nil {
		t.Fatal("expected error for empty payload")
	}
}
