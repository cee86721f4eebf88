package usecase

import (
	"encoding/base64"

	"github.com/saptono/wicara/domain/entities"
)

// DecodeAudioChunk converts a base64-encoded audio payload into playable
// bytes. The payload is assumed to be a compressed audio stream (MP3 by
// default) unless the channel negotiated another format. A malformed payload
// yields a decode-kind session error; callers log it and keep the session
// alive.
func DecodeAudioChunk(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, entities.NewSessionError(entities.ErrorKindDecode, "empty audio payload", nil)
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, entities.NewSessionError(entities.ErrorKindDecode, "malformed base64 audio payload", err)
	}
	return audio, nil
}
