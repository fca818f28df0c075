package application

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"mic-recorder/internal/domain"
)

// NewPayload encodes the raw bytes as base64. The bytes are never
// interpreted as text.
func NewPayload(audio []byte) *domain.Payload {
	return &domain.Payload{Audio: base64.StdEncoding.EncodeToString(audio)}
}

// EncodePayload wraps raw audio bytes into the JSON text handed to the host.
func EncodePayload(audio []byte) (string, error) {
	return marshalValue(NewPayload(audio))
}

func marshalValue(p *domain.Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}
	return string(data), nil
}

func EncodeFailure(f domain.Failure) string {
	data, err := json.Marshal(f)
	if err != nil {
		// Failure only carries strings.
		return fmt.Sprintf(`{"error":%q}`, f.Error)
	}
	return string(data)
}

// DecodePayload parses a host value produced by EncodePayload and returns the
// raw audio it carries.
func DecodePayload(value string) ([]byte, error) {
	var p domain.Payload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(p.Audio)
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}
	return audio, nil
}
