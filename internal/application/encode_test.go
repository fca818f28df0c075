package application_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"mic-recorder/internal/application"
	"mic-recorder/internal/domain"
)

func TestEncodePayload_PreservesBinaryBytes(t *testing.T) {
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}
	// RIFF header bytes followed by invalid UTF-8.
	raw = append([]byte("RIFF\x00\x00\x00\x00WAVE"), raw...)

	value, err := application.EncodePayload(raw)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal([]byte(value), &generic); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if len(generic) != 1 {
		t.Errorf("value carries extra fields: %v", generic)
	}

	decoded, err := application.DecodePayload(value)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Error("round trip changed the audio bytes")
	}
}

func TestEncodePayload_LargeCapture(t *testing.T) {
	// Four seconds of 48 kHz stereo 16-bit PCM.
	raw := bytes.Repeat([]byte{0xAB, 0xCD}, 48000*2*4)

	value, err := application.EncodePayload(raw)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	decoded, err := application.DecodePayload(value)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(decoded) != len(raw) {
		t.Errorf("decoded %d bytes, want %d", len(decoded), len(raw))
	}
}

func TestEncodeFailure(t *testing.T) {
	value := application.EncodeFailure(domain.Failure{
		Error:   domain.KindPermissionDenied,
		Message: "permission_denied: microphone access denied",
		Session: "abc",
	})

	want := `{"error":"permission_denied","message":"permission_denied: microphone access denied","session":"abc"}`
	if value != want {
		t.Errorf("got %s\nwant %s", value, want)
	}
}
