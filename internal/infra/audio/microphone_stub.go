//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"errors"
	"log/slog"

	"mic-recorder/internal/application"
	"mic-recorder/internal/domain"
)

// MicrophoneDevice stub when portaudio is not available
type MicrophoneDevice struct {
	logger *slog.Logger
}

func NewMicrophoneDevice(sampleRate, channels, framesPerBuffer int, logger *slog.Logger) *MicrophoneDevice {
	return &MicrophoneDevice{logger: logger}
}

func (m *MicrophoneDevice) Name() string {
	return "microphone"
}

func (m *MicrophoneDevice) Acquire(_ context.Context) (application.AudioStream, error) {
	return nil, domain.NewCaptureError(domain.KindDeviceUnavailable,
		errors.New("microphone not available: rebuild with -tags portaudio"))
}
