package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"mic-recorder/internal/domain"
)

// Practice scores a captured attempt against the phrase the speaker was
// asked to say.
type Practice struct {
	stt    SpeechToText
	logger *slog.Logger
}

func NewPractice(stt SpeechToText, logger *slog.Logger) *Practice {
	return &Practice{stt: stt, logger: logger}
}

func (p *Practice) Assess(ctx context.Context, payload *domain.Payload, expected string) (*domain.Assessment, error) {
	if payload == nil {
		return nil, fmt.Errorf("no payload to assess")
	}
	if strings.TrimSpace(expected) == "" {
		return nil, fmt.Errorf("expected phrase is empty")
	}

	audio, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, fmt.Errorf("decoding payload audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("payload carries no audio")
	}

	transcript, err := p.stt.Transcribe(ctx, audio, payload.MimeType)
	if err != nil {
		return nil, fmt.Errorf("transcribing: %w", err)
	}
	p.logger.Info("transcribed attempt", "text", transcript)

	a := Evaluate(transcript, expected)
	p.logger.Info("assessed attempt", "score", a.Score, "verdict", a.Verdict)
	return &a, nil
}
