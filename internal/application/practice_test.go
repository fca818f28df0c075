package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"mic-recorder/internal/application"
	"mic-recorder/internal/domain"
)

type scriptedSTT struct {
	text     string
	gotAudio []byte
	gotMime  string
}

func (s *scriptedSTT) Transcribe(_ context.Context, audio []byte, mimeType string) (string, error) {
	s.gotAudio = audio
	s.gotMime = mimeType
	return s.text, nil
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		expected   string
		wantScore  float64
		want       domain.Verdict
	}{
		{"exact match ignoring case", "i want to learn french", "I want to learn French", 100, domain.VerdictExcellent},
		{"one letter missing", "I want to lean French", "I want to learn French", 97.67, domain.VerdictExcellent},
		{"different language named", "I want to learn Spanish", "I want to learn French", 80, domain.VerdictAlmost},
		{"unrelated", "goodbye", "hello world", 33.33, domain.VerdictRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := application.Evaluate(tt.transcript, tt.expected)
			if a.Score != tt.wantScore {
				t.Errorf("score: got %v, want %v", a.Score, tt.wantScore)
			}
			if a.Verdict != tt.want {
				t.Errorf("verdict: got %s, want %s", a.Verdict, tt.want)
			}
		})
	}
}

func TestPractice_Assess(t *testing.T) {
	stt := &scriptedSTT{text: "I want to learn French"}
	practice := application.NewPractice(stt, slog.New(slog.NewTextHandler(io.Discard, nil)))

	payload := application.NewPayload([]byte("RIFFdata"))
	payload.MimeType = "audio/wav"

	a, err := practice.Assess(context.Background(), payload, "I want to learn French")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if a.Verdict != domain.VerdictExcellent {
		t.Errorf("verdict: got %s", a.Verdict)
	}
	if string(stt.gotAudio) != "RIFFdata" || stt.gotMime != "audio/wav" {
		t.Errorf("transcriber got %q (%s)", stt.gotAudio, stt.gotMime)
	}
}

func TestPractice_RejectsEmptyCapture(t *testing.T) {
	practice := application.NewPractice(&scriptedSTT{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := practice.Assess(context.Background(), application.NewPayload(nil), "hello"); err == nil {
		t.Error("expected error for empty capture")
	}
	if _, err := practice.Assess(context.Background(), application.NewPayload([]byte{1}), "  "); err == nil {
		t.Error("expected error for empty phrase")
	}
}
