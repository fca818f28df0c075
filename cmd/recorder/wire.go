package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"mic-recorder/config"
	"mic-recorder/internal/application"
	"mic-recorder/internal/infra/audio"
	"mic-recorder/internal/infra/consent"
	"mic-recorder/internal/infra/gemini"
	"mic-recorder/internal/infra/host"
	"mic-recorder/internal/infra/openai"
	"mic-recorder/internal/infra/pushover"
)

func createDevice(cfg *config.Config, logger *slog.Logger) (application.AudioDevice, error) {
	switch cfg.Audio.Source {
	case "file":
		pace, err := cfg.FilePace()
		if err != nil {
			return nil, err
		}
		return audio.NewFileDevice(cfg.Audio.FilePath, cfg.Audio.ChunkBytes, pace), nil
	case "microphone":
		return audio.NewMicrophoneDevice(cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.FramesPerBuffer, logger), nil
	default:
		return nil, fmt.Errorf("unknown audio source %q", cfg.Audio.Source)
	}
}

// createPermission builds the consent policy. The prompt writes to stderr so
// it never mixes with a value written to stdout.
func createPermission(cfg *config.Config, stderr io.Writer) application.Permission {
	switch cfg.Audio.Consent {
	case "grant":
		return consent.Grant()
	case "deny":
		return consent.Deny()
	default:
		return consent.NewTerminalPrompt(os.Stdin, stderr)
	}
}

func createHost(cfg *config.Config, stdout io.Writer) application.Host {
	switch cfg.Host.Mode {
	case "webhook":
		return host.NewWebhookHost(cfg.Host.WebhookURL, cfg.Host.AuthToken)
	default:
		return host.NewWriterHost(stdout)
	}
}

func createNotifier(cfg *config.Config) application.Notifier {
	if cfg.Pushover.Enabled {
		return pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	}
	return &application.NoopNotifier{}
}

func createSpeechToText(cfg *config.Config) application.SpeechToText {
	switch {
	case cfg.Practice.Transcriber == "gemini" && cfg.Gemini.APIKey != "":
		return gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	case cfg.Practice.Transcriber == "openai" && cfg.OpenAI.APIKey != "":
		return openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)
	default:
		return &application.NoopSTT{}
	}
}

func createRecorder(cfg *config.Config, device application.AudioDevice, permission application.Permission, h application.Host, logger *slog.Logger) (*application.Recorder, error) {
	timeout, err := cfg.PermissionTimeout()
	if err != nil {
		return nil, err
	}

	return application.NewRecorder(
		device,
		permission,
		h,
		createNotifier(cfg),
		application.RecorderConfig{
			Duration:          cfg.Duration(),
			PermissionTimeout: timeout,
			MaxBytes:          cfg.Capture.MaxBytes,
		},
		logger,
	), nil
}
