package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Duration() != 4*time.Second {
		t.Errorf("duration: got %v, want 4s", cfg.Duration())
	}
	if d, _ := cfg.PermissionTimeout(); d != 30*time.Second {
		t.Errorf("permission timeout: got %v", d)
	}
	if cfg.Audio.Source != "microphone" || cfg.Audio.Consent != "prompt" {
		t.Errorf("audio: got source=%q consent=%q", cfg.Audio.Source, cfg.Audio.Consent)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Errorf("format: got %d Hz %d ch", cfg.Audio.SampleRate, cfg.Audio.Channels)
	}
	if cfg.Host.Mode != "stdout" {
		t.Errorf("host mode: got %q", cfg.Host.Mode)
	}
	if cfg.Practice.Transcriber != "openai" || cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("practice: got transcriber=%q model=%q", cfg.Practice.Transcriber, cfg.Gemini.Model)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level: got %q", cfg.Log.Level)
	}
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("RECORDER_WEBHOOK", "https://example.test/hook")
	t.Setenv("RECORDER_TOKEN", "s3cret")

	cfg, err := Parse([]byte(`
host:
  mode: webhook
  webhook_url: ${RECORDER_WEBHOOK}
  auth_token: ${RECORDER_TOKEN}
capture:
  duration_ms: 2500
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Host.WebhookURL != "https://example.test/hook" || cfg.Host.AuthToken != "s3cret" {
		t.Errorf("host: got %+v", cfg.Host)
	}
	if cfg.Duration() != 2500*time.Millisecond {
		t.Errorf("duration: got %v", cfg.Duration())
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"negative duration", "capture:\n  duration_ms: -1", "duration_ms"},
		{"negative byte cap", "capture:\n  max_bytes: -1", "max_bytes"},
		{"bad permission timeout", "capture:\n  permission_timeout: soon", "permission_timeout"},
		{"unknown source", "audio:\n  source: radio", "audio.source"},
		{"file without path", "audio:\n  source: file", "file_path"},
		{"unknown consent", "audio:\n  consent: maybe", "audio.consent"},
		{"unknown host", "host:\n  mode: carrier-pigeon", "host.mode"},
		{"webhook without url", "host:\n  mode: webhook", "webhook_url"},
		{"unknown transcriber", "practice:\n  transcriber: parrot", "practice.transcriber"},
		{"malformed yaml", "capture: [", "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("audio:\n  source: file\n  file_path: clip.wav\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Audio.FilePath != "clip.wav" {
		t.Errorf("file path: got %q", cfg.Audio.FilePath)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultMatchesEmptyDocument(t *testing.T) {
	parsed, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *parsed != *Default() {
		t.Errorf("Default() = %+v, Parse(\"\") = %+v", *Default(), *parsed)
	}
}
