package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Capture  CaptureConfig  `yaml:"capture"`
	Audio    AudioConfig    `yaml:"audio"`
	Host     HostConfig     `yaml:"host"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Practice PracticeConfig `yaml:"practice"`
	Pushover PushoverConfig `yaml:"pushover"`
	Log      LogConfig      `yaml:"log"`
}

type CaptureConfig struct {
	DurationMs        int    `yaml:"duration_ms"`
	PermissionTimeout string `yaml:"permission_timeout"`
	MaxBytes          int    `yaml:"max_bytes"`
}

type AudioConfig struct {
	Source          string `yaml:"source"`
	SampleRate      int    `yaml:"sample_rate"`
	Channels        int    `yaml:"channels"`
	FramesPerBuffer int    `yaml:"frames_per_buffer"`
	FilePath        string `yaml:"file_path"`
	ChunkBytes      int    `yaml:"chunk_bytes"`
	FilePace        string `yaml:"file_pace"`
	Consent         string `yaml:"consent"`
}

type HostConfig struct {
	Mode       string `yaml:"mode"`
	WebhookURL string `yaml:"webhook_url"`
	HTTPAddr   string `yaml:"http_addr"`
	AuthToken  string `yaml:"auth_token"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type PracticeConfig struct {
	ExpectedPhrase string `yaml:"expected_phrase"`
	// Transcriber selects the speech-to-text backend: "openai" or "gemini".
	Transcriber string `yaml:"transcriber"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse reads a YAML document, expanding ${VAR} references from the
// environment first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

func (c *Config) SetDefaults() {
	if c.Capture.DurationMs == 0 {
		c.Capture.DurationMs = 4000
	}
	if c.Capture.PermissionTimeout == "" {
		c.Capture.PermissionTimeout = "30s"
	}
	if c.Capture.MaxBytes == 0 {
		c.Capture.MaxBytes = 64 << 20
	}
	if c.Audio.Source == "" {
		c.Audio.Source = "microphone"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = 1
	}
	if c.Audio.FramesPerBuffer == 0 {
		c.Audio.FramesPerBuffer = 1024
	}
	if c.Audio.ChunkBytes == 0 {
		c.Audio.ChunkBytes = 4096
	}
	if c.Audio.FilePace == "" {
		c.Audio.FilePace = "0s"
	}
	if c.Audio.Consent == "" {
		c.Audio.Consent = "prompt"
	}
	if c.Host.Mode == "" {
		c.Host.Mode = "stdout"
	}
	if c.Host.HTTPAddr == "" {
		c.Host.HTTPAddr = ":8080"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Practice.Transcriber == "" {
		c.Practice.Transcriber = "openai"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	if c.Capture.DurationMs < 0 {
		return fmt.Errorf("capture.duration_ms must be positive, got %d", c.Capture.DurationMs)
	}
	if c.Capture.MaxBytes < 0 {
		return fmt.Errorf("capture.max_bytes must be positive, got %d", c.Capture.MaxBytes)
	}
	if _, err := c.PermissionTimeout(); err != nil {
		return err
	}
	if _, err := c.FilePace(); err != nil {
		return err
	}

	switch c.Audio.Source {
	case "microphone":
	case "file":
		if c.Audio.FilePath == "" {
			return fmt.Errorf("audio.file_path is required when audio.source is file")
		}
	default:
		return fmt.Errorf("unknown audio.source %q", c.Audio.Source)
	}

	switch c.Audio.Consent {
	case "prompt", "grant", "deny":
	default:
		return fmt.Errorf("unknown audio.consent %q", c.Audio.Consent)
	}

	switch c.Host.Mode {
	case "stdout", "http":
	case "webhook":
		if c.Host.WebhookURL == "" {
			return fmt.Errorf("host.webhook_url is required when host.mode is webhook")
		}
	default:
		return fmt.Errorf("unknown host.mode %q", c.Host.Mode)
	}

	switch c.Practice.Transcriber {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown practice.transcriber %q", c.Practice.Transcriber)
	}

	return nil
}

func (c *Config) Duration() time.Duration {
	return time.Duration(c.Capture.DurationMs) * time.Millisecond
}

func (c *Config) PermissionTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Capture.PermissionTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid capture.permission_timeout %q: %w", c.Capture.PermissionTimeout, err)
	}
	return d, nil
}

func (c *Config) FilePace() (time.Duration, error) {
	d, err := time.ParseDuration(c.Audio.FilePace)
	if err != nil {
		return 0, fmt.Errorf("invalid audio.file_pace %q: %w", c.Audio.FilePace, err)
	}
	return d, nil
}
