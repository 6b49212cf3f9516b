// Package config provides persisted configuration and credential resolution
// for the voice assistant core.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ErrUnreadable is returned when the configuration file exists but cannot
// be parsed.
var ErrUnreadable = errors.New("configuration file is unreadable")

// Config holds the full application configuration. It is treated as an
// immutable snapshot: callers replace it wholesale, never mutate in place.
type Config struct {
	Whisper    WhisperConfig    `json:"whisper"`
	OpenWebUI  OpenWebUIConfig  `json:"openwebui"`
	ElevenLabs ElevenLabsConfig `json:"elevenlabs"`
	Audio      AudioConfig      `json:"audio"`
	UI         UIConfig         `json:"ui"`
}

// WhisperConfig configures the speech-to-text service.
type WhisperConfig struct {
	// Endpoint is the OpenAI-compatible API base URL, e.g.
	// "https://api.openai.com/v1".
	Endpoint    string  `json:"endpoint"`
	Model       string  `json:"model"`
	Language    string  `json:"language,omitempty"`
	Temperature float32 `json:"temperature"`
	TimeoutSecs int     `json:"timeout_secs"`
}

// OpenWebUIConfig configures the chat service.
type OpenWebUIConfig struct {
	// Endpoint is the OpenAI-compatible API base URL, e.g.
	// "http://localhost:3000/api".
	Endpoint         string  `json:"endpoint"`
	Model            string  `json:"model"`
	MaxContextLength int     `json:"max_context_length"`
	Temperature      float32 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens,omitempty"`
	Stream           bool    `json:"stream"`
	TimeoutSecs      int     `json:"timeout_secs"`
}

// ElevenLabsConfig configures the text-to-speech service.
type ElevenLabsConfig struct {
	// Endpoint is the API base URL, e.g. "https://api.elevenlabs.io/v1".
	Endpoint      string        `json:"endpoint"`
	VoiceID       string        `json:"voice_id"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
	TimeoutSecs   int           `json:"timeout_secs"`
}

// VoiceSettings tunes speech synthesis.
type VoiceSettings struct {
	Stability       float32  `json:"stability"`
	SimilarityBoost float32  `json:"similarity_boost"`
	Style           *float32 `json:"style,omitempty"`
	UseSpeakerBoost bool     `json:"use_speaker_boost"`
}

// AudioConfig holds recording preferences consumed by the GUI shell.
type AudioConfig struct {
	SampleRate       int     `json:"sample_rate"`
	BitDepth         int     `json:"bit_depth"`
	Channels         int     `json:"channels"`
	Format           string  `json:"format"`
	SilenceThreshold float32 `json:"silence_threshold"`
	SilenceDuration  float32 `json:"silence_duration"`
	MaxDuration      int     `json:"max_duration"`
}

// UIConfig holds window preferences consumed by the GUI shell.
type UIConfig struct {
	Theme             string `json:"theme"`
	ShowTranscription bool   `json:"show_transcription"`
	ShowThinking      bool   `json:"show_thinking"`
	AutoMinimize      bool   `json:"auto_minimize"`
	AlwaysOnTop       bool   `json:"always_on_top"`
	GlobalHotkey      string `json:"global_hotkey,omitempty"`
}

// Timeout returns the configured request timeout.
func (c WhisperConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSecs) * time.Second }

// Timeout returns the configured request timeout.
func (c OpenWebUIConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSecs) * time.Second }

// Timeout returns the configured request timeout.
func (c ElevenLabsConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSecs) * time.Second }

// Default returns the default configuration with environment overrides for
// endpoints and models.
func Default() Config {
	style := float32(0.0)
	return Config{
		Whisper: WhisperConfig{
			Endpoint:    getEnv("WHISPER_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("WHISPER_MODEL", "whisper-1"),
			Language:    "en",
			Temperature: 0.0,
			TimeoutSecs: 30,
		},
		OpenWebUI: OpenWebUIConfig{
			Endpoint:         getEnv("OPENWEBUI_BASE_URL", "http://localhost:3000/api"),
			Model:            getEnv("OPENWEBUI_MODEL_NAME", "llama3.2"),
			MaxContextLength: 4096,
			Temperature:      0.7,
			MaxTokens:        1024,
			Stream:           false,
			TimeoutSecs:      60,
		},
		ElevenLabs: ElevenLabsConfig{
			Endpoint: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
			VoiceID:  getEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
			ModelID:  "eleven_monolingual_v1",
			VoiceSettings: VoiceSettings{
				Stability:       0.5,
				SimilarityBoost: 0.75,
				Style:           &style,
				UseSpeakerBoost: true,
			},
			TimeoutSecs: 30,
		},
		Audio: AudioConfig{
			SampleRate:       16000,
			BitDepth:         16,
			Channels:         1,
			Format:           "wav",
			SilenceThreshold: 0.01,
			SilenceDuration:  2.0,
			MaxDuration:      300,
		},
		UI: UIConfig{
			Theme:             "dark",
			ShowTranscription: true,
			ShowThinking:      true,
			AutoMinimize:      false,
			AlwaysOnTop:       true,
			GlobalHotkey:      "CommandOrControl+Shift+Space",
		},
	}
}

// Manager loads and saves the configuration file and resolves credentials.
type Manager struct {
	path           string
	keyringService string

	// keyring hooks, replaceable in tests
	keyringGet    func(service, user string) (string, error)
	keyringSet    func(service, user, secret string) error
	keyringDelete func(service, user string) error
}

// NewManager creates a manager rooted at the platform config directory.
func NewManager() (*Manager, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	appDir := filepath.Join(dir, "cmac-chat")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return NewManagerAt(filepath.Join(appDir, "config.json")), nil
}

// NewManagerAt creates a manager for an explicit config file path.
func NewManagerAt(path string) *Manager {
	return &Manager{
		path:           path,
		keyringService: keyringService,
		keyringGet:     keyringGetDefault,
		keyringSet:     keyringSetDefault,
		keyringDelete:  keyringDeleteDefault,
	}
}

// Load reads the configuration from disk. A missing file is not an error:
// defaults are returned.
func (m *Manager) Load() (Config, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return cfg, nil
}

// Save writes the configuration to disk.
func (m *Manager) Save(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ServerConfig holds HTTP server settings. These are environment-driven and
// never persisted to the config file.
type ServerConfig struct {
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	LogLevel          string
}

// LoadServer reads server settings from environment variables.
func LoadServer() ServerConfig {
	return ServerConfig{
		Port:              getEnv("PORT", "8765"),
		ReadTimeout:       getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
