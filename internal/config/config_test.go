package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://api.openai.com/v1", cfg.Whisper.Endpoint)
	assert.Equal(t, "whisper-1", cfg.Whisper.Model)
	assert.Equal(t, 30*time.Second, cfg.Whisper.Timeout())

	assert.Equal(t, "http://localhost:3000/api", cfg.OpenWebUI.Endpoint)
	assert.Equal(t, 4096, cfg.OpenWebUI.MaxContextLength)
	assert.False(t, cfg.OpenWebUI.Stream)

	assert.Equal(t, "https://api.elevenlabs.io/v1", cfg.ElevenLabs.Endpoint)
	assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", cfg.ElevenLabs.VoiceID)
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("WHISPER_BASE_URL", "http://localhost:9000/v1")
	t.Setenv("OPENWEBUI_MODEL_NAME", "mistral")

	cfg := Default()

	assert.Equal(t, "http://localhost:9000/v1", cfg.Whisper.Endpoint)
	assert.Equal(t, "mistral", cfg.OpenWebUI.Model)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "config.json"))

	cfg, err := m.Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManagerAt(path)

	cfg := Default()
	cfg.OpenWebUI.Model = "mistral"
	cfg.ElevenLabs.VoiceID = "custom-voice"
	require.NoError(t, m.Save(cfg))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// Config file holds no secrets but stays private anyway.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	m := NewManagerAt(path)
	_, err := m.Load()

	require.ErrorIs(t, err, ErrUnreadable)
}

func TestLoadServerDefaults(t *testing.T) {
	srv := LoadServer()

	assert.Equal(t, "8765", srv.Port)
	assert.Equal(t, 60, srv.RateLimitRequests)
	assert.Equal(t, time.Minute, srv.RateLimitWindow)
	assert.Equal(t, "info", srv.LogLevel)
}

func TestLoadServerEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("RATE_LIMIT_REQUESTS", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	srv := LoadServer()

	assert.Equal(t, "9999", srv.Port)
	assert.Equal(t, 10, srv.RateLimitRequests)
	assert.Equal(t, 30*time.Second, srv.RateLimitWindow)
}
