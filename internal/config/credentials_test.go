package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cojovi/cmac-chat-module-win86/internal/model"
)

// fakeKeyring replaces the platform keyring for tests.
type fakeKeyring struct {
	entries map[string]string
}

func newFakeKeyring() *fakeKeyring {
	return &fakeKeyring{entries: map[string]string{}}
}

func (k *fakeKeyring) install(m *Manager) {
	m.keyringGet = func(service, user string) (string, error) {
		if v, ok := k.entries[user]; ok {
			return v, nil
		}
		return "", errors.New("secret not found in keyring")
	}
	m.keyringSet = func(service, user, secret string) error {
		k.entries[user] = secret
		return nil
	}
	m.keyringDelete = func(service, user string) error {
		delete(k.entries, user)
		return nil
	}
}

func newTestManager(t *testing.T) (*Manager, *fakeKeyring) {
	t.Helper()
	m := NewManagerAt(filepath.Join(t.TempDir(), "config.json"))
	k := newFakeKeyring()
	k.install(m)
	return m, k
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"WHISPER_API_KEY", "OPENAI_API_KEY",
		"OPENWEBUI_API_KEY", "ELEVENLABS_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestPrimaryEnvVar(t *testing.T) {
	assert.Equal(t, "WHISPER_API_KEY", PrimaryEnvVar(model.ServiceWhisper))
	assert.Equal(t, "OPENWEBUI_API_KEY", PrimaryEnvVar(model.ServiceOpenWebUI))
	assert.Equal(t, "ELEVENLABS_API_KEY", PrimaryEnvVar(model.ServiceElevenLabs))
}

func TestResolveAPIKeyPrimaryEnvWins(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("WHISPER_API_KEY", "primary-key")
	t.Setenv("OPENAI_API_KEY", "alternate-key")

	m, k := newTestManager(t)
	k.entries[string(model.ServiceWhisper)] = "keyring-key"

	key, err := m.ResolveAPIKey(model.ServiceWhisper)
	require.NoError(t, err)
	assert.Equal(t, "primary-key", key)
}

func TestResolveAPIKeyFallsBackToAlternate(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("OPENAI_API_KEY", "alternate-key")

	m, _ := newTestManager(t)

	key, err := m.ResolveAPIKey(model.ServiceWhisper)
	require.NoError(t, err)
	assert.Equal(t, "alternate-key", key)
}

func TestResolveAPIKeyFallsBackToKeyring(t *testing.T) {
	clearCredentialEnv(t)

	m, k := newTestManager(t)
	k.entries[string(model.ServiceElevenLabs)] = "keyring-key"

	key, err := m.ResolveAPIKey(model.ServiceElevenLabs)
	require.NoError(t, err)
	assert.Equal(t, "keyring-key", key)
}

func TestResolveAPIKeyRejectsPlaceholders(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("WHISPER_API_KEY", "your-whisper-key")
	t.Setenv("OPENAI_API_KEY", "sk-api-key-here")

	m, _ := newTestManager(t)

	_, err := m.ResolveAPIKey(model.ServiceWhisper)

	var missing *MissingCredentialError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.ServiceWhisper, missing.Service)
	assert.Equal(t, "WHISPER_API_KEY", missing.EnvVar)
}

func TestResolveAPIKeyMissingEverywhere(t *testing.T) {
	clearCredentialEnv(t)

	m, _ := newTestManager(t)

	_, err := m.ResolveAPIKey(model.ServiceOpenWebUI)

	var missing *MissingCredentialError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "OPENWEBUI_API_KEY", missing.EnvVar)
}

func TestResolveCredentialsLeavesMissingEmpty(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("ELEVENLABS_API_KEY", "el-key")

	m, _ := newTestManager(t)
	creds := m.ResolveCredentials()

	assert.Empty(t, creds.Whisper)
	assert.Empty(t, creds.OpenWebUI)
	assert.Equal(t, "el-key", creds.ElevenLabs)
}

func TestStoreAndDeleteAPIKey(t *testing.T) {
	clearCredentialEnv(t)

	m, k := newTestManager(t)

	require.NoError(t, m.StoreAPIKey(model.ServiceWhisper, "stored-key"))
	assert.Equal(t, "stored-key", k.entries[string(model.ServiceWhisper)])

	key, err := m.ResolveAPIKey(model.ServiceWhisper)
	require.NoError(t, err)
	assert.Equal(t, "stored-key", key)

	require.NoError(t, m.DeleteAPIKey(model.ServiceWhisper))
	_, err = m.ResolveAPIKey(model.ServiceWhisper)
	require.Error(t, err)
}

func TestCredentialsGetSet(t *testing.T) {
	creds := Credentials{}.
		Set(model.ServiceWhisper, "w").
		Set(model.ServiceOpenWebUI, "o")

	assert.Equal(t, "w", creds.Get(model.ServiceWhisper))
	assert.Equal(t, "o", creds.Get(model.ServiceOpenWebUI))
	assert.Empty(t, creds.Get(model.ServiceElevenLabs))
}
