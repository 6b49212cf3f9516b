package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

// keyringService is the fixed namespace for keyring entries.
const keyringService = "com.cmac.cmac-chat"

// Credentials holds per-service API keys. Keys are never written to the
// config file; an empty string means no key was resolved.
type Credentials struct {
	Whisper    string
	OpenWebUI  string
	ElevenLabs string
}

// Get returns the key for a service.
func (c Credentials) Get(service model.ServiceName) string {
	switch service {
	case model.ServiceWhisper:
		return c.Whisper
	case model.ServiceOpenWebUI:
		return c.OpenWebUI
	case model.ServiceElevenLabs:
		return c.ElevenLabs
	}
	return ""
}

// Set returns a copy with the key for a service replaced.
func (c Credentials) Set(service model.ServiceName, key string) Credentials {
	switch service {
	case model.ServiceWhisper:
		c.Whisper = key
	case model.ServiceOpenWebUI:
		c.OpenWebUI = key
	case model.ServiceElevenLabs:
		c.ElevenLabs = key
	}
	return c
}

// MissingCredentialError reports that no API key could be resolved for a
// service, naming the environment variable the user should set.
type MissingCredentialError struct {
	Service model.ServiceName
	EnvVar  string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("API key not found for %q: set %s or store it via the app settings", e.Service, e.EnvVar)
}

// altEnvVars lists alternate environment variable names checked after the
// primary {SERVICE}_API_KEY variable.
var altEnvVars = map[model.ServiceName][]string{
	model.ServiceWhisper:    {"OPENAI_API_KEY"},
	model.ServiceOpenWebUI:  {"OPENWEBUI_API_KEY"},
	model.ServiceElevenLabs: {"ELEVENLABS_API_KEY"},
}

// PrimaryEnvVar returns the canonical environment variable name for a
// service's API key.
func PrimaryEnvVar(service model.ServiceName) string {
	name := strings.ToUpper(strings.ReplaceAll(string(service), "-", "_"))
	return name + "_API_KEY"
}

// isPlaceholder rejects template values copied verbatim from a sample .env.
func isPlaceholder(key string) bool {
	return strings.Contains(key, "your-") || strings.Contains(key, "-api-key-here")
}

// ResolveAPIKey resolves the API key for a service: primary environment
// variable, then alternates, then the platform keyring.
func (m *Manager) ResolveAPIKey(service model.ServiceName) (string, error) {
	log := logger.Global().WithService(string(service))

	primary := PrimaryEnvVar(service)
	if key := os.Getenv(primary); key != "" && !isPlaceholder(key) {
		log.Debug("using API key from environment", zap.String("env_var", primary))
		return key, nil
	}

	for _, name := range altEnvVars[service] {
		if key := os.Getenv(name); key != "" && !isPlaceholder(key) {
			log.Debug("using API key from environment", zap.String("env_var", name))
			return key, nil
		}
	}

	key, err := m.keyringGet(m.keyringService, string(service))
	if err == nil && key != "" {
		log.Debug("using API key from keyring")
		return key, nil
	}

	return "", &MissingCredentialError{Service: service, EnvVar: primary}
}

// ResolveCredentials resolves keys for all services. Missing keys are left
// empty, not treated as errors; clients degrade at call time.
func (m *Manager) ResolveCredentials() Credentials {
	creds := Credentials{}
	for _, service := range model.Services {
		if key, err := m.ResolveAPIKey(service); err == nil {
			creds = creds.Set(service, key)
		}
	}
	return creds
}

// StoreAPIKey persists a key in the platform keyring.
func (m *Manager) StoreAPIKey(service model.ServiceName, key string) error {
	if err := m.keyringSet(m.keyringService, string(service), key); err != nil {
		return fmt.Errorf("store key for %q: %w", service, err)
	}
	return nil
}

// DeleteAPIKey removes a key from the platform keyring.
func (m *Manager) DeleteAPIKey(service model.ServiceName) error {
	if err := m.keyringDelete(m.keyringService, string(service)); err != nil {
		return fmt.Errorf("delete key for %q: %w", service, err)
	}
	return nil
}

func keyringGetDefault(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func keyringSetDefault(service, user, secret string) error {
	return keyring.Set(service, user, secret)
}

func keyringDeleteDefault(service, user string) error {
	return keyring.Delete(service, user)
}
