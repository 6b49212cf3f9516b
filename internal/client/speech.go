package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/internal/retry"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

// MaxSpeechChars is the synthesis text limit enforced before any transport
// attempt.
const MaxSpeechChars = 5000

// ElevenLabsClient converts text to speech through the ElevenLabs API.
type ElevenLabsClient struct {
	mu     sync.Mutex
	cfg    config.ElevenLabsConfig
	apiKey string
	hc     *http.Client

	probeClient *http.Client
	retry       retry.Policy
	log         *logger.Logger
}

// Voice describes an available synthesis voice.
type Voice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
}

type ttsRequest struct {
	Text          string               `json:"text"`
	ModelID       string               `json:"model_id"`
	VoiceSettings config.VoiceSettings `json:"voice_settings"`
}

type voicesResponse struct {
	Voices []Voice `json:"voices"`
}

// NewElevenLabsClient creates a speech client from a configuration snapshot
// and an optional API key.
func NewElevenLabsClient(cfg config.ElevenLabsConfig, apiKey string, log *logger.Logger) (*ElevenLabsClient, error) {
	if cfg.Timeout() <= 0 {
		return nil, &InitError{Service: model.ServiceElevenLabs, Err: errors.New("non-positive timeout")}
	}

	return &ElevenLabsClient{
		cfg:         cfg,
		apiKey:      apiKey,
		hc:          &http.Client{Timeout: cfg.Timeout()},
		probeClient: &http.Client{},
		retry:       retry.Default,
		log:         log.WithService(string(model.ServiceElevenLabs)),
	}, nil
}

// UpdateConfig swaps the configuration snapshot in place.
func (c *ElevenLabsClient) UpdateConfig(cfg config.ElevenLabsConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.hc = &http.Client{Timeout: cfg.Timeout()}
}

// UpdateCredential swaps the API key in place.
func (c *ElevenLabsClient) UpdateCredential(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = apiKey
}

func (c *ElevenLabsClient) snapshot() (*http.Client, config.ElevenLabsConfig, string, retry.Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hc, c.cfg, c.apiKey, c.retry
}

// Synthesize converts text to audio bytes.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if len(text) > MaxSpeechChars {
		return nil, serviceErr(model.ServiceElevenLabs, ErrCharacterLimitExceeded)
	}

	hc, cfg, apiKey, policy := c.snapshot()

	c.log.Info("synthesizing speech",
		zap.String("voice", cfg.VoiceID),
		zap.Int("chars", len(text)),
	)

	audio, err := retry.Do(ctx, c.log, "synthesize", policy, func() ([]byte, error) {
		return c.trySynthesize(ctx, hc, cfg, apiKey, text)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("speech synthesis successful", zap.Int("bytes", len(audio)))
	return audio, nil
}

func (c *ElevenLabsClient) trySynthesize(ctx context.Context, hc *http.Client, cfg config.ElevenLabsConfig, apiKey, text string) ([]byte, error) {
	if apiKey == "" {
		return nil, serviceErr(model.ServiceElevenLabs, ErrAuthenticationFailed)
	}

	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       cfg.ModelID,
		VoiceSettings: cfg.VoiceSettings,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", model.ServiceElevenLabs, err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", model.ServiceElevenLabs, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, classifyTransportErr(model.ServiceElevenLabs, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if resp.StatusCode == http.StatusPaymentRequired {
			return nil, serviceErr(model.ServiceElevenLabs, ErrQuotaExceeded)
		}
		return nil, classifyStatus(model.ServiceElevenLabs, resp.StatusCode, string(raw), cfg.VoiceID)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read audio: %w", model.ServiceElevenLabs, err)
	}
	return audio, nil
}

// Voices lists the voices available to the configured account.
func (c *ElevenLabsClient) Voices(ctx context.Context) ([]Voice, error) {
	hc, cfg, apiKey, _ := c.snapshot()

	if apiKey == "" {
		return nil, serviceErr(model.ServiceElevenLabs, ErrAuthenticationFailed)
	}

	url := strings.TrimRight(cfg.Endpoint, "/") + "/voices"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", model.ServiceElevenLabs, err)
	}
	req.Header.Set("xi-api-key", apiKey)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, classifyTransportErr(model.ServiceElevenLabs, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, classifyStatus(model.ServiceElevenLabs, resp.StatusCode, string(raw), cfg.VoiceID)
	}

	var parsed voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: decode voices: %w", model.ServiceElevenLabs, err)
	}
	return parsed.Voices, nil
}

// Probe checks whether the speech service is reachable.
func (c *ElevenLabsClient) Probe(ctx context.Context) Reachability {
	c.mu.Lock()
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/")
	apiKey := c.apiKey
	c.mu.Unlock()

	req, err := http.NewRequest(http.MethodGet, endpoint+"/voices", nil)
	if err != nil {
		return Reachability{Reason: err.Error()}
	}
	if apiKey != "" {
		req.Header.Set("xi-api-key", apiKey)
	}
	return doProbe(ctx, c.probeClient, req)
}
