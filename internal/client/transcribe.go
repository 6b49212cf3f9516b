package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/internal/retry"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

// MaxAudioBytes is the upload size limit enforced before any transport
// attempt.
const MaxAudioBytes = 25 * 1024 * 1024

// WhisperClient transcribes audio through an OpenAI-compatible
// transcription endpoint.
type WhisperClient struct {
	mu     sync.Mutex
	cfg    config.WhisperConfig
	apiKey string
	api    *openai.Client

	probeClient *http.Client
	retry       retry.Policy
	log         *logger.Logger
}

// NewWhisperClient creates a transcription client from a configuration
// snapshot and an optional API key.
func NewWhisperClient(cfg config.WhisperConfig, apiKey string, log *logger.Logger) (*WhisperClient, error) {
	if cfg.Timeout() <= 0 {
		return nil, &InitError{Service: model.ServiceWhisper, Err: errors.New("non-positive timeout")}
	}

	c := &WhisperClient{
		cfg:         cfg,
		apiKey:      apiKey,
		probeClient: &http.Client{},
		retry:       retry.Default,
		log:         log.WithService(string(model.ServiceWhisper)),
	}
	c.rebuild()
	return c, nil
}

func (c *WhisperClient) rebuild() {
	oc := openai.DefaultConfig(c.apiKey)
	oc.BaseURL = strings.TrimRight(c.cfg.Endpoint, "/")
	oc.HTTPClient = &http.Client{Timeout: c.cfg.Timeout()}
	c.api = openai.NewClientWithConfig(oc)
}

// UpdateConfig swaps the configuration snapshot in place.
func (c *WhisperClient) UpdateConfig(cfg config.WhisperConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.rebuild()
}

// UpdateCredential swaps the API key in place.
func (c *WhisperClient) UpdateCredential(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = apiKey
	c.rebuild()
}

func (c *WhisperClient) snapshot() (*openai.Client, config.WhisperConfig, retry.Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.api, c.cfg, c.retry
}

// Transcribe uploads audio bytes and returns the transcribed text.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) > MaxAudioBytes {
		return "", serviceErr(model.ServiceWhisper, ErrAudioTooLarge)
	}

	api, cfg, policy := c.snapshot()

	c.log.Info("transcribing audio",
		zap.String("filename", filename),
		zap.Int("bytes", len(audio)),
	)

	text, err := retry.Do(ctx, c.log, "transcribe", policy, func() (string, error) {
		resp, err := api.CreateTranscription(ctx, openai.AudioRequest{
			Model:       cfg.Model,
			Reader:      bytes.NewReader(audio),
			FilePath:    filename,
			Language:    cfg.Language,
			Temperature: cfg.Temperature,
			Format:      openai.AudioResponseFormatJSON,
		})
		if err != nil {
			return "", classifyOpenAIError(model.ServiceWhisper, cfg.Model, err)
		}
		if strings.TrimSpace(resp.Text) == "" {
			return "", serviceErr(model.ServiceWhisper, ErrEmptyTranscription)
		}
		return resp.Text, nil
	})
	if err != nil {
		return "", err
	}

	c.log.Info("transcription successful", zap.Int("chars", len(text)))
	return text, nil
}

// Probe checks whether the transcription service is reachable.
func (c *WhisperClient) Probe(ctx context.Context) Reachability {
	c.mu.Lock()
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/")
	apiKey := c.apiKey
	c.mu.Unlock()

	req, err := http.NewRequest(http.MethodGet, endpoint+"/models", nil)
	if err != nil {
		return Reachability{Reason: err.Error()}
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return doProbe(ctx, c.probeClient, req)
}
