package client

import (
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

// OpenWebUIClient sends conversation history to an OpenAI-compatible chat
// completion endpoint and returns the assistant reply.
type OpenWebUIClient struct {
	mu     sync.Mutex
	cfg    config.OpenWebUIConfig
	apiKey string
	api    *openai.Client

	probeClient *http.Client
	retry       retry.Policy
	log         *logger.Logger
}

// NewOpenWebUIClient creates a chat client from a configuration snapshot
// and an optional API key.
func NewOpenWebUIClient(cfg config.OpenWebUIConfig, apiKey string, log *logger.Logger) (*OpenWebUIClient, error) {
	if cfg.Timeout() <= 0 {
		return nil, &InitError{Service: model.ServiceOpenWebUI, Err: errors.New("non-positive timeout")}
	}

	c := &OpenWebUIClient{
		cfg:         cfg,
		apiKey:      apiKey,
		probeClient: &http.Client{},
		retry:       retry.Default,
		log:         log.WithService(string(model.ServiceOpenWebUI)),
	}
	c.rebuild()
	return c, nil
}

func (c *OpenWebUIClient) rebuild() {
	oc := openai.DefaultConfig(c.apiKey)
	oc.BaseURL = strings.TrimRight(c.cfg.Endpoint, "/")
	oc.HTTPClient = &http.Client{Timeout: c.cfg.Timeout()}
	c.api = openai.NewClientWithConfig(oc)
}

// UpdateConfig swaps the configuration snapshot in place.
func (c *OpenWebUIClient) UpdateConfig(cfg config.OpenWebUIConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.rebuild()
}

// UpdateCredential swaps the API key in place.
func (c *OpenWebUIClient) UpdateCredential(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = apiKey
	c.rebuild()
}

func (c *OpenWebUIClient) snapshot() (*openai.Client, config.OpenWebUIConfig, retry.Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.api, c.cfg, c.retry
}

// Send submits the full conversation history and returns the reply text
// extracted from the first choice.
func (c *OpenWebUIClient) Send(ctx context.Context, history []model.Message) (string, error) {
	api, cfg, policy := c.snapshot()

	if cfg.Stream {
		return "", serviceErr(model.ServiceOpenWebUI, ErrStreamingNotSupported)
	}

	totalChars := 0
	for _, msg := range history {
		totalChars += len(msg.Content)
	}
	if totalChars > cfg.MaxContextLength {
		c.log.Warn("context length exceeds maximum",
			zap.Int("chars", totalChars),
			zap.Int("max", cfg.MaxContextLength),
		)
		return "", serviceErr(model.ServiceOpenWebUI, ErrContextLimitExceeded)
	}

	messages := make([]openai.ChatCompletionMessage, len(history))
	for i, msg := range history {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	c.log.Info("sending chat completion",
		zap.String("model", cfg.Model),
		zap.Int("messages", len(messages)),
	)

	reply, err := retry.Do(ctx, c.log, "chat", policy, func() (string, error) {
		resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       cfg.Model,
			Messages:    messages,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return "", classifyOpenAIError(model.ServiceOpenWebUI, cfg.Model, err)
		}
		if len(resp.Choices) == 0 {
			return "", serviceErr(model.ServiceOpenWebUI, ErrMalformedResponse)
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", err
	}

	c.log.Info("chat completion received", zap.Int("chars", len(reply)))
	return reply, nil
}

// Probe checks whether the chat service is reachable.
func (c *OpenWebUIClient) Probe(ctx context.Context) Reachability {
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
