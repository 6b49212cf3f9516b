// Package state holds the shared mutable application state: pipeline
// status, conversation history, configuration, credentials, and service
// connectivity, guarded by a single mutex.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
	"github.com/cojovi/cmac-chat-module-win86/pkg/metrics"
)

// Container is the single shared state container. Critical sections are
// short; the lock is never held across network calls.
type Container struct {
	mu           sync.Mutex
	status       model.Status
	conversation model.Conversation
	config       config.Config
	creds        config.Credentials
	connectivity model.Connectivity

	logger *logger.Logger
	now    func() int64
}

// New creates a container with an empty conversation and all services in
// the unknown state.
func New(cfg config.Config, creds config.Credentials, log *logger.Logger) *Container {
	c := &Container{
		status: model.Idle(),
		config: cfg,
		creds:  creds,
		connectivity: model.Connectivity{
			Whisper:    model.ServiceState{Phase: model.ServiceUnknown},
			OpenWebUI:  model.ServiceState{Phase: model.ServiceUnknown},
			ElevenLabs: model.ServiceState{Phase: model.ServiceUnknown},
		},
		logger: log.WithComponent("state"),
		now:    func() int64 { return time.Now().Unix() },
	}
	c.conversation = c.freshConversation()
	return c
}

func (c *Container) freshConversation() model.Conversation {
	now := c.now()
	return model.Conversation{
		ID:          uuid.Must(uuid.NewV7()).String(),
		MaxMessages: model.DefaultMaxMessages,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// Status returns the current pipeline status.
func (c *Container) Status() model.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SetStatus replaces the current pipeline status.
func (c *Container) SetStatus(status model.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Info("status changed",
		zap.String("from", string(c.status.Phase)),
		zap.String("to", string(status.Phase)),
	)
	c.status = status
}

// Config returns the current configuration snapshot.
func (c *Container) Config() config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// SetConfig replaces the configuration snapshot wholesale.
func (c *Container) SetConfig(cfg config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
}

// Credentials returns the current credentials.
func (c *Container) Credentials() config.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds
}

// SetCredentials replaces the credentials wholesale.
func (c *Container) SetCredentials(creds config.Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = creds
}

// AppendMessage appends a message to the conversation, trimming the oldest
// messages when the cap is exceeded.
func (c *Container) AppendMessage(role model.Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.conversation.Messages = append(c.conversation.Messages, model.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	c.conversation.UpdatedAt = now

	if max := c.conversation.MaxMessages; max > 0 && len(c.conversation.Messages) > max {
		start := len(c.conversation.Messages) - max
		c.conversation.Messages = append([]model.Message(nil), c.conversation.Messages[start:]...)
	}

	metrics.MessagesTotal.WithLabelValues(string(role)).Inc()
	metrics.ConversationLength.Set(float64(len(c.conversation.Messages)))

	c.logger.Debug("message appended",
		zap.String("role", string(role)),
		zap.Int("total", len(c.conversation.Messages)),
	)
}

// Conversation returns a copy of the current conversation.
func (c *Container) Conversation() model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := c.conversation
	conv.Messages = append([]model.Message(nil), c.conversation.Messages...)
	return conv
}

// History returns a copy of the current message history for chat context.
func (c *Container) History() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Message(nil), c.conversation.Messages...)
}

// ClearConversation resets the conversation wholesale, issuing a fresh
// identifier.
func (c *Container) ClearConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversation = c.freshConversation()
	metrics.ConversationLength.Set(0)
	c.logger.Info("conversation cleared")
}

// Connectivity returns the current connectivity report.
func (c *Container) Connectivity() model.Connectivity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectivity
}

// SetServiceState updates one service's reachability state and bumps the
// shared last-checked timestamp.
func (c *Container) SetServiceState(service model.ServiceName, state model.ServiceState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch service {
	case model.ServiceWhisper:
		c.connectivity.Whisper = state
	case model.ServiceOpenWebUI:
		c.connectivity.OpenWebUI = state
	case model.ServiceElevenLabs:
		c.connectivity.ElevenLabs = state
	default:
		c.logger.Warn("unknown service", zap.String("service", string(service)))
		return
	}
	c.connectivity.LastChecked = c.now()
}

// AllConnected reports whether all three services are connected.
func (c *Container) AllConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectivity.Whisper.Phase == model.ServiceConnected &&
		c.connectivity.OpenWebUI.Phase == model.ServiceConnected &&
		c.connectivity.ElevenLabs.Phase == model.ServiceConnected
}
