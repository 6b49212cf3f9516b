package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/client"
	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
)

// Config returns the current configuration snapshot.
func (p *Pipeline) Config() config.Config {
	return p.state.Config()
}

// SaveConfig replaces the configuration, reconfigures the clients in
// place, and persists to disk.
func (p *Pipeline) SaveConfig(cfg config.Config) error {
	p.state.SetConfig(cfg)

	if p.transcriber != nil {
		p.transcriber.UpdateConfig(cfg.Whisper)
	}
	if p.chatter != nil {
		p.chatter.UpdateConfig(cfg.OpenWebUI)
	}
	if p.synthesizer != nil {
		p.synthesizer.UpdateConfig(cfg.ElevenLabs)
	}

	if err := p.manager.Save(cfg); err != nil {
		return err
	}
	p.logger.Info("configuration saved")
	return nil
}

// SetAPIKey stores a credential in the keyring, updates the in-memory
// credentials, and reconfigures the owning client.
func (p *Pipeline) SetAPIKey(service model.ServiceName, apiKey string) error {
	if err := p.manager.StoreAPIKey(service, apiKey); err != nil {
		return err
	}

	p.state.SetCredentials(p.state.Credentials().Set(service, apiKey))

	switch service {
	case model.ServiceWhisper:
		if p.transcriber != nil {
			p.transcriber.UpdateCredential(apiKey)
		}
	case model.ServiceOpenWebUI:
		if p.chatter != nil {
			p.chatter.UpdateCredential(apiKey)
		}
	case model.ServiceElevenLabs:
		if p.synthesizer != nil {
			p.synthesizer.UpdateCredential(apiKey)
		}
	default:
		return fmt.Errorf("unknown service: %s", service)
	}

	p.logger.Info("API key updated", zap.String("service", string(service)))
	return nil
}

// UpdateVoiceSettings replaces the synthesis voice settings and persists
// the configuration.
func (p *Pipeline) UpdateVoiceSettings(settings config.VoiceSettings) error {
	cfg := p.state.Config()
	cfg.ElevenLabs.VoiceSettings = settings
	return p.SaveConfig(cfg)
}

// ListVoices lists the voices available from the speech service.
func (p *Pipeline) ListVoices(ctx context.Context) ([]client.Voice, error) {
	if p.synthesizer == nil {
		return nil, &client.InitError{Service: model.ServiceElevenLabs, Err: errNotConfigured}
	}
	return p.synthesizer.Voices(ctx)
}

// Status returns the current pipeline status.
func (p *Pipeline) Status() model.Status {
	return p.state.Status()
}

// Conversation returns a copy of the current conversation.
func (p *Pipeline) Conversation() model.Conversation {
	return p.state.Conversation()
}

// ClearConversation resets the conversation.
func (p *Pipeline) ClearConversation() {
	p.state.ClearConversation()
}

// StateReport summarizes the state the GUI polls for.
func (p *Pipeline) StateReport() model.StateResponse {
	return model.StateResponse{
		Status:       p.state.Status(),
		MessageCount: len(p.state.History()),
		Connectivity: p.state.Connectivity(),
	}
}
