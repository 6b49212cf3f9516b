// Package service provides the pipeline orchestration for the voice
// assistant core: transcribe, chat, synthesize, and the composite voice
// query chaining all three.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/client"
	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/internal/state"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
	"github.com/cojovi/cmac-chat-module-win86/pkg/metrics"
)

// errNotConfigured is reported when a client could not be built at startup.
var errNotConfigured = errors.New("client not configured")

// Transcriber converts audio bytes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Probe(ctx context.Context) client.Reachability
	UpdateConfig(cfg config.WhisperConfig)
	UpdateCredential(apiKey string)
}

// Chatter sends conversation history to the LLM and returns the reply.
type Chatter interface {
	Send(ctx context.Context, history []model.Message) (string, error)
	Probe(ctx context.Context) client.Reachability
	UpdateConfig(cfg config.OpenWebUIConfig)
	UpdateCredential(apiKey string)
}

// Synthesizer converts text to audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voices(ctx context.Context) ([]client.Voice, error)
	Probe(ctx context.Context) client.Reachability
	UpdateConfig(cfg config.ElevenLabsConfig)
	UpdateCredential(apiKey string)
}

// Pipeline coordinates the three upstream clients and the shared state
// container. A nil client means construction failed at startup; its
// operations fail and its connectivity reports disconnected.
type Pipeline struct {
	state       *state.Container
	manager     *config.Manager
	transcriber Transcriber
	chatter     Chatter
	synthesizer Synthesizer
	logger      *logger.Logger
}

// NewPipeline creates the orchestrator.
func NewPipeline(
	st *state.Container,
	manager *config.Manager,
	transcriber Transcriber,
	chatter Chatter,
	synthesizer Synthesizer,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		state:       st,
		manager:     manager,
		transcriber: transcriber,
		chatter:     chatter,
		synthesizer: synthesizer,
		logger:      log.WithComponent("pipeline"),
	}
}

// ProcessAudio transcribes audio and returns the text. Status moves to
// transcribing for the duration, then back to idle or to error.
func (p *Pipeline) ProcessAudio(ctx context.Context, audio []byte, filename string) (string, error) {
	if p.transcriber == nil {
		return "", p.fail(&client.InitError{Service: model.ServiceWhisper, Err: errNotConfigured})
	}

	p.state.SetStatus(model.Status{Phase: model.PhaseTranscribing})

	start := time.Now()
	text, err := p.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		metrics.RecordStep("transcribe", "error", time.Since(start).Seconds())
		return "", p.fail(err)
	}
	metrics.RecordStep("transcribe", "success", time.Since(start).Seconds())

	p.state.SetStatus(model.Idle())
	return text, nil
}

// SendMessage appends the user message, sends the full history to the LLM,
// and appends the reply. On failure the user message stays appended; there
// is no rollback.
func (p *Pipeline) SendMessage(ctx context.Context, content string) (string, error) {
	if p.chatter == nil {
		return "", p.fail(&client.InitError{Service: model.ServiceOpenWebUI, Err: errNotConfigured})
	}

	p.state.SetStatus(model.Status{Phase: model.PhaseThinking})
	p.state.AppendMessage(model.RoleUser, content)

	start := time.Now()
	reply, err := p.chatter.Send(ctx, p.state.History())
	if err != nil {
		metrics.RecordStep("chat", "error", time.Since(start).Seconds())
		return "", p.fail(err)
	}
	metrics.RecordStep("chat", "success", time.Since(start).Seconds())

	p.state.AppendMessage(model.RoleAssistant, reply)
	p.state.SetStatus(model.Idle())
	return reply, nil
}

// SynthesizeSpeech converts text to audio. Status moves to speaking for
// the duration, then back to idle or to error.
func (p *Pipeline) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	if p.synthesizer == nil {
		return nil, p.fail(&client.InitError{Service: model.ServiceElevenLabs, Err: errNotConfigured})
	}

	p.state.SetStatus(model.Status{Phase: model.PhaseSpeaking})

	start := time.Now()
	audio, err := p.synthesizer.Synthesize(ctx, text)
	if err != nil {
		metrics.RecordStep("synthesize", "error", time.Since(start).Seconds())
		return nil, p.fail(err)
	}
	metrics.RecordStep("synthesize", "success", time.Since(start).Seconds())

	p.state.SetStatus(model.Idle())
	return audio, nil
}

// ProcessVoiceQuery runs the full pipeline: transcribe, chat, synthesize.
// The first failure records an error status and stops; messages appended
// by completed steps remain committed.
func (p *Pipeline) ProcessVoiceQuery(ctx context.Context, audio []byte, filename string) (*model.VoiceQueryResponse, error) {
	p.logger.Info("processing voice query", zap.Int("bytes", len(audio)))

	if p.transcriber == nil {
		return nil, p.pipelineFail(&client.InitError{Service: model.ServiceWhisper, Err: errNotConfigured})
	}
	if p.chatter == nil {
		return nil, p.pipelineFail(&client.InitError{Service: model.ServiceOpenWebUI, Err: errNotConfigured})
	}
	if p.synthesizer == nil {
		return nil, p.pipelineFail(&client.InitError{Service: model.ServiceElevenLabs, Err: errNotConfigured})
	}

	// Step 1: transcribe.
	p.state.SetStatus(model.Status{Phase: model.PhaseTranscribing})
	start := time.Now()
	transcription, err := p.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		metrics.RecordStep("transcribe", "error", time.Since(start).Seconds())
		return nil, p.pipelineFail(err)
	}
	metrics.RecordStep("transcribe", "success", time.Since(start).Seconds())

	// Step 2: chat with the full history including the new user message.
	p.state.SetStatus(model.Status{Phase: model.PhaseThinking})
	p.state.AppendMessage(model.RoleUser, transcription)

	start = time.Now()
	reply, err := p.chatter.Send(ctx, p.state.History())
	if err != nil {
		metrics.RecordStep("chat", "error", time.Since(start).Seconds())
		return nil, p.pipelineFail(err)
	}
	metrics.RecordStep("chat", "success", time.Since(start).Seconds())
	p.state.AppendMessage(model.RoleAssistant, reply)

	// Step 3: synthesize the reply.
	p.state.SetStatus(model.Status{Phase: model.PhaseSpeaking})
	start = time.Now()
	speech, err := p.synthesizer.Synthesize(ctx, reply)
	if err != nil {
		metrics.RecordStep("synthesize", "error", time.Since(start).Seconds())
		return nil, p.pipelineFail(err)
	}
	metrics.RecordStep("synthesize", "success", time.Since(start).Seconds())

	p.state.SetStatus(model.Idle())
	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()

	return &model.VoiceQueryResponse{
		Transcription: transcription,
		Reply:         reply,
		Audio:         speech,
	}, nil
}

// fail records the error status and returns the error.
func (p *Pipeline) fail(err error) error {
	p.logger.Error("operation failed", zap.Error(err))
	p.state.SetStatus(model.ErrorStatus(err.Error()))
	return err
}

func (p *Pipeline) pipelineFail(err error) error {
	metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
	return p.fail(err)
}
