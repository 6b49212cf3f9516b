package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/middleware"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/internal/service"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

// maxUploadBytes bounds multipart parsing. Oversize audio is rejected by
// the transcription client before any transport attempt; the parse bound
// only needs to be comfortably above that limit.
const maxUploadBytes = 32 << 20

// PipelineHandler serves the transcribe, chat, synthesize, and composite
// voice query operations.
type PipelineHandler struct {
	pipeline *service.Pipeline
	logger   *logger.Logger
}

// NewPipelineHandler creates the pipeline handler.
func NewPipelineHandler(pipeline *service.Pipeline, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		logger:   log.WithComponent("pipeline_handler"),
	}
}

// readAudioUpload extracts the uploaded audio from a multipart form.
func readAudioUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return audio, header.Filename, nil
}

// Transcribe handles POST /api/v1/transcriptions.
func (h *PipelineHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	audio, filename, err := readAudioUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: expected audio in field \"file\"")
		return
	}

	text, err := h.pipeline.ProcessAudio(r.Context(), audio, filename)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TranscriptionResponse{Text: text})
}

// SendMessage handles POST /api/v1/messages.
func (h *PipelineHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.pipeline.SendMessage(r.Context(), req.Content)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SendMessageResponse{Reply: reply})
}

// Synthesize handles POST /api/v1/speech. The response body is raw audio.
func (h *PipelineHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req model.SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text cannot be empty")
		return
	}

	audio, err := h.pipeline.SynthesizeSpeech(r.Context(), req.Text)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		h.logger.Error("failed to write audio response", zap.Error(err))
	}
}

// VoiceQuery handles POST /api/v1/voice-query: the full transcribe, chat,
// synthesize chain in one call.
func (h *PipelineHandler) VoiceQuery(w http.ResponseWriter, r *http.Request) {
	audio, filename, err := readAudioUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: expected audio in field \"file\"")
		return
	}

	result, err := h.pipeline.ProcessVoiceQuery(r.Context(), audio, filename)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
