package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/middleware"
	"github.com/cojovi/cmac-chat-module-win86/internal/model"
	"github.com/cojovi/cmac-chat-module-win86/internal/service"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

// SettingsHandler serves configuration, credential, connectivity, and
// conversation management operations.
type SettingsHandler struct {
	pipeline *service.Pipeline
	logger   *logger.Logger
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(pipeline *service.Pipeline, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		pipeline: pipeline,
		logger:   log.WithComponent("settings_handler"),
	}
}

// GetConfig handles GET /api/v1/config.
func (h *SettingsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pipeline.Config())
}

// PutConfig handles PUT /api/v1/config.
func (h *SettingsHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.pipeline.SaveConfig(cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

type putCredentialRequest struct {
	APIKey string `json:"api_key"`
}

// PutCredential handles PUT /api/v1/credentials/{service}.
func (h *SettingsHandler) PutCredential(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "service")
	if err := middleware.ValidateServiceName(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req putCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateAPIKey(req.APIKey); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pipeline.SetAPIKey(model.ServiceName(name), req.APIKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckConnectivity handles POST /api/v1/connectivity/check.
func (h *SettingsHandler) CheckConnectivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pipeline.CheckConnectivity(r.Context()))
}

// GetState handles GET /api/v1/state.
func (h *SettingsHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pipeline.StateReport())
}

// GetConversation handles GET /api/v1/conversation.
func (h *SettingsHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pipeline.Conversation())
}

// ClearConversation handles DELETE /api/v1/conversation.
func (h *SettingsHandler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	h.pipeline.ClearConversation()
	w.WriteHeader(http.StatusNoContent)
}

// GetVoices handles GET /api/v1/voices.
func (h *SettingsHandler) GetVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.pipeline.ListVoices(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voices)
}

// PutVoiceSettings handles PUT /api/v1/voice-settings.
func (h *SettingsHandler) PutVoiceSettings(w http.ResponseWriter, r *http.Request) {
	var settings config.VoiceSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.pipeline.UpdateVoiceSettings(settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
