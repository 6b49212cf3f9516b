// Package handler implements the HTTP invocation surface.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/client"
	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Global().Error("failed to encode response", zap.Error(err))
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps pipeline errors to HTTP status codes. Validation failures
// are client errors; upstream failures surface as gateway errors.
func statusFor(err error) int {
	var initErr *client.InitError
	var missing *config.MissingCredentialError

	switch {
	case errors.Is(err, client.ErrAudioTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, client.ErrContextLimitExceeded),
		errors.Is(err, client.ErrCharacterLimitExceeded),
		errors.Is(err, client.ErrStreamingNotSupported):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrAuthenticationFailed):
		return http.StatusBadGateway
	case errors.Is(err, client.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &initErr), errors.As(err, &missing):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writePipelineError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
