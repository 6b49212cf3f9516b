// Package client provides HTTP clients for the three upstream services:
// transcription (Whisper-compatible), chat (OpenWebUI), and speech
// synthesis (ElevenLabs).
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"github.com/cojovi/cmac-chat-module-win86/internal/model"
)

// Validation and service failures shared across clients. Validation errors
// are raised before any transport attempt and are never retried.
var (
	ErrAudioTooLarge          = errors.New("audio file too large: maximum size is 25MiB")
	ErrEmptyTranscription     = errors.New("transcription service returned an empty response")
	ErrContextLimitExceeded   = errors.New("context limit exceeded")
	ErrStreamingNotSupported  = errors.New("streaming responses are not supported")
	ErrCharacterLimitExceeded = errors.New("character limit exceeded: maximum is 5000")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrRateLimitExceeded      = errors.New("rate limit exceeded")
	ErrQuotaExceeded          = errors.New("quota exceeded")
	ErrMalformedResponse      = errors.New("response contained no choices")
	ErrTimeout                = errors.New("request timed out")
)

// InitError signals that a client could not be constructed.
type InitError struct {
	Service model.ServiceName
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s: client initialization failed: %v", e.Service, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// NotFoundError reports a missing service-specific resource: the chat model
// or the synthesis voice.
type NotFoundError struct {
	Service  model.ServiceName
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found: %s", e.Service, e.Resource)
}

// RequestError is the generic failure for non-2xx responses that match no
// known status code. Message holds the parsed error message when the body
// was structured, or the raw body text otherwise.
type RequestError struct {
	Service    model.ServiceName
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Service, e.StatusCode)
}

func serviceErr(service model.ServiceName, err error) error {
	return fmt.Errorf("%s: %w", service, err)
}

// classifyStatus maps a non-2xx status to the shared failure taxonomy.
// resource names the model or voice reported on 404.
func classifyStatus(service model.ServiceName, status int, body, resource string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return serviceErr(service, ErrAuthenticationFailed)
	case http.StatusNotFound:
		return &NotFoundError{Service: service, Resource: resource}
	case http.StatusTooManyRequests:
		return serviceErr(service, ErrRateLimitExceeded)
	}
	return &RequestError{Service: service, StatusCode: status, Message: errorMessage(body)}
}

// errorMessage extracts a human-readable message from a structured error
// body. Upstreams disagree on the envelope: OpenAI-compatible services use
// an "error" object, ElevenLabs uses "detail" which may be a plain string
// or a nested object.
func errorMessage(body string) string {
	if !gjson.Valid(body) {
		return body
	}
	for _, path := range []string{"detail.message", "detail", "error.message", "error", "message"} {
		if v := gjson.Get(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return body
}

// classifyTransportErr distinguishes client-side deadline expiry from other
// transport failures.
func classifyTransportErr(service model.ServiceName, err error) error {
	if isTimeout(err) {
		return serviceErr(service, ErrTimeout)
	}
	return fmt.Errorf("%s: request failed: %w", service, err)
}

// classifyOpenAIError maps go-openai SDK errors onto the shared taxonomy.
func classifyOpenAIError(service model.ServiceName, resource string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(service, apiErr.HTTPStatusCode, apiErr.Message, resource)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(service, reqErr.HTTPStatusCode, reqErr.Error(), resource)
	}
	return classifyTransportErr(service, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
