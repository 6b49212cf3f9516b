package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/cojovi/cmac-chat-module-win86/internal/model"
)

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateServiceName validates an upstream service name.
func ValidateServiceName(name string) error {
	for _, s := range model.Services {
		if string(s) == name {
			return nil
		}
	}
	return errors.New("unknown service name")
}

// ValidateAPIKey validates a credential before storing it.
func ValidateAPIKey(key string) error {
	if len(key) == 0 {
		return errors.New("API key cannot be empty")
	}
	if len(key) > 512 {
		return errors.New("API key exceeds maximum length")
	}
	return nil
}
