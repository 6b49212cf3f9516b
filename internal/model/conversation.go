// Package model defines data structures for the voice assistant core.
package model

// DefaultMaxMessages is the conversation history cap.
const DefaultMaxMessages = 20

// Conversation represents the retained chat history used as LLM context.
// The message slice never exceeds MaxMessages; the oldest messages are
// dropped first.
type Conversation struct {
	ID          string    `json:"id"`
	Messages    []Message `json:"messages"`
	MaxMessages int       `json:"max_messages"`
	StartedAt   int64     `json:"started_at"`
	UpdatedAt   int64     `json:"updated_at"`
}

// StateResponse is the summary the GUI polls for.
type StateResponse struct {
	Status       Status       `json:"status"`
	MessageCount int          `json:"message_count"`
	Connectivity Connectivity `json:"connectivity"`
}
