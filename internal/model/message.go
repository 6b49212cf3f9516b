package model

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message represents a single conversation message. Messages are immutable
// once appended; the conversation owns them.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// SendMessageRequest is the request to send a text message through the chat step.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResponse carries the assistant reply.
type SendMessageResponse struct {
	Reply string `json:"reply"`
}

// TranscriptionResponse carries transcribed text.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// SynthesizeRequest is the request to convert text to speech.
type SynthesizeRequest struct {
	Text string `json:"text"`
}

// VoiceQueryResponse is the composite result of the full pipeline:
// transcription, assistant reply, and synthesized audio.
type VoiceQueryResponse struct {
	Transcription string `json:"transcription"`
	Reply         string `json:"reply"`
	Audio         []byte `json:"audio"`
}
