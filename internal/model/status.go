package model

// Phase is the pipeline's current activity.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseRecording    Phase = "recording"
	PhaseTranscribing Phase = "transcribing"
	PhaseThinking     Phase = "thinking"
	PhaseSpeaking     Phase = "speaking"
	PhaseError        Phase = "error"
)

// Status is the single current phase of the pipeline, surfaced to the UI.
// Message is set only when Phase is PhaseError.
type Status struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// Idle returns the idle status.
func Idle() Status { return Status{Phase: PhaseIdle} }

// ErrorStatus returns an error status carrying a human-readable message.
func ErrorStatus(message string) Status {
	return Status{Phase: PhaseError, Message: message}
}

// ServiceName identifies one of the three upstream services.
type ServiceName string

const (
	ServiceWhisper    ServiceName = "whisper"
	ServiceOpenWebUI  ServiceName = "openwebui"
	ServiceElevenLabs ServiceName = "elevenlabs"
)

// Services lists all upstream services in probe order.
var Services = []ServiceName{ServiceWhisper, ServiceOpenWebUI, ServiceElevenLabs}

// ServicePhase is a single service's reachability classification.
type ServicePhase string

const (
	ServiceConnected    ServicePhase = "connected"
	ServiceChecking     ServicePhase = "checking"
	ServiceDisconnected ServicePhase = "disconnected"
	ServiceUnknown      ServicePhase = "unknown"
)

// ServiceState is the reachability state of one upstream service.
// Reason is set only when Phase is ServiceDisconnected.
type ServiceState struct {
	Phase  ServicePhase `json:"phase"`
	Reason string       `json:"reason,omitempty"`
}

// Connected returns the connected service state.
func Connected() ServiceState { return ServiceState{Phase: ServiceConnected} }

// Disconnected returns a disconnected service state with a reason.
func Disconnected(reason string) ServiceState {
	return ServiceState{Phase: ServiceDisconnected, Reason: reason}
}

// Connectivity holds the per-service states plus a shared last-checked
// timestamp. The three entries are independent; no invariant links them.
type Connectivity struct {
	Whisper     ServiceState `json:"whisper"`
	OpenWebUI   ServiceState `json:"openwebui"`
	ElevenLabs  ServiceState `json:"elevenlabs"`
	LastChecked int64        `json:"last_checked"`
}
