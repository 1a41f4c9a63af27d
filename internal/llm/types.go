package llm

import "note-assistant/internal/transcript"

// Message represents a single message in a chat conversation.
type Message = transcript.Message

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// APIKey overrides the client's credential for this request when set.
	APIKey string
}
