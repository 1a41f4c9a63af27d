package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks note-assistant/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks note-assistant/internal/service DocumentStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_assistant_service.go -package=mocks -mock_names=AssistantService=MockAssistantService note-assistant/internal/service AssistantService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"note-assistant/internal/contextutil"
	"note-assistant/internal/llm"
	"note-assistant/internal/prompt"
	"note-assistant/internal/settings"
	"note-assistant/internal/transcript"
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Chat sends the message list and returns the reply text.
	Chat(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// DocumentStore reads notes and appends replies to them.
type DocumentStore interface {
	// Read returns the full text of a note.
	Read(ctx context.Context, relPath string) (string, error)
	// Append writes text to the end of a note.
	Append(ctx context.Context, relPath, text string) error
}

// Mode selects how a reply is produced and written back.
type Mode string

const (
	// ModeChat continues the conversation and tags the reply with the assistant marker.
	ModeChat Mode = "chat"
	// ModeSummary asks for a summary and appends it without a marker.
	ModeSummary Mode = "summary"
)

// RespondRequest represents one assistant invocation against a note.
type RespondRequest struct {
	// NotePath is the vault-relative path of the note.
	NotePath string
	Mode     Mode
	// PromptID names a custom prompt from Settings.CustomPrompts.
	PromptID string
	// Instruction is an ad-hoc prompt; it takes precedence over PromptID.
	Instruction string
	Settings    settings.Settings
}

// RespondResponse describes what was written back to the note.
type RespondResponse struct {
	Reply    string
	Appended string
	Model    string
}

// AssistantService turns notes into chat requests and writes replies back.
type AssistantService interface {
	// Respond runs one request against the note and appends the reply.
	Respond(ctx context.Context, req RespondRequest) (RespondResponse, error)
}

// assistantService implements AssistantService.
type assistantService struct {
	llmClient    LLMClient
	documents    DocumentStore
	systemPrompt string
}

// NewAssistantService creates a new AssistantService. An empty systemPrompt
// selects prompt.DefaultSystemPrompt.
func NewAssistantService(llmClient LLMClient, documents DocumentStore, systemPrompt string) AssistantService {
	if systemPrompt == "" {
		systemPrompt = prompt.DefaultSystemPrompt
	}
	return &assistantService{
		llmClient:    llmClient,
		documents:    documents,
		systemPrompt: systemPrompt,
	}
}

// Respond validates the request, sends the note to the model and appends the
// reply. The note is only written after a reply has been received.
func (s *assistantService) Respond(ctx context.Context, req RespondRequest) (RespondResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	cfg := req.Settings.Normalize()

	if err := validateRequest(req, cfg); err != nil {
		logger.WarnContext(ctx, "rejected assistant request", "error", err)
		return RespondResponse{}, err
	}

	instruction, err := resolveInstruction(req, cfg)
	if err != nil {
		logger.WarnContext(ctx, "unknown custom prompt", "prompt_id", req.PromptID)
		return RespondResponse{}, err
	}

	doc, err := s.documents.Read(ctx, req.NotePath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read note", "note", req.NotePath, "error", err)
		return RespondResponse{}, WrapError(err, "failed to read note")
	}
	if strings.TrimSpace(doc) == "" {
		return RespondResponse{}, &ValidationError{
			Field:   "note",
			Message: "first, write something in a note",
		}
	}

	model := cfg.EffectiveModel()
	summarize := req.Mode == ModeSummary
	messages := prompt.Build(prompt.BuildInput{
		Transcript:   transcript.Decode(doc, cfg.AssistantName),
		SystemPrompt: s.systemPrompt,
		Language:     cfg.Language,
		Summarize:    summarize,
		Instruction:  instruction,
	})

	logger.DebugContext(ctx, "sending chat request",
		"note", req.NotePath, "mode", req.Mode, "model", model, "messages", len(messages))

	reply, err := s.llmClient.Chat(ctx, messages, llm.ChatParams{
		Model:  model,
		APIKey: cfg.APIKey,
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = llm.ErrNoChoices
	}
	if err != nil {
		normalized := llm.Normalize(err, model)
		logger.ErrorContext(ctx, "chat request failed",
			"category", normalized.Category.String(), "status", normalized.StatusCode, "error", err)
		return RespondResponse{}, fmt.Errorf("%w: %w", ErrExternalService, normalized)
	}

	var appended string
	if summarize {
		appended = transcript.Padding + reply
	} else {
		appended = transcript.Encode(reply, cfg.AssistantName)
	}

	if err := s.documents.Append(ctx, req.NotePath, appended); err != nil {
		logger.ErrorContext(ctx, "failed to append reply", "note", req.NotePath, "error", err)
		return RespondResponse{}, WrapError(err, "failed to append reply")
	}

	logger.InfoContext(ctx, "assistant reply appended",
		"note", req.NotePath, "mode", req.Mode, "model", model, "reply_length", len(reply))
	return RespondResponse{
		Reply:    reply,
		Appended: appended,
		Model:    model,
	}, nil
}

func validateRequest(req RespondRequest, cfg settings.Settings) error {
	if strings.TrimSpace(req.NotePath) == "" {
		return &ValidationError{Field: "note", Message: "no active note"}
	}
	if req.Mode != ModeChat && req.Mode != ModeSummary {
		return &ValidationError{Field: "mode", Message: fmt.Sprintf("unsupported mode '%s'", req.Mode)}
	}
	if cfg.Provider != settings.ProviderOpenRouter {
		return &ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("invalid provider '%s', select a valid provider in settings", cfg.Provider),
		}
	}
	if cfg.APIKey == "" {
		return &ValidationError{Field: "api_key", Message: "missing OpenRouter API key, update it in settings"}
	}
	return nil
}

func resolveInstruction(req RespondRequest, cfg settings.Settings) (string, error) {
	if req.Instruction != "" {
		return req.Instruction, nil
	}
	if req.PromptID == "" {
		return "", nil
	}

	p, err := prompt.NewCatalog(cfg.CustomPrompts).Lookup(req.PromptID)
	if errors.Is(err, prompt.ErrPromptNotFound) {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if err != nil {
		return "", err
	}
	return p.Prompt, nil
}
