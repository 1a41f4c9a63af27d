package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"note-assistant/internal/contextutil"
	"note-assistant/internal/service"
	"note-assistant/internal/settings"
)

// SettingsSource returns the settings in effect for a request.
type SettingsSource interface {
	Current(ctx context.Context) (settings.Settings, error)
}

// AssistantHandler exposes the assistant commands over HTTP.
type AssistantHandler struct {
	assistant service.AssistantService
	settings  SettingsSource
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistant service.AssistantService, source SettingsSource) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		settings:  source,
	}
}

// NoteRequest represents the HTTP request payload for assistant commands.
type NoteRequest struct {
	// Note is the vault-relative path of the note.
	Note string `json:"note"`
	// Instruction is an optional ad-hoc prompt sent after the transcript.
	Instruction string `json:"instruction,omitempty"`
}

// NoteResponse represents the HTTP response payload for assistant commands.
type NoteResponse struct {
	Reply    string `json:"reply"`
	Appended string `json:"appended"`
	Model    string `json:"model"`
}

// Chat continues the conversation in a note.
//
// swagger:route POST /api/notes/chat notesChat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, service.ModeChat, "")
}

// Summarize appends a summary of the note.
//
// swagger:route POST /api/notes/summarize notesSummarize
func (h *AssistantHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, service.ModeSummary, "")
}

// RunPrompt continues the conversation with a saved custom prompt.
//
// swagger:route POST /api/notes/prompt/{id} notesPrompt
func (h *AssistantHandler) RunPrompt(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "prompt id is required")
		return
	}
	h.respond(w, r, service.ModeChat, id)
}

func (h *AssistantHandler) respond(w http.ResponseWriter, r *http.Request, mode service.Mode, promptID string) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	current, err := h.settings.Current(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load settings")
		return
	}

	resp, err := h.assistant.Respond(ctx, service.RespondRequest{
		NotePath:    req.Note,
		Mode:        mode,
		PromptID:    promptID,
		Instruction: req.Instruction,
		Settings:    current,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process note")
		return
	}

	writeJSON(w, http.StatusOK, NoteResponse{
		Reply:    resp.Reply,
		Appended: resp.Appended,
		Model:    resp.Model,
	})
}
