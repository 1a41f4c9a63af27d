package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"note-assistant/internal/contextutil"
	"note-assistant/internal/prompt"
)

// PromptEditor reads and edits the saved custom prompts.
type PromptEditor interface {
	SettingsSource
	AddPrompt(ctx context.Context, name, text string) (prompt.CustomPrompt, error)
	RemovePrompt(ctx context.Context, id string) error
}

// PromptsHandler manages custom prompts.
type PromptsHandler struct {
	editor PromptEditor
}

// NewPromptsHandler creates a new PromptsHandler.
func NewPromptsHandler(editor PromptEditor) *PromptsHandler {
	return &PromptsHandler{editor: editor}
}

// PromptsResponse lists custom prompts in display order.
type PromptsResponse struct {
	Prompts []prompt.CustomPrompt `json:"prompts"`
}

// AddPromptRequest is the payload for creating a custom prompt.
type AddPromptRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// List returns all custom prompts.
func (h *PromptsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := h.editor.Current(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load prompts")
		return
	}

	prompts := current.CustomPrompts
	if prompts == nil {
		prompts = []prompt.CustomPrompt{}
	}
	writeJSON(w, http.StatusOK, PromptsResponse{Prompts: prompts})
}

// Add creates a custom prompt.
func (h *PromptsHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AddPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	added, err := h.editor.AddPrompt(ctx, req.Name, req.Prompt)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to add prompt")
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// Remove deletes a custom prompt.
func (h *PromptsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.editor.RemovePrompt(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "Failed to remove prompt")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
