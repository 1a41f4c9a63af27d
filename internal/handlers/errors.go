package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"note-assistant/internal/contextutil"
	"note-assistant/internal/llm"
	"note-assistant/internal/service"
	"note-assistant/internal/vault"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	// Category is set for failures reported by the model provider.
	Category string `json:"category,omitempty"`
}

// categoryStatus maps provider failures onto the status returned to API clients.
var categoryStatus = map[llm.Category]int{
	llm.InvalidCredential:  http.StatusUnauthorized,
	llm.AccessForbidden:    http.StatusForbidden,
	llm.ModelNotFound:      http.StatusNotFound,
	llm.RateLimited:        http.StatusTooManyRequests,
	llm.ServiceUnavailable: http.StatusServiceUnavailable,
	llm.MalformedResponse:  http.StatusBadGateway,
	llm.Unknown:            http.StatusBadGateway,
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		logger.WarnContext(ctx, "provider error", "category", llmErr.Category.String(), "error", err)
		status, ok := categoryStatus[llmErr.Category]
		if !ok {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, ErrorResponse{Error: llmErr.Message, Category: llmErr.Category.String()})
		return
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation error", "field", validationErr.Field, "error", err)
		writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, vault.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, vault.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrExternalService):
		logger.ErrorContext(ctx, "external service error", "error", err)
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		logger.ErrorContext(ctx, "service error", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
