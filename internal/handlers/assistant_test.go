package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"note-assistant/internal/llm"
	"note-assistant/internal/prompt"
	"note-assistant/internal/service"
	"note-assistant/internal/service/mocks"
	"note-assistant/internal/settings"
	"note-assistant/internal/vault"
)

// fakeSettings serves fixed settings and records prompt edits.
type fakeSettings struct {
	current settings.Settings
	err     error

	added     []prompt.CustomPrompt
	removed   []string
	removeErr error
	addErr    error
}

func (f *fakeSettings) Current(context.Context) (settings.Settings, error) {
	return f.current, f.err
}

func (f *fakeSettings) AddPrompt(_ context.Context, name, text string) (prompt.CustomPrompt, error) {
	if f.addErr != nil {
		return prompt.CustomPrompt{}, f.addErr
	}
	p := prompt.CustomPrompt{ID: fmt.Sprintf("id-%d", len(f.added)+1), Name: name, Prompt: text}
	f.added = append(f.added, p)
	return p, nil
}

func (f *fakeSettings) RemovePrompt(_ context.Context, id string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, id)
	return nil
}

func testSettings() settings.Settings {
	s := settings.Defaults()
	s.APIKey = "sk-or-test"
	s.CustomPrompts = prompt.DefaultCustomPrompts
	return s
}

func newAssistantRouter(h *AssistantHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/notes/chat", h.Chat)
	r.Post("/api/notes/summarize", h.Summarize)
	r.Post("/api/notes/prompt/{id}", h.RunPrompt)
	return r
}

func postJSON(t *testing.T, handler http.Handler, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestNewAssistantHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAssistant := mocks.NewMockAssistantService(ctrl)
	source := &fakeSettings{}
	handler := NewAssistantHandler(mockAssistant, source)

	if handler == nil {
		t.Fatal("NewAssistantHandler() returned nil")
	}
	if handler.assistant != mockAssistant {
		t.Error("NewAssistantHandler() assistant not set correctly")
	}
}

func TestAssistantHandler_Routes(t *testing.T) {
	current := testSettings()

	tests := []struct {
		name    string
		target  string
		body    NoteRequest
		wantReq service.RespondRequest
	}{
		{
			name:   "chat",
			target: "/api/notes/chat",
			body:   NoteRequest{Note: "journal/today.md"},
			wantReq: service.RespondRequest{
				NotePath: "journal/today.md",
				Mode:     service.ModeChat,
				Settings: current,
			},
		},
		{
			name:   "chat with instruction",
			target: "/api/notes/chat",
			body:   NoteRequest{Note: "journal/today.md", Instruction: "Be brief."},
			wantReq: service.RespondRequest{
				NotePath:    "journal/today.md",
				Mode:        service.ModeChat,
				Instruction: "Be brief.",
				Settings:    current,
			},
		},
		{
			name:   "summarize",
			target: "/api/notes/summarize",
			body:   NoteRequest{Note: "journal/today.md"},
			wantReq: service.RespondRequest{
				NotePath: "journal/today.md",
				Mode:     service.ModeSummary,
				Settings: current,
			},
		},
		{
			name:   "custom prompt",
			target: "/api/notes/prompt/habit-building",
			body:   NoteRequest{Note: "journal/today.md"},
			wantReq: service.RespondRequest{
				NotePath: "journal/today.md",
				Mode:     service.ModeChat,
				PromptID: "habit-building",
				Settings: current,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockAssistant := mocks.NewMockAssistantService(ctrl)
			mockAssistant.EXPECT().
				Respond(gomock.Any(), tt.wantReq).
				Return(service.RespondResponse{Reply: "Noted.", Appended: "\n\nNoted.", Model: llm.DefaultModel}, nil)

			router := newAssistantRouter(NewAssistantHandler(mockAssistant, &fakeSettings{current: current}))
			w := postJSON(t, router, tt.target, tt.body)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp NoteResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Reply != "Noted." || resp.Model != llm.DefaultModel {
				t.Errorf("response = %#v", resp)
			}
		})
	}
}

func TestAssistantHandler_Errors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantCategory string
	}{
		{
			name:       "validation error",
			err:        &service.ValidationError{Field: "api_key", Message: "missing OpenRouter API key, update it in settings"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown custom prompt",
			err:        fmt.Errorf("%w: %w", service.ErrNotFound, prompt.ErrPromptNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "note not found",
			err:        fmt.Errorf("failed to read note: %w", vault.ErrNoteNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid note path",
			err:        fmt.Errorf("failed to read note: %w", vault.ErrInvalidPath),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:         "invalid credential",
			err:          fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.InvalidCredential, StatusCode: 401, Message: "Invalid API key."}),
			wantStatus:   http.StatusUnauthorized,
			wantCategory: "invalid_credential",
		},
		{
			name:         "access forbidden",
			err:          fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.AccessForbidden, StatusCode: 403, Message: "Forbidden."}),
			wantStatus:   http.StatusForbidden,
			wantCategory: "access_forbidden",
		},
		{
			name:         "model not found",
			err:          fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.ModelNotFound, StatusCode: 404, Message: "Model 'x' not found."}),
			wantStatus:   http.StatusNotFound,
			wantCategory: "model_not_found",
		},
		{
			name:         "rate limited",
			err:          fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.RateLimited, StatusCode: 429, Message: "Rate limit exceeded."}),
			wantStatus:   http.StatusTooManyRequests,
			wantCategory: "rate_limited",
		},
		{
			name:         "service unavailable",
			err:          fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.ServiceUnavailable, StatusCode: 503, Message: "Try again later."}),
			wantStatus:   http.StatusServiceUnavailable,
			wantCategory: "service_unavailable",
		},
		{
			name:         "malformed response",
			err:          fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.MalformedResponse, Message: "no response from API"}),
			wantStatus:   http.StatusBadGateway,
			wantCategory: "malformed_response",
		},
		{
			name:         "unknown provider failure",
			err:          fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.Unknown, Message: "dial tcp: connection refused"}),
			wantStatus:   http.StatusBadGateway,
			wantCategory: "unknown",
		},
		{
			name:       "unexpected error",
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockAssistant := mocks.NewMockAssistantService(ctrl)
			mockAssistant.EXPECT().
				Respond(gomock.Any(), gomock.Any()).
				Return(service.RespondResponse{}, tt.err)

			router := newAssistantRouter(NewAssistantHandler(mockAssistant, &fakeSettings{current: testSettings()}))
			w := postJSON(t, router, "/api/notes/chat", NoteRequest{Note: "today.md"})

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message should not be empty")
			}
			if resp.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", resp.Category, tt.wantCategory)
			}
		})
	}
}

func TestAssistantHandler_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAssistant := mocks.NewMockAssistantService(ctrl)
	// No calls expected

	router := newAssistantRouter(NewAssistantHandler(mockAssistant, &fakeSettings{current: testSettings()}))
	w := postJSON(t, router, "/api/notes/chat", "invalid json")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAssistantHandler_SettingsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAssistant := mocks.NewMockAssistantService(ctrl)
	// No calls expected

	source := &fakeSettings{err: errors.New("database is locked")}
	router := newAssistantRouter(NewAssistantHandler(mockAssistant, source))
	w := postJSON(t, router, "/api/notes/summarize", NoteRequest{Note: "today.md"})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
