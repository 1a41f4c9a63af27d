package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"note-assistant/internal/llm"
	"note-assistant/internal/service"
	"note-assistant/internal/service/mocks"
)

func scrape(t *testing.T, e *Exporter) string {
	t.Helper()
	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "success"},
		{"rate limited", fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.RateLimited}), "rate_limited"},
		{"validation", &service.ValidationError{Field: "note", Message: "no active note"}, "invalid_input"},
		{"not found", fmt.Errorf("%w: missing", service.ErrNotFound), "not_found"},
		{"other", errors.New("disk full"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(tt.err); got != tt.want {
				t.Errorf("Outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstrumentAssistant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	exporter := NewExporter(nil)
	mockAssistant := mocks.NewMockAssistantService(ctrl)
	gomock.InOrder(
		mockAssistant.EXPECT().Respond(gomock.Any(), gomock.Any()).
			Return(service.RespondResponse{Reply: "ok"}, nil),
		mockAssistant.EXPECT().Respond(gomock.Any(), gomock.Any()).
			Return(service.RespondResponse{}, fmt.Errorf("%w: %w", service.ErrExternalService, &llm.Error{Category: llm.InvalidCredential})),
	)

	assistant := InstrumentAssistant(mockAssistant, exporter)

	resp, err := assistant.Respond(context.Background(), service.RespondRequest{Mode: service.ModeChat})
	if err != nil || resp.Reply != "ok" {
		t.Fatalf("Respond() = %#v, %v", resp, err)
	}
	if _, err := assistant.Respond(context.Background(), service.RespondRequest{Mode: service.ModeSummary}); err == nil {
		t.Fatal("Respond() should pass the error through")
	}

	out := scrape(t, exporter)
	for _, want := range []string{
		`note_assistant_assistant_replies_total{mode="chat",outcome="success"} 1`,
		`note_assistant_assistant_replies_total{mode="summary",outcome="invalid_credential"} 1`,
		`note_assistant_assistant_reply_duration_seconds_count{mode="chat"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestExporter_Middleware(t *testing.T) {
	exporter := NewExporter(nil)

	r := chi.NewRouter()
	r.Use(exporter.Middleware)
	r.Delete("/api/prompts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/prompts/"+id, nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	out := scrape(t, exporter)
	for _, want := range []string{
		`note_assistant_http_requests_total{method="DELETE",route="/api/prompts/{id}",status="204"} 2`,
		`note_assistant_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q\n%s", want, out)
		}
	}
}
