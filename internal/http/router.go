package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"note-assistant/internal/handlers"
	"note-assistant/internal/metrics"
	"note-assistant/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Assistant service.AssistantService
	Settings  handlers.PromptEditor
	Notes     handlers.NoteReader
	DB        handlers.Pinger
	VaultRoot string
	// Provider is optional; when set, /api/health?provider=true contacts it.
	Provider handlers.ProviderPinger
	// Metrics is optional; when set, requests are counted and /metrics is served.
	Metrics *metrics.Exporter
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	assistantHandler := handlers.NewAssistantHandler(deps.Assistant, deps.Settings)
	promptsHandler := handlers.NewPromptsHandler(deps.Settings)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VaultRoot, deps.Provider)
	noteHandler := handlers.NewNoteHandler(deps.Notes)

	r.Route("/api", func(r chi.Router) {
		r.Route("/notes", func(r chi.Router) {
			r.Post("/chat", assistantHandler.Chat)
			r.Post("/summarize", assistantHandler.Summarize)
			r.Post("/prompt/{id}", assistantHandler.RunPrompt)
		})
		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", promptsHandler.List)
			r.Post("/", promptsHandler.Add)
			r.Delete("/{id}", promptsHandler.Remove)
		})
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/notes/*", noteHandler)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/notes/", http.StatusFound)
	})

	return r
}
