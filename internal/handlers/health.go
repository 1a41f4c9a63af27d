package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"note-assistant/internal/contextutil"
)

// Pinger is implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ProviderPinger is implemented by *llm.Client.
type ProviderPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 Pinger
	vaultRoot          string
	provider           ProviderPinger
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. provider may be nil.
func NewHealthHandler(db Pinger, vaultRoot string, provider ProviderPinger) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		vaultRoot:          vaultRoot,
		provider:           provider,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// The provider is only contacted when the request sets ?provider=true, since
// a round trip to OpenRouter adds noticeable latency.
//
// swagger:route GET /api/health healthCheck
//
// responses:
//
//	'200': HealthResponse
//	'503': HealthResponse
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	critical := false

	if h.checkDatabase(checkCtx, logger) {
		checks["database"] = "ok"
	} else {
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
		critical = true
	}

	if h.checkVault(checkCtx, logger) {
		checks["vault"] = "ok"
	} else {
		checks["vault"] = "error"
		issues = append(issues, "vault_unavailable")
		critical = true
	}

	if h.provider != nil && r.URL.Query().Get("provider") == "true" {
		if err := h.provider.Ping(checkCtx); err != nil {
			logger.WarnContext(ctx, "provider health check failed", "error", err)
			checks["provider"] = "error"
			issues = append(issues, "provider_unavailable")
		} else {
			checks["provider"] = "ok"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case critical:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if len(issues) > 0 {
		response.Issues = issues
	}

	writeJSON(w, httpStatus, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context, logger *slog.Logger) bool {
	if h.db == nil {
		return false
	}
	if err := h.db.PingContext(ctx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		return false
	}
	return true
}

func (h *HealthHandler) checkVault(ctx context.Context, logger *slog.Logger) bool {
	info, err := os.Stat(h.vaultRoot)
	if err != nil {
		logger.WarnContext(ctx, "vault health check failed", "root", h.vaultRoot, "error", err)
		return false
	}
	if !info.IsDir() {
		logger.WarnContext(ctx, "vault root is not a directory", "root", h.vaultRoot)
		return false
	}
	return true
}
