package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"note-assistant/internal/config"
	"note-assistant/internal/http"
	"note-assistant/internal/metrics"
	"note-assistant/internal/wiring"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API continues conversations written in markdown notes and appends the
// assistant's replies back to the notes.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Note Assistant API
//   description: |
//     Chat, summarize and run custom prompts against notes in a vault, using OpenRouter.
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(cfg.NewLogger(os.Stdout))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	container, err := wiring.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = container.Close()
	}()
	slog.Info("Vault opened", "root", container.Vault.Root())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize stored settings before serving so the first request does not race the seed.
	current, err := container.Settings.Current(ctx)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if current.APIKey == "" {
		slog.Warn("No OpenRouter API key configured; requests will be rejected until one is set")
	}

	exporter := metrics.NewExporter(nil)
	router := http.NewRouter(&http.Deps{
		Assistant: metrics.InstrumentAssistant(container.Assistant, exporter),
		Settings:  container.Settings,
		Notes:     container.Vault,
		DB:        container.DB,
		VaultRoot: container.Vault.Root(),
		Provider:  container.LLM,
		Metrics:   exporter,
	})

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	slog.Debug("Provider configuration", "base_url", cfg.BaseURL, "model", current.EffectiveModel())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	slog.Info("API server stopped")
}
