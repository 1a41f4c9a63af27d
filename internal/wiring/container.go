package wiring

import (
	"database/sql"
	"fmt"
	"log/slog"

	"note-assistant/internal/config"
	"note-assistant/internal/llm"
	"note-assistant/internal/prompt"
	"note-assistant/internal/service"
	"note-assistant/internal/storage"
	"note-assistant/internal/vault"
)

// Container holds the components shared by the server and the CLI.
type Container struct {
	DB        *sql.DB
	Vault     *vault.Manager
	LLM       *llm.Client
	Settings  *service.SettingsService
	Assistant service.AssistantService
}

// New opens storage and builds every service from cfg. Callers must Close it.
func New(cfg *config.Config) (*Container, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Database initialized", "path", cfg.DBPath)

	var seed []prompt.CustomPrompt
	if cfg.PromptsFile != "" {
		seed, err = prompt.LoadCatalogFile(cfg.PromptsFile)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Debug("Custom prompt catalog loaded", "path", cfg.PromptsFile, "prompts", len(seed))
	}

	vaultManager, err := vault.NewManager(cfg.VaultPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open vault: %w", err)
	}

	// The per-call key from settings wins; the client key only serves Ping.
	llmClient := llm.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model).WithTimeout(cfg.RequestTimeout)

	return &Container{
		DB:        db,
		Vault:     vaultManager,
		LLM:       llmClient,
		Settings:  service.NewSettingsService(storage.NewSettingsRepo(db), cfg.Overrides(), seed),
		Assistant: service.NewAssistantService(llmClient, vaultManager, ""),
	}, nil
}

// Close releases the database.
func (c *Container) Close() error {
	return c.DB.Close()
}
