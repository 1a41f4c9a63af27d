package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"note-assistant/internal/settings"
)

// Config holds all configuration for the application.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	Provider       string
	AssistantName  string
	Language       string
	VaultPath      string
	DBPath         string
	PromptsFile    string
	APIPort        string
	LogLevel       slog.Level
	LogFormat      string
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIKey:        getEnv("OPENROUTER_API_KEY", ""),
		Model:         getEnv("OPENROUTER_MODEL", ""),
		BaseURL:       getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Provider:      getEnv("AI_PROVIDER", ""),
		AssistantName: getEnv("ASSISTANT_NAME", ""),
		Language:      getEnv("RESPONSE_LANGUAGE", ""),
		VaultPath:     getEnv("VAULT_PATH", ""),
		DBPath:        getEnv("DB_PATH", "./data/note-assistant.db"),
		PromptsFile:   getEnv("PROMPTS_FILE", ""),
		APIPort:       getEnv("API_PORT", "9000"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	timeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be a valid duration: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be greater than 0")
	}
	cfg.RequestTimeout = timeout

	if cfg.VaultPath == "" {
		return nil, fmt.Errorf("VAULT_PATH is required")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Overrides returns the settings fields set through the environment. Empty
// fields leave the stored value in place.
func (c *Config) Overrides() settings.Settings {
	return settings.Settings{
		Provider:      c.Provider,
		APIKey:        c.APIKey,
		Model:         c.Model,
		AssistantName: c.AssistantName,
		Language:      c.Language,
	}
}

// NewLogger builds a logger writing to w with the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
