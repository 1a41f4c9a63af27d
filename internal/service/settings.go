package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_settings_store.go -package=mocks note-assistant/internal/service SettingsStore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"note-assistant/internal/contextutil"
	"note-assistant/internal/prompt"
	"note-assistant/internal/settings"
	"note-assistant/internal/storage"
)

// SettingsStore persists user settings.
type SettingsStore interface {
	// Load returns the saved settings or storage.ErrNotFound.
	Load(ctx context.Context) (settings.Settings, error)
	// Save replaces the saved settings.
	Save(ctx context.Context, s settings.Settings) error
}

// SettingsService resolves the settings passed into each assistant call.
// Writes are serialized so concurrent edits never drop each other.
type SettingsService struct {
	mu        sync.Mutex
	store     SettingsStore
	overrides settings.Settings
	seed      []prompt.CustomPrompt
}

// NewSettingsService creates a SettingsService. Non-empty fields of overrides
// (typically from the environment) win over stored values. seed replaces the
// built-in custom prompts on first start when non-empty.
func NewSettingsService(store SettingsStore, overrides settings.Settings, seed []prompt.CustomPrompt) *SettingsService {
	return &SettingsService{store: store, overrides: overrides, seed: seed}
}

// Current returns the effective settings. On first start it saves defaults.
func (s *SettingsService) Current(ctx context.Context) (settings.Settings, error) {
	stored, err := s.Stored(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	return applyOverrides(stored, s.overrides).Normalize(), nil
}

// Stored returns the persisted settings without environment overrides,
// initializing and migrating them when needed.
func (s *SettingsService) Stored(ctx context.Context) (settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load reads the stored settings. Callers hold s.mu.
func (s *SettingsService) load(ctx context.Context) (settings.Settings, error) {
	logger := contextutil.LoggerFromContext(ctx)

	stored, err := s.store.Load(ctx)
	fresh := errors.Is(err, storage.ErrNotFound)
	if fresh {
		stored = settings.Defaults()
		if len(s.seed) > 0 {
			stored.CustomPrompts = prompt.NewCatalog(s.seed).List()
		}
	} else if err != nil {
		return settings.Settings{}, WrapError(err, "failed to load settings")
	}

	migrated, changed := settings.Migrate(settings.LegacyState{Settings: stored})
	if changed || fresh {
		if err := s.store.Save(ctx, migrated); err != nil {
			return settings.Settings{}, WrapError(err, "failed to save settings")
		}
		logger.InfoContext(ctx, "settings initialized", "custom_prompts", len(migrated.CustomPrompts))
	}
	return migrated, nil
}

// Save persists settings after normalizing them.
func (s *SettingsService) Save(ctx context.Context, next settings.Settings) error {
	if next.Provider != settings.ProviderOpenRouter {
		return &ValidationError{Field: "provider", Message: "only openrouter is supported"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return WrapError(s.store.Save(ctx, next.Normalize()), "failed to save settings")
}

// ImportLegacy migrates a legacy settings blob and persists the result.
func (s *SettingsService) ImportLegacy(ctx context.Context, legacy settings.LegacyState) (settings.Settings, error) {
	migrated, _ := settings.Migrate(legacy)
	migrated = migrated.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, migrated); err != nil {
		return settings.Settings{}, WrapError(err, "failed to save settings")
	}
	return migrated, nil
}

// AddPrompt appends a custom prompt and persists it.
func (s *SettingsService) AddPrompt(ctx context.Context, name, text string) (prompt.CustomPrompt, error) {
	if text == "" {
		return prompt.CustomPrompt{}, &ValidationError{Field: "prompt", Message: "cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load(ctx)
	if err != nil {
		return prompt.CustomPrompt{}, err
	}

	catalog := prompt.NewCatalog(stored.CustomPrompts)
	added := catalog.Add(name, text)
	stored.CustomPrompts = catalog.List()

	if err := s.store.Save(ctx, stored); err != nil {
		return prompt.CustomPrompt{}, WrapError(err, "failed to save settings")
	}
	return added, nil
}

// RemovePrompt deletes a custom prompt by id.
func (s *SettingsService) RemovePrompt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load(ctx)
	if err != nil {
		return err
	}

	catalog := prompt.NewCatalog(stored.CustomPrompts)
	if err := catalog.Remove(id); err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	stored.CustomPrompts = catalog.List()

	return WrapError(s.store.Save(ctx, stored), "failed to save settings")
}

func applyOverrides(base, over settings.Settings) settings.Settings {
	if over.Provider != "" {
		base.Provider = over.Provider
	}
	if over.APIKey != "" {
		base.APIKey = over.APIKey
	}
	if over.Model != "" {
		base.Model = over.Model
	}
	if over.AssistantName != "" {
		base.AssistantName = over.AssistantName
	}
	if over.Language != "" {
		base.Language = over.Language
	}
	return base
}
