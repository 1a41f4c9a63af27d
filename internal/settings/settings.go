package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"note-assistant/internal/llm"
	"note-assistant/internal/prompt"
	"note-assistant/internal/transcript"
)

// ProviderOpenRouter is the only supported provider.
const ProviderOpenRouter = "openrouter"

// Settings is the user-editable configuration consumed by each chat call.
type Settings struct {
	Provider      string                `json:"mode"`
	APIKey        string                `json:"openRouterApiKey"`
	Model         string                `json:"openRouterModel"`
	AssistantName string                `json:"assistantName"`
	Language      string                `json:"language"`
	CustomPrompts []prompt.CustomPrompt `json:"customPrompts"`
}

// Defaults returns settings for a fresh installation.
func Defaults() Settings {
	return Settings{
		Provider:      ProviderOpenRouter,
		Language:      prompt.DefaultLanguage,
		AssistantName: transcript.DefaultAssistantName,
		CustomPrompts: []prompt.CustomPrompt{},
	}
}

// EffectiveModel returns the configured model or the provider default.
func (s Settings) EffectiveModel() string {
	if s.Model != "" {
		return s.Model
	}
	return llm.DefaultModel
}

// Normalize trims user input and fills blank fields with defaults.
func (s Settings) Normalize() Settings {
	s.AssistantName = strings.TrimSpace(s.AssistantName)
	if s.AssistantName == "" {
		s.AssistantName = transcript.DefaultAssistantName
	}
	s.Model = strings.TrimSpace(s.Model)
	s.APIKey = strings.TrimSpace(s.APIKey)
	if s.Language == "" {
		s.Language = prompt.DefaultLanguage
	}
	return s
}

// LegacyState is a settings blob as written by earlier multi-provider versions.
type LegacyState struct {
	Settings
	OpenAIAPIKey   string `json:"openAiApiKey,omitempty"`
	DeepseekAPIKey string `json:"deepseekApiKey,omitempty"`
	OpenAIModel    string `json:"openaiModel,omitempty"`
	DeepseekModel  string `json:"deepseekModel,omitempty"`
	OllamaModel    string `json:"ollamaModel,omitempty"`
}

// Migrate upgrades a legacy settings blob to the current shape. It reports
// whether anything changed so the caller knows to persist the result.
func Migrate(legacy LegacyState) (Settings, bool) {
	s := legacy.Settings
	changed := false

	if s.Provider != ProviderOpenRouter {
		s.Provider = ProviderOpenRouter
		changed = true
	}

	if len(s.CustomPrompts) == 0 {
		s.CustomPrompts = append([]prompt.CustomPrompt(nil), prompt.DefaultCustomPrompts...)
		changed = true
	}

	if s.APIKey == "" {
		switch {
		case legacy.OpenAIAPIKey != "":
			s.APIKey = legacy.OpenAIAPIKey
			changed = true
		case legacy.DeepseekAPIKey != "":
			s.APIKey = legacy.DeepseekAPIKey
			changed = true
		}
	}

	// Only OpenAI model names map onto OpenRouter ids.
	if s.Model == "" && legacy.OpenAIModel != "" {
		s.Model = legacy.OpenAIModel
		if !strings.Contains(s.Model, "/") {
			s.Model = "openai/" + s.Model
		}
		changed = true
	}

	if s.Language == "" {
		s.Language = prompt.DefaultLanguage
	}
	if s.AssistantName == "" {
		s.AssistantName = transcript.DefaultAssistantName
	}

	return s, changed
}

// LoadLegacyFile reads a legacy JSON settings file. Fields missing from the
// file keep their default values.
func LoadLegacyFile(path string) (LegacyState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LegacyState{}, fmt.Errorf("read legacy settings: %w", err)
	}

	state := LegacyState{Settings: Defaults()}
	state.CustomPrompts = nil
	if err := json.Unmarshal(data, &state); err != nil {
		return LegacyState{}, fmt.Errorf("parse legacy settings %s: %w", path, err)
	}
	return state, nil
}
