package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"note-assistant/internal/prompt"
	"note-assistant/internal/settings"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// SettingsRepo persists the single settings row and the custom prompt list.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Load returns the saved settings with custom prompts in display order.
// Returns ErrNotFound before the first Save.
func (r *SettingsRepo) Load(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings
	err := r.db.QueryRowContext(ctx,
		"SELECT provider, api_key, model, assistant_name, language FROM settings WHERE id = 1",
	).Scan(&s.Provider, &s.APIKey, &s.Model, &s.AssistantName, &s.Language)

	if err == sql.ErrNoRows {
		return settings.Settings{}, ErrNotFound
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}

	prompts, err := listPrompts(ctx, r.db)
	if err != nil {
		return settings.Settings{}, err
	}
	s.CustomPrompts = prompts

	return s, nil
}

// Save upserts the settings row and rewrites the custom prompt list in one transaction.
func (r *SettingsRepo) Save(ctx context.Context, s settings.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settings (id, provider, api_key, model, assistant_name, language, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET
		 provider = excluded.provider, api_key = excluded.api_key, model = excluded.model,
		 assistant_name = excluded.assistant_name, language = excluded.language,
		 updated_at = CURRENT_TIMESTAMP`,
		s.Provider, s.APIKey, s.Model, s.AssistantName, s.Language,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	if err := replacePrompts(ctx, tx, s.CustomPrompts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listPrompts(ctx context.Context, q queryer) ([]prompt.CustomPrompt, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, prompt FROM custom_prompts ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom prompts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	prompts := []prompt.CustomPrompt{}
	for rows.Next() {
		var p prompt.CustomPrompt
		if err := rows.Scan(&p.ID, &p.Name, &p.Prompt); err != nil {
			return nil, fmt.Errorf("failed to scan custom prompt: %w", err)
		}
		prompts = append(prompts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return prompts, nil
}

func replacePrompts(ctx context.Context, tx *sql.Tx, prompts []prompt.CustomPrompt) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM custom_prompts"); err != nil {
		return fmt.Errorf("failed to clear custom prompts: %w", err)
	}

	for i, p := range prompts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO custom_prompts (id, name, prompt, position) VALUES (?, ?, ?, ?)",
			p.ID, p.Name, p.Prompt, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert custom prompt %s: %w", p.ID, err)
		}
	}
	return nil
}
