package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog(DefaultCustomPrompts)

	p, err := c.Lookup("habit-building")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if p.Name != "Habit Builder" {
		t.Errorf("Lookup() name = %q", p.Name)
	}

	_, err = c.Lookup("missing")
	if !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Lookup(missing) error = %v, want ErrPromptNotFound", err)
	}
}

func TestCatalog_AddRemove(t *testing.T) {
	c := NewCatalog(nil)

	p := c.Add("  ", "Enter your prompt here")
	if p.ID == "" {
		t.Fatal("Add() should assign an id")
	}
	if p.Name != "Unnamed Prompt" {
		t.Errorf("Add() name = %q, want Unnamed Prompt", p.Name)
	}
	if len(c.List()) != 1 {
		t.Fatalf("List() len = %d, want 1", len(c.List()))
	}

	if err := c.Remove(p.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(c.List()) != 0 {
		t.Errorf("List() len = %d after remove, want 0", len(c.List()))
	}
	if err := c.Remove(p.ID); !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Remove() twice error = %v, want ErrPromptNotFound", err)
	}
}

func TestNewCatalog_AssignsMissingIDs(t *testing.T) {
	c := NewCatalog([]CustomPrompt{{Name: "x", Prompt: "y"}})
	if c.List()[0].ID == "" {
		t.Error("NewCatalog() should assign ids to entries without one")
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "prompts.yaml")
	content := `prompts:
  - id: reframe
    name: Reframe
    prompt: Help me reframe this thought.
  - id: gratitude
    name: Gratitude
    prompt: List three things from this note I can be grateful for.
`
	if err := os.WriteFile(valid, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	prompts, err := LoadCatalogFile(valid)
	if err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("LoadCatalogFile() len = %d, want 2", len(prompts))
	}
	if prompts[0].ID != "reframe" || prompts[1].Name != "Gratitude" {
		t.Errorf("LoadCatalogFile() = %#v", prompts)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("prompts:\n  - id: x\n    name: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalogFile(empty); err == nil {
		t.Error("LoadCatalogFile() should reject entries without prompt text")
	}

	if _, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadCatalogFile() should fail for a missing file")
	}
}

func TestLoadCatalogFile_TOML(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "prompts.toml")
	content := `[[prompts]]
id = "reframe"
name = "Reframe"
prompt = "Help me reframe this thought."

[[prompts]]
name = "No ID"
prompt = "Ask me one question."
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	prompts, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}
	if len(prompts) != 2 || prompts[0].ID != "reframe" || prompts[1].Prompt != "Ask me one question." {
		t.Errorf("LoadCatalogFile() = %#v", prompts)
	}

	// Missing ids are filled in when the catalog is built.
	if NewCatalog(prompts).List()[1].ID == "" {
		t.Error("NewCatalog() should assign an id")
	}

	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[[prompts]\nid = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalogFile(broken); err == nil {
		t.Error("LoadCatalogFile() should reject malformed TOML")
	}
}
