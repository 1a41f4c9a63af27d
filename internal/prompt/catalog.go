package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrPromptNotFound is returned when a custom prompt id is not in the catalog.
var ErrPromptNotFound = errors.New("custom prompt not found")

// CustomPrompt is a named ad-hoc instruction the user can send with a note.
type CustomPrompt struct {
	ID     string `json:"id" yaml:"id" toml:"id"`
	Name   string `json:"name" yaml:"name" toml:"name"`
	Prompt string `json:"prompt" yaml:"prompt" toml:"prompt"`
}

// DefaultCustomPrompts seeds the catalog on first start.
var DefaultCustomPrompts = []CustomPrompt{
	{
		ID:     "exposure-ladder",
		Name:   "Exposure Ladder",
		Prompt: "Help me create an exposure hierarchy for this fear/anxiety. List situations from least to most anxiety-provoking (0-10 scale), with specific, actionable steps I can practice.",
	},
	{
		ID:     "behavioral-activation",
		Name:   "Activity Plan",
		Prompt: "Help me create a behavioral activation plan. Suggest specific activities that align with my values and could improve my mood. Include small, achievable steps I can take today.",
	},
	{
		ID:     "habit-building",
		Name:   "Habit Builder",
		Prompt: "Help me build this new habit using behavioral principles. Suggest: 1) A clear trigger/cue, 2) The specific behavior, 3) An immediate reward, 4) How to track progress.",
	},
	{
		ID:     "avoidance-check",
		Name:   "Avoidance Check",
		Prompt: "Help me identify what I might be avoiding in this situation. What behaviors am I using to escape discomfort? What would facing this look like in small, manageable steps?",
	},
}

// Catalog is an ordered set of custom prompts keyed by id.
type Catalog struct {
	prompts []CustomPrompt
}

// NewCatalog copies prompts into a new catalog. Entries without an id get one.
func NewCatalog(prompts []CustomPrompt) *Catalog {
	c := &Catalog{prompts: make([]CustomPrompt, 0, len(prompts))}
	for _, p := range prompts {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		c.prompts = append(c.prompts, p)
	}
	return c
}

// List returns the prompts in display order.
func (c *Catalog) List() []CustomPrompt {
	out := make([]CustomPrompt, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Lookup returns the prompt with the given id.
func (c *Catalog) Lookup(id string) (CustomPrompt, error) {
	for _, p := range c.prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return CustomPrompt{}, fmt.Errorf("%w: %s", ErrPromptNotFound, id)
}

// Add appends a new prompt with a generated id and returns it.
func (c *Catalog) Add(name, text string) CustomPrompt {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Unnamed Prompt"
	}
	p := CustomPrompt{ID: uuid.NewString(), Name: name, Prompt: text}
	c.prompts = append(c.prompts, p)
	return p
}

// Remove deletes the prompt with the given id.
func (c *Catalog) Remove(id string) error {
	for i, p := range c.prompts {
		if p.ID == id {
			c.prompts = append(c.prompts[:i], c.prompts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPromptNotFound, id)
}

// catalogFile is the on-disk shape of a prompts file.
type catalogFile struct {
	Prompts []CustomPrompt `yaml:"prompts" toml:"prompts"`
}

// LoadCatalogFile reads custom prompts from a YAML file of the form:
//
//	prompts:
//	  - id: reframe
//	    name: Reframe
//	    prompt: Help me reframe this thought.
//
// Files ending in .toml are read as TOML with a [[prompts]] table array.
func LoadCatalogFile(path string) ([]CustomPrompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var f catalogFile
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}

	for i, p := range f.Prompts {
		if strings.TrimSpace(p.Prompt) == "" {
			return nil, fmt.Errorf("prompts file %s: entry %d has no prompt text", path, i)
		}
	}
	return f.Prompts, nil
}
