// Package roster loads the provider and personality catalog.
package roster

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roundtable-hq/orchestrator/internal/domain"
	store "github.com/roundtable-hq/orchestrator/internal/repository"
)

// Roster is the provider/personality catalog loaded at startup.
type Roster struct {
	Providers     []ProviderEntry    `yaml:"providers"`
	Personalities []PersonalityEntry `yaml:"personalities"`
}

// ProviderEntry describes one provider backend.
type ProviderEntry struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	ModelID     string  `yaml:"model_id"`
	Enabled     *bool   `yaml:"enabled"`
	OrderIndex  int     `yaml:"order_index"`
	Temperature float64 `yaml:"temperature"`
}

// PersonalityEntry describes one discussion persona.
type PersonalityEntry struct {
	Title        string `yaml:"title"`
	Instructions string `yaml:"instructions"`
	Style        string `yaml:"style"`
}

// Default returns the built-in roster used when no roster file is configured.
func Default() *Roster {
	enabled := true
	return &Roster{
		Providers: []ProviderEntry{
			{Name: "chatgpt", Type: "openai", ModelID: "gpt-4o-mini", Enabled: &enabled, OrderIndex: 0, Temperature: 0.7},
			{Name: "deepseek", Type: "deepseek", ModelID: "deepseek-chat", Enabled: &enabled, OrderIndex: 1, Temperature: 0.7},
		},
		Personalities: []PersonalityEntry{
			{
				Title:        "analyst",
				Instructions: "Analyze the arguments made so far, answer with structure, and emphasize practical conclusions.",
				Style:        "calm and friendly",
			},
			{
				Title:        "visionary",
				Instructions: "Look past the immediate question, propose bold directions, and challenge the other speakers.",
				Style:        "energetic and provocative",
			},
		},
	}
}

// LoadFile parses a YAML roster file.
func LoadFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	for i, p := range r.Providers {
		if p.Name == "" || p.ModelID == "" {
			return nil, fmt.Errorf("roster provider %d is missing name or model_id", i)
		}
	}
	for i, p := range r.Personalities {
		if p.Title == "" || p.Instructions == "" {
			return nil, fmt.Errorf("roster personality %d is missing title or instructions", i)
		}
	}
	return &r, nil
}

// Seed upserts the roster into the store.
func Seed(ctx context.Context, db store.Store, r *Roster) error {
	for _, p := range r.Providers {
		enabled := true
		if p.Enabled != nil {
			enabled = *p.Enabled
		}
		provider := &domain.Provider{
			Name:        p.Name,
			Type:        p.Type,
			ModelID:     p.ModelID,
			Enabled:     enabled,
			OrderIndex:  p.OrderIndex,
			Temperature: p.Temperature,
		}
		if err := db.UpsertProvider(ctx, provider); err != nil {
			return fmt.Errorf("failed to seed provider %s: %w", p.Name, err)
		}
	}
	for _, p := range r.Personalities {
		personality := &domain.Personality{
			Title:        p.Title,
			Instructions: p.Instructions,
			Style:        p.Style,
		}
		if err := db.UpsertPersonality(ctx, personality); err != nil {
			return fmt.Errorf("failed to seed personality %s: %w", p.Title, err)
		}
	}
	return nil
}
