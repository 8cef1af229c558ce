package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roundtable-hq/orchestrator/tests/helpers"
)

func TestDefaultRosterSeeds(t *testing.T) {
	ctx := context.Background()
	db := helpers.NewTestSQLiteStore(t)

	if err := Seed(ctx, db, Default()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	providers, err := db.ListProviders(ctx)
	if err != nil {
		t.Fatalf("ListProviders failed: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("expected 2 default providers, got %d", len(providers))
	}
	for _, p := range providers {
		if !p.Enabled {
			t.Fatalf("default providers must be enabled: %+v", p)
		}
	}

	personalities, err := db.ListPersonalities(ctx)
	if err != nil {
		t.Fatalf("ListPersonalities failed: %v", err)
	}
	if len(personalities) != 2 {
		t.Fatalf("expected 2 default personalities, got %d", len(personalities))
	}

	// Seeding twice is an upsert, not a duplication.
	if err := Seed(ctx, db, Default()); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	providers, err = db.ListProviders(ctx)
	if err != nil {
		t.Fatalf("ListProviders failed: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("expected upsert to keep 2 providers, got %d", len(providers))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := `
providers:
  - name: alpha
    type: openai
    model_id: gpt-4o-mini
    order_index: 0
    temperature: 0.4
  - name: quiet
    type: openai
    model_id: gpt-4o
    enabled: false
    order_index: 1
personalities:
  - title: skeptic
    instructions: Doubt everything.
    style: dry
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write roster file: %v", err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(r.Providers) != 2 || len(r.Personalities) != 1 {
		t.Fatalf("unexpected roster: %+v", r)
	}
	if r.Providers[0].Enabled != nil {
		t.Fatalf("unset enabled flag must stay nil")
	}
	if r.Providers[1].Enabled == nil || *r.Providers[1].Enabled {
		t.Fatalf("explicit enabled: false must be preserved")
	}

	// An omitted enabled flag seeds as enabled.
	ctx := context.Background()
	db := helpers.NewTestSQLiteStore(t)
	if err := Seed(ctx, db, r); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	alpha, err := db.GetProvider(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetProvider failed: %v", err)
	}
	if alpha == nil || !alpha.Enabled {
		t.Fatalf("expected alpha enabled by default, got %+v", alpha)
	}
}

func TestLoadFileRejectsIncompleteEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	content := `
providers:
  - name: alpha
    type: openai
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write roster file: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected missing model_id to be rejected")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
