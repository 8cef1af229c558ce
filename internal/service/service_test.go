package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/roundtable-hq/orchestrator/internal/adapter/gateway"
	"github.com/roundtable-hq/orchestrator/internal/adapter/notify"
	"github.com/roundtable-hq/orchestrator/internal/config"
	"github.com/roundtable-hq/orchestrator/internal/domain"
	store "github.com/roundtable-hq/orchestrator/internal/repository"
	"github.com/roundtable-hq/orchestrator/tests/helpers"
)

// gatewayFunc adapts a function to the Gateway interface for test scripting.
type gatewayFunc func(ctx context.Context, req *gateway.InvokeRequest) (*domain.TurnOutcome, error)

func (f gatewayFunc) Invoke(ctx context.Context, req *gateway.InvokeRequest) (*domain.TurnOutcome, error) {
	return f(ctx, req)
}

// uniqueSpeaker returns a gateway that produces a distinct utterance on every
// call, so the degeneracy guard never fires.
func uniqueSpeaker(tokensIn, tokensOut int, cost float64) gateway.Gateway {
	calls := 0
	return gatewayFunc(func(ctx context.Context, req *gateway.InvokeRequest) (*domain.TurnOutcome, error) {
		calls++
		return &domain.TurnOutcome{
			Content:   fmt.Sprintf("%s take %d", req.Provider.Name, calls),
			TokensIn:  tokensIn,
			TokensOut: tokensOut,
			Cost:      cost,
		}, nil
	})
}

func testConfig() *config.Config {
	return &config.Config{
		MaxRounds:         5,
		TokenBudget:       50000,
		CostBudget:        5.0,
		ContextTokenLimit: 6000,
		KeepRecent:        4,
		TurnTimeout:       time.Second,
	}
}

func newTestService(t *testing.T, gw gateway.Gateway) (*Service, *store.SQLiteStore) {
	t.Helper()
	db := helpers.NewTestSQLiteStore(t)
	svc := New(db, gw, notify.NewClient(""), testConfig(), nil)
	return svc, db
}

func seedCatalog(t *testing.T, db *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	providers := []domain.Provider{
		{Name: "alpha", Type: "openai", ModelID: "gpt-4o-mini", Enabled: true, OrderIndex: 0, Temperature: 0.7},
		{Name: "beta", Type: "openai", ModelID: "deepseek-chat", Enabled: true, OrderIndex: 1, Temperature: 0.7},
		{Name: "dormant", Type: "openai", ModelID: "gpt-4o", Enabled: false, OrderIndex: 2},
	}
	for i := range providers {
		if err := db.UpsertProvider(ctx, &providers[i]); err != nil {
			t.Fatalf("failed to seed provider: %v", err)
		}
	}
	personalities := []domain.Personality{
		{Title: "analyst", Instructions: "Weigh the evidence.", Style: "measured"},
		{Title: "critic", Instructions: "Challenge every claim.", Style: "sharp"},
	}
	for i := range personalities {
		if err := db.UpsertPersonality(ctx, &personalities[i]); err != nil {
			t.Fatalf("failed to seed personality: %v", err)
		}
	}
}

// startRunningSession creates a session through the service and puts it in
// running state without launching the background loop, so tests can drive
// runDialogue synchronously.
func startRunningSession(t *testing.T, svc *Service, db *store.SQLiteStore, req domain.CreateSessionRequest) string {
	t.Helper()
	ctx := context.Background()
	session, err := svc.CreateSession(ctx, req)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	changed, err := db.UpdateSessionStatus(ctx, session.SessionID, domain.SessionStatusRunning)
	if err != nil || !changed {
		t.Fatalf("failed to mark session running: changed=%v err=%v", changed, err)
	}
	return session.SessionID
}

func auditCount(t *testing.T, db *store.SQLiteStore, sessionID string, action domain.AuditAction) int {
	t.Helper()
	entries, err := db.GetAuditEntries(context.Background(), sessionID, 0)
	if err != nil {
		t.Fatalf("GetAuditEntries failed: %v", err)
	}
	n := 0
	for _, e := range entries {
		if e.Action == action {
			n++
		}
	}
	return n
}
