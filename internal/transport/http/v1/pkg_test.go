package v1

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roundtable-hq/orchestrator/internal/adapter/gateway"
	"github.com/roundtable-hq/orchestrator/internal/adapter/notify"
	"github.com/roundtable-hq/orchestrator/internal/config"
	"github.com/roundtable-hq/orchestrator/internal/domain"
	"github.com/roundtable-hq/orchestrator/internal/service"
	"github.com/roundtable-hq/orchestrator/tests/helpers"
)

// newTestServer wires a handler against an in-memory store with the mock
// gateway and a seeded catalog.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	db := helpers.NewTestSQLiteStore(t)
	ctx := context.Background()
	providers := []domain.Provider{
		{Name: "alpha", Type: "openai", ModelID: "gpt-4o-mini", Enabled: true, OrderIndex: 0, Temperature: 0.7},
		{Name: "beta", Type: "openai", ModelID: "deepseek-chat", Enabled: true, OrderIndex: 1, Temperature: 0.7},
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

	cfg := &config.Config{
		MaxRounds:         3,
		TokenBudget:       50000,
		CostBudget:        5.0,
		ContextTokenLimit: 6000,
		KeepRecent:        4,
		TurnTimeout:       time.Second,
	}
	svc := service.New(db, gateway.NewMockClient(), notify.NewClient(""), cfg, nil)

	e := echo.New()
	NewHandler(svc).RegisterRoutes(e)
	return e
}

// doRequest runs one request through the echo router and returns the recorder.
func doRequest(e *echo.Echo, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
