package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// MockClient is a deterministic Gateway implementation for local runs and
// tests. Identical input always yields identical output.
type MockClient struct{}

// NewMockClient creates a new mock gateway client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements the Gateway interface.
var _ Gateway = (*MockClient)(nil)

// Invoke returns a canned utterance derived from the request.
func (m *MockClient) Invoke(ctx context.Context, req *InvokeRequest) (*domain.TurnOutcome, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	content := m.generateResponse(req)
	tokensIn := m.estimateTokens(req)
	tokensOut := len(content) / 4

	return &domain.TurnOutcome{
		Content:   content,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		Cost:      float64(tokensIn+tokensOut) / 1000.0,
		Latency:   time.Millisecond,
	}, nil
}

func (m *MockClient) generateResponse(req *InvokeRequest) string {
	var lastContent string
	for i := len(req.Context) - 1; i >= 0; i-- {
		if req.Context[i].Role != "system" {
			lastContent = req.Context[i].Content
			break
		}
	}
	if lastContent == "" {
		return fmt.Sprintf("[MOCK %s] Opening remarks on the topic.", req.Personality.Title)
	}
	return fmt.Sprintf("[MOCK %s] Responding to %q after %d prior messages.",
		req.Personality.Title, truncate(lastContent, 80), len(req.Context))
}

func (m *MockClient) estimateTokens(req *InvokeRequest) int {
	total := 0
	for _, msg := range req.Context {
		total += len(msg.Content) / 4
	}
	return total
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
