// Package gateway provides an abstraction over language-model provider backends.
package gateway

import (
	"context"
	"fmt"

	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// ChatMessage represents one message in the bounded context sent to a provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// InvokeRequest carries everything a provider needs for one turn.
type InvokeRequest struct {
	Provider    domain.Provider    `json:"provider"`
	Personality domain.Personality `json:"personality"`
	Context     []ChatMessage      `json:"context"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

// Gateway defines the interface for provider invocation. Implementations must
// honor ctx cancellation and deadlines and return token/cost accounting on
// success.
type Gateway interface {
	Invoke(ctx context.Context, req *InvokeRequest) (*domain.TurnOutcome, error)
}

// Error is a provider-side failure. Retryable is informational; the
// orchestrator never auto-retries within a turn.
type Error struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error [%s]: %s", e.Code, e.Message)
}
