package domain

import "time"

// Session represents one multi-party discussion from start to terminal status.
type Session struct {
	SessionID    string        `json:"session_id"`
	Topic        string        `json:"topic"`
	Status       SessionStatus `json:"status"`
	MaxRounds    int           `json:"max_rounds"`
	CurrentRound int           `json:"current_round"`
	TokenBudget  int           `json:"token_budget"`
	CostBudget   float64       `json:"cost_budget"`
	TokensUsed   int           `json:"tokens_used"`
	CostUsed     float64       `json:"cost_used"`
	StopReason   StopReason    `json:"stop_reason,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}

// Participant binds a provider and a personality into a session with a fixed
// speaking position.
type Participant struct {
	ParticipantID string            `json:"participant_id"`
	SessionID     string            `json:"session_id"`
	Provider      string            `json:"provider"`
	Personality   string            `json:"personality"`
	OrderIndex    int               `json:"order_index"`
	Status        ParticipantStatus `json:"status"`
}

// Provider is a catalog entry for a language-model backend.
type Provider struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	ModelID     string  `json:"model_id"`
	Enabled     bool    `json:"enabled"`
	OrderIndex  int     `json:"order_index"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Personality is a catalog entry describing how a participant speaks.
type Personality struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Style        string `json:"style,omitempty"`
}
