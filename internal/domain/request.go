package domain

// ParticipantSpec names one provider/personality pair in a session create
// request. Provider and Personality reference catalog entries by name.
type ParticipantSpec struct {
	Provider    string `json:"provider"`
	Personality string `json:"personality"`
	OrderIndex  int    `json:"order_index"`
}

// CreateSessionRequest represents the request to create a discussion session.
// Zero budgets fall back to the configured defaults.
type CreateSessionRequest struct {
	Topic        string            `json:"topic"`
	Participants []ParticipantSpec `json:"participants"`
	MaxRounds    int               `json:"max_rounds,omitempty"`
	TokenBudget  int               `json:"token_budget,omitempty"`
	CostBudget   float64           `json:"cost_budget,omitempty"`
}

// CreateSessionResponse represents the response to a session create request.
type CreateSessionResponse struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
}

// SessionStateResponse represents the externally visible session state.
type SessionStateResponse struct {
	Session      Session       `json:"session"`
	Participants []Participant `json:"participants"`
}
