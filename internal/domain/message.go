package domain

import (
	"encoding/json"
	"time"
)

// Message is one immutable transcript utterance. Seq is assigned by the store
// and is strictly increasing per session; the transcript is append-only.
type Message struct {
	MessageID     string    `json:"message_id"`
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Author        string    `json:"author"`
	Role          Role      `json:"role"`
	Content       string    `json:"content"`
	TokensIn      int       `json:"tokens_in"`
	TokensOut     int       `json:"tokens_out"`
	Cost          float64   `json:"cost"`
	Round         int       `json:"round"`
	Seq           int64     `json:"seq"`
	CreatedAt     time.Time `json:"created_at"`
}

// TurnOutcome is the transient result of one provider gateway invocation.
// It is consumed by the degeneracy guard and converted into a Message; it is
// never persisted directly.
type TurnOutcome struct {
	Content   string        `json:"content"`
	TokensIn  int           `json:"tokens_in"`
	TokensOut int           `json:"tokens_out"`
	Cost      float64       `json:"cost"`
	Latency   time.Duration `json:"latency"`
}

// AuditEntry records one orchestrator decision. Entries are write-once.
type AuditEntry struct {
	AuditID   string          `json:"audit_id"`
	SessionID string          `json:"session_id"`
	Actor     string          `json:"actor"`
	Action    AuditAction     `json:"action"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Ts        int64           `json:"ts"` // Unix milliseconds
}
