// Package domain defines the core domain models for the dialogue orchestrator.
package domain

// SessionStatus represents the lifecycle status of a discussion session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusStopped   SessionStatus = "stopped"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// IsTerminal reports whether the status is absorbing.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusStopped, SessionStatusCompleted, SessionStatusFailed:
		return true
	}
	return false
}

// ParticipantStatus represents the status of a session participant.
type ParticipantStatus string

const (
	ParticipantStatusActive   ParticipantStatus = "active"
	ParticipantStatusExcluded ParticipantStatus = "excluded"
	ParticipantStatusFinished ParticipantStatus = "finished"
)

// Role represents the author role of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// StopReason explains why a session reached a terminal status.
type StopReason string

const (
	StopReasonMaxRounds            StopReason = "max_rounds_reached"
	StopReasonBudgetExceeded       StopReason = "budget_exceeded"
	StopReasonNoActiveParticipants StopReason = "no_active_participants"
	StopReasonUserRequested        StopReason = "user_requested"
	StopReasonPersistenceError     StopReason = "persistence_error"
)

// AuditAction identifies one orchestrator decision in the audit log.
type AuditAction string

const (
	AuditActionSessionCreated      AuditAction = "session_created"
	AuditActionSessionStarted      AuditAction = "session_started"
	AuditActionRoundAdvanced       AuditAction = "round_advanced"
	AuditActionTurnFailed          AuditAction = "turn_failed"
	AuditActionParticipantExcluded AuditAction = "participant_excluded"
	AuditActionSessionStopped      AuditAction = "session_stopped"
	AuditActionSessionFinished     AuditAction = "session_finished"
)

// ExcludeReasonDegenerate is the recorded reason for a two-strike exclusion.
const ExcludeReasonDegenerate = "repeated_or_empty_output"

// EventType represents the type of a notification event pushed to consumers.
type EventType string

const (
	EventTypeSessionStarted      EventType = "session_started"
	EventTypeNewMessage          EventType = "new_message"
	EventTypeTurnFailed          EventType = "turn_failed"
	EventTypeParticipantExcluded EventType = "participant_excluded"
	EventTypeSessionEnded        EventType = "session_ended"
)
