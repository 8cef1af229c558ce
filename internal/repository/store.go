// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// Store defines the interface for data persistence. All operations are
// synchronous and atomic per call; the orchestrator waits for durability
// before proceeding.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) (bool, error)
	UpdateSessionCompleted(ctx context.Context, sessionID string, status domain.SessionStatus, reason domain.StopReason) (bool, error)
	UpdateSessionProgress(ctx context.Context, sessionID string, currentRound int, tokensUsed int, costUsed float64) error

	// Participant operations
	CreateParticipant(ctx context.Context, participant *domain.Participant) error
	ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error)
	UpdateParticipantStatus(ctx context.Context, participantID string, status domain.ParticipantStatus) error

	// Message operations (append-only)
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Audit operations (write-once)
	CreateAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
	GetAuditEntries(ctx context.Context, sessionID string, limit int) ([]domain.AuditEntry, error)

	// Catalog operations
	UpsertProvider(ctx context.Context, provider *domain.Provider) error
	GetProvider(ctx context.Context, name string) (*domain.Provider, error)
	ListProviders(ctx context.Context) ([]domain.Provider, error)
	UpsertPersonality(ctx context.Context, personality *domain.Personality) error
	GetPersonality(ctx context.Context, title string) (*domain.Personality, error)
	ListPersonalities(ctx context.Context) ([]domain.Personality, error)

	// Lifecycle
	Close() error
}
