package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// CreateSession validates a session request, checks it against the admission
// policy and persists the session with its participants in pending state.
func (s *Service) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (*domain.Session, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, &ValidationError{Reason: "topic is required"}
	}
	if len(req.Participants) == 0 {
		return nil, &ValidationError{Reason: "at least one participant is required"}
	}

	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.config.MaxRounds
	}
	if maxRounds <= 0 {
		return nil, &ValidationError{Reason: "max_rounds must be positive"}
	}
	tokenBudget := req.TokenBudget
	if tokenBudget == 0 {
		tokenBudget = s.config.TokenBudget
	}
	if tokenBudget <= 0 {
		return nil, &ValidationError{Reason: "token_budget must be positive"}
	}
	costBudget := req.CostBudget
	if costBudget == 0 {
		costBudget = s.config.CostBudget
	}
	if costBudget <= 0 {
		return nil, &ValidationError{Reason: "cost_budget must be positive"}
	}

	// Duplicate order_index values are rejected at creation time, not
	// resolved at runtime.
	seenOrder := make(map[int]bool, len(req.Participants))
	providers := make([]*domain.Provider, 0, len(req.Participants))
	for _, spec := range req.Participants {
		if seenOrder[spec.OrderIndex] {
			return nil, &ValidationError{Reason: fmt.Sprintf("duplicate order_index %d", spec.OrderIndex)}
		}
		seenOrder[spec.OrderIndex] = true

		provider, err := s.store.GetProvider(ctx, spec.Provider)
		if err != nil {
			return nil, fmt.Errorf("failed to get provider: %w", err)
		}
		if provider == nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown provider %q", spec.Provider)}
		}
		if !provider.Enabled {
			return nil, &ValidationError{Reason: fmt.Sprintf("provider %q is disabled", spec.Provider)}
		}
		personality, err := s.store.GetPersonality(ctx, spec.Personality)
		if err != nil {
			return nil, fmt.Errorf("failed to get personality: %w", err)
		}
		if personality == nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown personality %q", spec.Personality)}
		}
		providers = append(providers, provider)
	}

	if s.policyEngine != nil {
		policyProviders := make([]map[string]interface{}, len(providers))
		for i, p := range providers {
			policyProviders[i] = map[string]interface{}{
				"name":    p.Name,
				"type":    p.Type,
				"enabled": p.Enabled,
			}
		}
		decision, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
			"topic":             req.Topic,
			"participant_count": len(req.Participants),
			"providers":         policyProviders,
			"max_rounds":        maxRounds,
			"token_budget":      tokenBudget,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate session policy: %w", err)
		}
		if decision == "block" {
			return nil, &ValidationError{Reason: "blocked by session policy"}
		}
	}

	session := &domain.Session{
		SessionID:   "ses_" + uuid.New().String()[:8],
		Topic:       req.Topic,
		Status:      domain.SessionStatusPending,
		MaxRounds:   maxRounds,
		TokenBudget: tokenBudget,
		CostBudget:  costBudget,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	for _, spec := range req.Participants {
		participant := &domain.Participant{
			ParticipantID: "par_" + uuid.New().String()[:8],
			SessionID:     session.SessionID,
			Provider:      spec.Provider,
			Personality:   spec.Personality,
			OrderIndex:    spec.OrderIndex,
			Status:        domain.ParticipantStatusActive,
		}
		if err := s.store.CreateParticipant(ctx, participant); err != nil {
			return nil, fmt.Errorf("failed to create participant: %w", err)
		}
	}

	if err := s.recordAudit(ctx, session.SessionID, actorOrchestrator, domain.AuditActionSessionCreated, map[string]interface{}{
		"topic":        session.Topic,
		"participants": len(req.Participants),
		"max_rounds":   session.MaxRounds,
	}); err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	return session, nil
}

// StartSession transitions a pending session to running and launches its turn
// loop. The loop runs in its own goroutine; multiple sessions run
// independently and never share mutable state.
func (s *Service) StartSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != domain.SessionStatusPending {
		if session.Status.IsTerminal() {
			return nil, &ValidationError{Reason: "session is terminal and cannot be restarted"}
		}
		return nil, &ValidationError{Reason: "session is already running"}
	}

	participants, err := s.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if countActive(participants) == 0 {
		return nil, &ValidationError{Reason: "session has no active participants"}
	}
	if session.MaxRounds <= 0 || session.TokenBudget <= 0 || session.CostBudget <= 0 {
		return nil, &ValidationError{Reason: "session budgets must be positive"}
	}

	changed, err := s.store.UpdateSessionStatus(ctx, sessionID, domain.SessionStatusRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}
	if !changed {
		return nil, &ValidationError{Reason: "session is terminal and cannot be restarted"}
	}
	session.Status = domain.SessionStatusRunning

	if err := s.recordAudit(ctx, sessionID, actorOrchestrator, domain.AuditActionSessionStarted, map[string]interface{}{
		"participants": len(participants),
	}); err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err := s.ensureTopicMessage(ctx, session); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.registerRun(sessionID, cancel)
	go s.runDialogue(runCtx, sessionID)

	s.publish(sessionID, domain.EventTypeSessionStarted, map[string]interface{}{
		"topic": session.Topic,
	})

	return session, nil
}

// StopSession requests a cooperative stop. The flag is honored at the next
// turn boundary; an in-flight provider call is allowed to finish or time out
// first. Stopping a terminal session is a no-op.
func (s *Service) StopSession(ctx context.Context, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Status.IsTerminal() {
		return nil // Already terminal
	}

	if session.Status == domain.SessionStatusRunning && s.requestStop(sessionID) {
		return nil
	}

	// Pending session, or no loop registered in this process: finalize
	// directly.
	changed, err := s.store.UpdateSessionCompleted(ctx, sessionID, domain.SessionStatusStopped, domain.StopReasonUserRequested)
	if err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}
	if !changed {
		return nil
	}
	if err := s.recordAudit(ctx, sessionID, actorOrchestrator, domain.AuditActionSessionStopped, map[string]interface{}{
		"reason": string(domain.StopReasonUserRequested),
	}); err != nil {
		log.Printf("ERROR: failed to record stop audit entry: %v", err)
	}
	s.publish(sessionID, domain.EventTypeSessionEnded, map[string]interface{}{
		"status": string(domain.SessionStatusStopped),
		"reason": string(domain.StopReasonUserRequested),
	})
	return nil
}

// GetSessionState returns a session with its participants.
func (s *Service) GetSessionState(ctx context.Context, sessionID string) (*domain.SessionStateResponse, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	participants, err := s.store.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return &domain.SessionStateResponse{Session: *session, Participants: participants}, nil
}

// GetMessages returns a session's transcript oldest-first. A positive limit
// caps the result to the most recent N messages.
func (s *Service) GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	messages, err := s.store.GetMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// GetAuditEntries returns a session's audit log in write order.
func (s *Service) GetAuditEntries(ctx context.Context, sessionID string, limit int) ([]domain.AuditEntry, error) {
	entries, err := s.store.GetAuditEntries(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	return entries, nil
}

// ListProviders returns the provider catalog.
func (s *Service) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	providers, err := s.store.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

// ListPersonalities returns the personality catalog.
func (s *Service) ListPersonalities(ctx context.Context) ([]domain.Personality, error) {
	personalities, err := s.store.ListPersonalities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list personalities: %w", err)
	}
	return personalities, nil
}

// appendMessage appends one utterance to the transcript. The transcript is
// read-only once the session is terminal.
func (s *Service) appendMessage(ctx context.Context, session *domain.Session, msg *domain.Message) error {
	if session.Status.IsTerminal() {
		return fmt.Errorf("session %s is terminal; transcript is append-only and closed", session.SessionID)
	}
	msg.MessageID = "msg_" + uuid.New().String()[:8]
	msg.SessionID = session.SessionID
	msg.CreatedAt = time.Now()
	return s.store.CreateMessage(ctx, msg)
}

// ensureTopicMessage seeds the transcript with the topic as a user message if
// no message exists yet.
func (s *Service) ensureTopicMessage(ctx context.Context, session *domain.Session) error {
	messages, err := s.store.GetMessages(ctx, session.SessionID, 1)
	if err != nil {
		return fmt.Errorf("failed to get messages: %w", err)
	}
	if len(messages) > 0 {
		return nil
	}
	msg := &domain.Message{
		Author:   "user",
		Role:     domain.RoleUser,
		Content:  fmt.Sprintf("Discussion topic: %s", session.Topic),
		TokensIn: estimateTokens(session.Topic),
	}
	if err := s.appendMessage(ctx, session, msg); err != nil {
		return fmt.Errorf("failed to append topic message: %w", err)
	}
	return nil
}
