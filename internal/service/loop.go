package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/roundtable-hq/orchestrator/internal/adapter/gateway"
	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// runDialogue drives one session through its turns until a stop condition
// fires. It owns the session exclusively for the duration of the run: turns
// are strictly sequential, transcript appends are totally ordered by the
// loop, and ctx cancellation is honored only at turn boundaries so an
// in-flight provider call may finish or time out first.
func (s *Service) runDialogue(ctx context.Context, sessionID string) {
	defer s.releaseRun(sessionID)

	// Persistence must not be cut short by the cooperative cancel.
	sctx := context.Background()

	session, err := s.store.GetSession(sctx, sessionID)
	if err != nil {
		log.Printf("ERROR: session %s failed to load: %v", sessionID, err)
		return
	}
	if session == nil || session.Status != domain.SessionStatusRunning {
		log.Printf("WARN: session %s is not running, loop exiting", sessionID)
		return
	}

	participants, err := s.store.ListParticipants(sctx, sessionID)
	if err != nil {
		s.failSession(sctx, session, err)
		return
	}

	// Immutable catalog snapshot: a running session is insulated from
	// concurrent admin edits.
	providers := make(map[string]domain.Provider)
	personalities := make(map[string]domain.Personality)
	for i := range participants {
		p := &participants[i]
		if p.Status != domain.ParticipantStatusActive {
			continue
		}
		if _, ok := providers[p.Provider]; !ok {
			provider, err := s.store.GetProvider(sctx, p.Provider)
			if err != nil {
				s.failSession(sctx, session, err)
				return
			}
			if provider != nil {
				providers[p.Provider] = *provider
			}
		}
		if _, ok := personalities[p.Personality]; !ok {
			personality, err := s.store.GetPersonality(sctx, p.Personality)
			if err != nil {
				s.failSession(sctx, session, err)
				return
			}
			if personality != nil {
				personalities[p.Personality] = *personality
			}
		}
		// A participant whose backing catalog entries vanished cannot speak.
		_, haveProvider := providers[p.Provider]
		_, havePersonality := personalities[p.Personality]
		if !haveProvider || !havePersonality {
			if err := s.excludeParticipant(sctx, session, p, "provider_unavailable"); err != nil {
				s.failSession(sctx, session, err)
				return
			}
		}
	}

	guard := newDegeneracyGuard()
	lastOrder := -1

	for {
		// Stop conditions are evaluated at every turn boundary, including
		// before the first turn.
		if verdict := evaluateStop(session, ctx.Err() != nil, countActive(participants)); verdict != nil {
			s.finalize(sctx, session, verdict)
			return
		}

		speaker := nextSpeaker(participants, lastOrder)
		if speaker == nil {
			s.finalize(sctx, session, &stopVerdict{
				Status: domain.SessionStatusCompleted,
				Reason: domain.StopReasonNoActiveParticipants,
			})
			return
		}

		provider := providers[speaker.Provider]
		personality := personalities[speaker.Personality]
		round := session.CurrentRound + 1

		history, err := s.store.GetMessages(sctx, sessionID, 0)
		if err != nil {
			s.failSession(sctx, session, err)
			return
		}
		bounded := buildContext(session.Topic, personality, history, s.config.ContextTokenLimit, s.config.KeepRecent)

		turnCtx, cancelTurn := context.WithTimeout(context.Background(), s.config.TurnTimeout)
		outcome, err := s.gateway.Invoke(turnCtx, &gateway.InvokeRequest{
			Provider:    provider,
			Personality: personality,
			Context:     bounded,
		})
		cancelTurn()

		var exclude bool
		if err != nil {
			log.Printf("ERROR: session %s turn failed for %s: %v", sessionID, provider.Name, err)
			retryable := false
			var gwErr *gateway.Error
			if errors.As(err, &gwErr) {
				retryable = gwErr.Retryable
			}
			if auditErr := s.recordAudit(sctx, sessionID, provider.Name, domain.AuditActionTurnFailed, map[string]interface{}{
				"participant_id": speaker.ParticipantID,
				"round":          round,
				"error":          err.Error(),
				"retryable":      retryable,
			}); auditErr != nil {
				s.failSession(sctx, session, auditErr)
				return
			}
			s.publish(sessionID, domain.EventTypeTurnFailed, map[string]interface{}{
				"participant_id": speaker.ParticipantID,
				"round":          round,
			})
			// A failed or timed-out turn counts as an empty response.
			_, exclude = guard.Observe(speaker.ParticipantID, "")
		} else {
			_, exclude = guard.Observe(speaker.ParticipantID, outcome.Content)
			if strings.TrimSpace(outcome.Content) != "" {
				msg := &domain.Message{
					ParticipantID: speaker.ParticipantID,
					Author:        fmt.Sprintf("%s as %s", provider.Name, personality.Title),
					Role:          domain.RoleModel,
					Content:       outcome.Content,
					TokensIn:      outcome.TokensIn,
					TokensOut:     outcome.TokensOut,
					Cost:          outcome.Cost,
					Round:         round,
				}
				if err := s.appendMessage(sctx, session, msg); err != nil {
					s.failSession(sctx, session, err)
					return
				}
				session.TokensUsed += outcome.TokensIn + outcome.TokensOut
				session.CostUsed += outcome.Cost
				s.publish(sessionID, domain.EventTypeNewMessage, map[string]interface{}{
					"message_id": msg.MessageID,
					"author":     msg.Author,
					"round":      round,
					"content":    msg.Content,
				})
			}
		}

		if exclude && speaker.Status == domain.ParticipantStatusActive {
			if err := s.excludeParticipant(sctx, session, speaker, domain.ExcludeReasonDegenerate); err != nil {
				s.failSession(sctx, session, err)
				return
			}
		}

		// The round counter increments only when the rotation wraps.
		if rotationComplete(participants, speaker.OrderIndex) {
			session.CurrentRound++
			if err := s.recordAudit(sctx, sessionID, actorOrchestrator, domain.AuditActionRoundAdvanced, map[string]interface{}{
				"round": session.CurrentRound,
			}); err != nil {
				s.failSession(sctx, session, err)
				return
			}
		}
		lastOrder = speaker.OrderIndex

		if err := s.store.UpdateSessionProgress(sctx, sessionID, session.CurrentRound, session.TokensUsed, session.CostUsed); err != nil {
			s.failSession(sctx, session, err)
			return
		}
	}
}

// excludeParticipant marks a participant excluded, permanently removing it
// from the rotation, and records the decision.
func (s *Service) excludeParticipant(ctx context.Context, session *domain.Session, participant *domain.Participant, reason string) error {
	participant.Status = domain.ParticipantStatusExcluded
	if err := s.store.UpdateParticipantStatus(ctx, participant.ParticipantID, domain.ParticipantStatusExcluded); err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	if err := s.recordAudit(ctx, session.SessionID, actorOrchestrator, domain.AuditActionParticipantExcluded, map[string]interface{}{
		"participant_id": participant.ParticipantID,
		"provider":       participant.Provider,
		"reason":         reason,
	}); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	s.publish(session.SessionID, domain.EventTypeParticipantExcluded, map[string]interface{}{
		"participant_id": participant.ParticipantID,
		"reason":         reason,
	})
	return nil
}

// finalize persists the terminal status. The update is a no-op when the
// session already reached a terminal status, which keeps termination
// idempotent.
func (s *Service) finalize(ctx context.Context, session *domain.Session, verdict *stopVerdict) {
	changed, err := s.store.UpdateSessionCompleted(ctx, session.SessionID, verdict.Status, verdict.Reason)
	if err != nil {
		log.Printf("ERROR: failed to persist terminal status for session %s: %v", session.SessionID, err)
		return
	}
	if !changed {
		return
	}
	session.Status = verdict.Status
	session.StopReason = verdict.Reason

	action := domain.AuditActionSessionFinished
	if verdict.Status == domain.SessionStatusStopped {
		action = domain.AuditActionSessionStopped
	}
	if err := s.recordAudit(ctx, session.SessionID, actorOrchestrator, action, map[string]interface{}{
		"status":      string(verdict.Status),
		"reason":      string(verdict.Reason),
		"rounds":      session.CurrentRound,
		"tokens_used": session.TokensUsed,
		"cost_used":   session.CostUsed,
	}); err != nil {
		log.Printf("ERROR: failed to record terminal audit entry for session %s: %v", session.SessionID, err)
	}

	log.Printf("INFO: session %s ended: status=%s reason=%s rounds=%d tokens=%d cost=%.5f",
		session.SessionID, verdict.Status, verdict.Reason, session.CurrentRound, session.TokensUsed, session.CostUsed)

	s.publish(session.SessionID, domain.EventTypeSessionEnded, map[string]interface{}{
		"status": string(verdict.Status),
		"reason": string(verdict.Reason),
	})
}

// failSession ends a session after an unrecoverable persistence failure. The
// orchestrator cannot safely continue without durable state.
func (s *Service) failSession(ctx context.Context, session *domain.Session, cause error) {
	log.Printf("ERROR: session %s failed: %v", session.SessionID, cause)
	s.finalize(ctx, session, &stopVerdict{
		Status: domain.SessionStatusFailed,
		Reason: domain.StopReasonPersistenceError,
	})
}
