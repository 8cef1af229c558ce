package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/roundtable-hq/orchestrator/internal/domain"
)

const actorOrchestrator = "orchestrator"

// recordAudit writes one orchestrator decision to the audit log.
func (s *Service) recordAudit(ctx context.Context, sessionID, actor string, action domain.AuditAction, payload interface{}) error {
	metadata, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	entry := &domain.AuditEntry{
		AuditID:   "aud_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Actor:     actor,
		Action:    action,
		Metadata:  metadata,
		Ts:        time.Now().UnixMilli(),
	}

	return s.store.CreateAuditEntry(ctx, entry)
}

// publish pushes a notification event. Delivery failure never affects
// orchestration; it is logged and swallowed.
func (s *Service) publish(sessionID string, eventType domain.EventType, fields map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	event := map[string]interface{}{
		"type": string(eventType),
		"ts":   time.Now().UnixMilli(),
	}
	for k, v := range fields {
		event[k] = v
	}
	if err := s.notifier.PushEvent(sessionID, event); err != nil {
		log.Printf("WARN: failed to push %s event for session %s: %v", eventType, sessionID, err)
	}
}
