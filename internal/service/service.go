// Package service implements the dialogue orchestration core: session
// lifecycle, turn sequencing, degenerate-output policing and stop conditions.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/roundtable-hq/orchestrator/internal/adapter/gateway"
	"github.com/roundtable-hq/orchestrator/internal/adapter/notify"
	"github.com/roundtable-hq/orchestrator/internal/config"
	"github.com/roundtable-hq/orchestrator/internal/policy"
	store "github.com/roundtable-hq/orchestrator/internal/repository"
)

// ErrSessionNotFound is returned when a session ID resolves to nothing.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError rejects a malformed request before any state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

type Service struct {
	store        store.Store
	gateway      gateway.Gateway
	notifier     *notify.Client
	config       *config.Config
	policyEngine *policy.Engine

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func New(store store.Store, gw gateway.Gateway, notifier *notify.Client, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		gateway:      gw,
		notifier:     notifier,
		config:       cfg,
		policyEngine: policyEngine,
		cancels:      make(map[string]context.CancelFunc),
	}
}

// registerRun records the cancel function for a running session loop.
func (s *Service) registerRun(sessionID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels[sessionID] = cancel
}

// requestStop cancels a running session loop. It reports whether a loop was
// registered for the session.
func (s *Service) requestStop(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.cancels[sessionID]
	if ok {
		cancel()
	}
	return ok
}

// releaseRun drops the cancel registration once a loop has exited.
func (s *Service) releaseRun(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[sessionID]; ok {
		cancel()
		delete(s.cancels, sessionID)
	}
}
