package service

import (
	"testing"

	"github.com/roundtable-hq/orchestrator/internal/domain"
)

func TestEvaluateStopKeepsRunning(t *testing.T) {
	session := &domain.Session{MaxRounds: 5, TokenBudget: 1000, CostBudget: 1.0, CurrentRound: 2, TokensUsed: 100}
	if verdict := evaluateStop(session, false, 2); verdict != nil {
		t.Fatalf("expected no stop, got %+v", verdict)
	}
}

func TestEvaluateStopCancellation(t *testing.T) {
	session := &domain.Session{MaxRounds: 5, TokenBudget: 1000, CostBudget: 1.0}
	verdict := evaluateStop(session, true, 2)
	if verdict == nil || verdict.Status != domain.SessionStatusStopped || verdict.Reason != domain.StopReasonUserRequested {
		t.Fatalf("expected stopped/user_requested, got %+v", verdict)
	}
}

func TestEvaluateStopMaxRounds(t *testing.T) {
	session := &domain.Session{MaxRounds: 3, CurrentRound: 3, TokenBudget: 1000, CostBudget: 1.0}
	verdict := evaluateStop(session, false, 2)
	if verdict == nil || verdict.Status != domain.SessionStatusCompleted || verdict.Reason != domain.StopReasonMaxRounds {
		t.Fatalf("expected completed/max_rounds_reached, got %+v", verdict)
	}
}

func TestEvaluateStopTokenBudget(t *testing.T) {
	session := &domain.Session{MaxRounds: 10, TokenBudget: 100, TokensUsed: 120, CostBudget: 1.0}
	verdict := evaluateStop(session, false, 2)
	if verdict == nil || verdict.Reason != domain.StopReasonBudgetExceeded {
		t.Fatalf("expected budget_exceeded, got %+v", verdict)
	}
}

func TestEvaluateStopCostBudget(t *testing.T) {
	session := &domain.Session{MaxRounds: 10, TokenBudget: 1000, CostBudget: 0.5, CostUsed: 0.5}
	verdict := evaluateStop(session, false, 2)
	if verdict == nil || verdict.Reason != domain.StopReasonBudgetExceeded {
		t.Fatalf("expected budget_exceeded, got %+v", verdict)
	}
}

func TestEvaluateStopNoActiveParticipants(t *testing.T) {
	session := &domain.Session{MaxRounds: 10, TokenBudget: 1000, CostBudget: 1.0}
	verdict := evaluateStop(session, false, 0)
	if verdict == nil || verdict.Reason != domain.StopReasonNoActiveParticipants {
		t.Fatalf("expected no_active_participants, got %+v", verdict)
	}
}

// All conditions holding at once resolves in fixed priority order:
// cancellation beats the round limit, which beats the budget, which beats the
// empty rotation.
func TestEvaluateStopPriorityOrder(t *testing.T) {
	session := &domain.Session{
		MaxRounds: 1, CurrentRound: 1,
		TokenBudget: 10, TokensUsed: 20,
		CostBudget: 0.1, CostUsed: 0.2,
	}

	verdict := evaluateStop(session, true, 0)
	if verdict == nil || verdict.Reason != domain.StopReasonUserRequested {
		t.Fatalf("cancellation must win, got %+v", verdict)
	}

	verdict = evaluateStop(session, false, 0)
	if verdict == nil || verdict.Reason != domain.StopReasonMaxRounds {
		t.Fatalf("round limit must beat budget, got %+v", verdict)
	}

	session.CurrentRound = 0
	verdict = evaluateStop(session, false, 0)
	if verdict == nil || verdict.Reason != domain.StopReasonBudgetExceeded {
		t.Fatalf("budget must beat empty rotation, got %+v", verdict)
	}
}
