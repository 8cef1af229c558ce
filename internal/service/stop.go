package service

import "github.com/roundtable-hq/orchestrator/internal/domain"

// stopVerdict is a terminal decision of the stop-condition evaluator.
type stopVerdict struct {
	Status domain.SessionStatus
	Reason domain.StopReason
}

// evaluateStop checks stop conditions in fixed priority order: external
// cancellation, round limit, token/cost budget, active participants. A
// per-turn timeout is deliberately absent here; it is handled turn-locally as
// a failed turn. Returns nil while the session should keep running.
func evaluateStop(session *domain.Session, cancelled bool, activeCount int) *stopVerdict {
	if cancelled {
		return &stopVerdict{Status: domain.SessionStatusStopped, Reason: domain.StopReasonUserRequested}
	}
	if session.CurrentRound >= session.MaxRounds {
		return &stopVerdict{Status: domain.SessionStatusCompleted, Reason: domain.StopReasonMaxRounds}
	}
	if (session.TokenBudget > 0 && session.TokensUsed >= session.TokenBudget) ||
		(session.CostBudget > 0 && session.CostUsed >= session.CostBudget) {
		return &stopVerdict{Status: domain.SessionStatusCompleted, Reason: domain.StopReasonBudgetExceeded}
	}
	if activeCount == 0 {
		return &stopVerdict{Status: domain.SessionStatusCompleted, Reason: domain.StopReasonNoActiveParticipants}
	}
	return nil
}
