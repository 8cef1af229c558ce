package service

import "github.com/roundtable-hq/orchestrator/internal/domain"

// nextSpeaker returns the next active participant after lastOrder, wrapping
// past the highest order_index back to the lowest. participants must be
// sorted by order_index. Returns nil when no participant is active, which
// signals session completion rather than an error.
func nextSpeaker(participants []domain.Participant, lastOrder int) *domain.Participant {
	for i := range participants {
		if participants[i].Status == domain.ParticipantStatusActive && participants[i].OrderIndex > lastOrder {
			return &participants[i]
		}
	}
	// Wrap around to the lowest active order_index.
	for i := range participants {
		if participants[i].Status == domain.ParticipantStatusActive {
			return &participants[i]
		}
	}
	return nil
}

// rotationComplete reports whether a turn by the participant at speakerOrder
// finished one full rotation: no active participant holds a higher
// order_index. The round counter increments exactly when this is true.
func rotationComplete(participants []domain.Participant, speakerOrder int) bool {
	for i := range participants {
		if participants[i].Status == domain.ParticipantStatusActive && participants[i].OrderIndex > speakerOrder {
			return false
		}
	}
	return true
}

// countActive returns the number of active participants.
func countActive(participants []domain.Participant) int {
	n := 0
	for i := range participants {
		if participants[i].Status == domain.ParticipantStatusActive {
			n++
		}
	}
	return n
}
