package service

import "strings"

// degeneracyGuard tracks per-participant degenerate output. An empty or
// whitespace-only output, or an output identical to the participant's
// immediately preceding one (after whitespace normalization), is a strike.
// The second strike excludes; a good output resets the counter, so a single
// strike gives the participant one retry turn.
type degeneracyGuard struct {
	trackers map[string]*strikeTracker
}

type strikeTracker struct {
	last    string
	strikes int
}

func newDegeneracyGuard() *degeneracyGuard {
	return &degeneracyGuard{trackers: make(map[string]*strikeTracker)}
}

// Observe records one output for a participant. It reports whether the output
// was degenerate and whether the participant reached the exclusion threshold.
func (g *degeneracyGuard) Observe(participantID, content string) (strike bool, exclude bool) {
	tracker, ok := g.trackers[participantID]
	if !ok {
		tracker = &strikeTracker{}
		g.trackers[participantID] = tracker
	}

	norm := normalizeOutput(content)
	if norm == "" || norm == tracker.last {
		tracker.strikes++
		return true, tracker.strikes >= 2
	}

	tracker.strikes = 0
	tracker.last = norm
	return false, false
}

// normalizeOutput collapses all whitespace runs so that formatting-only
// differences do not mask a repeated output.
func normalizeOutput(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
