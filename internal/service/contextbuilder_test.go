package service

import (
	"reflect"
	"strings"
	"testing"

	"github.com/roundtable-hq/orchestrator/internal/domain"
)

var testPersonality = domain.Personality{
	Title:        "analyst",
	Instructions: "Weigh the evidence.",
	Style:        "measured",
}

func historyOf(contents ...string) []domain.Message {
	history := make([]domain.Message, len(contents))
	for i, content := range contents {
		history[i] = domain.Message{
			Author:  "alpha as analyst",
			Role:    domain.RoleModel,
			Content: content,
		}
	}
	return history
}

func TestBuildContextSystemMessageFirst(t *testing.T) {
	out := buildContext("urban transit", testPersonality, historyOf("a point"), 6000, 4)

	if len(out) != 2 {
		t.Fatalf("expected system + 1 history message, got %d", len(out))
	}
	if out[0].Role != "system" {
		t.Fatalf("first message must be the system message, got role %q", out[0].Role)
	}
	if !strings.Contains(out[0].Content, "urban transit") || !strings.Contains(out[0].Content, "analyst") {
		t.Fatalf("system message missing topic or personality: %q", out[0].Content)
	}
	if !strings.Contains(out[0].Content, "Style: measured.") {
		t.Fatalf("system message missing style: %q", out[0].Content)
	}
	if out[1].Role != "assistant" || out[1].Name != "alpha as analyst" {
		t.Fatalf("unexpected history mapping: %+v", out[1])
	}
}

func TestBuildContextNoCompressionUnderLimit(t *testing.T) {
	history := historyOf("one", "two", "three")
	out := buildContext("t", testPersonality, history, 6000, 2)

	if len(out) != 4 {
		t.Fatalf("expected system + 3 messages, got %d", len(out))
	}
	for i, want := range []string{"one", "two", "three"} {
		if out[i+1].Content != want {
			t.Fatalf("history reordered at %d: got %q want %q", i, out[i+1].Content, want)
		}
	}
}

func TestBuildContextDropsOldestFirst(t *testing.T) {
	long := strings.Repeat("wordwordword ", 50) // ~160 estimated tokens each
	history := historyOf(long+"1", long+"2", long+"3", long+"4", long+"5", long+"6")

	out := buildContext("t", testPersonality, history, 400, 2)

	if out[0].Role != "system" {
		t.Fatalf("first message must be the system message")
	}
	if out[1].Role != "system" || !strings.Contains(out[1].Content, "older messages omitted") {
		t.Fatalf("expected synthetic summary after compression, got %+v", out[1])
	}
	// The most recent messages survive verbatim, oldest dropped first.
	last := out[len(out)-1]
	if !strings.HasSuffix(last.Content, "6") {
		t.Fatalf("most recent message must be kept, got tail %q", last.Content)
	}
	for _, msg := range out[2:] {
		if strings.HasSuffix(msg.Content, "1") {
			t.Fatalf("oldest message should have been dropped")
		}
	}
}

func TestBuildContextKeepsRecentFloor(t *testing.T) {
	long := strings.Repeat("x", 4000) // ~1000 estimated tokens each
	history := historyOf(long, long+"a", long+"b")

	// Even with an impossible limit, keepRecent messages survive.
	out := buildContext("t", testPersonality, history, 10, 2)

	kept := 0
	for _, msg := range out {
		if msg.Role == "assistant" {
			kept++
		}
	}
	if kept != 2 {
		t.Fatalf("expected exactly 2 recent messages kept, got %d", kept)
	}
}

func TestBuildContextDeterministic(t *testing.T) {
	long := strings.Repeat("deterministic output please ", 30)
	history := historyOf(long+"1", long+"2", long+"3", long+"4", long+"5")

	first := buildContext("t", testPersonality, history, 300, 2)
	second := buildContext("t", testPersonality, history, 300, 2)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("compression must be deterministic for identical input")
	}
}
