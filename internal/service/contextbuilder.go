package service

import (
	"fmt"

	"github.com/roundtable-hq/orchestrator/internal/adapter/gateway"
	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// estimateTokens approximates the token count of a string. Rough but cheap,
// and deterministic for identical input.
func estimateTokens(s string) int {
	return len(s) / 4
}

// buildContext assembles the bounded input for one provider turn: a system
// message carrying the topic and the speaker's personality, followed by the
// transcript oldest-first. When the estimate exceeds tokenLimit, the oldest
// messages are dropped first and replaced with a single synthetic summary
// line; the most recent keepRecent messages are always kept verbatim.
// Compression is deterministic: identical input produces identical output.
func buildContext(topic string, personality domain.Personality, history []domain.Message, tokenLimit, keepRecent int) []gateway.ChatMessage {
	system := fmt.Sprintf("Topic: %s\n\nYou are speaking as %s. %s", topic, personality.Title, personality.Instructions)
	if personality.Style != "" {
		system += fmt.Sprintf(" Style: %s.", personality.Style)
	}

	messages := make([]gateway.ChatMessage, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == domain.RoleModel {
			role = "assistant"
		}
		messages = append(messages, gateway.ChatMessage{
			Role:    role,
			Content: msg.Content,
			Name:    msg.Author,
		})
	}

	if keepRecent < 1 {
		keepRecent = 1
	}

	total := estimateTokens(system)
	for _, msg := range messages {
		total += estimateTokens(msg.Content)
	}

	dropped := 0
	for total > tokenLimit && len(messages) > keepRecent {
		total -= estimateTokens(messages[0].Content)
		messages = messages[1:]
		dropped++
	}

	out := make([]gateway.ChatMessage, 0, len(messages)+2)
	out = append(out, gateway.ChatMessage{Role: "system", Content: system})
	if dropped > 0 {
		out = append(out, gateway.ChatMessage{
			Role:    "system",
			Content: fmt.Sprintf("[earlier discussion: %d older messages omitted]", dropped),
		})
	}
	out = append(out, messages...)
	return out
}
