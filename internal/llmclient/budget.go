package llmclient

import (
	"fmt"

	"github.com/wayfarerhq/pilot/pkg/models"
)

// Rough chars-per-token ratio used for budgeting without a real tokenizer.
const charsPerToken = 4

// Budget bounds how much conversation content is sent to a provider on one
// call: a per-message cap, a per-tool-result cap, and a whole-conversation
// cap. The system message is never dropped; like every message it is capped
// at MaxMessageTokens, and the whole-conversation pass does not truncate it
// further.
type Budget struct {
	MaxMessageTokens      int
	MaxToolResultTokens   int
	MaxConversationTokens int
}

// DefaultBudget matches the limits assumed throughout the agent loop's
// message-window pruning.
func DefaultBudget() Budget {
	return Budget{
		MaxMessageTokens:      5000,
		MaxToolResultTokens:   3750,
		MaxConversationTokens: 32000,
	}
}

func tokenEstimate(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}

func truncateToTokens(s string, maxTokens int) string {
	maxChars := maxTokens * charsPerToken
	if len(s) <= maxChars {
		return s
	}
	return s[:maxChars] + fmt.Sprintf("... [truncated, %d chars omitted]", len(s)-maxChars)
}

// Apply truncates oversized messages and, if the whole conversation still
// exceeds MaxConversationTokens, drops the oldest non-system messages until
// it fits (further truncating the most recent kept message if even that is
// not enough). The system message is always preserved.
func (b Budget) Apply(messages []models.LLMMessage) []models.LLMMessage {
	capped := make([]models.LLMMessage, len(messages))
	for i, m := range messages {
		limit := b.MaxMessageTokens
		if m.Role == models.LLMRoleTool {
			limit = b.MaxToolResultTokens
		}
		m.Content = truncateToTokens(m.Content, limit)
		capped[i] = m
	}

	total := func(msgs []models.LLMMessage) int {
		sum := 0
		for _, m := range msgs {
			sum += tokenEstimate(m.Content)
		}
		return sum
	}

	if total(capped) <= b.MaxConversationTokens {
		return capped
	}

	var system *models.LLMMessage
	rest := make([]models.LLMMessage, 0, len(capped))
	for i := range capped {
		if capped[i].Role == models.LLMRoleSystem && system == nil {
			system = &capped[i]
			continue
		}
		rest = append(rest, capped[i])
	}

	systemTokens := 0
	if system != nil {
		systemTokens = tokenEstimate(system.Content)
	}

	for len(rest) > 1 && systemTokens+total(rest) > b.MaxConversationTokens {
		rest = rest[1:]
	}

	for systemTokens+total(rest) > b.MaxConversationTokens && len(rest) > 0 {
		last := &rest[len(rest)-1]
		remaining := b.MaxConversationTokens - systemTokens - total(rest[:len(rest)-1])
		if remaining < 0 {
			remaining = 0
		}
		last.Content = truncateToTokens(last.Content, remaining)
		break
	}

	out := make([]models.LLMMessage, 0, len(rest)+1)
	if system != nil {
		out = append(out, *system)
	}
	out = append(out, rest...)
	return out
}
