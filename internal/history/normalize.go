package history

import (
	"strings"

	"ai-memories/internal/llm"
)

// Normalize returns the last window turns of full, with any turns before
// the first user turn dropped. Chat APIs reject a history that opens with an
// assistant turn, and truncation can leave one at the front. When the window
// holds no user turn at all the result is empty.
func Normalize(full []llm.Message, window int) []llm.Message {
	if window <= 0 || len(full) == 0 {
		return []llm.Message{}
	}
	start := 0
	if len(full) > window {
		start = len(full) - window
	}
	tail := full[start:]
	for i, m := range tail {
		if m.Role == llm.RoleUser {
			out := make([]llm.Message, len(tail)-i)
			copy(out, tail[i:])
			return out
		}
	}
	return []llm.Message{}
}

// CanonicalRole maps a transcript role onto user or assistant. Anything
// that is not the user (assistant, model, bot) is the assistant.
func CanonicalRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), llm.RoleUser) {
		return llm.RoleUser
	}
	return llm.RoleAssistant
}

// Canonical returns a copy of msgs with every role canonicalized.
func Canonical(msgs []llm.Message) []llm.Message {
	out := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		out[i] = llm.Message{Role: CanonicalRole(m.Role), Content: m.Content}
	}
	return out
}
