package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrMissingCredential is returned when no API key is available for a call.
var ErrMissingCredential = errors.New("llm: missing api credential")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

// Conversation lays out a stateless chat call: the system prompt, the
// re-supplied history and the new user message.
func Conversation(systemPrompt string, history []Message, userMessage string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	if systemPrompt != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: systemPrompt})
	}
	msgs = append(msgs, history...)
	return append(msgs, Message{Role: RoleUser, Content: userMessage})
}
