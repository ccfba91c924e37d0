package services

import (
	"context"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// ChatMessage is one message of a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// LLMService defines the interface for interacting with a chat completion
// endpoint.
type LLMService interface {
	// Chat sends messages and returns the content of the first choice.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}
