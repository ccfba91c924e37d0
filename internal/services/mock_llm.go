package services

import (
	"context"
	"sync"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	ChatFunc func(ctx context.Context, messages []ChatMessage) (string, error)

	// Reply is returned when ChatFunc is nil.
	Reply string

	ChatCalls [][]ChatMessage

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a mock that answers every call with reply.
func NewMockLLMAPI(reply string) *MockLLMAPI {
	return &MockLLMAPI{Reply: reply}
}

// Chat records the call and answers it.
func (m *MockLLMAPI) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, messages)
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	return m.Reply, nil
}

// Calls returns a copy of the recorded calls.
func (m *MockLLMAPI) Calls() [][]ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]ChatMessage, len(m.ChatCalls))
	copy(out, m.ChatCalls)
	return out
}
