package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/hexsim/internal/config"
)

// OpenAIService implements LLMService for any OpenAI-compatible chat
// completions endpoint (OpenAI, Ollama, llama.cpp, vLLM).
type OpenAIService struct {
	endpoint   string
	apiKey     string
	modelName  string
	maxTokens  int
	httpClient *http.Client
}

var _ LLMService = (*OpenAIService)(nil)

// ChatCompletionRequest is the request body of a chat completion call.
type ChatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse is the part of the response the translator needs.
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIService creates a client for cfg.Endpoint, the full URL of the
// chat completions route.
func NewOpenAIService(cfg config.LLMConfig) *OpenAIService {
	return &OpenAIService{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		modelName: cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Chat posts messages and returns the first choice's content.
func (c *OpenAIService) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	request := ChatCompletionRequest{
		Model:     c.modelName,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	}
	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from API")
	}

	choice := completion.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("model refused to respond: %s", choice.Message.Refusal)
	}
	return choice.Message.Content, nil
}
