package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jwebster45206/hexsim/internal/handlers"
)

// APIError is a non-200 response from the API.
type APIError struct {
	Status   int
	Response handlers.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Code != "" {
		return fmt.Sprintf("API returned %d (%s): %s", e.Status, e.Response.Code, e.Response.Error)
	}
	return fmt.Sprintf("API returned %d: %s", e.Status, e.Response.Error)
}

// PostCommand posts a command or free text to /v1/command.
func PostCommand(ctx context.Context, client *http.Client, baseURL string, req handlers.CommandRequest) (*handlers.OutcomeResponse, error) {
	var out handlers.OutcomeResponse
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/command", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostTick advances the clock by count ticks.
func PostTick(ctx context.Context, client *http.Client, baseURL string, count int) (*handlers.OutcomeResponse, error) {
	var out handlers.OutcomeResponse
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/tick", handlers.TickRequest{Count: count}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCharacter retrieves a character and where it stands.
func GetCharacter(ctx context.Context, client *http.Client, baseURL, id string) (*handlers.CharacterResponse, error) {
	var out handlers.CharacterResponse
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/characters/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCharacters returns every character id.
func ListCharacters(ctx context.Context, client *http.Client, baseURL string) ([]string, error) {
	var out struct {
		Characters []string `json:"characters"`
	}
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/characters", nil, &out); err != nil {
		return nil, err
	}
	return out.Characters, nil
}

func doJSON(ctx context.Context, client *http.Client, method, target string, body, v any) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, &apiErr.Response); err != nil {
			apiErr.Response.Error = string(data)
		}
		return apiErr
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
