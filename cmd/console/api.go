package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jwebster45206/hexsim/internal/handlers"
	"github.com/jwebster45206/hexsim/internal/play"
	"github.com/jwebster45206/hexsim/pkg/command"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusServiceUnavailable
}

// apiBackend drives a session hosted by hexsim-api.
type apiBackend struct {
	baseURL    string
	client     *http.Client
	playerID   string
	characters map[string]bool
	lastTick   int
}

func newAPIBackend(ctx context.Context, client *http.Client, baseURL, playerID string) (*apiBackend, error) {
	b := &apiBackend{baseURL: strings.TrimRight(baseURL, "/"), client: client, playerID: playerID}
	var list struct {
		Characters []string `json:"characters"`
	}
	if err := b.get(ctx, "/v1/characters", &list); err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	b.characters = make(map[string]bool, len(list.Characters))
	for _, id := range list.Characters {
		b.characters[id] = true
	}
	if !b.characters[playerID] {
		return nil, fmt.Errorf("player %q is not a character on the server", playerID)
	}
	return b, nil
}

func (b *apiBackend) Name() string { return b.baseURL }

func (b *apiBackend) isCharacter(id string) bool { return b.characters[id] }

func (b *apiBackend) Handle(ctx context.Context, line string) play.Reply {
	res, err := command.Parse(line, b.isCharacter)
	var usage *command.UsageError
	switch {
	case errors.Is(err, command.ErrEmpty):
		return play.Reply{Tick: b.lastTick}
	case errors.As(err, &usage):
		return play.Reply{Error: "Usage: " + usage.Usage, Tick: b.lastTick}
	case errors.Is(err, command.ErrUnknown):
		return b.send(ctx, handlers.CommandRequest{ActorID: b.playerID, Text: line})
	case err != nil:
		return play.Reply{Error: err.Error(), Tick: b.lastTick}
	}

	switch res.Meta {
	case command.MetaQuit:
		return play.Reply{Quit: true, Tick: b.lastTick}
	case command.MetaHelp:
		return play.Reply{Lines: strings.Split(command.Help, "\n"), Tick: b.lastTick}
	case command.MetaMemory:
		return b.memory(ctx)
	}
	return b.send(ctx, handlers.CommandRequest{
		ActorID: b.playerID,
		Tool:    res.Command.Tool,
		Params:  res.Command.Params,
	})
}

func (b *apiBackend) send(ctx context.Context, req handlers.CommandRequest) play.Reply {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return play.Reply{Error: fmt.Sprintf("failed to marshal request: %v", err), Tick: b.lastTick}
	}

	var out handlers.OutcomeResponse
	if err := b.do(ctx, http.MethodPost, "/v1/command", bytes.NewReader(jsonData), &out); err != nil {
		return play.Reply{Error: err.Error(), Tick: b.lastTick}
	}
	b.lastTick = out.Tick
	return play.Reply{Lines: out.Lines, Tick: out.Tick}
}

func (b *apiBackend) memory(ctx context.Context) play.Reply {
	var resp handlers.CharacterResponse
	if err := b.get(ctx, "/v1/characters/"+url.PathEscape(b.playerID), &resp); err != nil {
		return play.Reply{Error: err.Error(), Tick: b.lastTick}
	}
	b.lastTick = resp.Tick
	if resp.Character == nil || len(resp.Character.ShortTermMemory) == 0 {
		return play.Reply{Lines: []string{"You remember nothing yet."}, Tick: resp.Tick}
	}
	var lines []string
	for _, m := range resp.Character.ShortTermMemory {
		line := fmt.Sprintf("[tick %d] %s: %s", m.Tick, m.ActorID, m.Kind)
		if content := m.Payload.String("content"); content != "" {
			line += " - " + content
		}
		lines = append(lines, line)
	}
	return play.Reply{Lines: lines, Tick: resp.Tick}
}

func (b *apiBackend) Status(ctx context.Context) (play.Status, error) {
	var resp handlers.CharacterResponse
	if err := b.get(ctx, "/v1/characters/"+url.PathEscape(b.playerID), &resp); err != nil {
		return play.Status{}, err
	}
	if resp.Character == nil {
		return play.Status{}, errors.New("server returned no character")
	}
	b.lastTick = resp.Tick
	st := play.StatusFromCharacter(resp.Character, resp.Location, resp.Tick)
	st.Session = b.baseURL
	return st, nil
}

func (b *apiBackend) get(ctx context.Context, path string, v any) error {
	return b.do(ctx, http.MethodGet, path, nil, v)
}

func (b *apiBackend) do(ctx context.Context, method, path string, body io.Reader, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		if errorResp.Message != "" {
			return errors.New(errorResp.Message)
		}
		return errors.New(errorResp.Error)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
