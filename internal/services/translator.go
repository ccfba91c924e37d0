package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
)

// CommandPrompt is the system prompt sent ahead of the player's text.
const CommandPrompt = `You are a command parser for a text game. Return only a JSON object describing the player's intended action, shaped as {"tool": "<name>", "params": {...}}.
Available tools:
  look()
  move(target_location)
  grab(item_id)
  drop(item_id)
  eat(item_id)
  attack(target_id)
  talk(content, target_id?)
  talk_loud(content)
  scream(content)
  equip(item_id, slot)
  unequip(slot)
  give(item_id, target_id)
  rest(ticks?)
  wait(ticks?)
  open(target_location)
  close(target_location)
  analyze(item_id)
  inventory()
  stats()
  toggle_starvation(enabled?)
If the text does not describe one of these actions, return {}.`

// CommandTranslator turns free text into a command by asking an LLM.
type CommandTranslator struct {
	llm    LLMService
	known  func(tools.Name) bool
	logger *slog.Logger
}

// NewCommandTranslator creates a translator accepting the tools in registry.
func NewCommandTranslator(llm LLMService, registry *tools.Registry, logger *slog.Logger) *CommandTranslator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandTranslator{
		llm: llm,
		known: func(name tools.Name) bool {
			_, ok := registry.Get(name)
			return ok
		},
		logger: logger,
	}
}

// Translate asks the model for a command. Transport failures are returned
// wrapped; a reply that is not a JSON command naming a known tool yields a
// TRANSLATION_FAILURE error.
func (t *CommandTranslator) Translate(ctx context.Context, text string) (tools.Command, error) {
	reply, err := t.llm.Chat(ctx, []ChatMessage{
		{Role: ChatRoleSystem, Content: CommandPrompt},
		{Role: ChatRoleUser, Content: text},
	})
	if err != nil {
		return tools.Command{}, fmt.Errorf("failed to translate command: %w", err)
	}

	cmd, err := parseReply(reply)
	if err != nil {
		t.logger.Debug("Translation reply rejected", "text", text, "reply", reply, "error", err)
		return tools.Command{}, sim.ErrTranslationFailure(text, err)
	}
	if cmd.Tool == "" || !t.known(cmd.Tool) {
		t.logger.Debug("Translation named no known tool", "text", text, "tool", cmd.Tool)
		return tools.Command{}, sim.ErrTranslationFailure(text, nil)
	}
	return cmd, nil
}

// parseReply accepts {"tool":..,"params":{..}} as well as the flat form
// {"tool":..,"target_id":..}. Code fences around the object are ignored.
func parseReply(reply string) (tools.Command, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return tools.Command{}, fmt.Errorf("reply is not a JSON object: %w", err)
	}

	name, _ := raw["tool"].(string)
	cmd := tools.Command{Tool: tools.Name(strings.ToLower(strings.TrimSpace(name))), Params: tools.Params{}}
	if nested, ok := raw["params"].(map[string]any); ok {
		for k, v := range nested {
			cmd.Params[k] = v
		}
	}
	for k, v := range raw {
		if k == "tool" || k == "params" {
			continue
		}
		if _, set := cmd.Params[k]; !set {
			cmd.Params[k] = v
		}
	}
	return cmd, nil
}
