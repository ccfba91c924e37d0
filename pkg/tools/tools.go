// Package tools is the catalog of actions a character can take. Each tool
// validates a command against the current world without changing it, then
// expands it into the events it causes and the time it costs.
package tools

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// Name identifies a tool.
type Name string

const (
	Move             Name = "move"
	Look             Name = "look"
	Grab             Name = "grab"
	Drop             Name = "drop"
	Eat              Name = "eat"
	Attack           Name = "attack"
	Talk             Name = "talk"
	TalkLoud         Name = "talk_loud"
	Scream           Name = "scream"
	Equip            Name = "equip"
	Unequip          Name = "unequip"
	Give             Name = "give"
	Rest             Name = "rest"
	Wait             Name = "wait"
	Close            Name = "close"
	Open             Name = "open"
	Analyze          Name = "analyze"
	Inventory        Name = "inventory"
	Stats            Name = "stats"
	ToggleStarvation Name = "toggle_starvation"
)

// Params is the parameter bag of a command.
type Params map[string]any

// Int reads an integer parameter, accepting integral JSON numbers.
func (p Params) Int(key string) (int, bool) {
	return event.Payload(p).Int(key)
}

// String reads a string parameter.
func (p Params) String(key string) string {
	return event.Payload(p).String(key)
}

// Bool reads a boolean parameter.
func (p Params) Bool(key string) (bool, bool) {
	return event.Payload(p).Bool(key)
}

// Has reports whether key was supplied.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Command is a request for an actor to use a tool.
type Command struct {
	Tool   Name   `json:"tool"`
	Params Params `json:"params,omitempty"`
}

// Plan is what a validated command turns into: the events to schedule and
// the ticks the actor stays busy.
type Plan struct {
	Events []event.Event
	Cost   int
}

// Tool is one action in the catalog. Validate must not modify anything.
type Tool interface {
	Name() Name
	Validate(p Params, w *world.World, a *actor.Character) bool
	Expand(p Params, w *world.World, a *actor.Character, tick int) Plan
}

// Registry maps tool names to tools.
type Registry struct {
	tools  map[Name]Tool
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{tools: make(map[Name]Tool), logger: logger}
}

// Register adds t, replacing any tool already registered under its name.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; exists {
		r.logger.Warn("Replacing registered tool", "tool", t.Name())
	}
	r.tools[t.Name()] = t
}

// Get looks a tool up by name.
func (r *Registry) Get(name Name) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns every registered tool name, sorted.
func (r *Registry) Names() []Name {
	return slices.Sorted(maps.Keys(r.tools))
}

// DefaultRegistry returns a registry holding the full tool catalog.
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for _, t := range Catalog() {
		r.Register(t)
	}
	return r
}

// Catalog returns a fresh instance of every built-in tool.
func Catalog() []Tool {
	return []Tool{
		moveTool{}, lookTool{}, closeTool{}, openTool{}, restTool{}, waitTool{},
		grabTool{}, dropTool{}, eatTool{}, equipTool{}, unequipTool{}, giveTool{},
		analyzeTool{}, inventoryTool{},
		talkTool{kind: event.KindTalk, name: Talk},
		talkTool{kind: event.KindTalkLoud, name: TalkLoud},
		talkTool{kind: event.KindScream, name: Scream},
		attackTool{}, statsTool{}, toggleStarvationTool{},
	}
}

// single builds the common one-event plan costed from the world's rules.
func single(w *world.World, name Name, e event.Event) Plan {
	return Plan{Events: []event.Event{e}, Cost: w.Rules().Cost(string(name))}
}

// colocated reports whether otherID is a character standing where a is.
func colocated(w *world.World, a *actor.Character, otherID string) bool {
	if _, ok := w.Character(otherID); !ok {
		return false
	}
	here, ok := w.FindCharacterLocation(a.ID)
	if !ok {
		return false
	}
	there, ok := w.FindCharacterLocation(otherID)
	return ok && here == there
}
