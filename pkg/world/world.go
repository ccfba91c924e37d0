// Package world holds the authoritative simulation state: characters,
// locations and items, and the rules for mutating them in response to
// events.
//
// The World exclusively owns its entities. Other components read through
// the getters and change state only through ApplyEvent, RecordMemory and
// ResetHunger.
package world

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/item"
	"github.com/jwebster45206/hexsim/pkg/location"
	"github.com/jwebster45206/hexsim/pkg/rules"
)

// World is the in-memory world model.
type World struct {
	characters map[string]*actor.Character
	statics    map[string]*location.Static
	states     map[string]*location.State
	blueprints map[string]item.Blueprint
	items      map[string]*item.Instance

	// character id -> location id, kept in step with occupant lists
	whereIs map[string]string

	rules  rules.Rules
	logger *slog.Logger
}

// New creates an empty world governed by r.
func New(r rules.Rules) *World {
	return &World{
		characters: make(map[string]*actor.Character),
		statics:    make(map[string]*location.Static),
		states:     make(map[string]*location.State),
		blueprints: make(map[string]item.Blueprint),
		items:      make(map[string]*item.Instance),
		whereIs:    make(map[string]string),
		rules:      r,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for inconsistency diagnostics.
// Returns the World for method chaining.
func (w *World) WithLogger(logger *slog.Logger) *World {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Rules returns the tunables the world was built with.
func (w *World) Rules() rules.Rules {
	return w.rules
}

// AddCharacter registers a character, filling defaults for omitted fields.
func (w *World) AddCharacter(c *actor.Character) {
	c.ApplyDefaults()
	w.characters[c.ID] = c
}

// AddLocation registers the static and mutable halves of a location. A nil
// state is replaced by an empty one.
func (w *World) AddLocation(static *location.Static, state *location.State) {
	if state == nil {
		state = &location.State{ID: static.ID}
	}
	state.ApplyDefaults()
	w.statics[static.ID] = static
	w.states[static.ID] = state
}

// AddBlueprint registers an item blueprint.
func (w *World) AddBlueprint(b item.Blueprint) {
	w.blueprints[b.ID] = b
}

// AddItem registers an item instance.
func (w *World) AddItem(i *item.Instance) {
	w.items[i.ID] = i
}

// Link rebuilds the character location index from occupant lists and fills
// in each item instance's location or owner from where it is listed, when
// the instance document left them unset. Call it once after loading.
func (w *World) Link() error {
	w.whereIs = make(map[string]string, len(w.characters))
	for _, locID := range w.Locations() {
		for _, occ := range w.states[locID].Occupants {
			if prev, ok := w.whereIs[occ]; ok {
				return fmt.Errorf("character %s occupies both %s and %s", occ, prev, locID)
			}
			w.whereIs[occ] = locID
		}
		for _, itemID := range w.states[locID].Items {
			if inst, ok := w.items[itemID]; ok && inst.Location == "" && inst.Owner == "" {
				inst.PlaceAt(locID)
			}
		}
	}
	for _, id := range w.Characters() {
		c := w.characters[id]
		for _, itemID := range append(slices.Clone(c.Inventory), c.EquippedItems()...) {
			if inst, ok := w.items[itemID]; ok && inst.Location == "" && inst.Owner == "" {
				inst.GiveTo(id)
			}
		}
	}
	return nil
}

// Character returns the character with id.
func (w *World) Character(id string) (*actor.Character, bool) {
	c, ok := w.characters[id]
	return c, ok
}

// Characters returns every character id, sorted.
func (w *World) Characters() []string {
	return slices.Sorted(maps.Keys(w.characters))
}

// LocationStatic returns the immutable half of a location.
func (w *World) LocationStatic(id string) (*location.Static, bool) {
	s, ok := w.statics[id]
	return s, ok
}

// LocationState returns the mutable half of a location.
func (w *World) LocationState(id string) (*location.State, bool) {
	s, ok := w.states[id]
	return s, ok
}

// Locations returns every location id, sorted.
func (w *World) Locations() []string {
	return slices.Sorted(maps.Keys(w.statics))
}

// Blueprint returns the blueprint with id.
func (w *World) Blueprint(id string) (item.Blueprint, bool) {
	b, ok := w.blueprints[id]
	return b, ok
}

// Blueprints returns every blueprint id, sorted.
func (w *World) Blueprints() []string {
	return slices.Sorted(maps.Keys(w.blueprints))
}

// Item returns the item instance with id.
func (w *World) Item(id string) (*item.Instance, bool) {
	i, ok := w.items[id]
	return i, ok
}

// Items returns every item instance id, sorted.
func (w *World) Items() []string {
	return slices.Sorted(maps.Keys(w.items))
}

// ItemBlueprint resolves the blueprint of an item instance.
func (w *World) ItemBlueprint(itemID string) (item.Blueprint, bool) {
	inst, ok := w.items[itemID]
	if !ok {
		return item.Blueprint{}, false
	}
	return w.Blueprint(inst.BlueprintID)
}

// FindCharacterLocation returns the location the character occupies.
func (w *World) FindCharacterLocation(id string) (string, bool) {
	loc, ok := w.whereIs[id]
	return loc, ok
}

// Occupants returns a copy of the occupant list of a location.
func (w *World) Occupants(locationID string) []string {
	if s, ok := w.states[locationID]; ok {
		return slices.Clone(s.Occupants)
	}
	return nil
}

// ConnectionStatus returns the status of the edge from one location to a
// neighbor, as recorded on the from side.
func (w *World) ConnectionStatus(from, to string) location.Status {
	if s, ok := w.states[from]; ok {
		return s.ConnectionStatus(to)
	}
	return location.StatusOpen
}

// ArmourRating sums the armour rating of everything the character has
// equipped.
func (w *World) ArmourRating(c *actor.Character) int {
	total := 0
	for _, itemID := range c.EquippedItems() {
		if b, ok := w.ItemBlueprint(itemID); ok {
			total += b.ArmourRating
		}
	}
	return total
}

// RecordMemory appends a record to the character's short-term memory,
// bounded by the configured capacity.
func (w *World) RecordMemory(characterID string, rec actor.MemoryRecord) {
	c, ok := w.characters[characterID]
	if !ok {
		return
	}
	c.Remember(rec, w.rules.MemoryCapacity)
}

// UpdateHunger reclassifies every living character's hunger stage for tick
// and returns a starvation damage event for each starving one. It applies
// no damage itself.
func (w *World) UpdateHunger(tick int) []event.Event {
	var out []event.Event
	for _, id := range w.Characters() {
		c := w.characters[id]
		if c.IsDead() {
			continue
		}
		elapsed := tick - c.LastMealTick
		switch {
		case elapsed >= w.rules.StarvingAfter:
			c.HungerStage = actor.HungerStarving
			out = append(out, event.New(event.KindDamageApplied, tick, id, []string{id}, event.Payload{
				"amount":      w.rules.StarvationDamage,
				"damage_type": "starvation",
			}))
		case elapsed >= w.rules.HungryAfter:
			c.HungerStage = actor.HungerHungry
		default:
			c.HungerStage = actor.HungerSated
		}
	}
	return out
}

// ResetHunger marks every character as freshly fed at tick.
func (w *World) ResetHunger(tick int) {
	for _, c := range w.characters {
		c.HungerStage = actor.HungerSated
		c.LastMealTick = tick
	}
}

// Validate checks the cross-entity invariants: references resolve, every
// character is in at most one place and every item is in exactly one place.
func (w *World) Validate() error {
	seenChar := make(map[string]string)
	seenItem := make(map[string]string)
	claim := func(itemID, where string) error {
		if prev, ok := seenItem[itemID]; ok {
			return fmt.Errorf("item %s is in both %s and %s", itemID, prev, where)
		}
		seenItem[itemID] = where
		if _, ok := w.items[itemID]; !ok {
			return fmt.Errorf("%s references unknown item %s", where, itemID)
		}
		return nil
	}

	for _, locID := range w.Locations() {
		static := w.statics[locID]
		for dir, n := range static.HexConnections {
			if _, ok := w.statics[n]; !ok {
				return fmt.Errorf("location %s: %s leads to unknown location %s", locID, dir, n)
			}
		}
		state := w.states[locID]
		for _, occ := range state.Occupants {
			if _, ok := w.characters[occ]; !ok {
				return fmt.Errorf("location %s lists unknown character %s", locID, occ)
			}
			if prev, ok := seenChar[occ]; ok {
				return fmt.Errorf("character %s occupies both %s and %s", occ, prev, locID)
			}
			seenChar[occ] = locID
		}
		for _, itemID := range state.Items {
			if err := claim(itemID, "location "+locID); err != nil {
				return err
			}
		}
	}

	for _, id := range w.Characters() {
		c := w.characters[id]
		for _, itemID := range c.Inventory {
			if err := claim(itemID, "inventory of "+id); err != nil {
				return err
			}
		}
		for _, itemID := range c.EquippedItems() {
			if err := claim(itemID, "equipment of "+id); err != nil {
				return err
			}
		}
	}

	for _, id := range w.Items() {
		inst := w.items[id]
		if _, ok := w.blueprints[inst.BlueprintID]; !ok {
			return fmt.Errorf("item %s references unknown blueprint %s", id, inst.BlueprintID)
		}
		if inst.Location != "" && inst.Owner != "" {
			return fmt.Errorf("item %s has both a location and an owner", id)
		}
	}
	return nil
}
