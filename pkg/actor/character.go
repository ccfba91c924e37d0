package actor

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jwebster45206/d20"
	"github.com/jwebster45206/hexsim/pkg/event"
)

// HungerStage classifies how long a character has gone without food.
type HungerStage string

const (
	HungerSated    HungerStage = "sated"
	HungerHungry   HungerStage = "hungry"
	HungerStarving HungerStage = "starving"
)

// TagDead marks a character that has died. Dead characters never act again.
const TagDead = "dead"

// Core ability scores, in the order the stat block lists them.
var coreAttributes = []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

// Tags splits a character's tags into permanent and mutable sets.
type Tags struct {
	Inherent []string `json:"inherent"`
	Dynamic  []string `json:"dynamic"`
}

// MemoryRecord is one perceived event in a character's short-term memory.
type MemoryRecord struct {
	Tick    int           `json:"tick"`
	Kind    event.Kind    `json:"kind"`
	ActorID string        `json:"actor_id"`
	Payload event.Payload `json:"payload,omitempty"`
}

// Character is a player or non-player character in the world.
type Character struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Inventory []string           `json:"inventory"`
	Slots     map[string]*string `json:"slots"` // slot name -> item id, nil when empty
	HP        int                `json:"hp"`
	MaxHP     int                `json:"max_hp"`

	ShortTermMemory []MemoryRecord    `json:"short_term_memory"`
	LongTermMemory  []map[string]any  `json:"long_term_memory,omitempty"`
	Goals           []map[string]any  `json:"goals,omitempty"`
	Relationships   map[string]string `json:"relationships,omitempty"`
	KnownLocations  map[string]string `json:"known_locations,omitempty"`

	Tags       Tags           `json:"tags"`
	Attributes map[string]int `json:"attributes,omitempty"`
	Skills     map[string]int `json:"skills,omitempty"`

	HungerStage       HungerStage `json:"hunger_stage"`
	LastMealTick      int         `json:"last_meal_tick"`
	NextAvailableTick int         `json:"next_available_tick"`
}

// ApplyDefaults fills the optional fields that loaded data may omit.
func (c *Character) ApplyDefaults() {
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Inventory == nil {
		c.Inventory = []string{}
	}
	if c.Slots == nil {
		c.Slots = make(map[string]*string)
	}
	if c.MaxHP == 0 {
		c.MaxHP = c.HP
	}
	if c.HungerStage == "" {
		c.HungerStage = HungerSated
	}
	if c.Attributes == nil {
		c.Attributes = make(map[string]int)
	}
	if c.Skills == nil {
		c.Skills = make(map[string]int)
	}
}

// HasTag reports whether the character carries tag as either an inherent or
// a dynamic tag.
func (c *Character) HasTag(tag string) bool {
	return slices.Contains(c.Tags.Inherent, tag) || slices.Contains(c.Tags.Dynamic, tag)
}

// AddDynamicTag adds tag to the dynamic set unless already present.
func (c *Character) AddDynamicTag(tag string) {
	if slices.Contains(c.Tags.Dynamic, tag) {
		return
	}
	c.Tags.Dynamic = append(c.Tags.Dynamic, tag)
}

// RemoveDynamicTag drops tag from the dynamic set. Inherent tags are never
// removed.
func (c *Character) RemoveDynamicTag(tag string) {
	c.Tags.Dynamic = slices.DeleteFunc(c.Tags.Dynamic, func(t string) bool { return t == tag })
}

// IsDead reports whether the character has been tagged dead.
func (c *Character) IsDead() bool {
	return c.HasTag(TagDead)
}

// IsBusy reports whether the character is still unavailable at tick.
func (c *Character) IsBusy(tick int) bool {
	return c.NextAvailableTick > tick
}

// HasInInventory reports whether itemID is carried (not equipped).
func (c *Character) HasInInventory(itemID string) bool {
	return slices.Contains(c.Inventory, itemID)
}

// HasSlot reports whether the character knows the named slot.
func (c *Character) HasSlot(slot string) bool {
	_, ok := c.Slots[slot]
	return ok
}

// EquippedItem returns the item in slot, or "" when the slot is empty or
// unknown.
func (c *Character) EquippedItem(slot string) string {
	if id := c.Slots[slot]; id != nil {
		return *id
	}
	return ""
}

// EquippedSlot returns the slot holding itemID.
func (c *Character) EquippedSlot(itemID string) (string, bool) {
	for slot, id := range c.Slots {
		if id != nil && *id == itemID {
			return slot, true
		}
	}
	return "", false
}

// EquippedItems returns every equipped item id, ordered by slot name.
func (c *Character) EquippedItems() []string {
	var out []string
	for _, slot := range slices.Sorted(maps.Keys(c.Slots)) {
		if id := c.Slots[slot]; id != nil {
			out = append(out, *id)
		}
	}
	return out
}

// RemoveFromInventory drops itemID from the inventory, reporting whether it
// was there.
func (c *Character) RemoveFromInventory(itemID string) bool {
	i := slices.Index(c.Inventory, itemID)
	if i < 0 {
		return false
	}
	c.Inventory = slices.Delete(c.Inventory, i, i+1)
	return true
}

// Attribute returns an ability score, or 10 when the character has none.
func (c *Character) Attribute(name string) int {
	if v, ok := c.Attributes[name]; ok {
		return v
	}
	return 10
}

// Modifier returns the ability modifier for the named attribute, floor((score-10)/2).
func (c *Character) Modifier(name string) int {
	return AbilityModifier(c.Attribute(name))
}

// AbilityModifier converts an ability score to its modifier.
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// Remember appends rec to short-term memory, evicting the oldest records once
// capacity is exceeded.
func (c *Character) Remember(rec MemoryRecord, capacity int) {
	c.ShortTermMemory = append(c.ShortTermMemory, rec)
	if capacity > 0 && len(c.ShortTermMemory) > capacity {
		c.ShortTermMemory = slices.Clone(c.ShortTermMemory[len(c.ShortTermMemory)-capacity:])
	}
}

// Sheet builds a d20 stat block for the character. The armour class is
// 10 + dexterity modifier + armour, where armour is the summed rating of
// whatever the character has equipped. Skills become combat modifiers.
func (c *Character) Sheet(armour int) (*d20.Actor, error) {
	attrs := make(map[string]int, len(coreAttributes)+len(c.Attributes))
	for _, key := range coreAttributes {
		attrs[key] = c.Attribute(key)
	}
	maps.Copy(attrs, c.Attributes)

	maxHP := max(c.MaxHP, c.HP, 1)
	sheet, err := d20.NewActor(c.ID).
		WithHP(maxHP).
		WithAC(10 + c.Modifier("dexterity") + armour).
		WithAttributes(attrs).
		WithCombatModifiers(maps.Clone(c.Skills)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if c.HP != maxHP && c.HP > 0 {
		if err := sheet.SetHP(c.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return sheet, nil
}
