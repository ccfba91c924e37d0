package rules

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the tunable numbers of the simulation.
type Rules struct {
	// ToolCosts maps tool name to the ticks of unavailability it incurs.
	// rest and wait ignore this and cost their requested duration.
	ToolCosts map[string]int `yaml:"tool_costs"`

	HungryAfter      int `yaml:"hungry_after"`
	StarvingAfter    int `yaml:"starving_after"`
	StarvationDamage int `yaml:"starvation_damage"`

	MemoryCapacity int     `yaml:"memory_capacity"`
	ChatterChance  float64 `yaml:"chatter_chance"`
}

var defaultToolCosts = map[string]int{
	"move":              5,
	"look":              1,
	"grab":              1,
	"drop":              1,
	"eat":               1,
	"attack":            3,
	"talk":              1,
	"talk_loud":         1,
	"scream":            1,
	"equip":             1,
	"unequip":           1,
	"give":              1,
	"close":             1,
	"open":              1,
	"analyze":           0,
	"inventory":         0,
	"stats":             0,
	"toggle_starvation": 0,
}

// Default returns the baseline rules.
func Default() Rules {
	return Rules{
		ToolCosts:        maps.Clone(defaultToolCosts),
		HungryAfter:      20,
		StarvingAfter:    40,
		StarvationDamage: 1,
		MemoryCapacity:   20,
		ChatterChance:    0.3,
	}
}

// Cost returns the configured cost for a tool, or 1 for tools that have no
// entry.
func (r Rules) Cost(tool string) int {
	if c, ok := r.ToolCosts[tool]; ok {
		return c
	}
	return 1
}

// Load reads a YAML rules file on top of the defaults. Fields left out of
// the file keep their default values.
func Load(path string) (Rules, error) {
	r := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("failed to read rules file: %w", err)
	}

	var overlay Rules
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return r, fmt.Errorf("rules %s: %w", path, err)
	}

	maps.Copy(r.ToolCosts, overlay.ToolCosts)
	if overlay.HungryAfter > 0 {
		r.HungryAfter = overlay.HungryAfter
	}
	if overlay.StarvingAfter > 0 {
		r.StarvingAfter = overlay.StarvingAfter
	}
	if overlay.StarvationDamage > 0 {
		r.StarvationDamage = overlay.StarvationDamage
	}
	if overlay.MemoryCapacity > 0 {
		r.MemoryCapacity = overlay.MemoryCapacity
	}
	if overlay.ChatterChance > 0 {
		r.ChatterChance = overlay.ChatterChance
	}

	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

// Validate checks the rules are internally consistent.
func (r Rules) Validate() error {
	if r.HungryAfter >= r.StarvingAfter {
		return fmt.Errorf("hungry_after (%d) must be below starving_after (%d)", r.HungryAfter, r.StarvingAfter)
	}
	if r.ChatterChance < 0 || r.ChatterChance > 1 {
		return fmt.Errorf("chatter_chance must be within [0,1], got %v", r.ChatterChance)
	}
	for tool, cost := range r.ToolCosts {
		if cost < 0 {
			return fmt.Errorf("tool %s has negative cost %d", tool, cost)
		}
	}
	return nil
}
