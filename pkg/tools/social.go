package tools

import (
	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// talkTool covers talk, talk_loud and scream. They differ only in the event
// kind, which decides how far the words carry.
type talkTool struct {
	name Name
	kind event.Kind
}

func (t talkTool) Name() Name { return t.name }

func (talkTool) Validate(Params, *world.World, *actor.Character) bool { return true }

func (t talkTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	var targets []string
	if target := p.String("target_id"); target != "" {
		targets = []string{target}
	}
	return single(w, t.name, event.New(t.kind, tick, a.ID, targets, event.Payload{"content": p.String("content")}))
}

type attackTool struct{}

func (attackTool) Name() Name { return Attack }

func (attackTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	target := p.String("target_id")
	return target != "" && target != a.ID && colocated(w, a, target)
}

// Expand only schedules the attempt. Resolution happens when the simulator
// dispatches it.
func (attackTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Attack, event.New(event.KindAttackAttempt, tick, a.ID, []string{p.String("target_id")}, nil))
}

type statsTool struct{}

func (statsTool) Name() Name { return Stats }

func (statsTool) Validate(Params, *world.World, *actor.Character) bool { return true }

func (statsTool) Expand(_ Params, w *world.World, a *actor.Character, tick int) Plan {
	attrs := make(map[string]any, len(a.Attributes))
	for k, v := range a.Attributes {
		attrs[k] = v
	}
	skills := make(map[string]any, len(a.Skills))
	for k, v := range a.Skills {
		skills[k] = v
	}
	return single(w, Stats, event.New(event.KindStats, tick, a.ID, nil, event.Payload{
		"hp":         a.HP,
		"max_hp":     a.MaxHP,
		"attributes": attrs,
		"skills":     skills,
		"hunger":     string(a.HungerStage),
	}))
}

// toggleStarvationTool flips the simulator's starvation mode, or sets it
// when enabled is given.
type toggleStarvationTool struct{}

func (toggleStarvationTool) Name() Name { return ToggleStarvation }

func (toggleStarvationTool) Validate(p Params, _ *world.World, _ *actor.Character) bool {
	if !p.Has("enabled") {
		return true
	}
	_, ok := p.Bool("enabled")
	return ok
}

func (toggleStarvationTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	var payload event.Payload
	if enabled, ok := p.Bool("enabled"); ok {
		payload = event.Payload{"enabled": enabled}
	}
	return single(w, ToggleStarvation, event.New(event.KindToggleStarvation, tick, a.ID, nil, payload))
}
