package tools

import (
	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/location"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// neighborParam returns the target_location parameter when it names a hex
// neighbor of the actor's current location.
func neighborParam(p Params, w *world.World, a *actor.Character) (from, to string, ok bool) {
	to = p.String("target_location")
	if to == "" {
		return "", "", false
	}
	if _, known := w.LocationStatic(to); !known {
		return "", "", false
	}
	from, placed := w.FindCharacterLocation(a.ID)
	if !placed {
		return "", "", false
	}
	static, _ := w.LocationStatic(from)
	if static == nil || !static.IsNeighbor(to) {
		return "", "", false
	}
	return from, to, true
}

type moveTool struct{}

func (moveTool) Name() Name { return Move }

// Validate accepts any direct neighbor. Closed connections do not block
// movement.
func (moveTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	_, _, ok := neighborParam(p, w, a)
	return ok
}

func (moveTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Move, event.New(event.KindMove, tick, a.ID, []string{p.String("target_location")}, nil))
}

type lookTool struct{}

func (lookTool) Name() Name { return Look }

func (lookTool) Validate(Params, *world.World, *actor.Character) bool { return true }

func (lookTool) Expand(_ Params, w *world.World, a *actor.Character, tick int) Plan {
	plan := Plan{Cost: w.Rules().Cost(string(Look))}
	loc, ok := w.FindCharacterLocation(a.ID)
	if !ok {
		return plan
	}
	static, _ := w.LocationStatic(loc)
	state, _ := w.LocationState(loc)
	if static == nil || state == nil {
		return plan
	}

	exits := make(map[string]any, len(static.HexConnections))
	for dir, n := range static.HexConnections {
		exits[dir] = map[string]any{"location": n, "status": string(state.ConnectionStatus(n))}
	}
	plan.Events = append(plan.Events, event.New(event.KindDescribeLocation, tick, a.ID, []string{loc}, event.Payload{
		"location":    loc,
		"description": static.Description,
		"occupants":   others(state.Occupants, a.ID),
		"items":       append([]string{}, state.Items...),
		"exits":       exits,
	}))
	return plan
}

func others(ids []string, self string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

type closeTool struct{}

func (closeTool) Name() Name { return Close }

func (closeTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	from, to, ok := neighborParam(p, w, a)
	return ok && w.ConnectionStatus(from, to) == location.StatusOpen
}

func (closeTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Close, event.New(event.KindCloseConnection, tick, a.ID, []string{p.String("target_location")}, nil))
}

type openTool struct{}

func (openTool) Name() Name { return Open }

func (openTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	from, to, ok := neighborParam(p, w, a)
	return ok && w.ConnectionStatus(from, to) == location.StatusClosed
}

func (openTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Open, event.New(event.KindOpenConnection, tick, a.ID, []string{p.String("target_location")}, nil))
}

// MaxDuration bounds a single rest or wait.
const MaxDuration = 100

// durationParam reads the optional ticks parameter, defaulting to 1.
func durationParam(p Params) (int, bool) {
	if !p.Has("ticks") {
		return 1, true
	}
	n, ok := p.Int("ticks")
	if !ok || n < 1 || n > MaxDuration {
		return 0, false
	}
	return n, true
}

// restTool heals one hit point per tick spent. The event lands when the
// rest is over and the cost equals the duration.
type restTool struct{}

func (restTool) Name() Name { return Rest }

func (restTool) Validate(p Params, _ *world.World, _ *actor.Character) bool {
	_, ok := durationParam(p)
	return ok
}

func (restTool) Expand(p Params, _ *world.World, a *actor.Character, tick int) Plan {
	n, _ := durationParam(p)
	return Plan{
		Events: []event.Event{event.New(event.KindRest, tick+n, a.ID, nil, event.Payload{"ticks": n, "healed": n})},
		Cost:   n,
	}
}

type waitTool struct{}

func (waitTool) Name() Name { return Wait }

func (waitTool) Validate(p Params, _ *world.World, _ *actor.Character) bool {
	_, ok := durationParam(p)
	return ok
}

func (waitTool) Expand(p Params, _ *world.World, a *actor.Character, tick int) Plan {
	n, _ := durationParam(p)
	return Plan{
		Events: []event.Event{event.New(event.KindWait, tick+n, a.ID, nil, event.Payload{"ticks": n})},
		Cost:   n,
	}
}
