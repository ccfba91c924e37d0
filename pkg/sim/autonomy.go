package sim

import (
	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/location"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// Decider chooses what an autonomous character does on a tick. Returning
// false means the character idles.
type Decider interface {
	Decide(w *world.World, c *actor.Character, r dice.Roller) (tools.Command, bool)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(w *world.World, c *actor.Character, r dice.Roller) (tools.Command, bool)

func (f DeciderFunc) Decide(w *world.World, c *actor.Character, r dice.Roller) (tools.Command, bool) {
	return f(w, c, r)
}

// Idle never acts.
var Idle = DeciderFunc(func(*world.World, *actor.Character, dice.Roller) (tools.Command, bool) {
	return tools.Command{}, false
})

var defaultChatter = []string{
	"Hmm.",
	"Lovely weather today.",
	"Has anyone seen my cat?",
	"Prices keep going up.",
	"I should get going.",
}

// RandomWalker wanders to a random neighbor reachable through an open
// connection. With nowhere to go it says a filler line with probability
// ChatterChance, otherwise idles.
type RandomWalker struct {
	ChatterChance float64
	Lines         []string
}

// NewRandomWalker returns a walker that chatters with the given chance.
func NewRandomWalker(chatterChance float64) *RandomWalker {
	return &RandomWalker{ChatterChance: chatterChance, Lines: defaultChatter}
}

func (rw *RandomWalker) Decide(w *world.World, c *actor.Character, r dice.Roller) (tools.Command, bool) {
	here, ok := w.FindCharacterLocation(c.ID)
	if !ok {
		return tools.Command{}, false
	}
	if static, ok := w.LocationStatic(here); ok {
		var open []string
		for _, n := range static.Neighbors() {
			if w.ConnectionStatus(here, n) == location.StatusOpen {
				open = append(open, n)
			}
		}
		if len(open) > 0 {
			return tools.Command{
				Tool:   tools.Move,
				Params: tools.Params{"target_location": open[r.IntN(len(open))]},
			}, true
		}
	}

	if len(rw.Lines) == 0 || float64(r.IntN(1000)) >= rw.ChatterChance*1000 {
		return tools.Command{}, false
	}
	return tools.Command{
		Tool:   tools.Talk,
		Params: tools.Params{"content": rw.Lines[r.IntN(len(rw.Lines))]},
	}, true
}
