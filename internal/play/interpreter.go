// Package play turns lines typed by a player into session submissions and
// collects what the player should see. The line REPL and the terminal UI
// both sit on top of it.
package play

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/command"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/narrator"
	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// Reply is what one typed line produced.
type Reply struct {
	Lines []string
	Error string
	Tick  int
	Quit  bool
}

// Interpreter handles typed lines for the session's player.
type Interpreter struct {
	sess *session.Session
}

// NewInterpreter creates an interpreter for sess.
func NewInterpreter(sess *session.Session) *Interpreter {
	return &Interpreter{sess: sess}
}

// Handle parses and runs line. Lines outside the grammar fall back to the
// session's translator when one is configured.
func (i *Interpreter) Handle(ctx context.Context, line string) Reply {
	res, err := command.Parse(line, i.isCharacter)
	var usage *command.UsageError
	switch {
	case errors.Is(err, command.ErrEmpty):
		return Reply{Tick: i.sess.Tick()}
	case errors.As(err, &usage):
		return Reply{Error: "Usage: " + usage.Usage, Tick: i.sess.Tick()}
	case errors.Is(err, command.ErrUnknown):
		if !i.sess.CanTranslate() {
			return Reply{Error: "Unknown command. Type 'help' for the list.", Tick: i.sess.Tick()}
		}
		return i.reply(i.sess.SubmitText(ctx, "", line))
	case err != nil:
		return Reply{Error: err.Error(), Tick: i.sess.Tick()}
	}

	switch res.Meta {
	case command.MetaQuit:
		return Reply{Quit: true, Tick: i.sess.Tick()}
	case command.MetaHelp:
		return Reply{Lines: strings.Split(command.Help, "\n"), Tick: i.sess.Tick()}
	case command.MetaMemory:
		lines := i.Memory()
		if len(lines) == 0 {
			lines = []string{"You remember nothing yet."}
		}
		return Reply{Lines: lines, Tick: i.sess.Tick()}
	}
	return i.reply(i.sess.Submit(ctx, "", res.Command))
}

func (i *Interpreter) reply(out session.Outcome, err error) Reply {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Reply{Quit: true, Tick: i.sess.Tick()}
		}
		return Reply{Error: sim.PlayerMessage(err), Tick: i.sess.Tick()}
	}
	return Reply{Lines: out.LinesFor(i.sess.PlayerID()), Tick: out.Tick}
}

// Memory renders the player's short-term memory, oldest first.
func (i *Interpreter) Memory() []string {
	var lines []string
	i.sess.View(func(w *world.World, _ int) {
		c, ok := w.Character(i.sess.PlayerID())
		if !ok {
			return
		}
		n := narrator.New(w)
		for _, m := range c.ShortTermMemory {
			e := event.Event{Kind: m.Kind, Tick: m.Tick, ActorID: m.ActorID, Payload: m.Payload}
			text := n.Render(e, nil)
			if text == "" {
				text = fmt.Sprintf("%s: %s", m.ActorID, m.Kind)
			}
			lines = append(lines, fmt.Sprintf("[tick %d] %s", m.Tick, text))
		}
	})
	return lines
}

// Status is a snapshot of the player for status panels.
type Status struct {
	Session   string
	Tick      int
	PlayerID  string
	Name      string
	Location  string
	HP        int
	MaxHP     int
	Hunger    string
	Inventory []string
	Equipped  map[string]string // slot -> item id
	Dead      bool
}

// StatusFromCharacter fills a Status from a character snapshot.
func StatusFromCharacter(c *actor.Character, location string, tick int) Status {
	st := Status{
		Tick:      tick,
		PlayerID:  c.ID,
		Name:      c.Name,
		Location:  location,
		HP:        c.HP,
		MaxHP:     c.MaxHP,
		Hunger:    string(c.HungerStage),
		Inventory: slices.Clone(c.Inventory),
		Equipped:  map[string]string{},
		Dead:      c.IsDead(),
	}
	for slot, id := range c.Slots {
		if id != nil {
			st.Equipped[slot] = *id
		}
	}
	return st
}

// Status returns the player's current condition.
func (i *Interpreter) Status() Status {
	st := Status{Session: i.sess.ID, PlayerID: i.sess.PlayerID()}
	i.sess.View(func(w *world.World, tick int) {
		st.Tick = tick
		c, ok := w.Character(st.PlayerID)
		if !ok {
			return
		}
		loc, _ := w.FindCharacterLocation(c.ID)
		st = StatusFromCharacter(c, loc, tick)
		st.Session = i.sess.ID
	})
	return st
}

// Tick returns the session clock.
func (i *Interpreter) Tick() int { return i.sess.Tick() }

// Location returns where the player stands.
func (i *Interpreter) Location() string {
	var loc string
	i.sess.View(func(w *world.World, _ int) {
		loc, _ = w.FindCharacterLocation(i.sess.PlayerID())
	})
	return loc
}

func (i *Interpreter) isCharacter(id string) bool {
	var ok bool
	i.sess.View(func(w *world.World, _ int) {
		_, ok = w.Character(id)
	})
	return ok
}
