// Package command parses the fixed line grammar typed at the play prompt.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/hexsim/pkg/tools"
)

// Meta identifies a front-end command that never reaches the simulator.
type Meta string

const (
	MetaNone   Meta = ""
	MetaMemory Meta = "mem"
	MetaHelp   Meta = "help"
	MetaQuit   Meta = "quit"
)

var (
	// ErrEmpty indicates a blank line.
	ErrEmpty = errors.New("empty command")
	// ErrUnknown indicates a verb outside the grammar.
	ErrUnknown = errors.New("unknown command")
)

// Help lists the grammar.
const Help = `Commands:
  look | l                 describe where you are
  move <location>          walk to a neighboring location
  grab <item>              pick up an item here
  drop <item>              put down a carried item
  eat <item>               eat a carried item
  attack <npc>             attack someone here
  talk [<npc>] <message>   say something, optionally to someone
  shout <message>          speak loudly enough for open neighbors
  scream <message>         scream for every neighbor to hear
  equip <item> <slot>      equip a carried item
  unequip <slot>           return a slot's item to your pack
  give <item> <npc>        hand an item to someone here
  rest [ticks]             recover one HP per tick
  wait [ticks]             let time pass
  open <location>          open the way to a neighbor
  close <location>         close the way to a neighbor
  analyze <item>           inspect an item
  inventory | inv | i      list what you carry
  stats                    show your condition
  starvation [on|off]      toggle hunger
  mem                      review what you remember
  help                     show this text
  quit | exit              leave`

// Result is a parsed line: either a simulator command or a meta command.
type Result struct {
	Command tools.Command
	Meta    Meta
}

// IsMeta reports whether the line was a front-end command.
func (r Result) IsMeta() bool { return r.Meta != MetaNone }

// Usage errors carry the expected form.
type UsageError struct {
	Verb  string
	Usage string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage: %s", e.Usage)
}

// Parse turns a typed line into a command. isCharacter reports whether a
// word names a character, which disambiguates "talk <npc> <message>" from
// "talk <message>"; it may be nil.
func Parse(line string, isCharacter func(id string) bool) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Result{}, ErrEmpty
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	cmd := func(tool tools.Name, params tools.Params) (Result, error) {
		return Result{Command: tools.Command{Tool: tool, Params: params}}, nil
	}
	one := func(tool tools.Name, key, usage string) (Result, error) {
		if len(args) != 1 {
			return Result{}, &UsageError{Verb: verb, Usage: usage}
		}
		return cmd(tool, tools.Params{key: args[0]})
	}

	switch verb {
	case "look", "l":
		return cmd(tools.Look, tools.Params{})
	case "move", "go":
		return one(tools.Move, "target_location", "move <location>")
	case "grab", "get", "take":
		return one(tools.Grab, "item_id", "grab <item>")
	case "drop":
		return one(tools.Drop, "item_id", "drop <item>")
	case "eat":
		return one(tools.Eat, "item_id", "eat <item>")
	case "attack":
		return one(tools.Attack, "target_id", "attack <npc>")
	case "analyze", "examine":
		return one(tools.Analyze, "item_id", "analyze <item>")
	case "open":
		return one(tools.Open, "target_location", "open <location>")
	case "close":
		return one(tools.Close, "target_location", "close <location>")
	case "unequip":
		return one(tools.Unequip, "slot", "unequip <slot>")

	case "talk", "say":
		if len(args) == 0 {
			return Result{}, &UsageError{Verb: verb, Usage: "talk [<npc>] <message>"}
		}
		if len(args) > 1 && isCharacter != nil && isCharacter(args[0]) {
			msg := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
			return cmd(tools.Talk, tools.Params{"target_id": args[0], "content": msg})
		}
		return cmd(tools.Talk, tools.Params{"content": rest})
	case "shout":
		if rest == "" {
			return Result{}, &UsageError{Verb: verb, Usage: "shout <message>"}
		}
		return cmd(tools.TalkLoud, tools.Params{"content": rest})
	case "scream":
		if rest == "" {
			return Result{}, &UsageError{Verb: verb, Usage: "scream <message>"}
		}
		return cmd(tools.Scream, tools.Params{"content": rest})

	case "equip":
		if len(args) != 2 {
			return Result{}, &UsageError{Verb: verb, Usage: "equip <item> <slot>"}
		}
		return cmd(tools.Equip, tools.Params{"item_id": args[0], "slot": args[1]})
	case "give":
		if len(args) != 2 {
			return Result{}, &UsageError{Verb: verb, Usage: "give <item> <npc>"}
		}
		return cmd(tools.Give, tools.Params{"item_id": args[0], "target_id": args[1]})

	case "rest", "wait":
		tool := tools.Rest
		if verb == "wait" {
			tool = tools.Wait
		}
		if len(args) == 0 {
			return cmd(tool, tools.Params{})
		}
		n, err := strconv.Atoi(args[0])
		if len(args) > 1 || err != nil || n < 1 {
			return Result{}, &UsageError{Verb: verb, Usage: verb + " [ticks]"}
		}
		return cmd(tool, tools.Params{"ticks": n})

	case "inventory", "inv", "i":
		return cmd(tools.Inventory, tools.Params{})
	case "stats":
		return cmd(tools.Stats, tools.Params{})
	case "starvation":
		switch {
		case len(args) == 0:
			return cmd(tools.ToggleStarvation, tools.Params{})
		case len(args) == 1 && strings.EqualFold(args[0], "on"):
			return cmd(tools.ToggleStarvation, tools.Params{"enabled": true})
		case len(args) == 1 && strings.EqualFold(args[0], "off"):
			return cmd(tools.ToggleStarvation, tools.Params{"enabled": false})
		}
		return Result{}, &UsageError{Verb: verb, Usage: "starvation [on|off]"}

	case "mem", "memory":
		return Result{Meta: MetaMemory}, nil
	case "help", "h", "?":
		return Result{Meta: MetaHelp}, nil
	case "quit", "exit", "q":
		return Result{Meta: MetaQuit}, nil
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnknown, verb)
}
