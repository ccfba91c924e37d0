// Package perception decides which characters observe an event and writes
// it into their short-term memory.
package perception

import (
	"slices"

	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/location"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// Locality returns the location where e happened: the destination of a
// move, the recorded location of a death, otherwise wherever the actor is.
func Locality(w *world.World, e event.Event) (string, bool) {
	switch e.Kind {
	case event.KindMove, event.KindNPCDied:
		loc := e.Target(0)
		if _, ok := w.LocationState(loc); !ok {
			return "", false
		}
		return loc, true
	}
	return w.FindCharacterLocation(e.ActorID)
}

// Recipients lists, without side effects, the characters other than the
// actor who perceive e. Occupants of the event's location come first in
// occupant order, then those of neighboring locations in sorted neighbor
// order.
func Recipients(w *world.World, e event.Event) []string {
	if e.Kind == event.KindDescribeLocation {
		return nil
	}
	loc, ok := Locality(w, e)
	if !ok {
		return nil
	}

	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if id != e.ActorID && !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	add(w.Occupants(loc))

	if e.Kind != event.KindScream && e.Kind != event.KindTalkLoud {
		return out
	}
	static, ok := w.LocationStatic(loc)
	if !ok {
		return out
	}
	for _, n := range static.Neighbors() {
		if e.Kind == event.KindTalkLoud && w.ConnectionStatus(loc, n) != location.StatusOpen {
			continue
		}
		add(w.Occupants(n))
	}
	return out
}

// Distribute records e into the memory of every character that perceives
// it and returns those characters.
func Distribute(w *world.World, e event.Event) []string {
	recipients := Recipients(w, e)
	for _, id := range recipients {
		w.RecordMemory(id, actor.MemoryRecord{
			Tick:    e.Tick,
			Kind:    e.Kind,
			ActorID: e.ActorID,
			Payload: e.Payload,
		})
	}
	return recipients
}
