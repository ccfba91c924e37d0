package world

import (
	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/location"
)

// ApplyEvent mutates the world according to e. Events whose references no
// longer hold (missing entities, items that moved) are ignored. Kinds that
// describe rather than change the world are no-ops.
func (w *World) ApplyEvent(e event.Event) {
	switch e.Kind {
	case event.KindMove:
		w.applyMove(e)
	case event.KindGrab:
		w.applyGrab(e)
	case event.KindDrop:
		w.applyDrop(e)
	case event.KindEat:
		w.applyEat(e)
	case event.KindDamageApplied:
		w.applyDamage(e)
	case event.KindEquip:
		w.applyEquip(e)
	case event.KindUnequip:
		w.applyUnequip(e)
	case event.KindGive:
		w.applyGive(e)
	case event.KindOpenConnection:
		w.applyConnection(e, location.StatusOpen)
	case event.KindCloseConnection:
		w.applyConnection(e, location.StatusClosed)
	case event.KindRest:
		w.applyRest(e)
	case event.KindNPCDied:
		w.applyDeath(e)
	}
}

// skip logs why an event had no effect.
func (w *World) skip(e event.Event, reason string) {
	w.logger.Debug("Event not applied",
		"kind", e.Kind,
		"actor", e.ActorID,
		"targets", e.TargetIDs,
		"reason", reason)
}

func (w *World) applyMove(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	dest, ok := w.states[e.Target(0)]
	if !ok {
		w.skip(e, "unknown destination")
		return
	}
	if prev, ok := w.whereIs[c.ID]; ok {
		if s, ok := w.states[prev]; ok {
			s.RemoveOccupant(c.ID)
		}
	}
	dest.AddOccupant(c.ID)
	w.whereIs[c.ID] = dest.ID
}

func (w *World) applyGrab(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	itemID := e.Target(0)
	here, ok := w.currentState(c.ID)
	if !ok || !here.RemoveItem(itemID) {
		w.skip(e, "item not at actor location")
		return
	}
	c.Inventory = append(c.Inventory, itemID)
	if inst, ok := w.items[itemID]; ok {
		inst.GiveTo(c.ID)
	}
}

func (w *World) applyDrop(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	itemID := e.Target(0)
	here, ok := w.currentState(c.ID)
	if !ok {
		w.skip(e, "actor is nowhere")
		return
	}
	if !c.RemoveFromInventory(itemID) {
		w.skip(e, "item not in inventory")
		return
	}
	here.AddItem(itemID)
	if inst, ok := w.items[itemID]; ok {
		inst.PlaceAt(here.ID)
	}
}

func (w *World) applyEat(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	itemID := e.Target(0)
	if !c.RemoveFromInventory(itemID) {
		w.skip(e, "item not in inventory")
		return
	}
	delete(w.items, itemID)
	c.LastMealTick = e.Tick
	c.HungerStage = actor.HungerSated
}

func (w *World) applyDamage(e event.Event) {
	c, ok := w.characters[e.Target(0)]
	if !ok {
		w.skip(e, "unknown target")
		return
	}
	amount, _ := e.Payload.Int("amount")
	c.HP -= amount
}

func (w *World) applyEquip(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	itemID := e.Target(0)
	slot := e.Payload.String("slot")
	if !c.HasInInventory(itemID) || !c.HasSlot(slot) {
		w.skip(e, "item not in inventory or slot unknown")
		return
	}
	if displaced := c.EquippedItem(slot); displaced != "" {
		c.Inventory = append(c.Inventory, displaced)
	}
	c.RemoveFromInventory(itemID)
	c.Slots[slot] = &itemID
}

func (w *World) applyUnequip(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	slot := e.Payload.String("slot")
	itemID := c.EquippedItem(slot)
	if itemID == "" {
		w.skip(e, "slot empty")
		return
	}
	c.Inventory = append(c.Inventory, itemID)
	c.Slots[slot] = nil
}

func (w *World) applyGive(e event.Event) {
	giver, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	itemID := e.Target(0)
	receiver, ok := w.characters[e.Target(1)]
	if !ok {
		w.skip(e, "unknown receiver")
		return
	}
	if !giver.RemoveFromInventory(itemID) {
		w.skip(e, "item not in inventory")
		return
	}
	receiver.Inventory = append(receiver.Inventory, itemID)
	if inst, ok := w.items[itemID]; ok {
		inst.GiveTo(receiver.ID)
	}
}

func (w *World) applyConnection(e event.Event, status location.Status) {
	from, ok := w.whereIs[e.ActorID]
	if !ok {
		w.skip(e, "actor is nowhere")
		return
	}
	to := e.Target(0)
	static, ok := w.statics[from]
	if !ok || !static.IsNeighbor(to) {
		w.skip(e, "target is not a neighbor")
		return
	}
	w.states[from].SetConnectionStatus(to, status)
	if other, ok := w.states[to]; ok {
		other.SetConnectionStatus(from, status)
	}
}

func (w *World) applyRest(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	healed, _ := e.Payload.Int("healed")
	if healed <= 0 || c.HP >= c.MaxHP {
		return
	}
	c.HP = min(c.HP+healed, c.MaxHP)
}

// applyDeath tags the character dead. Occupancy is left untouched so the
// body stays where it fell.
func (w *World) applyDeath(e event.Event) {
	c, ok := w.characters[e.ActorID]
	if !ok {
		w.skip(e, "unknown actor")
		return
	}
	c.AddDynamicTag(actor.TagDead)
}

func (w *World) currentState(characterID string) (*location.State, bool) {
	loc, ok := w.whereIs[characterID]
	if !ok {
		return nil, false
	}
	s, ok := w.states[loc]
	return s, ok
}
