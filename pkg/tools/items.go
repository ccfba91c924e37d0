package tools

import (
	"slices"

	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/world"
)

func itemHere(w *world.World, a *actor.Character, itemID string) bool {
	loc, ok := w.FindCharacterLocation(a.ID)
	if !ok {
		return false
	}
	state, ok := w.LocationState(loc)
	return ok && state.HasItem(itemID)
}

type grabTool struct{}

func (grabTool) Name() Name { return Grab }

func (grabTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	id := p.String("item_id")
	return id != "" && itemHere(w, a, id)
}

func (grabTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Grab, event.New(event.KindGrab, tick, a.ID, []string{p.String("item_id")}, nil))
}

type dropTool struct{}

func (dropTool) Name() Name { return Drop }

func (dropTool) Validate(p Params, _ *world.World, a *actor.Character) bool {
	return a.HasInInventory(p.String("item_id"))
}

func (dropTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Drop, event.New(event.KindDrop, tick, a.ID, []string{p.String("item_id")}, nil))
}

type eatTool struct{}

func (eatTool) Name() Name { return Eat }

func (eatTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	id := p.String("item_id")
	if !a.HasInInventory(id) {
		return false
	}
	b, ok := w.ItemBlueprint(id)
	return ok && b.IsEdible()
}

func (eatTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Eat, event.New(event.KindEat, tick, a.ID, []string{p.String("item_id")}, nil))
}

type equipTool struct{}

func (equipTool) Name() Name { return Equip }

func (equipTool) Validate(p Params, _ *world.World, a *actor.Character) bool {
	return a.HasInInventory(p.String("item_id")) && a.HasSlot(p.String("slot"))
}

func (equipTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	slot := p.String("slot")
	payload := event.Payload{"slot": slot}
	if displaced := a.EquippedItem(slot); displaced != "" {
		payload["displaced"] = displaced
	}
	return single(w, Equip, event.New(event.KindEquip, tick, a.ID, []string{p.String("item_id")}, payload))
}

type unequipTool struct{}

func (unequipTool) Name() Name { return Unequip }

func (unequipTool) Validate(p Params, _ *world.World, a *actor.Character) bool {
	return a.EquippedItem(p.String("slot")) != ""
}

func (unequipTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	slot := p.String("slot")
	return single(w, Unequip, event.New(event.KindUnequip, tick, a.ID, []string{a.EquippedItem(slot)}, event.Payload{"slot": slot}))
}

type giveTool struct{}

func (giveTool) Name() Name { return Give }

func (giveTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	target := p.String("target_id")
	return target != a.ID && a.HasInInventory(p.String("item_id")) && colocated(w, a, target)
}

func (giveTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	return single(w, Give, event.New(event.KindGive, tick, a.ID, []string{p.String("item_id"), p.String("target_id")}, nil))
}

// analyzeTool reports the blueprint of an item the actor can see: carried,
// equipped or lying at the same location.
type analyzeTool struct{}

func (analyzeTool) Name() Name { return Analyze }

func (analyzeTool) Validate(p Params, w *world.World, a *actor.Character) bool {
	id := p.String("item_id")
	if id == "" {
		return false
	}
	if _, ok := w.ItemBlueprint(id); !ok {
		return false
	}
	_, equipped := a.EquippedSlot(id)
	return a.HasInInventory(id) || equipped || itemHere(w, a, id)
}

func (analyzeTool) Expand(p Params, w *world.World, a *actor.Character, tick int) Plan {
	id := p.String("item_id")
	b, _ := w.ItemBlueprint(id)
	return single(w, Analyze, event.New(event.KindAnalyze, tick, a.ID, []string{id}, event.Payload{
		"blueprint_id":  b.ID,
		"name":          b.DisplayName(),
		"weight":        b.Weight,
		"damage_dice":   b.DamageDice,
		"damage_type":   b.DamageType,
		"armour_rating": b.ArmourRating,
		"skill_tag":     b.SkillTag,
		"properties":    slices.Clone(b.Properties),
	}))
}

type inventoryTool struct{}

func (inventoryTool) Name() Name { return Inventory }

func (inventoryTool) Validate(Params, *world.World, *actor.Character) bool { return true }

func (inventoryTool) Expand(_ Params, w *world.World, a *actor.Character, tick int) Plan {
	equipped := make(map[string]any)
	for slot := range a.Slots {
		if id := a.EquippedItem(slot); id != "" {
			equipped[slot] = id
		}
	}
	return single(w, Inventory, event.New(event.KindInventory, tick, a.ID, nil, event.Payload{
		"items":    slices.Clone(a.Inventory),
		"equipped": equipped,
	}))
}
