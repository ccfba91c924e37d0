// Package narrator renders simulation events as short lines of prose.
package narrator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// Narrator describes events using the names and descriptions held by a
// world. It only reads from the world.
type Narrator struct {
	world  *world.World
	title  cases.Caser
	speech *SpeechFilter
}

// New creates a narrator for w.
func New(w *world.World) *Narrator {
	return &Narrator{world: w, title: cases.Title(language.English)}
}

// WithRating softens profanity in spoken lines for family-friendly
// ratings. Returns the Narrator for method chaining.
func (n *Narrator) WithRating(rating string) *Narrator {
	if FiltersRating(rating) {
		n.speech = NewSpeechFilter()
	} else {
		n.speech = nil
	}
	return n
}

// Render returns the prose for e, or "" for events with nothing to say.
// extra may carry item_name, weapon and from, captured before the event was
// applied.
func (n *Narrator) Render(e event.Event, extra map[string]any) string {
	p := e.Payload
	switch e.Kind {
	case event.KindDescribeLocation:
		parts := []string{p.String("description")}
		if occ := p.Strings("occupants"); len(occ) > 0 {
			parts = append(parts, "You see: "+strings.Join(n.names(occ), ", ")+".")
		}
		if items := p.Strings("items"); len(items) > 0 {
			parts = append(parts, "Items here: "+strings.Join(n.itemNames(items), ", ")+".")
		}
		return strings.TrimSpace(strings.Join(parts, " "))

	case event.KindMove:
		dest := e.Target(0)
		if static, ok := n.world.LocationStatic(dest); ok && static.Description != "" {
			return fmt.Sprintf("%s moves to %s. %s", n.name(e.ActorID), dest, static.Description)
		}
		return fmt.Sprintf("%s moves to %s.", n.name(e.ActorID), dest)

	case event.KindGrab:
		return fmt.Sprintf("%s picks up %s.", n.name(e.ActorID), n.item(e.Target(0), extra))
	case event.KindDrop:
		return fmt.Sprintf("%s drops %s.", n.name(e.ActorID), n.item(e.Target(0), extra))
	case event.KindEat:
		return fmt.Sprintf("%s eats %s.", n.name(e.ActorID), n.item(e.Target(0), extra))
	case event.KindEquip:
		return fmt.Sprintf("%s equips %s to %s.", n.name(e.ActorID), n.item(e.Target(0), extra), p.String("slot"))
	case event.KindUnequip:
		return fmt.Sprintf("%s removes %s from %s.", n.name(e.ActorID), n.item(e.Target(0), extra), p.String("slot"))
	case event.KindGive:
		return fmt.Sprintf("%s gives %s to %s.", n.name(e.ActorID), n.item(e.Target(0), extra), n.name(e.Target(1)))

	case event.KindAttackAttempt:
		weapon, _ := extra["weapon"].(string)
		if weapon == "" {
			return fmt.Sprintf("%s attacks %s.", n.name(e.ActorID), n.name(e.Target(0)))
		}
		return fmt.Sprintf("%s attacks %s with %s.", n.name(e.ActorID), n.name(e.Target(0)), weapon)
	case event.KindAttackHit:
		toHit, _ := p.Int("to_hit")
		ac, _ := p.Int("target_ac")
		return fmt.Sprintf("%s hits %s (roll %d vs AC %d)", n.name(e.ActorID), n.name(e.Target(0)), toHit, ac)
	case event.KindAttackMissed:
		if p.String("reason") != "" {
			return fmt.Sprintf("%s swings at %s, but they are no longer there.", n.name(e.ActorID), n.name(e.Target(0)))
		}
		toHit, _ := p.Int("to_hit")
		ac, _ := p.Int("target_ac")
		return fmt.Sprintf("%s misses %s (roll %d vs AC %d)", n.name(e.ActorID), n.name(e.Target(0)), toHit, ac)
	case event.KindDamageApplied:
		amount, _ := p.Int("amount")
		hp := 0
		if c, ok := n.world.Character(e.Target(0)); ok {
			hp = c.HP
		}
		return fmt.Sprintf("%s takes %d %s damage (HP: %d)", n.name(e.Target(0)), amount, p.String("damage_type"), hp)
	case event.KindNPCDied:
		return fmt.Sprintf("%s dies.", n.name(e.ActorID))

	case event.KindTalk:
		if target := e.Target(0); target != "" {
			return fmt.Sprintf("%s to %s: %s", n.name(e.ActorID), n.name(target), n.say(p))
		}
		return fmt.Sprintf("%s says: %s", n.name(e.ActorID), n.say(p))
	case event.KindTalkLoud:
		return fmt.Sprintf("%s shouts: %s", n.name(e.ActorID), n.say(p))
	case event.KindScream:
		return fmt.Sprintf("%s screams: %s", n.name(e.ActorID), n.say(p))

	case event.KindRest:
		ticks, _ := p.Int("ticks")
		return fmt.Sprintf("%s rests for %d ticks.", n.name(e.ActorID), ticks)
	case event.KindWait:
		ticks, _ := p.Int("ticks")
		return fmt.Sprintf("%s waits for %d ticks.", n.name(e.ActorID), ticks)
	case event.KindOpenConnection:
		return fmt.Sprintf("%s opens the way to %s.", n.name(e.ActorID), e.Target(0))
	case event.KindCloseConnection:
		return fmt.Sprintf("%s closes the way to %s.", n.name(e.ActorID), e.Target(0))

	case event.KindInventory:
		return n.inventory(e)
	case event.KindStats:
		return n.stats(e)
	case event.KindAnalyze:
		return n.analyze(p)
	case event.KindToggleStarvation:
		if on, ok := p.Bool("enabled"); ok {
			return fmt.Sprintf("Starvation %s.", map[bool]string{true: "enabled", false: "disabled"}[on])
		}
		return "Starvation toggled."
	}
	return ""
}

func (n *Narrator) name(id string) string {
	if c, ok := n.world.Character(id); ok && c.Name != "" {
		return n.title.String(c.Name)
	}
	return id
}

func (n *Narrator) names(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, n.name(id))
	}
	return out
}

func (n *Narrator) item(id string, extra map[string]any) string {
	if name, ok := extra["item_name"].(string); ok && name != "" {
		return name
	}
	if b, ok := n.world.ItemBlueprint(id); ok {
		return b.DisplayName()
	}
	return id
}

func (n *Narrator) itemNames(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, n.item(id, nil))
	}
	return out
}

func (n *Narrator) say(p event.Payload) string {
	content := p.String("content")
	if n.speech != nil {
		content = n.speech.Filter(content)
	}
	return content
}

func (n *Narrator) inventory(e event.Event) string {
	items := e.Payload.Strings("items")
	equipped, _ := e.Payload["equipped"].(map[string]any)
	if len(items) == 0 && len(equipped) == 0 {
		return fmt.Sprintf("%s carries nothing.", n.name(e.ActorID))
	}
	var parts []string
	if len(items) > 0 {
		parts = append(parts, "carries: "+strings.Join(n.itemNames(items), ", "))
	}
	if len(equipped) > 0 {
		var worn []string
		for _, slot := range slices.Sorted(maps.Keys(equipped)) {
			id, _ := equipped[slot].(string)
			worn = append(worn, fmt.Sprintf("%s (%s)", n.item(id, nil), slot))
		}
		parts = append(parts, "equipped: "+strings.Join(worn, ", "))
	}
	return n.name(e.ActorID) + " " + strings.Join(parts, "; ")
}

func (n *Narrator) stats(e event.Event) string {
	p := e.Payload
	hp, _ := p.Int("hp")
	maxHP, _ := p.Int("max_hp")
	parts := []string{fmt.Sprintf("HP: %d/%d", hp, maxHP)}
	if attrs, ok := p["attributes"].(map[string]any); ok && len(attrs) > 0 {
		var s []string
		for _, k := range slices.Sorted(maps.Keys(attrs)) {
			s = append(s, fmt.Sprintf("%s: %v", k, attrs[k]))
		}
		parts = append(parts, "Attributes: "+strings.Join(s, ", "))
	}
	if skills, ok := p["skills"].(map[string]any); ok && len(skills) > 0 {
		var s []string
		for _, k := range slices.Sorted(maps.Keys(skills)) {
			s = append(s, fmt.Sprintf("%s (%v)", k, skills[k]))
		}
		parts = append(parts, "Skills: "+strings.Join(s, ", "))
	}
	if hunger := p.String("hunger"); hunger != "" {
		parts = append(parts, "Hunger: "+hunger)
	}
	return fmt.Sprintf("%s stats - %s", n.name(e.ActorID), strings.Join(parts, "; "))
}

func (n *Narrator) analyze(p event.Payload) string {
	parts := []string{fmt.Sprintf("%s (weight %v)", p.String("name"), p["weight"])}
	if dmg := p.String("damage_dice"); dmg != "" {
		parts = append(parts, fmt.Sprintf("Damage: %s %s", dmg, p.String("damage_type")))
	}
	if armour, _ := p.Int("armour_rating"); armour > 0 {
		parts = append(parts, fmt.Sprintf("Armour rating: %d", armour))
	}
	if props := p.Strings("properties"); len(props) > 0 {
		parts = append(parts, "Properties: "+strings.Join(props, ", "))
	}
	return strings.Join(parts, " ")
}
