// Package combat resolves a single melee or ranged attack.
package combat

import (
	"maps"
	"slices"

	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/item"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// Slots checked for a weapon before any other slot.
var weaponSlots = []string{"main_hand", "weapon", "off_hand"}

// Result is the outcome of one attack.
type Result struct {
	Hit        bool   `json:"hit"`
	Roll       int    `json:"roll"` // natural d20
	ToHit      int    `json:"to_hit"`
	TargetAC   int    `json:"target_ac"`
	Damage     int    `json:"damage,omitempty"`
	DamageType string `json:"damage_type,omitempty"`
	Weapon     string `json:"weapon"`
}

// Resolve rolls an attack by attacker against target with weapon. The attack
// hits when the to-hit total meets or beats the target's armour class.
// armour is the summed armour rating of the target's equipped items.
func Resolve(r dice.Roller, attacker, target *actor.Character, armour int, weapon item.Blueprint) Result {
	roll := dice.Die(r, 20)
	res := Result{
		Roll:     roll,
		ToHit:    roll + AttackModifier(attacker, weapon),
		TargetAC: ArmourClass(target, armour),
		Weapon:   weapon.DisplayName(),
	}
	if res.ToHit < res.TargetAC {
		return res
	}

	res.Hit = true
	res.DamageType = weapon.DamageType
	expr, err := dice.Parse(weapon.DamageDice)
	if err != nil {
		expr = dice.MustParse(item.Unarmed.DamageDice)
	}
	res.Damage = max(expr.Roll(r)+attacker.Modifier("strength"), 1)
	return res
}

// AttackModifier is the ability modifier that drives the weapon (dexterity
// for finesse and ranged weapons, otherwise strength) plus the attacker's
// level in the weapon's skill.
func AttackModifier(attacker *actor.Character, weapon item.Blueprint) int {
	ability := "strength"
	if weapon.HasProperty(item.PropFinesse) || weapon.HasProperty(item.PropRanged) {
		ability = "dexterity"
	}
	return attacker.Modifier(ability) + attacker.Skills[weapon.SkillTag]
}

// ArmourClass reads the target's armour class from its d20 sheet, falling
// back to the same formula when the sheet cannot be built.
func ArmourClass(target *actor.Character, armour int) int {
	sheet, err := target.Sheet(armour)
	if err != nil {
		return 10 + target.Modifier("dexterity") + armour
	}
	return sheet.AC()
}

// WeaponFor returns the blueprint of the first damaging item the character
// has equipped, or the unarmed blueprint.
func WeaponFor(w *world.World, c *actor.Character) item.Blueprint {
	order := slices.Clone(weaponSlots)
	for _, slot := range slices.Sorted(maps.Keys(c.Slots)) {
		if !slices.Contains(weaponSlots, slot) {
			order = append(order, slot)
		}
	}
	for _, slot := range order {
		id := c.EquippedItem(slot)
		if id == "" {
			continue
		}
		if b, ok := w.ItemBlueprint(id); ok && b.IsWeapon() {
			return b
		}
	}
	return item.Unarmed
}

// Attack resolves an attack between two characters of w, choosing the
// attacker's weapon and the target's armour from their equipment.
func Attack(r dice.Roller, w *world.World, attacker, target *actor.Character) Result {
	return Resolve(r, attacker, target, w.ArmourRating(target), WeaponFor(w, attacker))
}
