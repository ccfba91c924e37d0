package item

import "slices"

// Property flags understood by the engine.
const (
	PropEdible  = "edible"
	PropFinesse = "finesse"
	PropRanged  = "ranged"
)

// Blueprint is the immutable template an item instance is made from.
type Blueprint struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Weight       float64  `json:"weight,omitempty"`
	DamageDice   string   `json:"damage_dice,omitempty"` // e.g. "1d8", empty for non-weapons
	DamageType   string   `json:"damage_type,omitempty"`
	ArmourRating int      `json:"armour_rating,omitempty"`
	SkillTag     string   `json:"skill_tag,omitempty"`
	Properties   []string `json:"properties,omitempty"`
}

// Unarmed is the implicit weapon used when nothing suitable is equipped.
var Unarmed = Blueprint{
	ID:         "fists",
	Name:       "fists",
	DamageDice: "1d2",
	DamageType: "bludgeoning",
	SkillTag:   "unarmed",
}

// IsWeapon reports whether the blueprint deals damage.
func (b Blueprint) IsWeapon() bool {
	return b.DamageDice != ""
}

// IsEdible reports whether the item can be eaten.
func (b Blueprint) IsEdible() bool {
	return b.HasProperty(PropEdible)
}

// HasProperty reports whether the blueprint carries the property flag.
func (b Blueprint) HasProperty(prop string) bool {
	return slices.Contains(b.Properties, prop)
}

// DisplayName returns the name, falling back to the id.
func (b Blueprint) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}

// Instance is a concrete item in the world. At most one of Location and
// Owner is set.
type Instance struct {
	ID          string         `json:"id"`
	BlueprintID string         `json:"blueprint_id"`
	Location    string         `json:"location,omitempty"`
	Owner       string         `json:"owner,omitempty"`
	State       map[string]any `json:"state,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// PlaceAt puts the instance on the ground at a location.
func (i *Instance) PlaceAt(locationID string) {
	i.Location = locationID
	i.Owner = ""
}

// GiveTo hands the instance to a character.
func (i *Instance) GiveTo(characterID string) {
	i.Owner = characterID
	i.Location = ""
}
