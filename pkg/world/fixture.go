package world

import (
	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/item"
	"github.com/jwebster45206/hexsim/pkg/location"
	"github.com/jwebster45206/hexsim/pkg/rules"
)

// NewTownFixture builds a small, fully linked town for tests and demos:
//
//	temple (north) - market_square - docks (southeast)
//	                      |
//	                 alley (west)
//
// hero and guard_1 stand in market_square, merchant at the docks, priest in
// the temple and thief in the alley. The gate between market_square and
// the alley starts closed.
func NewTownFixture(r rules.Rules) *World {
	w := New(r)

	w.AddBlueprint(item.Blueprint{ID: "bread", Name: "loaf of bread", Weight: 0.5, Properties: []string{item.PropEdible}})
	w.AddBlueprint(item.Blueprint{ID: "shortsword", Name: "shortsword", Weight: 2, DamageDice: "1d6", DamageType: "piercing", SkillTag: "blades", Properties: []string{item.PropFinesse}})
	w.AddBlueprint(item.Blueprint{ID: "club", Name: "club", Weight: 2, DamageDice: "1d4", DamageType: "bludgeoning", SkillTag: "clubs"})
	w.AddBlueprint(item.Blueprint{ID: "chainmail", Name: "chain mail", Weight: 20, ArmourRating: 4})
	w.AddBlueprint(item.Blueprint{ID: "rope", Name: "coil of rope", Weight: 3})

	w.AddLocation(&location.Static{
		ID:          "market_square",
		Description: "A bustling square ringed with stalls.",
		Tags:        location.Tags{Inherent: []string{"outdoor", "crowded"}},
		HexConnections: map[string]string{
			"north":     "temple",
			"southeast": "docks",
			"west":      "alley",
		},
	}, &location.State{
		ID:          "market_square",
		Occupants:   []string{"hero", "guard_1"},
		Items:       []string{"bread_1"},
		Connections: map[string]location.Connection{"alley": {Status: location.StatusClosed}},
	})
	w.AddLocation(&location.Static{
		ID:             "temple",
		Description:    "Cool stone and the smell of incense.",
		HexConnections: map[string]string{"south": "market_square"},
	}, &location.State{ID: "temple", Occupants: []string{"priest"}})
	w.AddLocation(&location.Static{
		ID:             "docks",
		Description:    "Creaking piers and gulls.",
		HexConnections: map[string]string{"northwest": "market_square"},
	}, &location.State{ID: "docks", Occupants: []string{"merchant"}, Items: []string{"rope_1"}})
	w.AddLocation(&location.Static{
		ID:             "alley",
		Description:    "A narrow, shadowed alley.",
		HexConnections: map[string]string{"east": "market_square"},
	}, &location.State{
		ID:          "alley",
		Occupants:   []string{"thief"},
		Connections: map[string]location.Connection{"market_square": {Status: location.StatusClosed}},
	})

	w.AddItem(&item.Instance{ID: "bread_1", BlueprintID: "bread"})
	w.AddItem(&item.Instance{ID: "sword_1", BlueprintID: "shortsword"})
	w.AddItem(&item.Instance{ID: "club_1", BlueprintID: "club"})
	w.AddItem(&item.Instance{ID: "mail_1", BlueprintID: "chainmail"})
	w.AddItem(&item.Instance{ID: "rope_1", BlueprintID: "rope"})

	club, mail := "club_1", "mail_1"
	w.AddCharacter(&actor.Character{
		ID:         "hero",
		Name:       "Aldric",
		Inventory:  []string{"sword_1"},
		Slots:      map[string]*string{"main_hand": nil, "body": nil},
		HP:         12,
		Attributes: map[string]int{"strength": 14, "dexterity": 16, "constitution": 12},
		Skills:     map[string]int{"blades": 2},
	})
	w.AddCharacter(&actor.Character{
		ID:         "guard_1",
		Name:       "town guard",
		Slots:      map[string]*string{"main_hand": &club, "body": &mail},
		HP:         10,
		Attributes: map[string]int{"strength": 12, "dexterity": 10},
		Skills:     map[string]int{"clubs": 1},
		Tags:       actor.Tags{Inherent: []string{"guard"}},
	})
	w.AddCharacter(&actor.Character{ID: "merchant", Name: "merchant", HP: 6})
	w.AddCharacter(&actor.Character{ID: "priest", Name: "priest", HP: 8})
	w.AddCharacter(&actor.Character{ID: "thief", Name: "thief", HP: 7, Attributes: map[string]int{"dexterity": 15}})

	if err := w.Link(); err != nil {
		panic(err)
	}
	return w
}
