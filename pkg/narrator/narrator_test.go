package narrator

import (
	"testing"

	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/world"
)

func TestRender(t *testing.T) {
	w := world.NewTownFixture(rules.Default())
	n := New(w)

	tests := []struct {
		name  string
		event event.Event
		extra map[string]any
		want  string
	}{
		{
			name:  "look",
			event: event.New(event.KindDescribeLocation, 1, "hero", nil, event.Payload{"description": "A square.", "occupants": []string{"guard_1"}, "items": []string{"bread_1"}}),
			want:  "A square. You see: Town Guard. Items here: loaf of bread.",
		},
		{
			name:  "grab",
			event: event.New(event.KindGrab, 1, "hero", []string{"bread_1"}, nil),
			want:  "Aldric picks up loaf of bread.",
		},
		{
			name:  "eat uses the captured name",
			event: event.New(event.KindEat, 1, "hero", []string{"gone_1"}, nil),
			extra: map[string]any{"item_name": "apple"},
			want:  "Aldric eats apple.",
		},
		{
			name:  "attack",
			event: event.New(event.KindAttackAttempt, 1, "hero", []string{"guard_1"}, nil),
			extra: map[string]any{"weapon": "shortsword"},
			want:  "Aldric attacks Town Guard with shortsword.",
		},
		{
			name:  "hit",
			event: event.New(event.KindAttackHit, 1, "hero", []string{"guard_1"}, event.Payload{"to_hit": 17, "target_ac": 14}),
			want:  "Aldric hits Town Guard (roll 17 vs AC 14)",
		},
		{
			name:  "miss after the target left",
			event: event.New(event.KindAttackMissed, 1, "hero", []string{"guard_1"}, event.Payload{"reason": "target_gone"}),
			want:  "Aldric swings at Town Guard, but they are no longer there.",
		},
		{
			name:  "damage shows current hp",
			event: event.New(event.KindDamageApplied, 1, "hero", []string{"guard_1"}, event.Payload{"amount": 3, "damage_type": "piercing"}),
			want:  "Town Guard takes 3 piercing damage (HP: 10)",
		},
		{
			name:  "talk to someone",
			event: event.New(event.KindTalk, 1, "hero", []string{"guard_1"}, event.Payload{"content": "Evening."}),
			want:  "Aldric to Town Guard: Evening.",
		},
		{
			name:  "scream",
			event: event.New(event.KindScream, 1, "thief", nil, event.Payload{"content": "Help!"}),
			want:  "Thief screams: Help!",
		},
		{
			name:  "empty inventory",
			event: event.New(event.KindInventory, 1, "merchant", nil, event.Payload{"items": []string{}}),
			want:  "Merchant carries nothing.",
		},
		{
			name:  "wait",
			event: event.New(event.KindWait, 1, "hero", nil, event.Payload{"ticks": 2}),
			want:  "Aldric waits for 2 ticks.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Render(tt.event, tt.extra); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRender_Stats(t *testing.T) {
	w := world.NewTownFixture(rules.Default())
	e := event.New(event.KindStats, 1, "hero", nil, event.Payload{
		"hp": 12, "max_hp": 12,
		"attributes": map[string]any{"strength": 14, "dexterity": 16},
		"skills":     map[string]any{"blades": 2},
		"hunger":     "sated",
	})
	want := "Aldric stats - HP: 12/12; Attributes: dexterity: 16, strength: 14; Skills: blades (2); Hunger: sated"
	if got := New(w).Render(e, nil); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_RatingSoftensSpeech(t *testing.T) {
	w := world.NewTownFixture(rules.Default())
	e := event.New(event.KindTalk, 1, "thief", nil, event.Payload{"content": "Damn this HELL of a town"})

	if got := New(w).WithRating("R").Render(e, nil); got != "Thief says: Damn this HELL of a town" {
		t.Errorf("R rating must leave speech alone, got %q", got)
	}
	if got := New(w).WithRating("PG-13").Render(e, nil); got != "Thief says: Dang this HECK of a town" {
		t.Errorf("unexpected filtered speech %q", got)
	}
}

func TestSpeechFilter(t *testing.T) {
	f := NewSpeechFilter()
	tests := []struct{ in, want string }{
		{"what the hell", "what the heck"},
		{"Hell no", "Heck no"},
		{"shell game", "shell game"},
		{"BULLSHIT", "BALONEY"},
	}
	for _, tt := range tests {
		if got := f.Filter(tt.in); got != tt.want {
			t.Errorf("Filter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
