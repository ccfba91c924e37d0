package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/pkg/tools"
)

func isNPC(id string) bool { return id == "guard_1" }

func TestParse(t *testing.T) {
	tests := []struct {
		line   string
		tool   tools.Name
		params tools.Params
	}{
		{"look", tools.Look, tools.Params{}},
		{"  L ", tools.Look, tools.Params{}},
		{"move temple", tools.Move, tools.Params{"target_location": "temple"}},
		{"grab bread_1", tools.Grab, tools.Params{"item_id": "bread_1"}},
		{"attack guard_1", tools.Attack, tools.Params{"target_id": "guard_1"}},
		{"talk guard_1 good evening", tools.Talk, tools.Params{"target_id": "guard_1", "content": "good evening"}},
		{"talk good evening", tools.Talk, tools.Params{"content": "good evening"}},
		{"talk guard_1", tools.Talk, tools.Params{"content": "guard_1"}},
		{"shout over here!", tools.TalkLoud, tools.Params{"content": "over here!"}},
		{"scream help", tools.Scream, tools.Params{"content": "help"}},
		{"equip sword_1 main_hand", tools.Equip, tools.Params{"item_id": "sword_1", "slot": "main_hand"}},
		{"unequip main_hand", tools.Unequip, tools.Params{"slot": "main_hand"}},
		{"give sword_1 guard_1", tools.Give, tools.Params{"item_id": "sword_1", "target_id": "guard_1"}},
		{"rest", tools.Rest, tools.Params{}},
		{"rest 4", tools.Rest, tools.Params{"ticks": 4}},
		{"wait 2", tools.Wait, tools.Params{"ticks": 2}},
		{"open alley", tools.Open, tools.Params{"target_location": "alley"}},
		{"close alley", tools.Close, tools.Params{"target_location": "alley"}},
		{"analyze sword_1", tools.Analyze, tools.Params{"item_id": "sword_1"}},
		{"inv", tools.Inventory, tools.Params{}},
		{"stats", tools.Stats, tools.Params{}},
		{"starvation", tools.ToggleStarvation, tools.Params{}},
		{"starvation OFF", tools.ToggleStarvation, tools.Params{"enabled": false}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res, err := Parse(tt.line, isNPC)
			require.NoError(t, err)
			assert.False(t, res.IsMeta())
			assert.Equal(t, tt.tool, res.Command.Tool)
			assert.Equal(t, tt.params, res.Command.Params)
		})
	}
}

func TestParse_Meta(t *testing.T) {
	for line, want := range map[string]Meta{"mem": MetaMemory, "help": MetaHelp, "quit": MetaQuit, "exit": MetaQuit} {
		res, err := Parse(line, nil)
		require.NoError(t, err)
		assert.Equal(t, want, res.Meta, line)
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("   ", nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("dance", nil)
	assert.ErrorIs(t, err, ErrUnknown)

	for _, line := range []string{"move", "equip sword_1", "rest soon", "rest 0", "starvation maybe", "shout"} {
		_, err := Parse(line, nil)
		var usage *UsageError
		assert.True(t, errors.As(err, &usage), "%q: expected usage error, got %v", line, err)
	}
}
