package play

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/narrator"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

type lookTranslator struct{}

func (lookTranslator) Translate(context.Context, string) (tools.Command, error) {
	return tools.Command{Tool: tools.Look}, nil
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	w := world.NewTownFixture(rules.Default())
	s := sim.New(w, tools.DefaultRegistry(nil), dice.NewScripted(10)).
		WithPlayer("hero").
		WithDecider(sim.Idle).
		WithRenderer(narrator.New(w))
	return session.New(s)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantLine  string
		wantError string
		wantQuit  bool
	}{
		{name: "blank", line: "   "},
		{name: "look", line: "look", wantLine: "A bustling square"},
		{name: "help", line: "help", wantLine: "Commands:"},
		{name: "quit", line: "quit", wantQuit: true},
		{name: "usage", line: "move", wantError: "Usage: move <location>"},
		{name: "unknown", line: "dance wildly", wantError: "Unknown command. Type 'help' for the list."},
		{name: "rejected", line: "grab rope_1", wantError: "You can't do that right now."},
		{name: "empty memory", line: "mem", wantLine: "You remember nothing yet."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInterpreter(newSession(t))
			r := in.Handle(context.Background(), tt.line)

			assert.Equal(t, tt.wantQuit, r.Quit)
			assert.Equal(t, tt.wantError, r.Error)
			if tt.wantLine == "" {
				if tt.wantError == "" && !tt.wantQuit {
					assert.Empty(t, r.Lines)
				}
				return
			}
			require.NotEmpty(t, r.Lines)
			assert.Contains(t, r.Lines[0], tt.wantLine)
		})
	}
}

func TestHandle_AdvancesClock(t *testing.T) {
	in := NewInterpreter(newSession(t))
	r := in.Handle(context.Background(), "move temple")
	assert.Empty(t, r.Error)
	assert.Equal(t, 5, r.Tick)
	assert.Equal(t, "temple", in.Location())
	assert.Equal(t, 5, in.Tick())
}

func TestHandle_TranslatesUnknownLines(t *testing.T) {
	sess := newSession(t).WithTranslator(lookTranslator{})
	r := NewInterpreter(sess).Handle(context.Background(), "where am I?")
	assert.Empty(t, r.Error)
	require.NotEmpty(t, r.Lines)
	assert.Contains(t, r.Lines[0], "A bustling square")
}

func TestMemory(t *testing.T) {
	sess := newSession(t)
	_, err := sess.Submit(context.Background(), "guard_1", tools.Command{
		Tool:   tools.Talk,
		Params: tools.Params{"content": "Halt!"},
	})
	require.NoError(t, err)

	in := NewInterpreter(sess)
	r := in.Handle(context.Background(), "mem")
	require.Len(t, r.Lines, 1)
	assert.Equal(t, "[tick 0] Town Guard says: Halt!", r.Lines[0])
}

func TestStatus(t *testing.T) {
	sess := newSession(t)
	in := NewInterpreter(sess)
	in.Handle(context.Background(), "equip sword_1 main_hand")

	st := in.Status()
	assert.Equal(t, sess.ID, st.Session)
	assert.Equal(t, "hero", st.PlayerID)
	assert.Equal(t, "Aldric", st.Name)
	assert.Equal(t, "market_square", st.Location)
	assert.Equal(t, "sword_1", st.Equipped["main_hand"])
	assert.False(t, st.Dead)
	assert.Positive(t, st.MaxHP)
}
