package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/narrator"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

type stubTranslator struct {
	cmd tools.Command
	err error
}

func (s stubTranslator) Translate(context.Context, string) (tools.Command, error) {
	return s.cmd, s.err
}

func newSession(t *testing.T, faces ...int) *Session {
	t.Helper()
	w := world.NewTownFixture(rules.Default())
	s := sim.New(w, tools.DefaultRegistry(nil), dice.NewScripted(faces...)).
		WithPlayer("hero").
		WithDecider(sim.Idle).
		WithRenderer(narrator.New(w))
	return New(s)
}

func TestSubmit_RunsUntilActorIsFree(t *testing.T) {
	sess := newSession(t, 10)
	out, err := sess.Submit(context.Background(), "", tools.Command{Tool: tools.Move, Params: tools.Params{"target_location": "temple"}})
	require.NoError(t, err)

	assert.Equal(t, 5, out.Tick)
	require.Len(t, out.Dispatched, 1)
	assert.Equal(t, event.KindMove, out.Dispatched[0].Event.Kind)
	assert.Equal(t, []string{"Aldric moves to temple. Cool stone and the smell of incense."}, out.LinesFor("hero"))

	sess.View(func(w *world.World, tick int) {
		loc, _ := w.FindCharacterLocation("hero")
		assert.Equal(t, "temple", loc)
		assert.Equal(t, 5, tick)
	})
}

func TestSubmit_FreeCommandStillDispatches(t *testing.T) {
	sess := newSession(t, 10)
	out, err := sess.Submit(context.Background(), "hero", tools.Command{Tool: tools.Stats})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Tick)
	require.Len(t, out.Dispatched, 1)
	assert.Equal(t, event.KindStats, out.Dispatched[0].Event.Kind)
}

func TestSubmit_Rejected(t *testing.T) {
	sess := newSession(t, 10)
	_, err := sess.Submit(context.Background(), "", tools.Command{Tool: tools.Grab, Params: tools.Params{"item_id": "rope_1"}})
	assert.True(t, sim.IsInvalidIntent(err))
	assert.Equal(t, 0, sess.Tick(), "a rejected command does not run the clock")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sess.Submit(ctx, "", tools.Command{Tool: tools.Look})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmitText(t *testing.T) {
	sess := newSession(t, 10)
	_, err := sess.SubmitText(context.Background(), "", "look around")
	assert.ErrorIs(t, err, ErrNoTranslator)
	assert.False(t, sess.CanTranslate())

	sess.WithTranslator(stubTranslator{cmd: tools.Command{Tool: tools.Look}})
	out, err := sess.SubmitText(context.Background(), "", "look around")
	require.NoError(t, err)
	require.NotEmpty(t, out.Dispatched)
	assert.Equal(t, event.KindDescribeLocation, out.Dispatched[0].Event.Kind)

	failure := sim.ErrTranslationFailure("blah", nil)
	sess.WithTranslator(stubTranslator{err: failure})
	_, err = sess.SubmitText(context.Background(), "", "blah")
	assert.True(t, errors.Is(err, failure) || sim.IsTranslationFailure(err))
}

func TestAdvance(t *testing.T) {
	sess := newSession(t, 10).WithMaxTicks(3)
	out := sess.Advance(10)
	assert.Equal(t, 3, out.Tick, "advance is bounded by max ticks")
}

func TestLinesFor(t *testing.T) {
	ds := []sim.Dispatched{
		{Event: event.New(event.KindTalk, 1, "thief", nil, nil), Line: "Thief says: psst", Recipients: []string{"hero"}},
		{Event: event.New(event.KindTalk, 1, "priest", nil, nil), Line: "Priest says: amen"},
		{Event: event.New(event.KindWait, 1, "hero", nil, nil), Line: ""},
	}
	assert.Equal(t, []string{"Thief says: psst"}, LinesFor(ds, "hero"))
}

func TestSession_ConcurrentSubmit(t *testing.T) {
	sess := newSession(t, 10)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = sess.Submit(context.Background(), "", tools.Command{Tool: tools.Inventory})
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, sess.Tick())
}
