package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

type recorder struct {
	events   []Dispatched
	commands []error
}

func (r *recorder) OnEvent(d Dispatched) { r.events = append(r.events, d) }

func (r *recorder) OnCommand(_ string, _ tools.Name, err error) {
	r.commands = append(r.commands, err)
}

func newSim(t *testing.T, roller dice.Roller) (*Simulator, *world.World) {
	t.Helper()
	w := world.NewTownFixture(rules.Default())
	s := New(w, tools.DefaultRegistry(nil), roller).
		WithPlayer("hero").
		WithDecider(Idle)
	return s, w
}

func kinds(ds []Dispatched) []event.Kind {
	out := make([]event.Kind, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Event.Kind)
	}
	return out
}

func TestProcessCommand_Errors(t *testing.T) {
	s, _ := newSim(t, dice.NewScripted(10))

	err := s.ProcessCommand("hero", tools.Command{Tool: "juggle"})
	assert.True(t, IsUnknownTool(err), "got %v", err)

	err = s.ProcessCommand("nobody", tools.Command{Tool: tools.Look})
	assert.True(t, IsInvalidIntent(err), "got %v", err)

	err = s.ProcessCommand("hero", tools.Command{Tool: tools.Move, Params: tools.Params{"target_location": "atlantis"}})
	assert.True(t, IsInvalidIntent(err), "got %v", err)
	assert.Equal(t, 0, s.Pending())
}

func TestProcessCommand_BusyGating(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	hero, _ := w.Character("hero")

	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Move, Params: tools.Params{"target_location": "temple"}}))
	assert.Equal(t, 5, hero.NextAvailableTick)
	assert.Equal(t, 1, s.Pending())

	before := s.PendingEvents()
	err := s.ProcessCommand("hero", tools.Command{Tool: tools.Look})
	require.Error(t, err)
	assert.True(t, IsActorBusy(err))
	assert.Equal(t, before, s.PendingEvents(), "busy rejection must not schedule events")
	assert.Equal(t, 5, hero.NextAvailableTick, "busy rejection must not move the clock")
	assert.Contains(t, PlayerMessage(err), "tick 5")

	s.AdvanceUntilFree("hero", 20)
	assert.Equal(t, 5, s.CurrentTick())
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Look}))
}

func TestTick_MoveAppliesNextTick(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Move, Params: tools.Params{"target_location": "temple"}}))

	loc, _ := w.FindCharacterLocation("hero")
	assert.Equal(t, "market_square", loc, "nothing happens before the clock advances")

	out := s.Tick()
	require.Len(t, out, 1)
	loc, _ = w.FindCharacterLocation("hero")
	assert.Equal(t, "temple", loc)
	assert.Equal(t, []string{"priest"}, out[0].Recipients)
}

func TestTick_EndToEndAttack(t *testing.T) {
	// d20 face 15 hits AC 14, then 1d6 shows 4
	s, w := newSim(t, dice.NewScripted(15, 4))
	hero, _ := w.Character("hero")
	guard, _ := w.Character("guard_1")
	hero.Slots["main_hand"] = nil
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Equip, Params: tools.Params{"item_id": "sword_1", "slot": "main_hand"}}))
	s.Tick()
	require.Equal(t, "sword_1", hero.EquippedItem("main_hand"))

	hpBefore := guard.HP
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Attack, Params: tools.Params{"target_id": "guard_1"}}))
	out := s.Tick()

	assert.Equal(t, []event.Kind{event.KindAttackAttempt, event.KindAttackHit, event.KindDamageApplied}, kinds(out))
	dmg, ok := out[2].Event.Payload.Int("amount")
	require.True(t, ok)
	assert.Equal(t, 6, dmg)
	assert.Equal(t, hpBefore-dmg, guard.HP)

	toHit, _ := out[1].Event.Payload.Int("to_hit")
	ac, _ := out[1].Event.Payload.Int("target_ac")
	assert.Equal(t, 20, toHit)
	assert.Equal(t, 14, ac)
	assert.Contains(t, out[1].Recipients, "guard_1")
}

func TestTick_EndToEndAttackUnarmed(t *testing.T) {
	// d20 face 15 + strength 2 = 17 hits AC 14, then 1d2 shows 2
	s, w := newSim(t, dice.NewScripted(15, 2))
	hero, _ := w.Character("hero")
	guard, _ := w.Character("guard_1")
	hero.Slots["main_hand"] = nil
	hpBefore := guard.HP

	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Attack, Params: tools.Params{"target_id": "guard_1"}}))
	out := s.Tick()

	assert.Equal(t, []event.Kind{event.KindAttackAttempt, event.KindAttackHit, event.KindDamageApplied}, kinds(out))
	assert.Equal(t, "fists", out[1].Event.Payload.String("weapon"))
	toHit, _ := out[1].Event.Payload.Int("to_hit")
	assert.Equal(t, 17, toHit)
	dmg, _ := out[2].Event.Payload.Int("amount")
	assert.Equal(t, 4, dmg)
	assert.Equal(t, "bludgeoning", out[2].Event.Payload.String("damage_type"))
	assert.Equal(t, hpBefore-4, guard.HP)
}

func TestTick_AttackTargetMovedAway(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(20, 6))
	guard, _ := w.Character("guard_1")

	require.NoError(t, s.ProcessCommand("guard_1", tools.Command{Tool: tools.Move, Params: tools.Params{"target_location": "temple"}}))
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Attack, Params: tools.Params{"target_id": "guard_1"}}))
	out := s.Tick()

	loc, _ := w.FindCharacterLocation("guard_1")
	assert.Equal(t, "temple", loc)
	assert.Equal(t, []event.Kind{event.KindMove, event.KindAttackAttempt, event.KindAttackMissed}, kinds(out))
	assert.Equal(t, ReasonTargetGone, out[2].Event.Payload.String("reason"))
	assert.Equal(t, 10, guard.HP)
}

func TestProcessCommand_DeadActor(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	hero, _ := w.Character("hero")
	hero.AddDynamicTag(actor.TagDead)

	err := s.ProcessCommand("hero", tools.Command{Tool: tools.Look})
	require.Error(t, err)
	assert.True(t, IsInvalidIntent(err), "got %v", err)
	assert.Equal(t, "You are dead.", PlayerMessage(err))
	assert.Equal(t, 0, s.Pending())
}

func TestTick_AttackMiss(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(1))
	guard, _ := w.Character("guard_1")
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Attack, Params: tools.Params{"target_id": "guard_1"}}))
	out := s.Tick()
	assert.Equal(t, []event.Kind{event.KindAttackAttempt, event.KindAttackMissed}, kinds(out))
	assert.Equal(t, 10, guard.HP)
}

func TestTick_DeathOnce(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	guard, _ := w.Character("guard_1")
	guard.HP = 3

	for i := 0; i < 3; i++ {
		s.Schedule(event.New(event.KindDamageApplied, 1, "hero", []string{"guard_1"}, event.Payload{"amount": 2}))
	}
	out := s.Tick()
	s.Schedule(event.New(event.KindDamageApplied, 2, "hero", []string{"guard_1"}, event.Payload{"amount": 2}))
	out = append(out, s.Tick()...)

	deaths := 0
	for _, d := range out {
		if d.Event.Kind == event.KindNPCDied {
			deaths++
			assert.Equal(t, "guard_1", d.Event.ActorID)
			assert.Equal(t, []string{"market_square"}, d.Event.TargetIDs)
		}
	}
	assert.Equal(t, 1, deaths)
	assert.True(t, guard.IsDead())
	loc, _ := w.FindCharacterLocation("guard_1")
	assert.Equal(t, "market_square", loc)
}

func TestTick_DeadDoNotAct(t *testing.T) {
	w := world.NewTownFixture(rules.Default())
	priest, _ := w.Character("priest")
	priest.AddDynamicTag(actor.TagDead)

	s := New(w, tools.DefaultRegistry(nil), rand.New(rand.NewPCG(1, 1))).WithPlayer("hero")
	s.Tick()
	loc, _ := w.FindCharacterLocation("priest")
	assert.Equal(t, "temple", loc)
}

func TestTick_RandomWalkerMovesThroughOpenConnections(t *testing.T) {
	w := world.NewTownFixture(rules.Default())
	s := New(w, tools.DefaultRegistry(nil), rand.New(rand.NewPCG(3, 4))).WithPlayer("hero")

	s.Tick()
	// the temple's only exit is open, so the priest must leave
	loc, _ := w.FindCharacterLocation("priest")
	assert.Equal(t, "market_square", loc)
	// the alley gate is closed, so the thief stays put
	loc, _ = w.FindCharacterLocation("thief")
	assert.Equal(t, "alley", loc)
	hero, _ := w.Character("hero")
	assert.Equal(t, 0, hero.NextAvailableTick, "the player never acts autonomously")
	priest, _ := w.Character("priest")
	assert.Equal(t, 1+5, priest.NextAvailableTick)
}

func TestTick_Starvation(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	s.WithStarvation(true)
	merchant, _ := w.Character("merchant")

	for s.CurrentTick() < 39 {
		s.Tick()
	}
	assert.Equal(t, actor.HungerHungry, merchant.HungerStage)
	assert.Equal(t, 6, merchant.HP)

	out := s.Tick()
	assert.Equal(t, actor.HungerStarving, merchant.HungerStage)
	assert.Equal(t, 5, merchant.HP)
	found := false
	for _, d := range out {
		if d.Event.Kind == event.KindDamageApplied && d.Event.Target(0) == "merchant" {
			found = true
			assert.Equal(t, "starvation", d.Event.Payload.String("damage_type"))
		}
	}
	assert.True(t, found)
}

func TestTick_ToggleStarvation(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.ToggleStarvation}))
	s.Tick()
	assert.True(t, s.Starvation())

	for s.CurrentTick() < 25 {
		s.Tick()
	}
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.ToggleStarvation, Params: tools.Params{"enabled": false}}))
	s.Tick()
	assert.False(t, s.Starvation())
	for _, id := range w.Characters() {
		c, _ := w.Character(id)
		assert.Equal(t, actor.HungerSated, c.HungerStage, id)
		assert.Equal(t, 26, c.LastMealTick, id)
	}
}

func TestTick_RestHealsWhenDone(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	hero, _ := w.Character("hero")
	hero.HP = 5
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Rest, Params: tools.Params{"ticks": 3}}))
	assert.Equal(t, 3, hero.NextAvailableTick)

	s.Tick()
	s.Tick()
	assert.Equal(t, 5, hero.HP)
	s.Tick()
	assert.Equal(t, 8, hero.HP)
}

func TestRunUntilIdle(t *testing.T) {
	s, _ := newSim(t, dice.NewScripted(10))
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Wait, Params: tools.Params{"ticks": 4}}))
	out := s.RunUntilIdle(100)
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 4, s.CurrentTick())
	assert.Equal(t, []event.Kind{event.KindWait}, kinds(out))
}

func TestObservers(t *testing.T) {
	s, _ := newSim(t, dice.NewScripted(10))
	rec := &recorder{}
	s.WithObserver(rec)

	_ = s.ProcessCommand("hero", tools.Command{Tool: "juggle"})
	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Talk, Params: tools.Params{"content": "hail"}}))
	s.Tick()

	require.Len(t, rec.commands, 2)
	assert.True(t, IsUnknownTool(rec.commands[0]))
	assert.NoError(t, rec.commands[1])
	require.Len(t, rec.events, 1)
	assert.Equal(t, event.KindTalk, rec.events[0].Event.Kind)
	assert.Equal(t, []string{"guard_1"}, rec.events[0].Recipients)
}

type echoRenderer struct{ extras []map[string]any }

func (r *echoRenderer) Render(e event.Event, extra map[string]any) string {
	r.extras = append(r.extras, extra)
	return string(e.Kind)
}

func TestRenderer_ReceivesPreApplyFacts(t *testing.T) {
	s, w := newSim(t, dice.NewScripted(10))
	r := &echoRenderer{}
	s.WithRenderer(r)
	hero, _ := w.Character("hero")
	hero.Inventory = append(hero.Inventory, "bread_1")
	sq, _ := w.LocationState("market_square")
	sq.RemoveItem("bread_1")

	require.NoError(t, s.ProcessCommand("hero", tools.Command{Tool: tools.Eat, Params: tools.Params{"item_id": "bread_1"}}))
	out := s.Tick()
	require.Len(t, out, 1)
	assert.Equal(t, "eat", out[0].Line)
	assert.Equal(t, "loaf of bread", r.extras[0]["item_name"])
}
