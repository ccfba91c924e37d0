// Package sim runs the simulation clock. It accepts commands, keeps
// characters busy for the time their actions cost, lets non-player
// characters act on their own and dispatches scheduled events in order,
// generating follow-up events such as attack resolution and death.
//
// A Simulator is not safe for concurrent use; front ends serialise access.
package sim

import (
	"log/slog"

	"github.com/jwebster45206/hexsim/pkg/combat"
	"github.com/jwebster45206/hexsim/pkg/dice"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/perception"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// Renderer turns a dispatched event into a line of prose. extra carries
// facts captured before the event was applied, such as the name of an item
// that eating destroyed.
type Renderer interface {
	Render(e event.Event, extra map[string]any) string
}

// Dispatched describes one event after the simulator handled it.
type Dispatched struct {
	Event      event.Event
	Line       string   // rendered prose, empty without a renderer
	Recipients []string // characters that perceived the event
}

// Observer is notified after every dispatched event.
type Observer interface {
	OnEvent(d Dispatched)
}

// CommandObserver is optionally implemented by observers that also want to
// see each command outcome.
type CommandObserver interface {
	OnCommand(actorID string, tool tools.Name, err error)
}

// Simulator is the scheduler driving a World.
type Simulator struct {
	world     *world.World
	registry  *tools.Registry
	rng       dice.Roller
	decider   Decider
	renderer  Renderer
	observers []Observer
	logger    *slog.Logger

	tick       int
	pending    schedule
	playerID   string
	starvation bool

	// characters with an npc_died event already scheduled
	dying map[string]bool
}

// New creates a simulator for w at tick 0. rng is the only source of
// randomness the simulator uses.
func New(w *world.World, registry *tools.Registry, rng dice.Roller) *Simulator {
	return &Simulator{
		world:    w,
		registry: registry,
		rng:      rng,
		decider:  NewRandomWalker(w.Rules().ChatterChance),
		logger:   slog.New(slog.DiscardHandler),
		dying:    make(map[string]bool),
	}
}

// WithPlayer marks the character driven by the user; it never acts
// autonomously. Returns the Simulator for method chaining.
func (s *Simulator) WithPlayer(id string) *Simulator {
	s.playerID = id
	return s
}

// WithLogger sets the logger. Returns the Simulator for method chaining.
func (s *Simulator) WithLogger(logger *slog.Logger) *Simulator {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithRenderer sets the renderer. Returns the Simulator for method chaining.
func (s *Simulator) WithRenderer(r Renderer) *Simulator {
	s.renderer = r
	return s
}

// WithObserver adds an observer. Returns the Simulator for method chaining.
func (s *Simulator) WithObserver(o Observer) *Simulator {
	if o != nil {
		s.observers = append(s.observers, o)
	}
	return s
}

// WithDecider replaces the autonomy policy for non-player characters.
// Returns the Simulator for method chaining.
func (s *Simulator) WithDecider(d Decider) *Simulator {
	if d == nil {
		d = Idle
	}
	s.decider = d
	return s
}

// WithStarvation sets whether hunger is tracked each tick. Returns the
// Simulator for method chaining.
func (s *Simulator) WithStarvation(enabled bool) *Simulator {
	s.starvation = enabled
	return s
}

// World returns the world the simulator drives.
func (s *Simulator) World() *world.World { return s.world }

// CurrentTick returns the current clock value.
func (s *Simulator) CurrentTick() int { return s.tick }

// PlayerID returns the player character id, if any.
func (s *Simulator) PlayerID() string { return s.playerID }

// Starvation reports whether hunger is tracked.
func (s *Simulator) Starvation() bool { return s.starvation }

// Pending returns the number of scheduled events not yet dispatched.
func (s *Simulator) Pending() int { return s.pending.len() }

// PendingEvents returns the scheduled events in dispatch order.
func (s *Simulator) PendingEvents() []event.Event { return s.pending.snapshot() }

// Schedule queues an event directly, bypassing tool validation. Scripted
// scenarios use it to stage situations.
func (s *Simulator) Schedule(e event.Event) {
	s.pending.push(e)
}

// ProcessCommand validates cmd for actorID and, if accepted, schedules the
// resulting events and marks the actor busy for the action's cost. A
// rejected command leaves all state unchanged.
func (s *Simulator) ProcessCommand(actorID string, cmd tools.Command) error {
	err := s.processCommand(actorID, cmd)
	for _, o := range s.observers {
		if co, ok := o.(CommandObserver); ok {
			co.OnCommand(actorID, cmd.Tool, err)
		}
	}
	return err
}

func (s *Simulator) processCommand(actorID string, cmd tools.Command) error {
	tool, ok := s.registry.Get(cmd.Tool)
	if !ok {
		return ErrUnknownTool(string(cmd.Tool), actorID, s.tick)
	}
	a, ok := s.world.Character(actorID)
	if !ok {
		return ErrInvalidIntent(string(cmd.Tool), actorID, s.tick, "unknown actor")
	}
	if a.IsDead() {
		return ErrInvalidIntent(string(cmd.Tool), actorID, s.tick, reasonDead)
	}
	if a.IsBusy(s.tick) {
		return ErrActorBusy(string(cmd.Tool), actorID, s.tick, a.NextAvailableTick)
	}
	if !tool.Validate(cmd.Params, s.world, a) {
		return ErrInvalidIntent(string(cmd.Tool), actorID, s.tick, "validation failed")
	}

	plan := tool.Expand(cmd.Params, s.world, a, s.tick)
	for _, e := range plan.Events {
		s.pending.push(e)
	}
	a.NextAvailableTick = s.tick + plan.Cost

	s.logger.Debug("Command accepted",
		"actor", actorID,
		"tool", cmd.Tool,
		"tick", s.tick,
		"events", len(plan.Events),
		"next_available_tick", a.NextAvailableTick)
	return nil
}

// Tick advances the clock by one, runs hunger and autonomy, then dispatches
// every event now due, including follow-ups scheduled for the same tick
// while dispatching. It returns what was dispatched, in order.
func (s *Simulator) Tick() []Dispatched {
	s.tick++

	if s.starvation {
		for _, e := range s.world.UpdateHunger(s.tick) {
			s.pending.push(e)
		}
	}

	for _, id := range s.world.Characters() {
		if id == s.playerID {
			continue
		}
		c, _ := s.world.Character(id)
		if c.IsDead() || c.IsBusy(s.tick) {
			continue
		}
		cmd, ok := s.decider.Decide(s.world, c, s.rng)
		if !ok {
			continue
		}
		if err := s.ProcessCommand(id, cmd); err != nil {
			s.logger.Debug("Autonomous command rejected", "actor", id, "tool", cmd.Tool, "error", err)
		}
	}

	var out []Dispatched
	for {
		e, ok := s.pending.popDue(s.tick)
		if !ok {
			break
		}
		out = append(out, s.dispatch(e))
	}
	return out
}

// RunUntilIdle ticks until no events are pending or maxTicks ticks have
// run. It returns everything dispatched.
func (s *Simulator) RunUntilIdle(maxTicks int) []Dispatched {
	var out []Dispatched
	for i := 0; i < maxTicks && s.pending.len() > 0; i++ {
		out = append(out, s.Tick()...)
	}
	return out
}

// AdvanceUntilFree ticks until actorID can act again or maxTicks ticks have
// run. It returns everything dispatched.
func (s *Simulator) AdvanceUntilFree(actorID string, maxTicks int) []Dispatched {
	var out []Dispatched
	for i := 0; i < maxTicks; i++ {
		a, ok := s.world.Character(actorID)
		if !ok || !a.IsBusy(s.tick) {
			break
		}
		out = append(out, s.Tick()...)
	}
	return out
}

func (s *Simulator) dispatch(e event.Event) Dispatched {
	extra := s.captureExtra(e)
	s.handleEvent(e)

	d := Dispatched{Event: e}
	if s.renderer != nil {
		d.Line = s.renderer.Render(e, extra)
	}
	d.Recipients = perception.Distribute(s.world, e)
	for _, o := range s.observers {
		o.OnEvent(d)
	}
	return d
}

func (s *Simulator) handleEvent(e event.Event) {
	switch e.Kind {
	case event.KindAttackAttempt:
		s.resolveAttack(e)
	case event.KindDamageApplied:
		s.world.ApplyEvent(e)
		s.checkDeath(e)
	case event.KindNPCDied:
		s.world.ApplyEvent(e)
		delete(s.dying, e.ActorID)
	case event.KindToggleStarvation:
		s.toggleStarvation(e)
	case event.KindMove, event.KindGrab, event.KindDrop, event.KindEat,
		event.KindEquip, event.KindUnequip, event.KindGive,
		event.KindOpenConnection, event.KindCloseConnection,
		event.KindRest, event.KindWait:
		s.world.ApplyEvent(e)
	case event.KindDescribeLocation, event.KindAttackHit, event.KindAttackMissed,
		event.KindTalk, event.KindTalkLoud, event.KindScream,
		event.KindAnalyze, event.KindInventory, event.KindStats:
		// descriptive only
	default:
		s.logger.Warn("Unhandled event kind", "kind", e.Kind)
	}
}

// ReasonTargetGone marks an attack_missed whose target was no longer in
// reach when the attack resolved.
const ReasonTargetGone = "target_gone"

func (s *Simulator) resolveAttack(e event.Event) {
	attacker, ok := s.world.Character(e.ActorID)
	if !ok || attacker.IsDead() {
		return
	}
	targets := []string{e.Target(0)}
	target, ok := s.world.Character(e.Target(0))
	if !ok {
		s.pending.push(event.New(event.KindAttackMissed, s.tick, attacker.ID, targets, event.Payload{"reason": ReasonTargetGone}))
		return
	}
	// the target may have moved away since the attack was queued
	here, _ := s.world.FindCharacterLocation(attacker.ID)
	there, ok := s.world.FindCharacterLocation(target.ID)
	if !ok || here != there {
		s.pending.push(event.New(event.KindAttackMissed, s.tick, attacker.ID, targets, event.Payload{"reason": ReasonTargetGone}))
		return
	}

	res := combat.Attack(s.rng, s.world, attacker, target)
	outcome := event.Payload{
		"roll":      res.Roll,
		"to_hit":    res.ToHit,
		"target_ac": res.TargetAC,
		"weapon":    res.Weapon,
	}
	if !res.Hit {
		s.pending.push(event.New(event.KindAttackMissed, s.tick, attacker.ID, targets, outcome))
		return
	}
	s.pending.push(event.New(event.KindAttackHit, s.tick, attacker.ID, targets, outcome))
	s.pending.push(event.New(event.KindDamageApplied, s.tick, attacker.ID, targets, event.Payload{
		"amount":      res.Damage,
		"damage_type": res.DamageType,
		"weapon":      res.Weapon,
	}))
}

// checkDeath schedules exactly one npc_died for a character whose hit
// points have fallen to zero or below.
func (s *Simulator) checkDeath(e event.Event) {
	target, ok := s.world.Character(e.Target(0))
	if !ok || target.HP > 0 || target.IsDead() || s.dying[target.ID] {
		return
	}
	s.dying[target.ID] = true

	var where []string
	if loc, ok := s.world.FindCharacterLocation(target.ID); ok {
		where = []string{loc}
	}
	s.pending.push(event.New(event.KindNPCDied, s.tick, target.ID, where, event.Payload{
		"cause": e.Payload.String("damage_type"),
	}))
}

func (s *Simulator) toggleStarvation(e event.Event) {
	enabled, ok := e.Payload.Bool("enabled")
	if !ok {
		enabled = !s.starvation
	}
	s.starvation = enabled
	if !enabled {
		s.world.ResetHunger(s.tick)
	}
	s.logger.Info("Starvation toggled", "enabled", enabled, "tick", s.tick)
}

// captureExtra records facts that applying e may destroy.
func (s *Simulator) captureExtra(e event.Event) map[string]any {
	extra := map[string]any{}
	switch e.Kind {
	case event.KindMove:
		if from, ok := s.world.FindCharacterLocation(e.ActorID); ok {
			extra["from"] = from
		}
	case event.KindGrab, event.KindDrop, event.KindEat, event.KindEquip,
		event.KindUnequip, event.KindGive, event.KindAnalyze:
		if b, ok := s.world.ItemBlueprint(e.Target(0)); ok {
			extra["item_name"] = b.DisplayName()
		}
	case event.KindAttackAttempt:
		if a, ok := s.world.Character(e.ActorID); ok {
			extra["weapon"] = combat.WeaponFor(s.world, a).DisplayName()
		}
	}
	return extra
}
