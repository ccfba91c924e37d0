// Package session wraps a simulator for front ends: it serialises access,
// runs the clock forward after each player command and translates free
// text when a translator is configured.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// DefaultMaxTicks bounds how far a single command may run the clock.
const DefaultMaxTicks = 100

// ErrNoTranslator is returned by SubmitText when free text is not enabled.
var ErrNoTranslator = errors.New("free-text commands are not enabled")

// Translator turns free text into a command.
type Translator interface {
	Translate(ctx context.Context, text string) (tools.Command, error)
}

// Outcome is what one submission dispatched.
type Outcome struct {
	Command    tools.Command    `json:"command"`
	Dispatched []sim.Dispatched `json:"-"`
	Tick       int              `json:"tick"`
}

// LinesFor returns the rendered lines actorID took part in or perceived.
func (o Outcome) LinesFor(actorID string) []string {
	return LinesFor(o.Dispatched, actorID)
}

// LinesFor filters dispatched events down to the lines actorID took part in
// or perceived.
func LinesFor(ds []sim.Dispatched, actorID string) []string {
	var out []string
	for _, d := range ds {
		if d.Line == "" {
			continue
		}
		if d.Event.ActorID == actorID || slices.Contains(d.Recipients, actorID) {
			out = append(out, d.Line)
		}
	}
	return out
}

// Session owns one simulator. It is safe for concurrent use.
type Session struct {
	ID string

	mu         sync.Mutex
	sim        *sim.Simulator
	translator Translator
	maxTicks   int
	logger     *slog.Logger
}

// New creates a session with a fresh id.
func New(s *sim.Simulator) *Session {
	return &Session{
		ID:       uuid.NewString(),
		sim:      s,
		maxTicks: DefaultMaxTicks,
		logger:   slog.New(slog.DiscardHandler),
	}
}

// WithID overrides the generated id. Returns the Session for method chaining.
func (s *Session) WithID(id string) *Session {
	if id != "" {
		s.ID = id
	}
	return s
}

// WithTranslator enables SubmitText. Returns the Session for method chaining.
func (s *Session) WithTranslator(t Translator) *Session {
	s.translator = t
	return s
}

// WithLogger sets the logger. Returns the Session for method chaining.
func (s *Session) WithLogger(logger *slog.Logger) *Session {
	if logger != nil {
		s.logger = logger.With("session_id", s.ID)
	}
	return s
}

// WithMaxTicks bounds the ticks one submission may run. Returns the Session
// for method chaining.
func (s *Session) WithMaxTicks(n int) *Session {
	if n > 0 {
		s.maxTicks = n
	}
	return s
}

// PlayerID returns the simulator's player character.
func (s *Session) PlayerID() string {
	return s.sim.PlayerID()
}

// CanTranslate reports whether SubmitText is available.
func (s *Session) CanTranslate() bool {
	return s.translator != nil
}

// Submit issues cmd for actorID (the player when empty). When accepted, the
// clock runs at least one tick and then until the actor is free again, so
// the command's own events are dispatched before Submit returns.
func (s *Session) Submit(ctx context.Context, actorID string, cmd tools.Command) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actorID == "" {
		actorID = s.sim.PlayerID()
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if err := s.sim.ProcessCommand(actorID, cmd); err != nil {
		s.logger.Debug("Command rejected", "actor", actorID, "tool", cmd.Tool, "error", err)
		return Outcome{Command: cmd, Tick: s.sim.CurrentTick()}, err
	}

	out := Outcome{Command: cmd}
	out.Dispatched = append(out.Dispatched, s.sim.Tick()...)
	out.Dispatched = append(out.Dispatched, s.sim.AdvanceUntilFree(actorID, s.maxTicks)...)
	out.Tick = s.sim.CurrentTick()
	return out, nil
}

// SubmitText translates text and submits the result. A translation that
// yields no command is returned as a TRANSLATION_FAILURE error.
func (s *Session) SubmitText(ctx context.Context, actorID, text string) (Outcome, error) {
	if s.translator == nil {
		return Outcome{}, ErrNoTranslator
	}
	cmd, err := s.translator.Translate(ctx, text)
	if err != nil {
		return Outcome{}, err
	}
	return s.Submit(ctx, actorID, cmd)
}

// Advance runs n ticks.
func (s *Session) Advance(n int) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	for range min(n, s.maxTicks) {
		out.Dispatched = append(out.Dispatched, s.sim.Tick()...)
	}
	out.Tick = s.sim.CurrentTick()
	return out
}

// View runs fn with exclusive access to the world and the current tick. fn
// must not keep references past its return.
func (s *Session) View(fn func(w *world.World, tick int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.sim.World(), s.sim.CurrentTick())
}

// Tick returns the current clock value.
func (s *Session) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.CurrentTick()
}
