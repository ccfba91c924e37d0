// Package app assembles a running simulation from configuration: it loads
// the world, builds the simulator and session, and attaches whichever
// optional collaborators (feed, journal, metrics, translator) are
// configured.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/feed"
	"github.com/jwebster45206/hexsim/internal/handlers"
	"github.com/jwebster45206/hexsim/internal/journal"
	"github.com/jwebster45206/hexsim/internal/logger"
	"github.com/jwebster45206/hexsim/internal/metrics"
	"github.com/jwebster45206/hexsim/internal/services"
	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/internal/storage"
	"github.com/jwebster45206/hexsim/pkg/narrator"
	"github.com/jwebster45206/hexsim/pkg/rules"
	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
	"github.com/jwebster45206/hexsim/pkg/world"
)

const redisConnectAttempts = 5

// App is a fully wired simulation.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	World    *world.World
	Sim      *sim.Simulator
	Session  *session.Session
	Registry *tools.Registry

	// optional; nil when not configured
	Feed       *feed.Client
	Queue      *feed.CommandQueue
	Journal    *journal.SQLite
	Metrics    *metrics.Metrics
	Prometheus *prometheus.Registry

	closers []func() error
}

// Build wires an App from cfg. On error everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &App{Config: cfg, Logger: log}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	r := rules.Default()
	if cfg.RulesFile != "" {
		loaded, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
		r = loaded
	}

	w, err := storage.LoadWorld(ctx, cfg.DataDir, r, a.Logger)
	if err != nil {
		return err
	}
	if _, ok := w.Character(cfg.PlayerID); !ok {
		return fmt.Errorf("player %q is not a character in %s", cfg.PlayerID, cfg.DataDir)
	}
	a.World = w

	a.Registry = tools.DefaultRegistry(a.Logger)
	a.Sim = sim.New(w, a.Registry, NewRoller(cfg.Seed)).
		WithPlayer(cfg.PlayerID).
		WithStarvation(cfg.Starvation).
		WithLogger(a.Logger).
		WithRenderer(narrator.New(w).WithRating(cfg.Rating))

	a.Session = session.New(a.Sim).WithID(cfg.SessionID).WithLogger(a.Logger)
	sessionLog := logger.WithSession(a.Logger, a.Session.ID)

	if cfg.Metrics.Enabled {
		a.Prometheus = metrics.NewRegistry()
		a.Metrics = metrics.NewMetrics(a.Prometheus)
		a.Sim.WithObserver(a.Metrics)
	}

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path, a.Session.ID, sessionLog)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		a.Journal = j
		a.closers = append(a.closers, j.Close)
		a.Sim.WithObserver(j)
		sessionLog.Info("Journal enabled", "path", cfg.Journal.Path)
	}

	if cfg.Redis.URL != "" {
		client, err := feed.NewClient(ctx, cfg.Redis.URL, redisConnectAttempts, sessionLog)
		if err != nil {
			return err
		}
		a.Feed = client
		a.Queue = feed.NewCommandQueue(client, a.Session.ID)
		a.closers = append(a.closers, client.Close)
		a.Sim.WithObserver(feed.NewPublisher(client, a.Session.ID))
	}

	if cfg.TranslatorEnabled() {
		llm := services.NewOpenAIService(cfg.LLM)
		a.Session.WithTranslator(services.NewCommandTranslator(llm, a.Registry, sessionLog))
		sessionLog.Info("Free-text translation enabled", "model", cfg.LLM.Model)
	}

	sessionLog.Info("Simulation ready",
		"data_dir", cfg.DataDir,
		"player_id", cfg.PlayerID,
		"characters", len(w.Characters()),
		"locations", len(w.Locations()),
		"starvation", cfg.Starvation)
	return nil
}

// NewRoller returns the simulation's random source. A zero seed picks one
// from the clock.
func NewRoller(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}

// Routes builds the HTTP API for the app.
func (a *App) Routes() http.Handler {
	deps := handlers.Deps{
		Session: a.Session,
		Logger:  a.Logger,
	}
	if a.Feed != nil {
		deps.Feed = a.Feed
	}
	if a.Journal != nil {
		deps.Journal = a.Journal
	}
	if a.Prometheus != nil {
		deps.Metrics = metrics.Handler(a.Prometheus)
	}
	return handlers.NewMux(deps)
}

// Close flushes and closes the optional collaborators in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
