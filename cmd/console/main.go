package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/logger"
	"github.com/jwebster45206/hexsim/internal/play"
)

func main() {
	flags := pflag.NewFlagSet("hexsim-console", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file path")
	apiURL := flags.String("api", os.Getenv("HEXSIM_API_URL"), "hexsim-api base URL; runs a local session when empty")
	logFile := flags.String("log-file", "", "write logs to this file instead of discarding them")
	flags.String("data-dir", "data", "world data directory")
	flags.String("player-id", "hero", "character the player controls")
	flags.Int64("seed", 0, "random seed (0 picks one from the clock)")
	flags.String("rating", "", "content rating")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs never go to stdout/stderr.
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		logOut = f
	}
	log := logger.SetupWriter(cfg, logOut)

	ctx := context.Background()
	backend, closeBackend, err := newBackend(ctx, cfg, *apiURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeBackend()

	p := tea.NewProgram(NewConsoleUI(backend),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// newBackend connects to apiURL when set, otherwise builds a session in
// this process.
func newBackend(ctx context.Context, cfg *config.Config, apiURL string, log *slog.Logger) (Backend, func(), error) {
	if apiURL != "" {
		client := &http.Client{Timeout: requestTimeout}
		if !testConnection(client, apiURL) {
			return nil, nil, fmt.Errorf("could not connect to API at %s. Please ensure hexsim-api is running", apiURL)
		}
		b, err := newAPIBackend(ctx, client, apiURL, cfg.PlayerID)
		if err != nil {
			return nil, nil, err
		}
		return b, func() {}, nil
	}

	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	a, err := app.Build(buildCtx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}
	return localBackend{in: play.NewInterpreter(a.Session)}, func() {
		if err := a.Close(); err != nil {
			log.Error("Failed to close app", "error", err)
		}
	}, nil
}
