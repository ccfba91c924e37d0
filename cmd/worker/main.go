package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/logger"
	"github.com/jwebster45206/hexsim/internal/worker"
)

func main() {
	flags := pflag.NewFlagSet("hexsim-worker", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	flags.String("data-dir", "data", "world data directory")
	flags.String("session-id", "", "session id clients enqueue to")
	flags.String("redis.url", "", "Redis URL")
	tickEvery := flags.Duration("tick-interval", 0, "advance the clock on a timer (0 disables)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting hexsim worker",
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"tick_interval", tickEvery.String())

	if cfg.Redis.URL == "" {
		log.Error("redis.url is required")
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startCancel()
	simApp, err := app.Build(startCtx, cfg, log)
	if err != nil {
		log.Error("Failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := simApp.Close(); err != nil {
			log.Error("Error closing simulation", "error", err)
		}
	}()

	w := worker.New(simApp.Queue, simApp.Session, log, os.Getenv("WORKER_ID"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
		}
	}()

	clockDone := make(chan struct{})
	if *tickEvery > 0 {
		ticker := time.NewTicker(*tickEvery)
		defer ticker.Stop()
		go func() {
			for {
				select {
				case <-clockDone:
					return
				case <-ticker.C:
					out := simApp.Session.Advance(1)
					log.Debug("Clock advanced", "tick", out.Tick, "events", len(out.Dispatched))
				}
			}
		}()
	}

	log.Info("Worker started, waiting for requests...", "session_id", simApp.Session.ID)

	<-quit
	log.Info("Worker shutdown signal received")

	close(clockDone)
	w.Stop(5 * time.Second)

	log.Info("Worker exited")
}
