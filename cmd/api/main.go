package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jwebster45206/hexsim/internal/app"
	"github.com/jwebster45206/hexsim/internal/config"
	"github.com/jwebster45206/hexsim/internal/handlers"
	"github.com/jwebster45206/hexsim/internal/logger"
	"github.com/jwebster45206/hexsim/internal/worker"
)

func main() {
	flags := pflag.NewFlagSet("hexsim-api", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	flags.String("data-dir", "data", "world data directory")
	flags.String("port", "8080", "HTTP port")
	flags.Bool("queue", false, "also drain the Redis command queue")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatal(err)
	}
	if f := flags.Lookup("port"); f != nil && f.Changed {
		cfg.HTTP.Port = f.Value.String()
	}
	drainQueue, _ := flags.GetBool("queue")

	log := logger.Setup(cfg)

	log.Info("Starting hexsim API",
		"port", cfg.HTTP.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"translator", cfg.TranslatorEnabled())

	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startCancel()
	simApp, err := app.Build(startCtx, cfg, log)
	if err != nil {
		log.Error("Failed to start simulation", "error", err)
		os.Exit(1)
	}
	log.Info("Session ready", "session_id", simApp.Session.ID)

	var w *worker.Worker
	if drainQueue {
		if simApp.Queue == nil {
			log.Error("The command queue needs redis.url")
			os.Exit(1)
		}
		w = worker.New(simApp.Queue, simApp.Session, log, os.Getenv("WORKER_ID"))
		go func() {
			if err := w.Start(); err != nil {
				log.Error("Worker error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:        ":" + cfg.HTTP.Port,
		Handler:     handlers.Logger(log, simApp.Routes()),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if w != nil {
		w.Stop(5 * time.Second)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := simApp.Close(); err != nil {
		log.Error("Error closing simulation", "error", err)
	}

	log.Info("Server exited")
}
