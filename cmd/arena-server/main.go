// FILE: cmd/arena-server/main.go
// Package main implements the arena server: the decision orchestrator behind
// a RESTful API with optional SQLite match archiving.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"arena/cmd/arena-server/cli"
	"arena/internal/config"
	"arena/internal/engine"
	"arena/internal/http"
	"arena/internal/processor"
	"arena/internal/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	log := newLogger(false)

	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("CLI error")
		}
		os.Exit(0)
	}

	var (
		configPath  = flag.String("config", "", "Path to YAML configuration (defaults when empty)")
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, debug logging)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables archiving if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	log = newLogger(*dev)

	if *pidLock && *pidPath == "" {
		log.Fatal().Msg("-pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer cleanup()
		log.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file created")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// 1. Storage (optional)
	opts := []processor.Option{
		processor.WithLogger(log),
		processor.WithNetwork(engine.LinearNetwork{}),
	}
	if *storagePath != "" {
		log.Info().Str("path", *storagePath).Msg("initializing match archive")
		store, err := storage.NewStore(*storagePath, *dev, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize storage")
		}
		if err := store.InitDB(); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize schema")
		}
		opts = append(opts, processor.WithStore(store))
	} else {
		log.Info().Msg("match archive disabled (use -storage-path to enable)")
	}

	// 2. Orchestrator; it owns the store from here on
	proc, err := processor.New(cfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize processor")
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go proc.RunCleanupJob(cleanupCtx, cfg.Orchestrator.CleanupInterval)

	// 3. HTTP
	app := http.NewFiberApp(proc, *dev, log)
	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Info().
			Str("addr", "http://"+apiAddr).
			Bool("dev", *dev).
			Int("workers", cfg.Orchestrator.Workers).
			Int("max_agents_per_bucket", cfg.Pool.MaxAgentsPerBucket).
			Msg("arena API server starting")
		log.Info().Msgf("API endpoints: http://%s/api/v1/matches", apiAddr)
		log.Info().Msgf("Metrics: http://%s/metrics", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	cleanupCancel()

	if err = proc.Close(); err != nil {
		log.Warn().Err(err).Msg("processor close error")
	}

	log.Info().Msg("server exited")
}

// newLogger writes human-readable output to a terminal and JSON otherwise
func newLogger(dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
