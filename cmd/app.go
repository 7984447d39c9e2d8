package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fswatcher/internal/config"
	"fswatcher/internal/daemon"
	"fswatcher/internal/util/logger/handlers/slogpretty"
	"fswatcher/internal/util/logger/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting fswatcher",
		slog.String("env", cfg.Env),
		slog.Any("roots", cfg.Watch.Roots),
		slog.String("http", cfg.HTTP.Addr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signalChannel
		log.Info("shutdown signal received", slog.Any("signal", sig))
		cancel()
	}()

	d, err := daemon.New(cfg, log)
	if err != nil {
		log.Error("cannot build daemon", sl.Err(err))
		os.Exit(1)
	}

	if err := d.Run(ctx); err != nil {
		log.Error("daemon failed", sl.Err(err))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {

	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
