// Command notesyncd runs the reference REST backend for notesync clients.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesync/config"
	"notesync/config/setup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setup.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	b, err := setup.InitBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize backend", "error", err)
		os.Exit(1)
	}

	app := setup.NewFiberApp(cfg, logger)
	setup.ApplyMiddleware(app, logger)
	setup.RegisterRoutes(app, b.Deps)

	runnerCtx, stopRunner := context.WithCancel(context.Background())
	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		b.Runner.Run(runnerCtx)
	}()

	logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server gracefully")

	stopRunner()
	<-runnerDone
	logger.Info("analysis runner stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	setup.Shutdown(b, logger)
	logger.Info("server stopped")
}
