package setup

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notesync/backend"
	"notesync/config"
	"notesync/handlers"
	"notesync/pkg/transcriber"
	"notesync/pkg/whisper"
	"notesync/validator"
)

// Backend bundles the server's long-lived dependencies.
type Backend struct {
	Deps   *handlers.Deps
	Store  *backend.Store
	Runner *backend.Runner
	// Whisper is set when the backend supervises its own whisper.cpp server.
	Whisper *whisper.Server
}

// InitBackend opens the store and builds the handler dependencies and the
// analysis runner.
func InitBackend(cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "notesync-dev-secret"
		logger.Warn("JWT_SECRET not set, using an insecure development secret")
	}

	if !strings.Contains(cfg.DatabaseURL, "://") {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), 0o755); err != nil {
			return nil, err
		}
	}

	store, err := backend.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("backend database initialized")

	ws := startWhisper(cfg, logger)
	tr := initTranscriber(cfg, logger)
	host, _ := os.Hostname()
	runner := backend.NewRunner(host, store, tr, time.Second, logger)

	return &Backend{
		Deps: &handlers.Deps{
			Store:     store,
			JWT:       backend.NewJWT(cfg.JWTSecret, 24*time.Hour),
			Validator: validator.New(),
			Logger:    logger,
		},
		Store:   store,
		Runner:  runner,
		Whisper: ws,
	}, nil
}

// startWhisper launches the configured whisper.cpp binary and points
// TranscriberURL at it. Failures leave transcription to the other options.
func startWhisper(cfg *config.Config, logger *slog.Logger) *whisper.Server {
	if cfg.WhisperBinary == "" || cfg.TranscriberURL != "" {
		return nil
	}
	ws, err := whisper.NewServer(whisper.ServerConfig{
		BinaryPath: cfg.WhisperBinary,
		ModelPath:  cfg.WhisperModel,
		Port:       cfg.WhisperPort,
		Logger:     logger,
	})
	if err != nil {
		logger.Warn("whisper server disabled", "error", err)
		return nil
	}
	if err := ws.Start(context.Background()); err != nil {
		logger.Warn("whisper server failed to start", "error", err)
		return nil
	}
	cfg.TranscriberURL = ws.Address()
	return ws
}

// initTranscriber prefers a local whisper.cpp server, then OpenAI. It
// returns nil when neither is configured.
func initTranscriber(cfg *config.Config, logger *slog.Logger) transcriber.Transcriber {
	if cfg.TranscriberURL != "" {
		logger.Info("using local transcriber", "url", cfg.TranscriberURL)
		return transcriber.NewLocal(transcriber.LocalConfig{ServerURL: cfg.TranscriberURL, Logger: logger})
	}
	if cfg.OpenAIAPIKey != "" {
		tr, err := transcriber.New(transcriber.Config{APIKey: cfg.OpenAIAPIKey, Logger: logger})
		if err != nil {
			logger.Warn("transcriber disabled", "error", err)
			return nil
		}
		logger.Info("using OpenAI transcriber")
		return tr
	}
	logger.Warn("no transcriber configured; audio analysis jobs will fail")
	return nil
}

// Shutdown closes the backend store.
func Shutdown(b *Backend, logger *slog.Logger) {
	logger.Info("shutting down services...")
	if b != nil && b.Whisper != nil {
		if err := b.Whisper.Stop(); err != nil {
			logger.Error("failed to stop whisper server", "error", err)
		}
	}
	if b != nil && b.Store != nil {
		if err := b.Store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
			return
		}
		logger.Info("database closed")
	}
}
