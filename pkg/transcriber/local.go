package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type LocalConfig struct {
	ServerURL string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Local uses a whisper.cpp server's /inference endpoint.
type Local struct {
	serverURL string
	client    *http.Client
	logger    *slog.Logger
}

func NewLocal(cfg LocalConfig) *Local {
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://127.0.0.1:8080"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Local{
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    cfg.Logger,
	}
}

func (t *Local) Transcribe(ctx context.Context, audio []byte, filename, language string) (*Result, error) {
	start := time.Now()
	body, err := postAudio(ctx, t.client, t.logger, form{
		url: t.serverURL + "/inference",
		fields: map[string]string{
			"response-format": "json",
			"language":        language,
			"temperature":     "0.0",
		},
	}, audio, filename)
	if err != nil {
		return nil, err
	}

	res, err := decode(body)
	if err != nil {
		return nil, err
	}
	res.Duration = time.Since(start).Seconds()
	return res, nil
}

// Health checks that the whisper server is up.
func (t *Local) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.serverURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
