package transcriber

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const DefaultOpenAIURL = "https://api.openai.com/v1/audio/transcriptions"

type Config struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// OpenAI talks to the OpenAI audio transcription endpoint or anything
// that speaks the same protocol.
type OpenAI struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	logger *slog.Logger
}

func New(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultOpenAIURL
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &OpenAI{
		apiKey: cfg.APIKey,
		apiURL: cfg.APIURL,
		model:  cfg.Model,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: cfg.Logger,
	}, nil
}

func (t *OpenAI) Transcribe(ctx context.Context, audio []byte, filename, language string) (*Result, error) {
	body, err := postAudio(ctx, t.client, t.logger, form{
		url:     t.apiURL,
		headers: map[string]string{"Authorization": "Bearer " + t.apiKey},
		fields: map[string]string{
			"model":           t.model,
			"language":        language,
			"response_format": "json",
		},
	}, audio, filename)
	if err != nil {
		return nil, err
	}

	res, err := decode(body)
	if err != nil {
		return nil, err
	}
	if res.Language == "" {
		res.Language = language
	}
	return res, nil
}
