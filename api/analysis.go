package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"notesync/models"
)

type AnalysisClient struct {
	c *Client
}

func NewAnalysisClient(c *Client) *AnalysisClient {
	return &AnalysisClient{c: c}
}

// SubmitAudio uploads an audio file as multipart field "file" and returns the
// queued job.
func (a *AnalysisClient) SubmitAudio(ctx context.Context, filename string, audio io.Reader) (*models.AnalysisJob, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var job models.AnalysisJob
	if err := a.c.do(ctx, a.c.authed, http.MethodPost, "/analysis/audio", mw.FormDataContentType(), &buf, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (a *AnalysisClient) SubmitTranscript(ctx context.Context, text string) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	if err := a.c.doJSON(ctx, a.c.authed, http.MethodPost, "/analysis/transcript", models.TranscriptRequest{Text: text}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (a *AnalysisClient) Get(ctx context.Context, id int64) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	if err := a.c.doJSON(ctx, a.c.authed, http.MethodGet, fmt.Sprintf("/analysis/%d", id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
