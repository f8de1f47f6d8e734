package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"notesync/models"
	"notesync/validator"
)

// AnalysisService submits audio or transcripts for server-side analysis and
// polls the resulting jobs.
type AnalysisService struct {
	api       AnalysisAPI
	validator *validator.Validator
	logger    *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(analysisAPI AnalysisAPI, v *validator.Validator, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{api: analysisAPI, validator: v, logger: logger}
}

func (as *AnalysisService) SubmitAudio(ctx context.Context, filename string, audio io.Reader) (*models.AnalysisJob, error) {
	job, err := as.api.SubmitAudio(ctx, filename, audio)
	if err != nil {
		return nil, err
	}
	as.logger.Info("audio analysis submitted", "job_id", job.ID, "file", filename)
	return job, nil
}

func (as *AnalysisService) SubmitTranscript(ctx context.Context, text string) (*models.AnalysisJob, error) {
	if err := as.validator.Validate(models.TranscriptRequest{Text: text}); err != nil {
		return nil, err
	}
	job, err := as.api.SubmitTranscript(ctx, text)
	if err != nil {
		return nil, err
	}
	as.logger.Info("transcript analysis submitted", "job_id", job.ID)
	return job, nil
}

// Poll returns the current state of a job.
func (as *AnalysisService) Poll(ctx context.Context, id int64) (*models.AnalysisJob, error) {
	return as.api.Get(ctx, id)
}

// Wait polls every interval until the job reaches a terminal status. A
// failed job is returned together with ErrJobFailed.
func (as *AnalysisService) Wait(ctx context.Context, id int64, interval time.Duration) (*models.AnalysisJob, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := as.api.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status.Terminal() {
			if job.Status == models.JobStatusFailed {
				return job, fmt.Errorf("%w: %s", ErrJobFailed, job.Error)
			}
			return job, nil
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// TaskDrafts decodes the action items of a succeeded job. Audio jobs carry
// the items extracted from their transcript.
func TaskDrafts(job *models.AnalysisJob) ([]models.TaskDraft, error) {
	if job.Status != models.JobStatusSucceeded {
		return nil, fmt.Errorf("job %d has no result yet", job.ID)
	}
	var drafts []models.TaskDraft
	if err := json.Unmarshal([]byte(job.Result), &drafts); err != nil {
		return nil, fmt.Errorf("failed to decode task result: %w", err)
	}
	return drafts, nil
}
