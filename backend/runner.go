package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"notesync/models"
	"notesync/pkg/transcriber"
)

// Runner processes queued analysis jobs.
type Runner struct {
	ID          string
	store       *Store
	transcriber transcriber.Transcriber
	interval    time.Duration
	logger      *slog.Logger
}

// NewRunner builds a runner. A nil transcriber makes audio jobs fail with
// an explanatory message.
func NewRunner(id string, store *Store, tr transcriber.Transcriber, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		ID:          id,
		store:       store,
		transcriber: tr,
		interval:    interval,
		logger:      logger,
	}
}

func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("[Analysis Runner] started", "runner", r.ID, "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("[Analysis Runner] stopped", "runner", r.ID)
			return
		case <-ticker.C:
			for {
				ran, err := r.RunOnce(ctx)
				if err != nil {
					r.logger.Error("[Analysis Runner] claim failed", "runner", r.ID, "error", err)
					break
				}
				if !ran {
					break
				}
			}
		}
	}
}

// RunOnce claims and handles a single job. It reports whether a job was
// processed.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	job, err := r.store.ClaimJob(ctx)
	if err != nil || job == nil {
		return false, err
	}
	r.handle(ctx, job)
	return true, nil
}

func (r *Runner) handle(ctx context.Context, job *jobRow) {
	log := r.logger.With("runner", r.ID, "job_id", job.ID, "type", job.Type)

	var (
		result string
		err    error
	)
	switch models.JobType(job.Type) {
	case models.JobTypeTask:
		result, err = draftsJSON(string(job.Input))
	case models.JobTypeAudio:
		result, err = r.handleAudio(ctx, job)
	default:
		r.fail(ctx, log, job.ID, "unknown job type")
		return
	}
	if err != nil {
		r.fail(ctx, log, job.ID, err.Error())
		return
	}

	if err := r.store.MarkSucceeded(ctx, job.ID, result); err != nil {
		log.Error("[Analysis Runner] failed to record result", "error", err)
		return
	}
	log.Info("[Analysis Runner] job succeeded")
}

// handleAudio transcribes the upload and extracts action items from the
// transcript, so both job types share one result format.
func (r *Runner) handleAudio(ctx context.Context, job *jobRow) (string, error) {
	if r.transcriber == nil {
		return "", errTranscriptionDisabled
	}
	res, err := r.transcriber.Transcribe(ctx, job.Input, job.Filename, "")
	if err != nil {
		return "", err
	}
	return draftsJSON(res.Text)
}

func (r *Runner) fail(ctx context.Context, log *slog.Logger, id int64, msg string) {
	if err := r.store.MarkFailed(ctx, id, msg); err != nil {
		log.Error("[Analysis Runner] failed to record failure", "error", err)
		return
	}
	log.Warn("[Analysis Runner] job failed", "reason", msg)
}

func draftsJSON(text string) (string, error) {
	b, err := json.Marshal(ExtractTasks(text))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
