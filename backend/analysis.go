package backend

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"notesync/models"
)

// SubmitJob queues an analysis job. input holds transcript text for Task
// jobs and raw audio for Audio jobs.
func (s *Store) SubmitJob(ctx context.Context, userID string, typ models.JobType, filename string, input []byte) (*models.AnalysisJob, error) {
	row := jobRow{
		Status:      string(models.JobStatusPending),
		SubmitterID: userID,
		Type:        string(typ),
		Filename:    filename,
		Input:       input,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to queue job: %w", err)
	}
	job := row.toModel()
	return &job, nil
}

// GetJob returns a job submitted by userID.
func (s *Store) GetJob(ctx context.Context, userID string, id int64) (*models.AnalysisJob, error) {
	var row jobRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND submitter_id = ?", id, userID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	job := row.toModel()
	return &job, nil
}

// ClaimJob moves the oldest pending job to Running. It returns nil when
// nothing is pending or another runner won the race.
func (s *Store) ClaimJob(ctx context.Context) (*jobRow, error) {
	var claimed *jobRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row jobRow
		err := tx.Where("status = ?", models.JobStatusPending).Order("id").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res := tx.Model(&jobRow{}).
			Where("id = ? AND status = ?", row.ID, models.JobStatusPending).
			Updates(map[string]any{
				"status":     models.JobStatusRunning,
				"updated_at": models.NowMillis(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		row.Status = string(models.JobStatusRunning)
		claimed = &row
		return nil
	})
	return claimed, err
}

func (s *Store) MarkSucceeded(ctx context.Context, id int64, result string) error {
	return s.finishJob(ctx, id, models.JobStatusSucceeded, result, "")
}

func (s *Store) MarkFailed(ctx context.Context, id int64, msg string) error {
	return s.finishJob(ctx, id, models.JobStatusFailed, "", msg)
}

func (s *Store) finishJob(ctx context.Context, id int64, status models.JobStatus, result, msg string) error {
	return s.db.WithContext(ctx).Model(&jobRow{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"result":     result,
		"error":      msg,
		"input":      nil,
		"updated_at": models.NowMillis(),
	}).Error
}
