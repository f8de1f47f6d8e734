package database

import (
	"context"
	"database/sql"

	"notesync/models"
)

// ==================== TASK OPERATIONS ====================

const taskColumns = `id, title, description, type, author_id, priority, group_id, assignee_id,
	latitude, longitude, location_name, remind_by_location, deadline_at, remind_by_time,
	created_at, status`

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	GroupID    *int64
	AssigneeID string
}

func scanTask(s rowScanner) (*models.Task, error) {
	var t models.Task
	var groupID, deadlineAt sql.NullInt64
	var lat, lng sql.NullFloat64
	var locName sql.NullString
	var remindByLocation, remindByTime int
	var priority, status string

	if err := s.Scan(
		&t.ID, &t.Title, &t.Description, &t.Type, &t.AuthorID, &priority, &groupID, &t.AssigneeID,
		&lat, &lng, &locName, &remindByLocation, &deadlineAt, &remindByTime,
		&t.CreatedAt, &status,
	); err != nil {
		return nil, err
	}

	t.Priority = models.Priority(priority)
	t.Status = models.TaskStatus(status)
	t.GroupID = int64Ptr(groupID)
	if lat.Valid && lng.Valid {
		t.Location = &models.Location{
			Latitude:         lat.Float64,
			Longitude:        lng.Float64,
			Name:             locName.String,
			RemindByLocation: remindByLocation == 1,
		}
	}
	if deadlineAt.Valid {
		t.Deadline = &models.Deadline{At: deadlineAt.Int64, RemindByTime: remindByTime == 1}
	}
	return &t, nil
}

func upsertTask(ctx context.Context, q querier, t *models.Task) error {
	var lat, lng sql.NullFloat64
	var locName sql.NullString
	var remindByLocation, remindByTime int
	var deadlineAt sql.NullInt64
	if t.Location != nil {
		lat = sql.NullFloat64{Float64: t.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: t.Location.Longitude, Valid: true}
		locName = sql.NullString{String: t.Location.Name, Valid: true}
		remindByLocation = boolInt(t.Location.RemindByLocation)
	}
	if t.Deadline != nil {
		deadlineAt = sql.NullInt64{Int64: t.Deadline.At, Valid: true}
		remindByTime = boolInt(t.Deadline.RemindByTime)
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			type = excluded.type,
			author_id = excluded.author_id,
			priority = excluded.priority,
			group_id = excluded.group_id,
			assignee_id = excluded.assignee_id,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			location_name = excluded.location_name,
			remind_by_location = excluded.remind_by_location,
			deadline_at = excluded.deadline_at,
			remind_by_time = excluded.remind_by_time,
			created_at = excluded.created_at,
			status = excluded.status
	`,
		t.ID, t.Title, t.Description, t.Type, t.AuthorID, string(t.Priority), nullInt64(t.GroupID),
		t.AssigneeID, lat, lng, locName, remindByLocation, deadlineAt, remindByTime,
		t.CreatedAt, string(t.Status),
	)
	if err != nil {
		return err
	}

	// nil Comments means "not loaded", so existing rows are kept
	if t.Comments != nil {
		return replaceTaskComments(ctx, q, t.ID, t.Comments)
	}
	return nil
}

// UpsertTask stores a server-provided task, replacing its comments when the
// task carries them.
func (r *Repository) UpsertTask(ctx context.Context, t *models.Task) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		return upsertTask(ctx, tx, t)
	})
}

// GetTask retrieves a task with its ordered comments.
func (r *Repository) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t.Comments, err = listTaskComments(ctx, r.db, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns tasks newest first, without comments.
func (r *Repository) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1 = 1`
	var args []any
	if filter.GroupID != nil {
		query += ` AND group_id = ?`
		args = append(args, *filter.GroupID)
	}
	if filter.AssigneeID != "" {
		query += ` AND assignee_id = ?`
		args = append(args, filter.AssigneeID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ReplaceTasks makes the local task set for the filter equal to tasks.
func (r *Repository) ReplaceTasks(ctx context.Context, filter TaskFilter, tasks []models.Task) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		where := `1 = 1`
		var args []any
		if filter.GroupID != nil {
			where += ` AND group_id = ?`
			args = append(args, *filter.GroupID)
		}
		if filter.AssigneeID != "" {
			where += ` AND assignee_id = ?`
			args = append(args, filter.AssigneeID)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE task_id IN (SELECT id FROM tasks WHERE `+where+`)`, args...); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE `+where, args...); err != nil {
			return err
		}
		for i := range tasks {
			if err := upsertTask(ctx, tx, &tasks[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTask removes a task and its comments.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE task_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		return err
	})
}
