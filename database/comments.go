package database

import (
	"context"

	"notesync/models"
)

// ==================== COMMENT OPERATIONS ====================

func queryComments(ctx context.Context, q querier, query string, args ...any) ([]models.Comment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// listNoteComments returns a note's comments in creation order. noteServerID
// is copied onto each comment since the store keys them by client id.
func listNoteComments(ctx context.Context, q querier, clientID string, noteServerID *int64) ([]models.Comment, error) {
	comments, err := queryComments(ctx, q, `
		SELECT id, author_id, text, created_at
		FROM comments
		WHERE note_client_id = ?
		ORDER BY created_at ASC, id ASC
	`, clientID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].NoteID = noteServerID
	}
	return comments, nil
}

func listTaskComments(ctx context.Context, q querier, taskID int64) ([]models.Comment, error) {
	comments, err := queryComments(ctx, q, `
		SELECT id, author_id, text, created_at
		FROM comments
		WHERE task_id = ?
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		id := taskID
		comments[i].TaskID = &id
	}
	return comments, nil
}

func replaceNoteComments(ctx context.Context, q querier, clientID string, comments []models.Comment) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM comments WHERE note_client_id = ?`, clientID); err != nil {
		return err
	}
	for _, c := range comments {
		if err := insertComment(ctx, q, &c, clientID, nil); err != nil {
			return err
		}
	}
	return nil
}

func replaceTaskComments(ctx context.Context, q querier, taskID int64, comments []models.Comment) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM comments WHERE task_id = ?`, taskID); err != nil {
		return err
	}
	for _, c := range comments {
		if err := insertComment(ctx, q, &c, "", &taskID); err != nil {
			return err
		}
	}
	return nil
}

func insertComment(ctx context.Context, q querier, c *models.Comment, noteClientID string, taskID *int64) error {
	var noteRef any
	if noteClientID != "" {
		noteRef = noteClientID
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO comments (id, note_client_id, task_id, author_id, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			note_client_id = excluded.note_client_id,
			task_id = excluded.task_id,
			author_id = excluded.author_id,
			text = excluded.text,
			created_at = excluded.created_at
	`, c.ID, noteRef, nullInt64(taskID), c.AuthorID, c.Text, c.CreatedAt)
	return err
}

// AddNoteComment stores a server-acknowledged comment under a local note.
func (r *Repository) AddNoteComment(ctx context.Context, noteClientID string, c *models.Comment) error {
	return insertComment(ctx, r.db, c, noteClientID, nil)
}

// AddTaskComment stores a server-acknowledged comment under a task.
func (r *Repository) AddTaskComment(ctx context.Context, taskID int64, c *models.Comment) error {
	return insertComment(ctx, r.db, c, "", &taskID)
}
