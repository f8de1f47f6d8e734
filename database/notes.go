package database

import (
	"context"
	"database/sql"
	"fmt"

	"notesync/models"

	"github.com/google/uuid"
)

// ==================== NOTE OPERATIONS ====================

const noteColumns = `client_id, server_id, title, content, geotag, group_id, color,
	created_at, line_count_hint, last_modified, is_deleted, dirty`

// NoteWithMeta carries the local sync bookkeeping alongside a note.
type NoteWithMeta struct {
	models.Note
	Dirty bool
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (*NoteWithMeta, error) {
	var n NoteWithMeta
	var serverID, groupID sql.NullInt64
	var deleted, dirty int
	if err := s.Scan(
		&n.ClientID, &serverID, &n.Title, &n.Content, &n.Geotag, &groupID, &n.Color,
		&n.CreatedAt, &n.LineCountHint, &n.LastModified, &deleted, &dirty,
	); err != nil {
		return nil, err
	}
	n.ID = int64Ptr(serverID)
	n.GroupID = int64Ptr(groupID)
	n.IsDeleted = deleted == 1
	n.Dirty = dirty == 1
	return &n, nil
}

func queryNotes(ctx context.Context, q querier, query string, args ...any) ([]NoteWithMeta, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]NoteWithMeta, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func getNote(ctx context.Context, q querier, where string, arg any) (*NoteWithMeta, error) {
	row := q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE `+where, arg)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

// GetNote retrieves a note and its comments by client id. Soft-deleted notes
// are returned too; callers check IsDeleted.
func (r *Repository) GetNote(ctx context.Context, clientID string) (*NoteWithMeta, error) {
	n, err := getNote(ctx, r.db, "client_id = ?", clientID)
	if err != nil || n == nil {
		return n, err
	}
	if n.Comments, err = listNoteComments(ctx, r.db, n.ClientID, n.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// GetNoteByServerID retrieves a note by its server-assigned id.
func (r *Repository) GetNoteByServerID(ctx context.Context, serverID int64) (*NoteWithMeta, error) {
	n, err := getNote(ctx, r.db, "server_id = ?", serverID)
	if err != nil || n == nil {
		return n, err
	}
	if n.Comments, err = listNoteComments(ctx, r.db, n.ClientID, n.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// ListNotes returns every note that is not soft-deleted, most recent first,
// each with its ordered comments. groupID narrows the listing when set.
func (r *Repository) ListNotes(ctx context.Context, groupID *int64) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE is_deleted = 0`
	var args []any
	if groupID != nil {
		query += ` AND group_id = ?`
		args = append(args, *groupID)
	}
	query += ` ORDER BY last_modified DESC, client_id`

	rows, err := queryNotes(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}

	// Comments are loaded after the note rows are closed; the store has a single connection
	notes := make([]models.Note, 0, len(rows))
	for _, n := range rows {
		if n.Comments, err = listNoteComments(ctx, r.db, n.ClientID, n.ID); err != nil {
			return nil, err
		}
		notes = append(notes, n.Note)
	}
	return notes, nil
}

// CreateNote inserts a locally created note marked dirty. A ClientID is
// assigned when the caller did not provide one.
func (r *Repository) CreateNote(ctx context.Context, note *models.Note) error {
	if note.ClientID == "" {
		note.ClientID = uuid.New().String()
	}
	if note.LastModified == 0 {
		note.LastModified = models.NowMillis()
	}
	if note.CreatedAt == 0 {
		note.CreatedAt = note.LastModified
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`,
		note.ClientID, nullInt64(note.ID), note.Title, note.Content, note.Geotag,
		nullInt64(note.GroupID), note.Color, note.CreatedAt, note.LineCountHint,
		note.LastModified, boolInt(note.IsDeleted),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// UpdateNote overwrites the editable fields of a local note and marks it dirty.
// last_modified always moves forward, even within the same millisecond, so an
// edit made while a push is in flight is never mistaken for the pushed version.
func (r *Repository) UpdateNote(ctx context.Context, note *models.Note) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE notes SET
			title = ?, content = ?, geotag = ?, group_id = ?, color = ?,
			line_count_hint = ?, last_modified = MAX(?, last_modified + 1), dirty = 1
		WHERE client_id = ? AND is_deleted = 0
		RETURNING last_modified
	`,
		note.Title, note.Content, note.Geotag, nullInt64(note.GroupID), note.Color,
		note.LineCountHint, models.NowMillis(), note.ClientID,
	).Scan(&note.LastModified)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// SoftDeleteNote flags the note deleted and pending sync. The row stays until
// the server confirms the deletion. It returns the new last_modified.
func (r *Repository) SoftDeleteNote(ctx context.Context, clientID string) (int64, error) {
	var lastModified int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE notes
		SET is_deleted = 1, dirty = 1, last_modified = MAX(?, last_modified + 1)
		WHERE client_id = ?
		RETURNING last_modified
	`, models.NowMillis(), clientID).Scan(&lastModified)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return lastModified, err
}

// HardDeleteNote permanently removes a note and its comments.
func (r *Repository) HardDeleteNote(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE client_id = ?`, clientID)
	return err
}

// MarkNoteSynced records the server identity of a note after a successful
// push. The dirty flag is only cleared when the note was not edited again in
// the meantime, i.e. its last_modified still equals the pushed version.
func (r *Repository) MarkNoteSynced(ctx context.Context, clientID string, serverID int64, pushedLastModified int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notes SET
			server_id = ?,
			dirty = CASE WHEN last_modified = ? THEN 0 ELSE dirty END
		WHERE client_id = ?
	`, serverID, pushedLastModified, clientID)
	return err
}

// GetDirtyNotes returns notes changed locally since their last successful
// push, soft-deleted ones included, oldest change first.
func (r *Repository) GetDirtyNotes(ctx context.Context) ([]NoteWithMeta, error) {
	return queryNotes(ctx, r.db, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE dirty = 1
		ORDER BY last_modified ASC
	`)
}
