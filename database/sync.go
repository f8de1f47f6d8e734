package database

import (
	"context"
	"database/sql"

	"notesync/models"

	"github.com/google/uuid"
)

// ==================== SYNC OPERATIONS ====================

// ApplyStats summarizes what ApplySync changed locally.
type ApplyStats struct {
	Upserted     int
	Skipped      int
	Deleted      int
	Acknowledged int
}

// GetLastSyncTimestamp returns the sync baseline, 0 before the first sync.
func (r *Repository) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	var ts int64
	err := r.db.QueryRowContext(ctx, `SELECT last_sync_timestamp FROM sync_state WHERE id = 1`).Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return ts, err
}

func setLastSyncTimestamp(ctx context.Context, q querier, ts int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sync_state (id, last_sync_timestamp, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_sync_timestamp = excluded.last_sync_timestamp,
			updated_at = excluded.updated_at
	`, ts, models.NowMillis())
	return err
}

// ApplySync merges a successful sync response into the store in a single
// transaction:
//   - pushed notes that were not edited since the push are acknowledged
//     (dirty cleared; soft-deleted ones removed),
//   - every returned note with a lastModified is upserted by identity, with
//     last-write-wins on lastModified,
//   - ids listed as deleted are removed,
//   - the baseline moves to resp.SyncTimestamp.
//
// Applying the same response twice leaves the store unchanged the second time.
func (r *Repository) ApplySync(ctx context.Context, pushed []NoteWithMeta, resp *models.SyncResponse) (*ApplyStats, error) {
	stats := &ApplyStats{}

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range pushed {
			acked, err := acknowledgePush(ctx, tx, &p)
			if err != nil {
				return err
			}
			if acked {
				stats.Acknowledged++
			}
		}

		for i := range resp.Notes {
			n := &resp.Notes[i]
			if n.LastModified == 0 {
				stats.Skipped++
				continue
			}
			applied, err := mergeRemoteNote(ctx, tx, n)
			if err != nil {
				return err
			}
			if applied {
				stats.Upserted++
			} else {
				stats.Skipped++
			}
		}

		if len(resp.DeletedNoteIDs) > 0 {
			ids := make([]any, len(resp.DeletedNoteIDs))
			for i, id := range resp.DeletedNoteIDs {
				ids[i] = id
			}
			res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE server_id IN (`+placeholders(len(ids))+`)`, ids...)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			stats.Deleted += int(n)
		}
		if len(resp.DeletedClientIDs) > 0 {
			ids := make([]any, len(resp.DeletedClientIDs))
			for i, id := range resp.DeletedClientIDs {
				ids[i] = id
			}
			res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE client_id IN (`+placeholders(len(ids))+`)`, ids...)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			stats.Deleted += int(n)
		}

		return setLastSyncTimestamp(ctx, tx, resp.SyncTimestamp)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// acknowledgePush clears the dirty flag of a pushed note, or removes it when
// the push was a deletion. Notes edited after the push keep their state.
func acknowledgePush(ctx context.Context, q querier, p *NoteWithMeta) (bool, error) {
	var res sql.Result
	var err error
	if p.IsDeleted {
		res, err = q.ExecContext(ctx, `
			DELETE FROM notes WHERE client_id = ? AND last_modified = ? AND is_deleted = 1
		`, p.ClientID, p.LastModified)
	} else {
		res, err = q.ExecContext(ctx, `
			UPDATE notes SET dirty = 0
			WHERE client_id = ? AND last_modified = ? AND dirty = 1
		`, p.ClientID, p.LastModified)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// findLocal resolves the local row for a remote note: server id first, then
// client id (covers a provisional note the server just assigned an id to).
func findLocal(ctx context.Context, q querier, n *models.Note) (*NoteWithMeta, error) {
	if n.ID != nil {
		local, err := getNote(ctx, q, "server_id = ?", *n.ID)
		if err != nil || local != nil {
			return local, err
		}
	}
	if n.ClientID != "" {
		return getNote(ctx, q, "client_id = ?", n.ClientID)
	}
	return nil, nil
}

// mergeRemoteNote upserts n unless the local copy is strictly newer.
func mergeRemoteNote(ctx context.Context, q querier, n *models.Note) (bool, error) {
	local, err := findLocal(ctx, q, n)
	if err != nil {
		return false, err
	}

	if local != nil && local.LastModified > n.LastModified {
		return false, nil
	}

	if n.IsDeleted {
		if local == nil {
			return false, nil
		}
		_, err := q.ExecContext(ctx, `DELETE FROM notes WHERE client_id = ?`, local.ClientID)
		return err == nil, err
	}

	clientID := n.ClientID
	if local != nil {
		clientID = local.ClientID
	}
	if clientID == "" {
		clientID = uuid.New().String()
	}

	if local == nil {
		_, err = q.ExecContext(ctx, `
			INSERT INTO notes (`+noteColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0)
		`,
			clientID, nullInt64(n.ID), n.Title, n.Content, n.Geotag, nullInt64(n.GroupID),
			n.Color, n.CreatedAt, n.LineCountHint, n.LastModified,
		)
	} else {
		_, err = q.ExecContext(ctx, `
			UPDATE notes SET
				server_id = ?, title = ?, content = ?, geotag = ?, group_id = ?, color = ?,
				created_at = ?, line_count_hint = ?, last_modified = ?, is_deleted = 0, dirty = 0
			WHERE client_id = ?
		`,
			nullInt64(n.ID), n.Title, n.Content, n.Geotag, nullInt64(n.GroupID), n.Color,
			n.CreatedAt, n.LineCountHint, n.LastModified, clientID,
		)
	}
	if err != nil {
		return false, err
	}

	if err := replaceNoteComments(ctx, q, clientID, n.Comments); err != nil {
		return false, err
	}
	return true, nil
}
