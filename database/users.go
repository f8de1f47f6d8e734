package database

import (
	"context"
	"database/sql"

	"notesync/models"
)

// ==================== USER OPERATIONS ====================

func upsertUser(ctx context.Context, q querier, u *models.User) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (id, username, email)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email
	`, u.ID, u.Username, u.Email)
	return err
}

// UpsertUser creates or updates a user record
func (r *Repository) UpsertUser(ctx context.Context, u *models.User) error {
	return upsertUser(ctx, r.db, u)
}

// GetUser retrieves a user by ID. Role is empty outside a group listing.
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, `SELECT id, username, email FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
