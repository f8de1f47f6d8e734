package database

import (
	"context"
	"database/sql"

	"notesync/models"
)

// ==================== GROUP OPERATIONS ====================

func upsertGroup(ctx context.Context, q querier, g *models.Group) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO user_groups (id, name, description, owner_id, created_at, member_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			owner_id = excluded.owner_id,
			created_at = excluded.created_at,
			member_count = excluded.member_count
	`, g.ID, g.Name, g.Description, g.OwnerID, g.CreatedAt, g.MemberCount)
	if err != nil {
		return err
	}

	if g.Members == nil {
		return nil
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, g.ID); err != nil {
		return err
	}
	for i := range g.Members {
		if err := addMember(ctx, q, g.ID, &g.Members[i]); err != nil {
			return err
		}
	}
	return nil
}

func addMember(ctx context.Context, q querier, groupID int64, u *models.User) error {
	if err := upsertUser(ctx, q, u); err != nil {
		return err
	}
	role := u.Role
	if role == "" {
		role = models.RoleMember
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES (?, ?, ?)
		ON CONFLICT(group_id, user_id) DO UPDATE SET role = excluded.role
	`, groupID, u.ID, role)
	return err
}

func refreshMemberCount(ctx context.Context, q querier, groupID int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE user_groups
		SET member_count = (SELECT COUNT(*) FROM group_members WHERE group_id = ?)
		WHERE id = ?
	`, groupID, groupID)
	return err
}

func listMembers(ctx context.Context, q querier, groupID int64) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, m.role
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY u.username ASC, u.id ASC
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func scanGroup(s rowScanner) (*models.Group, error) {
	var g models.Group
	if err := s.Scan(&g.ID, &g.Name, &g.Description, &g.OwnerID, &g.CreatedAt, &g.MemberCount); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpsertGroup stores a group; when Members is non-nil the membership is
// replaced with it.
func (r *Repository) UpsertGroup(ctx context.Context, g *models.Group) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		return upsertGroup(ctx, tx, g)
	})
}

// ReplaceGroups makes the local group set equal to groups.
func (r *Repository) ReplaceGroups(ctx context.Context, groups []models.Group) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		ids := make([]any, 0, len(groups))
		for i := range groups {
			ids = append(ids, groups[i].ID)
		}
		query := `DELETE FROM user_groups`
		if len(ids) > 0 {
			query += ` WHERE id NOT IN (` + placeholders(len(ids)) + `)`
		}
		if _, err := tx.ExecContext(ctx, query, ids...); err != nil {
			return err
		}
		for i := range groups {
			if err := upsertGroup(ctx, tx, &groups[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group with its role-tagged members.
func (r *Repository) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, created_at, member_count
		FROM user_groups WHERE id = ?
	`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if g.Members, err = listMembers(ctx, r.db, g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGroups returns all cached groups ordered by name, without members.
func (r *Repository) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, owner_id, created_at, member_count
		FROM user_groups
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// DeleteGroup removes a group; memberships cascade.
func (r *Repository) DeleteGroup(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_groups WHERE id = ?`, id)
	return err
}

// AddGroupMember records a membership and refreshes the member count.
func (r *Repository) AddGroupMember(ctx context.Context, groupID int64, u *models.User) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := addMember(ctx, tx, groupID, u); err != nil {
			return err
		}
		return refreshMemberCount(ctx, tx, groupID)
	})
}

// RemoveGroupMember drops a membership and refreshes the member count.
func (r *Repository) RemoveGroupMember(ctx context.Context, groupID int64, userID string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ? AND user_id = ?`, groupID, userID); err != nil {
			return err
		}
		return refreshMemberCount(ctx, tx, groupID)
	})
}
