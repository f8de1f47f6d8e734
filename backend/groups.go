package backend

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"notesync/models"
)

func (s *Store) memberRole(db *gorm.DB, groupID int64, userID string) (string, error) {
	var m memberRow
	err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return m.Role, err
}

// requireRole loads the group and checks that userID is a member, and an
// owner when ownerOnly is set. Non-members get ErrNotFound.
func (s *Store) requireRole(db *gorm.DB, groupID int64, userID string, ownerOnly bool) (*groupRow, error) {
	role, err := s.memberRole(db, groupID, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrNotFound
	}
	if ownerOnly && role != models.RoleOwner {
		return nil, fmt.Errorf("%w: owner role required", ErrForbidden)
	}

	var g groupRow
	if err := db.First(&g, groupID).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context, userID string) ([]models.Group, error) {
	db := s.db.WithContext(ctx)

	var rows []groupRow
	if err := db.Where("id IN (?)", memberGroups(db, userID)).Order("name, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]models.Group, 0, len(rows))
	for i := range rows {
		g, err := s.groupModel(db, &rows[i], false)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, nil
}

func (s *Store) GetGroup(ctx context.Context, userID string, id int64) (*models.Group, error) {
	db := s.db.WithContext(ctx)
	row, err := s.requireRole(db, id, userID, false)
	if err != nil {
		return nil, err
	}
	return s.groupModel(db, row, true)
}

func (s *Store) CreateGroup(ctx context.Context, userID string, req models.GroupRequest) (*models.Group, error) {
	row := groupRow{Name: req.Name, Description: req.Description, OwnerID: userID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		return tx.Create(&memberRow{GroupID: row.ID, UserID: userID, Role: models.RoleOwner}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.groupModel(s.db.WithContext(ctx), &row, true)
}

func (s *Store) UpdateGroup(ctx context.Context, userID string, id int64, req models.GroupRequest) (*models.Group, error) {
	db := s.db.WithContext(ctx)
	row, err := s.requireRole(db, id, userID, true)
	if err != nil {
		return nil, err
	}

	row.Name = req.Name
	row.Description = req.Description
	if err := db.Save(row).Error; err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return s.groupModel(db, row, true)
}

// DeleteGroup removes the group and its memberships. Notes and tasks that
// were shared with it fall back to their owners.
func (s *Store) DeleteGroup(ctx context.Context, userID string, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireRole(tx, id, userID, true); err != nil {
			return err
		}

		now := models.NowMillis()
		if err := tx.Model(&noteRow{}).Where("group_id = ?", id).
			Updates(map[string]any{"group_id": nil, "changed_at": now}).Error; err != nil {
			return err
		}
		if err := tx.Model(&taskRow{}).Where("group_id = ?", id).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&memberRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&groupRow{}, id).Error
	})
}

func (s *Store) AddMember(ctx context.Context, userID string, groupID int64, req models.AddMemberRequest) (*models.Group, error) {
	db := s.db.WithContext(ctx)
	row, err := s.requireRole(db, groupID, userID, true)
	if err != nil {
		return nil, err
	}

	var target userRow
	if err := db.First(&target, "id = ?", req.UserID).Error; err != nil {
		return nil, notFound(err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	existing, err := s.memberRole(db, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	m := memberRow{GroupID: groupID, UserID: req.UserID, Role: role}
	if existing == "" {
		err = db.Create(&m).Error
	} else {
		err = db.Save(&m).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.groupModel(db, row, true)
}

func (s *Store) RemoveMember(ctx context.Context, userID string, groupID int64, memberID string) error {
	db := s.db.WithContext(ctx)
	row, err := s.requireRole(db, groupID, userID, true)
	if err != nil {
		return err
	}
	if memberID == row.OwnerID {
		return fmt.Errorf("%w: cannot remove the group creator", ErrForbidden)
	}
	return s.deleteMember(db, groupID, memberID)
}

func (s *Store) LeaveGroup(ctx context.Context, userID string, groupID int64) error {
	db := s.db.WithContext(ctx)
	row, err := s.requireRole(db, groupID, userID, false)
	if err != nil {
		return err
	}
	if userID == row.OwnerID {
		return fmt.Errorf("%w: the group creator cannot leave; delete the group instead", ErrForbidden)
	}
	return s.deleteMember(db, groupID, userID)
}

func (s *Store) deleteMember(db *gorm.DB, groupID int64, userID string) error {
	res := db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&memberRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) groupModel(db *gorm.DB, row *groupRow, withMembers bool) (*models.Group, error) {
	g := &models.Group{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		OwnerID:     row.OwnerID,
		CreatedAt:   row.CreatedAt,
	}

	var members []memberRow
	if err := db.Where("group_id = ?", row.ID).Order("user_id").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	g.MemberCount = len(members)
	if !withMembers || len(members) == 0 {
		return g, nil
	}

	ids := make([]string, len(members))
	for i := range members {
		ids[i] = members[i].UserID
	}
	var users []userRow
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	byID := make(map[string]userRow, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for _, m := range members {
		u := byID[m.UserID]
		g.Members = append(g.Members, models.User{
			ID:       m.UserID,
			Username: u.Username,
			Email:    u.Email,
			Role:     m.Role,
		})
	}
	return g, nil
}
