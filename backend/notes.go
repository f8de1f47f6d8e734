package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notesync/models"
)

// memberGroups is a subquery selecting the groups userID belongs to.
func memberGroups(db *gorm.DB, userID string) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&memberRow{}).Select("group_id").Where("user_id = ?", userID)
}

func visibleNotes(db *gorm.DB, userID string) *gorm.DB {
	return db.Where("(owner_id = ? OR group_id IN (?))", userID, memberGroups(db, userID))
}

func (s *Store) isMember(db *gorm.DB, groupID int64, userID string) (bool, error) {
	var count int64
	err := db.Model(&memberRow{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) checkGroupAccess(db *gorm.DB, groupID *int64, userID string) error {
	if groupID == nil {
		return nil
	}
	ok, err := s.isMember(db, *groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a member of group %d", ErrForbidden, *groupID)
	}
	return nil
}

func (s *Store) ListNotes(ctx context.Context, userID string, groupID *int64) ([]models.Note, error) {
	db := s.db.WithContext(ctx)
	q := visibleNotes(db.Model(&noteRow{}), userID).Where("deleted = ?", false)
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}

	var rows []noteRow
	if err := q.Order("last_modified DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return s.notesWithComments(db, rows)
}

func (s *Store) loadNote(db *gorm.DB, userID string, id int64) (*noteRow, error) {
	var row noteRow
	err := visibleNotes(db.Model(&noteRow{}), userID).
		Where("id = ? AND deleted = ?", id, false).
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (s *Store) GetNote(ctx context.Context, userID string, id int64) (*models.Note, error) {
	db := s.db.WithContext(ctx)
	row, err := s.loadNote(db, userID, id)
	if err != nil {
		return nil, err
	}
	notes, err := s.notesWithComments(db, []noteRow{*row})
	if err != nil {
		return nil, err
	}
	return &notes[0], nil
}

// CreateNote stores a note pushed directly by a client. The client's id is
// kept so later syncs match the same row; a repeated create for that id is
// merged with last-write-wins.
func (s *Store) CreateNote(ctx context.Context, userID string, n models.Note) (*models.Note, error) {
	db := s.db.WithContext(ctx)
	if err := s.checkGroupAccess(db, n.GroupID, userID); err != nil {
		return nil, err
	}

	now := models.NowMillis()
	if n.LastModified == 0 {
		n.LastModified = now
	}
	n.ID = nil
	n.IsDeleted = false

	var id int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		id, err = s.mergeNote(tx, userID, &n, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetNote(ctx, userID, id)
}

// UpdateNote applies a full note update if it is at least as recent as the
// stored version and returns the canonical note either way.
func (s *Store) UpdateNote(ctx context.Context, userID string, id int64, n models.Note) (*models.Note, error) {
	db := s.db.WithContext(ctx)
	row, err := s.loadNote(db, userID, id)
	if err != nil {
		return nil, err
	}
	if n.GroupID != nil && (row.GroupID == nil || *row.GroupID != *n.GroupID) {
		if err := s.checkGroupAccess(db, n.GroupID, userID); err != nil {
			return nil, err
		}
	}

	now := models.NowMillis()
	if n.LastModified == 0 {
		n.LastModified = now
	}
	if n.LastModified >= row.LastModified {
		n.IsDeleted = false
		n.CreatedAt = 0
		row.apply(&n)
		row.ChangedAt = now
		if err := db.Save(row).Error; err != nil {
			return nil, fmt.Errorf("failed to update note: %w", err)
		}
	}

	notes, err := s.notesWithComments(db, []noteRow{*row})
	if err != nil {
		return nil, err
	}
	return &notes[0], nil
}

// DeleteNote leaves a tombstone so other devices learn about the deletion
// on their next sync.
func (s *Store) DeleteNote(ctx context.Context, userID string, id int64) error {
	db := s.db.WithContext(ctx)
	row, err := s.loadNote(db, userID, id)
	if err != nil {
		return err
	}

	now := models.NowMillis()
	return db.Model(row).Updates(map[string]any{
		"deleted":       true,
		"last_modified": now,
		"changed_at":    now,
	}).Error
}

func (s *Store) AddNoteComment(ctx context.Context, userID string, noteID int64, text string) (*models.Comment, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.loadNote(db, userID, noteID); err != nil {
		return nil, err
	}

	c := commentRow{NoteID: &noteID, AuthorID: userID, Text: text}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	m := c.toModel()
	return &m, nil
}

func (s *Store) notesWithComments(db *gorm.DB, rows []noteRow) ([]models.Note, error) {
	notes := make([]models.Note, 0, len(rows))
	if len(rows) == 0 {
		return notes, nil
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var comments []commentRow
	if err := db.Where("note_id IN ?", ids).Order("created_at, id").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	byNote := make(map[int64][]models.Comment)
	for i := range comments {
		byNote[*comments[i].NoteID] = append(byNote[*comments[i].NoteID], comments[i].toModel())
	}

	for i := range rows {
		n := rows[i].toModel()
		n.Comments = byNote[rows[i].ID]
		notes = append(notes, n)
	}
	return notes, nil
}

// SyncNotes merges the pushed notes with last-write-wins and returns every
// note visible to userID that changed after the request baseline, plus the
// canonical version of each pushed note.
func (s *Store) SyncNotes(ctx context.Context, userID string, req models.SyncRequest) (*models.SyncResponse, error) {
	now := models.NowMillis()
	resp := &models.SyncResponse{
		Notes:          []models.Note{},
		DeletedNoteIDs: []int64{},
		SyncTimestamp:  now,
		Success:        true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pushed := make([]int64, 0, len(req.Notes))
		for i := range req.Notes {
			id, err := s.mergeNote(tx, userID, &req.Notes[i], now)
			if err != nil {
				return err
			}
			if id != 0 {
				pushed = append(pushed, id)
			}
		}

		q := visibleNotes(tx.Model(&noteRow{}), userID)
		if len(pushed) > 0 {
			q = q.Where("(changed_at > ? OR id IN ?)", req.LastSyncTimestamp, pushed)
		} else {
			q = q.Where("changed_at > ?", req.LastSyncTimestamp)
		}

		var rows []noteRow
		if err := q.Order("id").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to collect changes: %w", err)
		}

		live := rows[:0]
		for _, r := range rows {
			if r.Deleted {
				resp.DeletedNoteIDs = append(resp.DeletedNoteIDs, r.ID)
				continue
			}
			live = append(live, r)
		}

		notes, err := s.notesWithComments(tx, live)
		if err != nil {
			return err
		}
		resp.Notes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("notes synced",
		"user_id", userID,
		"pushed", len(req.Notes),
		"returned", len(resp.Notes),
		"deleted", len(resp.DeletedNoteIDs),
	)
	return resp, nil
}

// mergeNote applies one pushed note and returns the server id it maps to,
// or 0 when the note was skipped.
func (s *Store) mergeNote(tx *gorm.DB, userID string, n *models.Note, now int64) (int64, error) {
	row, err := s.findSyncTarget(tx, userID, n)
	if err != nil {
		return 0, err
	}

	if n.GroupID != nil {
		ok, err := s.isMember(tx, *n.GroupID, userID)
		if err != nil {
			return 0, err
		}
		if !ok {
			s.logger.Warn("dropping group from synced note", "user_id", userID, "group_id", *n.GroupID)
			n.GroupID = nil
			if row != nil {
				n.GroupID = row.GroupID
			}
		}
	}

	if row == nil {
		clientID := n.ClientID
		if clientID == "" {
			clientID = uuid.NewString()
		}
		row = &noteRow{OwnerID: userID, ClientID: clientID}
		row.apply(n)
		row.ChangedAt = now
		if err := tx.Create(row).Error; err != nil {
			return 0, fmt.Errorf("failed to insert synced note: %w", err)
		}
		return row.ID, nil
	}

	if n.LastModified >= row.LastModified {
		row.apply(n)
		row.ChangedAt = now
		if err := tx.Save(row).Error; err != nil {
			return 0, fmt.Errorf("failed to update synced note: %w", err)
		}
	}
	return row.ID, nil
}

func (s *Store) findSyncTarget(tx *gorm.DB, userID string, n *models.Note) (*noteRow, error) {
	var row noteRow
	if n.ID != nil {
		err := visibleNotes(tx.Model(&noteRow{}), userID).Where("id = ?", *n.ID).First(&row).Error
		if err == nil {
			return &row, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if n.ClientID == "" {
		return nil, nil
	}

	err := tx.Where("owner_id = ? AND client_id = ?", userID, n.ClientID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
