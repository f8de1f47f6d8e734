package backend

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"notesync/models"
)

func visibleTasks(db *gorm.DB, userID string) *gorm.DB {
	return db.Where("(author_id = ? OR assignee_id = ? OR group_id IN (?))",
		userID, userID, memberGroups(db, userID))
}

func (s *Store) loadTask(db *gorm.DB, userID string, id int64) (*taskRow, error) {
	var row taskRow
	if err := visibleTasks(db.Model(&taskRow{}), userID).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (s *Store) ListTasks(ctx context.Context, userID string, groupID *int64) ([]models.Task, error) {
	db := s.db.WithContext(ctx)
	q := visibleTasks(db.Model(&taskRow{}), userID)
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}

	var rows []taskRow
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.tasksWithComments(db, rows)
}

func (s *Store) GetTask(ctx context.Context, userID string, id int64) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	row, err := s.loadTask(db, userID, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasksWithComments(db, []taskRow{*row})
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (s *Store) CreateTask(ctx context.Context, userID string, req models.TaskRequest) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	if err := s.checkGroupAccess(db, req.GroupID, userID); err != nil {
		return nil, err
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	row := taskRow{AuthorID: userID, Status: string(models.TaskStatusToDo)}
	row.apply(&req)
	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	t := row.toModel()
	return &t, nil
}

func (s *Store) UpdateTask(ctx context.Context, userID string, id int64, req models.TaskRequest) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	row, err := s.loadTask(db, userID, id)
	if err != nil {
		return nil, err
	}
	if req.GroupID != nil && (row.GroupID == nil || *row.GroupID != *req.GroupID) {
		if err := s.checkGroupAccess(db, req.GroupID, userID); err != nil {
			return nil, err
		}
	}

	if req.Priority == "" {
		req.Priority = models.Priority(row.Priority)
	}
	row.apply(&req)
	if err := db.Save(row).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	tasks, err := s.tasksWithComments(db, []taskRow{*row})
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// DeleteTask is restricted to the task's author.
func (s *Store) DeleteTask(ctx context.Context, userID string, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.loadTask(tx, userID, id)
		if err != nil {
			return err
		}
		if row.AuthorID != userID {
			return fmt.Errorf("%w: only the author can delete a task", ErrForbidden)
		}
		if err := tx.Where("task_id = ?", id).Delete(&commentRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(row).Error
	})
}

func (s *Store) AddTaskComment(ctx context.Context, userID string, taskID int64, text string) (*models.Comment, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.loadTask(db, userID, taskID); err != nil {
		return nil, err
	}

	c := commentRow{TaskID: &taskID, AuthorID: userID, Text: text}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	m := c.toModel()
	return &m, nil
}

func (s *Store) tasksWithComments(db *gorm.DB, rows []taskRow) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(rows))
	if len(rows) == 0 {
		return tasks, nil
	}

	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}

	var comments []commentRow
	if err := db.Where("task_id IN ?", ids).Order("created_at, id").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	byTask := make(map[int64][]models.Comment)
	for i := range comments {
		byTask[*comments[i].TaskID] = append(byTask[*comments[i].TaskID], comments[i].toModel())
	}

	for i := range rows {
		t := rows[i].toModel()
		t.Comments = byTask[rows[i].ID]
		tasks = append(tasks, t)
	}
	return tasks, nil
}
