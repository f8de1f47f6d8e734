package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notesync/api"
	"notesync/database"
	"notesync/models"
	"notesync/platform"
	"notesync/validator"
)

// TaskService is remote-first like GroupService. It also keeps a time-based
// reminder scheduled for every open task that asks for one.
type TaskService struct {
	store     TaskStore
	api       TasksAPI
	notifier  platform.Notifier
	validator *validator.Validator
	logger    *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(store TaskStore, tasksAPI TasksAPI, notifier platform.Notifier, v *validator.Validator, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = platform.NoopNotifier{}
	}
	return &TaskService{store: store, api: tasksAPI, notifier: notifier, validator: v, logger: logger}
}

// List returns cached tasks matching filter.
func (ts *TaskService) List(ctx context.Context, filter database.TaskFilter) ([]models.Task, error) {
	return ts.store.ListTasks(ctx, filter)
}

// Refresh replaces the cached tasks (of one group when groupID is set) with
// the backend's list, reschedules their reminders and cancels the reminders
// of tasks the backend no longer returns.
func (ts *TaskService) Refresh(ctx context.Context, groupID *int64) ([]models.Task, error) {
	tasks, err := ts.api.List(ctx, groupID)
	if err != nil {
		return nil, err
	}
	filter := database.TaskFilter{GroupID: groupID}
	cached, err := ts.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := ts.store.ReplaceTasks(ctx, filter, tasks); err != nil {
		return nil, err
	}

	kept := make(map[int64]bool, len(tasks))
	for i := range tasks {
		kept[tasks[i].ID] = true
		ts.scheduleReminder(ctx, &tasks[i])
	}
	for _, t := range cached {
		if kept[t.ID] {
			continue
		}
		if err := ts.notifier.Cancel(ctx, ReminderID(t.ID)); err != nil {
			ts.logger.Warn("failed to cancel reminder", "task_id", t.ID, "error", err)
		}
	}
	return tasks, nil
}

// Get fetches a task with comments, falling back to the cache when the
// backend is unreachable.
func (ts *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	task, err := ts.api.Get(ctx, id)
	if err == nil {
		ts.mirror(ctx, task)
		return task, nil
	}
	if errors.Is(err, api.ErrNotFound) {
		ts.forget(ctx, id)
		return nil, ErrTaskNotFound
	}

	cached, cacheErr := ts.store.GetTask(ctx, id)
	if cacheErr != nil || cached == nil {
		return nil, err
	}
	ts.logger.Warn("serving cached task", "task_id", id, "error", err)
	return cached, nil
}

// Create adds a task. Priority defaults to Medium and status to ToDo.
func (ts *TaskService) Create(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.Status == "" {
		req.Status = models.TaskStatusToDo
	}
	if err := ts.validator.Validate(req); err != nil {
		return nil, err
	}

	task, err := ts.api.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	ts.mirror(ctx, task)
	return task, nil
}

func (ts *TaskService) Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error) {
	if err := ts.validator.Validate(req); err != nil {
		return nil, err
	}

	task, err := ts.api.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	ts.mirror(ctx, task)
	return task, nil
}

// SetStatus moves a task through its workflow. Marking it Done cancels its
// reminder.
func (ts *TaskService) SetStatus(ctx context.Context, id int64, status models.TaskStatus) (*models.Task, error) {
	current, err := ts.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		if current, err = ts.Get(ctx, id); err != nil {
			return nil, err
		}
	}

	req := requestFromTask(current)
	req.Status = status
	return ts.Update(ctx, id, req)
}

func (ts *TaskService) Delete(ctx context.Context, id int64) error {
	if err := ts.api.Delete(ctx, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		return err
	}
	ts.forget(ctx, id)
	return nil
}

func (ts *TaskService) AddComment(ctx context.Context, id int64, text string) (*models.Comment, error) {
	if err := ts.validator.Validate(models.AddCommentRequest{Text: text}); err != nil {
		return nil, err
	}

	comment, err := ts.api.AddComment(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	if err := ts.store.AddTaskComment(ctx, id, comment); err != nil {
		ts.logger.Error("failed to cache task comment", "task_id", id, "error", err)
	}
	return comment, nil
}

func (ts *TaskService) mirror(ctx context.Context, t *models.Task) {
	if err := ts.store.UpsertTask(ctx, t); err != nil {
		ts.logger.Error("failed to cache task", "task_id", t.ID, "error", err)
	}
	ts.scheduleReminder(ctx, t)
}

func (ts *TaskService) forget(ctx context.Context, id int64) {
	if err := ts.store.DeleteTask(ctx, id); err != nil {
		ts.logger.Error("failed to drop cached task", "task_id", id, "error", err)
	}
	if err := ts.notifier.Cancel(ctx, ReminderID(id)); err != nil {
		ts.logger.Warn("failed to cancel reminder", "task_id", id, "error", err)
	}
}

func (ts *TaskService) scheduleReminder(ctx context.Context, t *models.Task) {
	id := ReminderID(t.ID)
	var err error
	if t.WantsTimeReminder() {
		err = ts.notifier.Schedule(ctx, platform.Reminder{
			ID:     id,
			TaskID: t.ID,
			Title:  t.Title,
			At:     time.UnixMilli(t.Deadline.At),
		})
	} else {
		err = ts.notifier.Cancel(ctx, id)
	}
	if err != nil {
		ts.logger.Warn("failed to update reminder", "task_id", t.ID, "error", err)
	}
}

// ReminderID is the notifier id used for a task's deadline reminder.
func ReminderID(taskID int64) string {
	return fmt.Sprintf("task-%d", taskID)
}

func requestFromTask(t *models.Task) models.TaskRequest {
	return models.TaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Type:        t.Type,
		Priority:    t.Priority,
		GroupID:     t.GroupID,
		AssigneeID:  t.AssigneeID,
		Location:    t.Location,
		Deadline:    t.Deadline,
		Status:      t.Status,
	}
}
