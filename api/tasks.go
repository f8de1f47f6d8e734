package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"notesync/models"
)

type TasksClient struct {
	c *Client
}

func NewTasksClient(c *Client) *TasksClient {
	return &TasksClient{c: c}
}

// List returns the caller's tasks, restricted to one group when groupID is set.
func (t *TasksClient) List(ctx context.Context, groupID *int64) ([]models.Task, error) {
	path := "/tasks"
	if groupID != nil {
		path += "?groupId=" + strconv.FormatInt(*groupID, 10)
	}
	var tasks []models.Task
	if err := t.c.doJSON(ctx, t.c.authed, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (t *TasksClient) Get(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := t.c.doJSON(ctx, t.c.authed, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TasksClient) Create(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := t.c.doJSON(ctx, t.c.authed, http.MethodPost, "/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TasksClient) Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := t.c.doJSON(ctx, t.c.authed, http.MethodPut, taskPath(id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TasksClient) Delete(ctx context.Context, id int64) error {
	return t.c.doJSON(ctx, t.c.authed, http.MethodDelete, taskPath(id), nil, nil)
}

func (t *TasksClient) AddComment(ctx context.Context, taskID int64, text string) (*models.Comment, error) {
	var comment models.Comment
	path := taskPath(taskID) + "/comments"
	if err := t.c.doJSON(ctx, t.c.authed, http.MethodPost, path, models.AddCommentRequest{Text: text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}
