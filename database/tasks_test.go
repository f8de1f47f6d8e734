package database

import (
	"context"
	"testing"

	"notesync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepo(t)

	full := &models.Task{
		ID:          1,
		Title:       "Visit client",
		Description: "bring contract",
		Type:        "meeting",
		AuthorID:    "u1",
		Priority:    models.PriorityHigh,
		GroupID:     i64(7),
		AssigneeID:  "u2",
		Location:    &models.Location{Latitude: 48.85, Longitude: 2.35, Name: "Paris", RemindByLocation: true},
		Deadline:    &models.Deadline{At: 5000, RemindByTime: true},
		CreatedAt:   100,
		Status:      models.TaskStatusToDo,
		Comments: []models.Comment{
			{ID: 11, AuthorID: "u2", Text: "on it", CreatedAt: 150},
		},
	}
	bare := &models.Task{ID: 2, Title: "Buy milk", AuthorID: "u1", Priority: models.PriorityLow, CreatedAt: 200, Status: models.TaskStatusDone}

	require.NoError(t, repo.UpsertTask(ctx, full))
	require.NoError(t, repo.UpsertTask(ctx, bare))

	t.Run("Get returns optional parts and comments", func(t *testing.T) {
		got, err := repo.GetTask(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, full.Location, got.Location)
		assert.Equal(t, full.Deadline, got.Deadline)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, int64(1), *got.Comments[0].TaskID)

		got, err = repo.GetTask(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, got.Location)
		assert.Nil(t, got.Deadline)
		assert.Nil(t, got.GroupID)
	})

	t.Run("List filters by group and assignee", func(t *testing.T) {
		all, err := repo.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, int64(2), all[0].ID)

		byGroup, err := repo.ListTasks(ctx, TaskFilter{GroupID: i64(7)})
		require.NoError(t, err)
		require.Len(t, byGroup, 1)
		assert.Equal(t, int64(1), byGroup[0].ID)

		byAssignee, err := repo.ListTasks(ctx, TaskFilter{AssigneeID: "nobody"})
		require.NoError(t, err)
		assert.Empty(t, byAssignee)
	})

	t.Run("Upsert without comments keeps existing ones", func(t *testing.T) {
		update := *full
		update.Comments = nil
		update.Status = models.TaskStatusInProgress
		require.NoError(t, repo.UpsertTask(ctx, &update))

		got, err := repo.GetTask(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, got.Status)
		assert.Len(t, got.Comments, 1)
	})

	t.Run("Replace narrows to the given set", func(t *testing.T) {
		require.NoError(t, repo.ReplaceTasks(ctx, TaskFilter{GroupID: i64(7)}, []models.Task{
			{ID: 3, Title: "Replacement", AuthorID: "u1", Priority: models.PriorityMedium, GroupID: i64(7), CreatedAt: 300, Status: models.TaskStatusToDo},
		}))

		all, err := repo.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		ids := []int64{all[0].ID, all[1].ID}
		assert.ElementsMatch(t, []int64{2, 3}, ids)
	})

	t.Run("Delete removes task and comments", func(t *testing.T) {
		require.NoError(t, repo.AddTaskComment(ctx, 2, &models.Comment{ID: 12, AuthorID: "u1", Text: "done", CreatedAt: 250}))
		require.NoError(t, repo.DeleteTask(ctx, 2))

		got, err := repo.GetTask(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
