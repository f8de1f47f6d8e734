package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"notesync/database"
	"notesync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*models.SyncResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRepo(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "notes.db"), database.Options{Logger: quietLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return database.NewRepository(db)
}

func i64(v int64) *int64 { return &v }

func TestEngine_PushesDirtyNotesAndAppliesResponse(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	remote := &mockRemote{}

	require.NoError(t, repo.CreateNote(ctx, &models.Note{ClientID: "c-1", Title: "draft", LastModified: 1050}))

	remote.On("Sync", mock.Anything, mock.MatchedBy(func(req models.SyncRequest) bool {
		return req.LastSyncTimestamp == 0 && len(req.Notes) == 1 && req.Notes[0].ClientID == "c-1"
	})).Return(&models.SyncResponse{
		Success:       true,
		SyncTimestamp: 1200,
		Notes: []models.Note{
			{ID: i64(7), ClientID: "c-1", Title: "draft", LastModified: 1050},
			{ID: i64(8), ClientID: "c-2", Title: "from elsewhere", LastModified: 1100},
		},
	}, nil).Once()

	result, err := NewEngine(repo, remote, quietLogger()).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, int64(1200), result.SyncTimestamp)
	assert.True(t, result.HadChanges())

	mine, err := repo.GetNote(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, mine.ID)
	assert.Equal(t, int64(7), *mine.ID)
	assert.False(t, mine.Dirty)

	theirs, err := repo.GetNoteByServerID(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "from elsewhere", theirs.Title)

	dirty, err := repo.GetDirtyNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, dirty)

	baseline, err := repo.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), baseline)
	remote.AssertExpectations(t)
}

func TestEngine_SendsStoredBaseline(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	remote := &mockRemote{}
	engine := NewEngine(repo, remote, quietLogger())

	remote.On("Sync", mock.Anything, mock.MatchedBy(func(req models.SyncRequest) bool {
		return req.LastSyncTimestamp == 0
	})).Return(&models.SyncResponse{Success: true, SyncTimestamp: 500}, nil).Once()
	remote.On("Sync", mock.Anything, mock.MatchedBy(func(req models.SyncRequest) bool {
		return req.LastSyncTimestamp == 500 && len(req.Notes) == 0
	})).Return(&models.SyncResponse{Success: true, SyncTimestamp: 900}, nil).Once()

	_, err := engine.Sync(ctx)
	require.NoError(t, err)
	result, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Baseline)
	assert.False(t, result.HadChanges())
	remote.AssertExpectations(t)
}

func TestEngine_FailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	remote := &mockRemote{}

	require.NoError(t, repo.CreateNote(ctx, &models.Note{ClientID: "c-1", Title: "draft", LastModified: 1050}))
	_, err := repo.SoftDeleteNote(ctx, "c-1")
	require.NoError(t, err)

	remote.On("Sync", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	_, err = NewEngine(repo, remote, quietLogger()).Sync(ctx)
	require.Error(t, err)

	dirty, err := repo.GetDirtyNotes(ctx)
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.True(t, dirty[0].IsDeleted)

	baseline, err := repo.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Zero(t, baseline)
}

func TestEngine_AcknowledgedDeletionIsRemoved(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	remote := &mockRemote{}

	require.NoError(t, repo.CreateNote(ctx, &models.Note{ID: i64(3), ClientID: "c-3", Title: "old", LastModified: 100}))
	_, err := repo.SoftDeleteNote(ctx, "c-3")
	require.NoError(t, err)

	remote.On("Sync", mock.Anything, mock.MatchedBy(func(req models.SyncRequest) bool {
		return len(req.Notes) == 1 && req.Notes[0].IsDeleted
	})).Return(&models.SyncResponse{Success: true, SyncTimestamp: 2000, DeletedNoteIDs: []int64{3}}, nil).Once()

	_, err = NewEngine(repo, remote, quietLogger()).Sync(ctx)
	require.NoError(t, err)

	note, err := repo.GetNote(ctx, "c-3")
	require.NoError(t, err)
	assert.Nil(t, note)
}
