package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesync/models"
	"notesync/pkg/transcriber"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) (*Store, *JWT) {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "backend.db"), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, NewJWT("test-secret", time.Hour)
}

func registerUser(t *testing.T, s *Store, j *JWT, name string) string {
	t.Helper()
	tokens, err := s.Register(testContext(t), j, models.RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	id, err := j.Verify(tokens.AccessToken)
	require.NoError(t, err)
	return id
}

func i64(v int64) *int64 { return &v }

func TestJWT_SignVerify(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	tok, err := j.Sign("user-1")
	require.NoError(t, err)

	sub, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = NewJWT("other", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = j.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterAndLogin(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	id := registerUser(t, s, j, "alice")

	_, err := s.Register(ctx, j, models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrConflict)

	tests := []struct {
		name    string
		ident   string
		pw      string
		wantErr error
	}{
		{name: "by username", ident: "alice", pw: "correct horse"},
		{name: "by email any case", ident: "Alice@Example.com", pw: "correct horse"},
		{name: "wrong password", ident: "alice", pw: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", ident: "bob", pw: "correct horse", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := s.Login(ctx, j, models.LoginRequest{UsernameOrEmail: tt.ident, Password: tt.pw})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tokens.RefreshToken)
			sub, err := j.Verify(tokens.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, id, sub)
		})
	}
}

func TestSyncNotes_LastWriteWins(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	user := registerUser(t, s, j, "alice")

	first, err := s.SyncNotes(ctx, user, models.SyncRequest{Notes: []models.Note{
		{ClientID: "c-1", Title: "draft", LastModified: 100},
	}})
	require.NoError(t, err)
	require.True(t, first.Success)
	require.Len(t, first.Notes, 1)
	serverID := *first.Notes[0].ID
	assert.Equal(t, "c-1", first.Notes[0].ClientID)

	// an older edit loses and the canonical version comes back
	stale, err := s.SyncNotes(ctx, user, models.SyncRequest{
		LastSyncTimestamp: first.SyncTimestamp,
		Notes:             []models.Note{{ID: &serverID, ClientID: "c-1", Title: "stale", LastModified: 50}},
	})
	require.NoError(t, err)
	require.Len(t, stale.Notes, 1)
	assert.Equal(t, "draft", stale.Notes[0].Title)

	// an equal timestamp wins
	tie, err := s.SyncNotes(ctx, user, models.SyncRequest{
		LastSyncTimestamp: stale.SyncTimestamp,
		Notes:             []models.Note{{ID: &serverID, ClientID: "c-1", Title: "tie", LastModified: 100}},
	})
	require.NoError(t, err)
	require.Len(t, tie.Notes, 1)
	assert.Equal(t, "tie", tie.Notes[0].Title)

	// nothing changed since the last baseline
	idle, err := s.SyncNotes(ctx, user, models.SyncRequest{LastSyncTimestamp: tie.SyncTimestamp})
	require.NoError(t, err)
	assert.Empty(t, idle.Notes)
	assert.Empty(t, idle.DeletedNoteIDs)

	// a full sync from zero still sees the note
	full, err := s.SyncNotes(ctx, user, models.SyncRequest{})
	require.NoError(t, err)
	require.Len(t, full.Notes, 1)
}

func TestSyncNotes_Tombstones(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	user := registerUser(t, s, j, "alice")

	n, err := s.CreateNote(ctx, user, models.Note{Title: "to delete"})
	require.NoError(t, err)

	base, err := s.SyncNotes(ctx, user, models.SyncRequest{})
	require.NoError(t, err)
	require.Len(t, base.Notes, 1)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.DeleteNote(ctx, user, *n.ID))

	resp, err := s.SyncNotes(ctx, user, models.SyncRequest{LastSyncTimestamp: base.SyncTimestamp})
	require.NoError(t, err)
	assert.Empty(t, resp.Notes)
	assert.Equal(t, []int64{*n.ID}, resp.DeletedNoteIDs)

	_, err = s.GetNote(ctx, user, *n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncNotes_SharedThroughGroup(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	alice := registerUser(t, s, j, "alice")
	bob := registerUser(t, s, j, "bob")

	g, err := s.CreateGroup(ctx, alice, models.GroupRequest{Name: "family"})
	require.NoError(t, err)
	_, err = s.AddMember(ctx, alice, g.ID, models.AddMemberRequest{UserID: bob})
	require.NoError(t, err)

	_, err = s.SyncNotes(ctx, alice, models.SyncRequest{Notes: []models.Note{
		{ClientID: "shared", Title: "groceries", GroupID: &g.ID, LastModified: 10},
		{ClientID: "private", Title: "diary", LastModified: 10},
	}})
	require.NoError(t, err)

	resp, err := s.SyncNotes(ctx, bob, models.SyncRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "groceries", resp.Notes[0].Title)

	// bob pushes into a group he is not in; the group is dropped
	_, err = s.SyncNotes(ctx, bob, models.SyncRequest{Notes: []models.Note{
		{ClientID: "sneaky", Title: "x", GroupID: i64(g.ID + 100), LastModified: 10},
	}})
	require.NoError(t, err)
	notes, err := s.ListNotes(ctx, bob, nil)
	require.NoError(t, err)
	for _, n := range notes {
		if n.ClientID == "sneaky" {
			assert.Nil(t, n.GroupID)
		}
	}
}

func TestNotes_CRUDAndComments(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	alice := registerUser(t, s, j, "alice")
	bob := registerUser(t, s, j, "bob")

	n, err := s.CreateNote(ctx, alice, models.Note{Title: "a", Content: "b"})
	require.NoError(t, err)
	require.NotNil(t, n.ID)
	assert.NotEmpty(t, n.ClientID)

	_, err = s.GetNote(ctx, bob, *n.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.UpdateNote(ctx, alice, *n.ID, models.Note{Title: "a2"})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.Title)
	assert.GreaterOrEqual(t, updated.LastModified, n.LastModified)

	_, err = s.AddNoteComment(ctx, alice, *n.ID, "nice")
	require.NoError(t, err)
	got, err := s.GetNote(ctx, alice, *n.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, alice, got.Comments[0].AuthorID)

	_, err = s.CreateNote(ctx, bob, models.Note{Title: "x", GroupID: i64(999)})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGroups_Membership(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	alice := registerUser(t, s, j, "alice")
	bob := registerUser(t, s, j, "bob")

	g, err := s.CreateGroup(ctx, alice, models.GroupRequest{Name: "team"})
	require.NoError(t, err)
	assert.Equal(t, 1, g.MemberCount)
	require.Len(t, g.Members, 1)
	assert.Equal(t, models.RoleOwner, g.Members[0].Role)

	_, err = s.GetGroup(ctx, bob, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.AddMember(ctx, alice, g.ID, models.AddMemberRequest{UserID: "nobody"})
	assert.ErrorIs(t, err, ErrNotFound)

	g, err = s.AddMember(ctx, alice, g.ID, models.AddMemberRequest{UserID: bob})
	require.NoError(t, err)
	assert.Equal(t, 2, g.MemberCount)

	_, err = s.UpdateGroup(ctx, bob, g.ID, models.GroupRequest{Name: "mine"})
	assert.ErrorIs(t, err, ErrForbidden)

	err = s.LeaveGroup(ctx, alice, g.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	groups, err := s.ListGroups(ctx, bob)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	require.NoError(t, s.LeaveGroup(ctx, bob, g.ID))
	groups, err = s.ListGroups(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, groups)

	require.NoError(t, s.DeleteGroup(ctx, alice, g.ID))
	_, err = s.GetGroup(ctx, alice, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTasks_VisibilityAndDefaults(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	alice := registerUser(t, s, j, "alice")
	bob := registerUser(t, s, j, "bob")

	task, err := s.CreateTask(ctx, alice, models.TaskRequest{
		Title:      "review",
		AssigneeID: bob,
		Deadline:   &models.Deadline{At: 1700000000000, RemindByTime: true},
		Location:   &models.Location{Latitude: 1.5, Longitude: 2.5, Name: "office"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.TaskStatusToDo, task.Status)
	require.NotNil(t, task.Location)
	assert.Equal(t, "office", task.Location.Name)

	tasks, err := s.ListTasks(ctx, bob, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	updated, err := s.UpdateTask(ctx, bob, task.ID, models.TaskRequest{Title: "review", Status: models.TaskStatusDone, AssigneeID: bob})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, updated.Status)
	assert.Equal(t, models.PriorityMedium, updated.Priority)
	assert.Nil(t, updated.Deadline)

	_, err = s.AddTaskComment(ctx, bob, task.ID, "done")
	require.NoError(t, err)

	err = s.DeleteTask(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, s.DeleteTask(ctx, alice, task.ID))
	_, err = s.GetTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, []byte, string, string) (*transcriber.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &transcriber.Result{Text: f.text}, nil
}

func TestRunner_ProcessesJobs(t *testing.T) {
	tests := []struct {
		name       string
		tr         transcriber.Transcriber
		typ        models.JobType
		input      string
		wantStatus models.JobStatus
		wantResult string
		wantError  string
	}{
		{
			name:       "transcript extracts tasks",
			typ:        models.JobTypeTask,
			input:      "Remember to buy milk. Nice weather.",
			wantStatus: models.JobStatusSucceeded,
			wantResult: `[{"title":"Buy milk","priority":"Medium"}]`,
		},
		{
			name:       "audio without transcriber fails",
			typ:        models.JobTypeAudio,
			input:      "RIFF",
			wantStatus: models.JobStatusFailed,
			wantError:  errTranscriptionDisabled.Error(),
		},
		{
			name:       "audio is transcribed then extracted",
			tr:         fakeTranscriber{text: "we need to ship the release asap"},
			typ:        models.JobTypeAudio,
			input:      "RIFF",
			wantStatus: models.JobStatusSucceeded,
			wantResult: `[{"title":"Ship the release asap","priority":"High"}]`,
		},
		{
			name:       "transcriber error fails the job",
			tr:         fakeTranscriber{err: errors.New("quota")},
			typ:        models.JobTypeAudio,
			input:      "RIFF",
			wantStatus: models.JobStatusFailed,
			wantError:  "quota",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, j := setupStore(t)
			ctx := testContext(t)
			user := registerUser(t, s, j, "alice")

			job, err := s.SubmitJob(ctx, user, tt.typ, "memo.wav", []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, models.JobStatusPending, job.Status)

			r := NewRunner("test", s, tt.tr, time.Millisecond, quietLogger())
			ran, err := r.RunOnce(ctx)
			require.NoError(t, err)
			assert.True(t, ran)

			ran, err = r.RunOnce(ctx)
			require.NoError(t, err)
			assert.False(t, ran)

			got, err := s.GetJob(ctx, user, job.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			if tt.wantResult != "" {
				assert.JSONEq(t, tt.wantResult, got.Result)
			}
			assert.Equal(t, tt.wantError, got.Error)
		})
	}
}

func TestGetJob_OtherUser(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	alice := registerUser(t, s, j, "alice")
	bob := registerUser(t, s, j, "bob")

	job, err := s.SubmitJob(ctx, alice, models.JobTypeTask, "", []byte("todo: x"))
	require.NoError(t, err)
	_, err = s.GetJob(ctx, bob, job.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateNote_KeepsClientID(t *testing.T) {
	s, j := setupStore(t)
	ctx := testContext(t)
	alice := registerUser(t, s, j, "alice")

	first, err := s.CreateNote(ctx, alice, models.Note{ClientID: "local-1", Title: "v1", LastModified: 10})
	require.NoError(t, err)
	assert.Equal(t, "local-1", first.ClientID)
	assert.Equal(t, int64(10), first.LastModified)

	again, err := s.CreateNote(ctx, alice, models.Note{ClientID: "local-1", Title: "v2", LastModified: 20})
	require.NoError(t, err)
	assert.Equal(t, *first.ID, *again.ID)
	assert.Equal(t, "v2", again.Title)

	older, err := s.UpdateNote(ctx, alice, *first.ID, models.Note{ClientID: "local-1", Title: "old", LastModified: 5})
	require.NoError(t, err)
	assert.Equal(t, "v2", older.Title)
}
