package services

import (
	"context"
	"io"
	"log/slog"

	"notesync/database"
	"notesync/models"
	"notesync/platform"
	notesync "notesync/sync"
	"notesync/validator"

	"github.com/stretchr/testify/mock"
)

// ==================== MOCKS ====================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testValidator = validator.New()

func i64(v int64) *int64 { return &v }

// fakeSession is an in-memory SessionStore
type fakeSession struct {
	values map[string]string
}

var _ SessionStore = (*fakeSession)(nil)

func signedInSession() *fakeSession {
	return &fakeSession{values: map[string]string{"access_token": "token", "user_id": "u-1"}}
}

func signedOutSession() *fakeSession {
	return &fakeSession{values: map[string]string{}}
}

func (s *fakeSession) Get(key string) string { return s.values[key] }

func (s *fakeSession) Session() models.AuthSession {
	return models.AuthSession{
		AccessToken:  s.values["access_token"],
		RefreshToken: s.values["refresh_token"],
		UserID:       s.values["user_id"],
	}
}

func (s *fakeSession) Clear() error {
	s.values = map[string]string{}
	return nil
}

// MockAuthAPI is a mock implementation of AuthAPI interface
type MockAuthAPI struct {
	mock.Mock
}

var _ AuthAPI = (*MockAuthAPI)(nil)

func (m *MockAuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

// MockNoteStore is a mock implementation of NoteStore interface
type MockNoteStore struct {
	mock.Mock
}

var _ NoteStore = (*MockNoteStore)(nil)

func (m *MockNoteStore) GetNote(ctx context.Context, clientID string) (*database.NoteWithMeta, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.NoteWithMeta), args.Error(1)
}

func (m *MockNoteStore) ListNotes(ctx context.Context, groupID *int64) ([]models.Note, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockNoteStore) CreateNote(ctx context.Context, note *models.Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNoteStore) UpdateNote(ctx context.Context, note *models.Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNoteStore) SoftDeleteNote(ctx context.Context, clientID string) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteStore) HardDeleteNote(ctx context.Context, clientID string) error {
	return m.Called(ctx, clientID).Error(0)
}

func (m *MockNoteStore) MarkNoteSynced(ctx context.Context, clientID string, serverID int64, pushedLastModified int64) error {
	return m.Called(ctx, clientID, serverID, pushedLastModified).Error(0)
}

func (m *MockNoteStore) AddNoteComment(ctx context.Context, noteClientID string, c *models.Comment) error {
	return m.Called(ctx, noteClientID, c).Error(0)
}

// MockNotesAPI is a mock implementation of NotesAPI interface
type MockNotesAPI struct {
	mock.Mock
}

var _ NotesAPI = (*MockNotesAPI)(nil)

func (m *MockNotesAPI) Create(ctx context.Context, note models.Note) (*models.Note, error) {
	args := m.Called(ctx, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNotesAPI) Update(ctx context.Context, id int64, note models.Note) (*models.Note, error) {
	args := m.Called(ctx, id, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNotesAPI) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNotesAPI) AddComment(ctx context.Context, noteID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, noteID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

// MockSyncer is a mock implementation of NoteSyncer interface
type MockSyncer struct {
	mock.Mock
}

var _ NoteSyncer = (*MockSyncer)(nil)

func (m *MockSyncer) Sync(ctx context.Context) (*notesync.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notesync.Result), args.Error(1)
}

// MockGroupStore is a mock implementation of GroupStore interface
type MockGroupStore struct {
	mock.Mock
}

var _ GroupStore = (*MockGroupStore)(nil)

func (m *MockGroupStore) UpsertGroup(ctx context.Context, g *models.Group) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockGroupStore) ReplaceGroups(ctx context.Context, groups []models.Group) error {
	return m.Called(ctx, groups).Error(0)
}

func (m *MockGroupStore) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockGroupStore) DeleteGroup(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGroupStore) RemoveGroupMember(ctx context.Context, groupID int64, userID string) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

// MockGroupsAPI is a mock implementation of GroupsAPI interface
type MockGroupsAPI struct {
	mock.Mock
}

var _ GroupsAPI = (*MockGroupsAPI)(nil)

func (m *MockGroupsAPI) groupResult(args mock.Arguments) (*models.Group, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupsAPI) List(ctx context.Context) ([]models.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Group), args.Error(1)
}

func (m *MockGroupsAPI) Get(ctx context.Context, id int64) (*models.Group, error) {
	return m.groupResult(m.Called(ctx, id))
}

func (m *MockGroupsAPI) Create(ctx context.Context, req models.GroupRequest) (*models.Group, error) {
	return m.groupResult(m.Called(ctx, req))
}

func (m *MockGroupsAPI) Update(ctx context.Context, id int64, req models.GroupRequest) (*models.Group, error) {
	return m.groupResult(m.Called(ctx, id, req))
}

func (m *MockGroupsAPI) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGroupsAPI) AddMember(ctx context.Context, id int64, req models.AddMemberRequest) (*models.Group, error) {
	return m.groupResult(m.Called(ctx, id, req))
}

func (m *MockGroupsAPI) RemoveMember(ctx context.Context, id int64, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockGroupsAPI) Leave(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockTasksAPI is a mock implementation of TasksAPI interface
type MockTasksAPI struct {
	mock.Mock
}

var _ TasksAPI = (*MockTasksAPI)(nil)

func (m *MockTasksAPI) taskResult(args mock.Arguments) (*models.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTasksAPI) List(ctx context.Context, groupID *int64) ([]models.Task, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTasksAPI) Get(ctx context.Context, id int64) (*models.Task, error) {
	return m.taskResult(m.Called(ctx, id))
}

func (m *MockTasksAPI) Create(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	return m.taskResult(m.Called(ctx, req))
}

func (m *MockTasksAPI) Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error) {
	return m.taskResult(m.Called(ctx, id, req))
}

func (m *MockTasksAPI) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTasksAPI) AddComment(ctx context.Context, taskID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, taskID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

// MockNotifier is a mock implementation of platform.Notifier
type MockNotifier struct {
	mock.Mock
}

var _ platform.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Schedule(ctx context.Context, r platform.Reminder) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockNotifier) Cancel(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockAnalysisAPI is a mock implementation of AnalysisAPI interface
type MockAnalysisAPI struct {
	mock.Mock
}

var _ AnalysisAPI = (*MockAnalysisAPI)(nil)

func (m *MockAnalysisAPI) jobResult(args mock.Arguments) (*models.AnalysisJob, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisJob), args.Error(1)
}

func (m *MockAnalysisAPI) SubmitAudio(ctx context.Context, filename string, audio io.Reader) (*models.AnalysisJob, error) {
	return m.jobResult(m.Called(ctx, filename, audio))
}

func (m *MockAnalysisAPI) SubmitTranscript(ctx context.Context, text string) (*models.AnalysisJob, error) {
	return m.jobResult(m.Called(ctx, text))
}

func (m *MockAnalysisAPI) Get(ctx context.Context, id int64) (*models.AnalysisJob, error) {
	return m.jobResult(m.Called(ctx, id))
}
