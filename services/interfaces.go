package services

import (
	"context"
	"io"

	"notesync/database"
	"notesync/models"
	notesync "notesync/sync"
)

// SessionStore holds the signed-in user's credentials.
type SessionStore interface {
	Get(key string) string
	Session() models.AuthSession
	Clear() error
}

// AuthAPI performs sign-up and sign-in against the backend. A successful call
// has already persisted the session.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error)
}

// NoteStore defines local note data access.
type NoteStore interface {
	GetNote(ctx context.Context, clientID string) (*database.NoteWithMeta, error)
	ListNotes(ctx context.Context, groupID *int64) ([]models.Note, error)
	CreateNote(ctx context.Context, note *models.Note) error
	UpdateNote(ctx context.Context, note *models.Note) error
	SoftDeleteNote(ctx context.Context, clientID string) (int64, error)
	HardDeleteNote(ctx context.Context, clientID string) error
	MarkNoteSynced(ctx context.Context, clientID string, serverID int64, pushedLastModified int64) error
	AddNoteComment(ctx context.Context, noteClientID string, c *models.Comment) error
}

// NotesAPI mirrors note mutations to the backend.
type NotesAPI interface {
	Create(ctx context.Context, note models.Note) (*models.Note, error)
	Update(ctx context.Context, id int64, note models.Note) (*models.Note, error)
	Delete(ctx context.Context, id int64) error
	AddComment(ctx context.Context, noteID int64, text string) (*models.Comment, error)
}

// NoteSyncer runs a full note sync cycle.
type NoteSyncer interface {
	Sync(ctx context.Context) (*notesync.Result, error)
}

// GroupStore is the local group cache.
type GroupStore interface {
	UpsertGroup(ctx context.Context, g *models.Group) error
	ReplaceGroups(ctx context.Context, groups []models.Group) error
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	RemoveGroupMember(ctx context.Context, groupID int64, userID string) error
}

type GroupsAPI interface {
	List(ctx context.Context) ([]models.Group, error)
	Get(ctx context.Context, id int64) (*models.Group, error)
	Create(ctx context.Context, req models.GroupRequest) (*models.Group, error)
	Update(ctx context.Context, id int64, req models.GroupRequest) (*models.Group, error)
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, id int64, req models.AddMemberRequest) (*models.Group, error)
	RemoveMember(ctx context.Context, id int64, userID string) error
	Leave(ctx context.Context, id int64) error
}

// TaskStore is the local task cache.
type TaskStore interface {
	UpsertTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, filter database.TaskFilter) ([]models.Task, error)
	ReplaceTasks(ctx context.Context, filter database.TaskFilter, tasks []models.Task) error
	DeleteTask(ctx context.Context, id int64) error
	AddTaskComment(ctx context.Context, taskID int64, c *models.Comment) error
}

type TasksAPI interface {
	List(ctx context.Context, groupID *int64) ([]models.Task, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, req models.TaskRequest) (*models.Task, error)
	Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	AddComment(ctx context.Context, taskID int64, text string) (*models.Comment, error)
}

type AnalysisAPI interface {
	SubmitAudio(ctx context.Context, filename string, audio io.Reader) (*models.AnalysisJob, error)
	SubmitTranscript(ctx context.Context, text string) (*models.AnalysisJob, error)
	Get(ctx context.Context, id int64) (*models.AnalysisJob, error)
}
