package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"notesync/api"
	"notesync/models"
	"notesync/session"
	notesync "notesync/sync"
	"notesync/validator"
)

var ErrNoteNotSynced = errors.New("note has not been synced yet")

// NoteService writes notes locally first and mirrors each change to the
// backend right away. Anything the backend did not accept stays dirty and is
// picked up by the next sync.
type NoteService struct {
	store     NoteStore
	api       NotesAPI
	syncer    NoteSyncer
	session   SessionStore
	validator *validator.Validator
	logger    *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(store NoteStore, notesAPI NotesAPI, syncer NoteSyncer, sess SessionStore, v *validator.Validator, logger *slog.Logger) *NoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteService{
		store:     store,
		api:       notesAPI,
		syncer:    syncer,
		session:   sess,
		validator: v,
		logger:    logger,
	}
}

// List returns live notes, newest change first, optionally for one group.
func (ns *NoteService) List(ctx context.Context, groupID *int64) ([]models.Note, error) {
	return ns.store.ListNotes(ctx, groupID)
}

// Get retrieves a live note by client id.
func (ns *NoteService) Get(ctx context.Context, clientID string) (*models.Note, error) {
	n, err := ns.store.GetNote(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if n == nil || n.IsDeleted {
		return nil, ErrNoteNotFound
	}
	return &n.Note, nil
}

// Create stores a new note with a provisional identity and tries to create it
// on the backend. A failed remote call is not an error.
func (ns *NoteService) Create(ctx context.Context, req models.CreateNoteRequest) (*models.Note, error) {
	if err := ns.validator.Validate(req); err != nil {
		return nil, err
	}

	note := &models.Note{
		Title:         req.Title,
		Content:       req.Content,
		Geotag:        req.Geotag,
		GroupID:       req.GroupID,
		Color:         req.Color,
		LineCountHint: req.LineCountHint,
	}
	if err := ns.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	ns.push(ctx, note)
	return note, nil
}

// Update overwrites a note's fields locally and mirrors the change.
func (ns *NoteService) Update(ctx context.Context, clientID string, req models.CreateNoteRequest) (*models.Note, error) {
	if err := ns.validator.Validate(req); err != nil {
		return nil, err
	}

	note, err := ns.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	note.Title = req.Title
	note.Content = req.Content
	note.Geotag = req.Geotag
	note.GroupID = req.GroupID
	note.Color = req.Color
	note.LineCountHint = req.LineCountHint

	if err := ns.store.UpdateNote(ctx, note); err != nil {
		return nil, err
	}

	ns.push(ctx, note)
	return note, nil
}

// push mirrors a dirty note to the backend and records the server identity.
func (ns *NoteService) push(ctx context.Context, note *models.Note) {
	if !ns.signedIn() {
		return
	}

	var remote *models.Note
	var err error
	if note.HasServerID() {
		remote, err = ns.api.Update(ctx, *note.ID, *note)
	} else {
		remote, err = ns.api.Create(ctx, *note)
	}
	if err == nil && (remote == nil || remote.ID == nil) {
		err = errors.New("response carried no note id")
	}
	if err != nil {
		ns.logger.Warn("note left for sync", "client_id", note.ClientID, "error", err)
		return
	}

	if err := ns.store.MarkNoteSynced(ctx, note.ClientID, *remote.ID, note.LastModified); err != nil {
		ns.logger.Error("failed to record note sync", "client_id", note.ClientID, "error", err)
		return
	}
	note.ID = remote.ID
}

// Delete soft-deletes a note and asks the backend to delete it. The row is
// removed for good once the backend confirms; otherwise sync carries the
// deletion.
func (ns *NoteService) Delete(ctx context.Context, clientID string) error {
	note, err := ns.Get(ctx, clientID)
	if err != nil {
		return err
	}

	if _, err := ns.store.SoftDeleteNote(ctx, clientID); err != nil {
		return err
	}

	if !note.HasServerID() || !ns.signedIn() {
		return nil
	}

	err = ns.api.Delete(ctx, *note.ID)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		ns.logger.Warn("note deletion left for sync", "client_id", clientID, "error", err)
		return nil
	}
	return ns.store.HardDeleteNote(ctx, clientID)
}

// AddComment posts a comment on a note the backend already knows about.
func (ns *NoteService) AddComment(ctx context.Context, clientID, text string) (*models.Comment, error) {
	if err := ns.validator.Validate(models.AddCommentRequest{Text: text}); err != nil {
		return nil, err
	}
	if !ns.signedIn() {
		return nil, ErrNotSignedIn
	}

	note, err := ns.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !note.HasServerID() {
		return nil, ErrNoteNotSynced
	}

	comment, err := ns.api.AddComment(ctx, *note.ID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	if err := ns.store.AddNoteComment(ctx, clientID, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Sync runs one sync cycle now.
func (ns *NoteService) Sync(ctx context.Context) (*notesync.Result, error) {
	if !ns.signedIn() {
		return nil, ErrNotSignedIn
	}
	return ns.syncer.Sync(ctx)
}

func (ns *NoteService) signedIn() bool {
	return ns.session.Get(session.KeyAccessToken) != ""
}
