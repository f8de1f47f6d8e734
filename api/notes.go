package api

import (
	"context"
	"fmt"
	"net/http"

	"notesync/models"
)

type NotesClient struct {
	c *Client
}

func NewNotesClient(c *Client) *NotesClient {
	return &NotesClient{c: c}
}

// Sync pushes dirty notes and pulls changes since the request baseline. A
// response with success=false is reported as ErrSyncRejected.
func (n *NotesClient) Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResponse, error) {
	if req.Notes == nil {
		req.Notes = []models.Note{}
	}
	var resp models.SyncResponse
	if err := n.c.doJSON(ctx, n.c.authed, http.MethodPost, "/notes/sync", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrSyncRejected, resp.Message)
	}
	return &resp, nil
}

func (n *NotesClient) List(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := n.c.doJSON(ctx, n.c.authed, http.MethodGet, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (n *NotesClient) Get(ctx context.Context, id int64) (*models.Note, error) {
	var note models.Note
	if err := n.c.doJSON(ctx, n.c.authed, http.MethodGet, fmt.Sprintf("/notes/%d", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// Create sends a locally created note; the response carries the server id.
func (n *NotesClient) Create(ctx context.Context, note models.Note) (*models.Note, error) {
	var created models.Note
	if err := n.c.doJSON(ctx, n.c.authed, http.MethodPost, "/notes", note, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (n *NotesClient) Update(ctx context.Context, id int64, note models.Note) (*models.Note, error) {
	var updated models.Note
	if err := n.c.doJSON(ctx, n.c.authed, http.MethodPut, fmt.Sprintf("/notes/%d", id), note, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (n *NotesClient) Delete(ctx context.Context, id int64) error {
	return n.c.doJSON(ctx, n.c.authed, http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, nil)
}

func (n *NotesClient) AddComment(ctx context.Context, noteID int64, text string) (*models.Comment, error) {
	var comment models.Comment
	path := fmt.Sprintf("/notes/%d/comments", noteID)
	if err := n.c.doJSON(ctx, n.c.authed, http.MethodPost, path, models.AddCommentRequest{Text: text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}
