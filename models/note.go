package models

import "time"

// NowMillis returns the current time as Unix milliseconds, the timestamp unit
// used both on the wire and in the local store.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Note is a free-form note. ClientID is assigned locally on creation and never
// changes; ID stays nil until the server acknowledges the note.
type Note struct {
	ID            *int64    `json:"id"`
	ClientID      string    `json:"clientId"`
	Title         string    `json:"title" validate:"max=200"`
	Content       string    `json:"content"`
	Geotag        string    `json:"geotag,omitempty"`
	GroupID       *int64    `json:"groupId,omitempty"`
	Color         string    `json:"color,omitempty" validate:"omitempty,notecolor"`
	CreatedAt     int64     `json:"createdAt"`
	LineCountHint int       `json:"lineCountHint,omitempty"`
	Comments      []Comment `json:"comments,omitempty"`
	LastModified  int64     `json:"lastModified"`
	IsDeleted     bool      `json:"isDeleted"`
}

// HasServerID reports whether the server has assigned an identity to the note.
func (n *Note) HasServerID() bool {
	return n.ID != nil
}

// Comment belongs to exactly one Note or one Task.
type Comment struct {
	ID        int64  `json:"id"`
	NoteID    *int64 `json:"noteId,omitempty"`
	TaskID    *int64 `json:"taskId,omitempty"`
	AuthorID  string `json:"authorId"`
	Text      string `json:"text" validate:"required,max=2000"`
	CreatedAt int64  `json:"createdAt"`
}

// CreateNoteRequest is the payload accepted by NoteService.Create.
type CreateNoteRequest struct {
	Title         string `json:"title" validate:"max=200"`
	Content       string `json:"content"`
	Geotag        string `json:"geotag,omitempty"`
	GroupID       *int64 `json:"groupId,omitempty"`
	Color         string `json:"color,omitempty" validate:"omitempty,notecolor"`
	LineCountHint int    `json:"lineCountHint,omitempty" validate:"min=0"`
}

// AddCommentRequest is the body of a comment creation call.
type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}
