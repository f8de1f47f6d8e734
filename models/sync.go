package models

// SyncRequest pushes locally modified notes and asks for changes since LastSyncTimestamp.
type SyncRequest struct {
	LastSyncTimestamp int64  `json:"lastSyncTimestamp"`
	Notes             []Note `json:"notes"`
}

// SyncResponse carries server-side changes. DeletedNoteIDs holds server ids;
// DeletedClientIDs covers notes the server never assigned an id to.
type SyncResponse struct {
	Notes            []Note   `json:"notes"`
	DeletedNoteIDs   []int64  `json:"deletedNoteIds"`
	DeletedClientIDs []string `json:"deletedClientIds,omitempty"`
	SyncTimestamp    int64    `json:"syncTimestamp"`
	Success          bool     `json:"success"`
	Message          string   `json:"message,omitempty"`
}
