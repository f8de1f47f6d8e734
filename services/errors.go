package services

import "errors"

// Common service-level errors
var (
	// Auth errors
	ErrNotSignedIn = errors.New("not signed in")

	// Lookup errors
	ErrNoteNotFound  = errors.New("note not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrGroupNotFound = errors.New("group not found")

	// Analysis errors
	ErrJobFailed = errors.New("analysis job failed")
)
