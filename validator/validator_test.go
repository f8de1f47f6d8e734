package validator

import (
	"testing"

	"notesync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Register(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       models.RegisterRequest
		wantError bool
		errorMsg  string
	}{
		{
			name:      "Valid registration",
			req:       models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"},
			wantError: false,
		},
		{
			name:      "Missing username",
			req:       models.RegisterRequest{Email: "alice@example.com", Password: "s3cret-pass"},
			wantError: true,
			errorMsg:  "username is required",
		},
		{
			name:      "Invalid email",
			req:       models.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "s3cret-pass"},
			wantError: true,
			errorMsg:  "email must be a valid email address",
		},
		{
			name:      "Short password",
			req:       models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "short"},
			wantError: true,
			errorMsg:  "password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidator_Task(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       models.TaskRequest
		wantError bool
		errorMsg  string
	}{
		{
			name:      "Valid task",
			req:       models.TaskRequest{Title: "Write report", Priority: models.PriorityHigh},
			wantError: false,
		},
		{
			name:      "Unknown priority",
			req:       models.TaskRequest{Title: "Write report", Priority: "Urgent"},
			wantError: true,
			errorMsg:  "priority must be one of: Low, Medium, High",
		},
		{
			name:      "Unknown status",
			req:       models.TaskRequest{Title: "Write report", Priority: models.PriorityLow, Status: "Blocked"},
			wantError: true,
			errorMsg:  "status must be one of: ToDo, InProgress, Done",
		},
		{
			name: "Latitude out of range",
			req: models.TaskRequest{
				Title:    "Visit site",
				Priority: models.PriorityMedium,
				Location: &models.Location{Latitude: 123, Longitude: 10},
			},
			wantError: true,
			errorMsg:  "latitude must be a valid latitude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidator_NoteColor(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(models.CreateNoteRequest{Title: "a", Color: "#FFAA00"}))
	assert.NoError(t, v.Validate(models.CreateNoteRequest{Title: "a", Color: "#80FFAA00"}))
	assert.NoError(t, v.Validate(models.CreateNoteRequest{Title: "a"}))

	err := v.Validate(models.CreateNoteRequest{Title: "a", Color: "orange"})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "color", verrs[0].Field)
	assert.Equal(t, "notecolor", verrs[0].Tag)
}
