package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notesync/models"
)

func TestExtractTasks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []models.TaskDraft
	}{
		{
			name: "no action items",
			text: "The meeting went well. Everyone agreed.",
			want: []models.TaskDraft{},
		},
		{
			name: "markers and priorities",
			text: "I need to finish the report today. Remember to call Ana! Maybe we should repaint the office someday.",
			want: []models.TaskDraft{
				{Title: "Finish the report today", Priority: models.PriorityHigh},
				{Title: "Call Ana", Priority: models.PriorityMedium},
				{Title: "Repaint the office someday", Priority: models.PriorityLow},
			},
		},
		{
			name: "bullets are items",
			text: "Shopping:\n- [ ] eggs and bread\n* water plants\n1. pay rent",
			want: []models.TaskDraft{
				{Title: "Eggs and bread", Priority: models.PriorityMedium},
				{Title: "Water plants", Priority: models.PriorityMedium},
				{Title: "Pay rent", Priority: models.PriorityMedium},
			},
		},
		{
			name: "duplicates collapse and words are not split",
			text: "TODO: send invoice\ntodo send invoice\nThe mustard is great.",
			want: []models.TaskDraft{
				{Title: "Send invoice", Priority: models.PriorityMedium},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTasks(tt.text))
		})
	}
}
