package models

type JobStatus string

const (
	JobStatusPending   JobStatus = "Pending"
	JobStatusRunning   JobStatus = "Running"
	JobStatusSucceeded JobStatus = "Succeeded"
	JobStatusFailed    JobStatus = "Failed"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

type JobType string

const (
	JobTypeAudio JobType = "Audio"
	JobTypeTask  JobType = "Task"
)

// AnalysisJob is an asynchronous server-side analysis, polled by id.
// Result holds the transcript (Audio) or a JSON list of TaskDraft (Task).
type AnalysisJob struct {
	ID          int64     `json:"id"`
	Status      JobStatus `json:"status"`
	SubmitterID string    `json:"submitterId"`
	Type        JobType   `json:"type"`
	CreatedAt   int64     `json:"createdAt"`
	UpdatedAt   int64     `json:"updatedAt"`
	Error       string    `json:"error,omitempty"`
	Result      string    `json:"result,omitempty"`
}

// TaskDraft is a task suggestion extracted from a transcript.
type TaskDraft struct {
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
}

// TranscriptRequest submits text for task extraction.
type TranscriptRequest struct {
	Text string `json:"text" validate:"required"`
}
