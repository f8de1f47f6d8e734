package models

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "ToDo"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusDone       TaskStatus = "Done"
)

// Location attaches a place to a task.
type Location struct {
	Latitude         float64 `json:"latitude" validate:"latitude"`
	Longitude        float64 `json:"longitude" validate:"longitude"`
	Name             string  `json:"name"`
	RemindByLocation bool    `json:"remindByLocation"`
}

// Deadline is a due time, optionally with a time-based reminder.
type Deadline struct {
	At           int64 `json:"at"`
	RemindByTime bool  `json:"remindByTime"`
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Type        string     `json:"type,omitempty"`
	AuthorID    string     `json:"authorId"`
	Priority    Priority   `json:"priority" validate:"priority"`
	GroupID     *int64     `json:"groupId,omitempty"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	Location    *Location  `json:"location,omitempty" validate:"omitempty"`
	Deadline    *Deadline  `json:"deadline,omitempty"`
	CreatedAt   int64      `json:"createdAt"`
	Status      TaskStatus `json:"status" validate:"taskstatus"`
	Comments    []Comment  `json:"comments,omitempty"`
}

// WantsTimeReminder reports whether a time-based reminder should be scheduled.
func (t *Task) WantsTimeReminder() bool {
	return t.Deadline != nil && t.Deadline.RemindByTime && t.Status != TaskStatusDone
}

// TaskRequest is the create/update payload for tasks.
type TaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Type        string     `json:"type,omitempty"`
	Priority    Priority   `json:"priority" validate:"priority"`
	GroupID     *int64     `json:"groupId,omitempty"`
	AssigneeID  string     `json:"assigneeId,omitempty"`
	Location    *Location  `json:"location,omitempty" validate:"omitempty"`
	Deadline    *Deadline  `json:"deadline,omitempty"`
	Status      TaskStatus `json:"status,omitempty" validate:"omitempty,taskstatus"`
}
