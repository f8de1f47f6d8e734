package backend

import "notesync/models"

// Table rows. Timestamps are Unix milliseconds like everywhere else.

type userRow struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli"`
}

func (userRow) TableName() string { return "users" }

type refreshTokenRow struct {
	Token     string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	ExpiresAt int64  `gorm:"not null"`
}

func (refreshTokenRow) TableName() string { return "refresh_tokens" }

type noteRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	OwnerID       string `gorm:"uniqueIndex:uq_notes_owner_client;not null"`
	ClientID      string `gorm:"uniqueIndex:uq_notes_owner_client;not null"`
	Title         string
	Content       string
	Geotag        string
	GroupID       *int64 `gorm:"index"`
	Color         string
	LineCountHint int
	CreatedAt     int64 `gorm:"autoCreateTime:milli"`
	LastModified  int64 `gorm:"not null"`
	Deleted       bool  `gorm:"index;not null;default:false"`
	// ChangedAt is the server clock at the last accepted write; sync
	// baselines compare against it.
	ChangedAt int64 `gorm:"index;not null"`
}

func (noteRow) TableName() string { return "notes" }

func (r *noteRow) toModel() models.Note {
	id := r.ID
	return models.Note{
		ID:            &id,
		ClientID:      r.ClientID,
		Title:         r.Title,
		Content:       r.Content,
		Geotag:        r.Geotag,
		GroupID:       r.GroupID,
		Color:         r.Color,
		CreatedAt:     r.CreatedAt,
		LineCountHint: r.LineCountHint,
		LastModified:  r.LastModified,
		IsDeleted:     r.Deleted,
	}
}

func (r *noteRow) apply(n *models.Note) {
	r.Title = n.Title
	r.Content = n.Content
	r.Geotag = n.Geotag
	r.GroupID = n.GroupID
	r.Color = n.Color
	r.LineCountHint = n.LineCountHint
	r.LastModified = n.LastModified
	r.Deleted = n.IsDeleted
	if n.CreatedAt != 0 {
		r.CreatedAt = n.CreatedAt
	}
}

type commentRow struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	NoteID    *int64 `gorm:"index"`
	TaskID    *int64 `gorm:"index"`
	AuthorID  string `gorm:"not null"`
	Text      string `gorm:"not null"`
	CreatedAt int64  `gorm:"autoCreateTime:milli"`
}

func (commentRow) TableName() string { return "comments" }

func (r *commentRow) toModel() models.Comment {
	return models.Comment{
		ID:        r.ID,
		NoteID:    r.NoteID,
		TaskID:    r.TaskID,
		AuthorID:  r.AuthorID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	}
}

type groupRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"not null"`
	Description string
	OwnerID     string `gorm:"index;not null"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli"`
}

func (groupRow) TableName() string { return "user_groups" }

type memberRow struct {
	GroupID int64  `gorm:"primaryKey"`
	UserID  string `gorm:"primaryKey"`
	Role    string `gorm:"not null"`
}

func (memberRow) TableName() string { return "group_members" }

type taskRow struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	Title            string `gorm:"not null"`
	Description      string
	Type             string
	AuthorID         string `gorm:"index;not null"`
	Priority         string `gorm:"not null"`
	GroupID          *int64 `gorm:"index"`
	AssigneeID       string `gorm:"index"`
	Latitude         *float64
	Longitude        *float64
	LocationName     string
	RemindByLocation bool
	DeadlineAt       *int64
	RemindByTime     bool
	CreatedAt        int64  `gorm:"autoCreateTime:milli"`
	Status           string `gorm:"not null"`
}

func (taskRow) TableName() string { return "tasks" }

func (r *taskRow) toModel() models.Task {
	t := models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		AuthorID:    r.AuthorID,
		Priority:    models.Priority(r.Priority),
		GroupID:     r.GroupID,
		AssigneeID:  r.AssigneeID,
		CreatedAt:   r.CreatedAt,
		Status:      models.TaskStatus(r.Status),
	}
	if r.Latitude != nil && r.Longitude != nil {
		t.Location = &models.Location{
			Latitude:         *r.Latitude,
			Longitude:        *r.Longitude,
			Name:             r.LocationName,
			RemindByLocation: r.RemindByLocation,
		}
	}
	if r.DeadlineAt != nil {
		t.Deadline = &models.Deadline{At: *r.DeadlineAt, RemindByTime: r.RemindByTime}
	}
	return t
}

func (r *taskRow) apply(req *models.TaskRequest) {
	r.Title = req.Title
	r.Description = req.Description
	r.Type = req.Type
	r.Priority = string(req.Priority)
	r.GroupID = req.GroupID
	r.AssigneeID = req.AssigneeID
	if req.Status != "" {
		r.Status = string(req.Status)
	}

	r.Latitude, r.Longitude, r.LocationName, r.RemindByLocation = nil, nil, "", false
	if loc := req.Location; loc != nil {
		lat, lng := loc.Latitude, loc.Longitude
		r.Latitude, r.Longitude = &lat, &lng
		r.LocationName = loc.Name
		r.RemindByLocation = loc.RemindByLocation
	}

	r.DeadlineAt, r.RemindByTime = nil, false
	if d := req.Deadline; d != nil {
		at := d.At
		r.DeadlineAt = &at
		r.RemindByTime = d.RemindByTime
	}
}

type jobRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Status      string `gorm:"index;not null"`
	SubmitterID string `gorm:"index;not null"`
	Type        string `gorm:"not null"`
	Filename    string
	Input       []byte
	Error       string
	Result      string
	CreatedAt   int64 `gorm:"autoCreateTime:milli"`
	UpdatedAt   int64 `gorm:"autoUpdateTime:milli"`
}

func (jobRow) TableName() string { return "analysis_jobs" }

func (r *jobRow) toModel() models.AnalysisJob {
	return models.AnalysisJob{
		ID:          r.ID,
		Status:      models.JobStatus(r.Status),
		SubmitterID: r.SubmitterID,
		Type:        models.JobType(r.Type),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Error:       r.Error,
		Result:      r.Result,
	}
}
