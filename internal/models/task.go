package models

import "time"

// Task represents a single task in taskdeck. A task with an empty
// ParentID is a main task; one with a ParentID is a subtask of that
// main task. Nesting depth is exactly one level.
type Task struct {
	ID          string       `json:"id"`
	Name        string       `json:"task_name"`
	Description string       `json:"description,omitempty"`
	ParentID    string       `json:"parent_id,omitempty"`
	Status      string       `json:"status"`
	Priority    int          `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Difficulty  string       `json:"difficulty_emoji,omitempty"`
	Mood        string       `json:"completion_mood,omitempty"`
	OwnerUID    string       `json:"owner_uid,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	// CompletedAt is non-nil exactly when Status == done.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Attachment is a metadata record pointing at a blob in the blob
// store. IDs are unique within the owning task's list, not globally.
type Attachment struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl"`
	FileType   string    `json:"fileType"`
	UploadPath string    `json:"uploadPath,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}
