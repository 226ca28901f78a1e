package store

import (
	"context"
	"time"

	"taskdeck/internal/models"
)

// TaskStore abstracts task persistence for the service layer.
type TaskStore interface {
	TaskExists(id string) (bool, error)
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	GetAll(ctx context.Context) ([]models.Task, error)
	QueryByParent(ctx context.Context, parentID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, update TaskUpdate) error
	UpdateTaskStatus(ctx context.Context, id, status string, completedAt *time.Time) error
	DeleteTask(ctx context.Context, id string) error
	ListAttachments(ctx context.Context, taskID string) ([]models.Attachment, error)
	AppendAttachments(ctx context.Context, taskID string, attachments []models.Attachment) error
	RemoveAttachment(ctx context.Context, taskID, attachmentID string) error
}

var _ TaskStore = (*Store)(nil)
