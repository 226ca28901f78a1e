package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

// TaskManager is the task state machine: creation, status
// transitions, field updates, and the attachment lifecycle. All blob
// traffic goes through the AttachmentService.
type TaskManager struct {
	store       store.TaskStore
	attachments *AttachmentService
	log         *slog.Logger
}

// NewTaskManager constructs a TaskManager.
func NewTaskManager(taskStore store.TaskStore, attachments *AttachmentService, logger *slog.Logger) *TaskManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskManager{store: taskStore, attachments: attachments, log: logger}
}

// TaskCreateInput describes a new task.
type TaskCreateInput struct {
	Name        string
	Description string
	ParentID    string
	Status      *string
	Priority    *int
	DueDate     *time.Time
	Difficulty  string
	Mood        string
	OwnerUID    string
}

// TaskFieldsUpdate is the explicit field mask for generic updates.
// parent_id is immutable and deliberately has no field here. A status
// in the mask re-derives completed_at; nothing else touches it.
type TaskFieldsUpdate struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *int
	DueDate     *time.Time
	ClearDue    bool
	Difficulty  *string
	Mood        *string
	Attachments *[]models.Attachment
}

// Create validates input, applies defaults, and persists a new task.
// The store assigns the id.
func (m *TaskManager) Create(ctx context.Context, in TaskCreateInput) (models.Task, error) {
	var zero models.Task

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return zero, validationErr(fmt.Errorf("task name is required"), ErrCodeMissingRequired)
	}

	status := string(models.StatusTodo)
	if in.Status != nil {
		parsed, err := models.ParseTaskStatus(*in.Status)
		if err != nil {
			return zero, validationErr(err, ErrCodeInvalidStatus)
		}
		status = string(parsed)
	}

	priority := models.DefaultPriority
	if in.Priority != nil {
		if !models.IsValidPriority(*in.Priority) {
			return zero, validationErr(
				fmt.Errorf("priority must be between %d and %d", models.PriorityMin, models.PriorityMax),
				ErrCodeInvalidPriority)
		}
		priority = *in.Priority
	}

	difficulty, mood, err := normalizeTags(in.Difficulty, in.Mood)
	if err != nil {
		return zero, err
	}

	parentID := strings.TrimSpace(in.ParentID)
	if parentID != "" {
		parent, err := m.store.GetTask(ctx, parentID)
		if err != nil {
			return zero, storeErr(err)
		}
		if parent == nil {
			return zero, validationErr(fmt.Errorf("parent task %s not found", parentID), ErrCodeInvalidParentID)
		}
		if parent.ParentID != "" {
			return zero, validationErr(fmt.Errorf("parent %s is itself a subtask; nesting depth is one level", parentID), ErrCodeInvalidParentID)
		}
	}

	id, err := store.GenerateTaskID(m.store.TaskExists)
	if err != nil {
		return zero, storeErr(err)
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ParentID:    parentID,
		Status:      status,
		Priority:    priority,
		Difficulty:  difficulty,
		Mood:        mood,
		OwnerUID:    strings.TrimSpace(in.OwnerUID),
		CreatedAt:   now,
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		task.DueDate = &due
	}
	task.CompletedAt = derivedCompletedAt(status, now)

	if err := m.store.CreateTask(ctx, task); err != nil {
		return zero, storeErr(err)
	}
	return *task, nil
}

// Get returns one task by id.
func (m *TaskManager) Get(ctx context.Context, id string) (models.Task, error) {
	var zero models.Task
	task, err := m.store.GetTask(ctx, id)
	if err != nil {
		return zero, storeErr(err)
	}
	if task == nil {
		return zero, notFoundErr(fmt.Errorf("task %s not found", id), ErrCodeTaskNotFound)
	}
	return *task, nil
}

// UpdateStatus transitions a task to newStatus. Any state can reach
// any other; entering or leaving done re-derives completed_at.
func (m *TaskManager) UpdateStatus(ctx context.Context, id, newStatus string) (models.Task, error) {
	var zero models.Task

	parsed, err := models.ParseTaskStatus(newStatus)
	if err != nil {
		return zero, validationErr(err, ErrCodeInvalidStatus)
	}
	if _, err := m.Get(ctx, id); err != nil {
		return zero, err
	}

	completedAt := derivedCompletedAt(string(parsed), time.Now().UTC())
	if err := m.store.UpdateTaskStatus(ctx, id, string(parsed), completedAt); err != nil {
		return zero, storeErr(err)
	}
	return m.Get(ctx, id)
}

// Complete marks a task done.
func (m *TaskManager) Complete(ctx context.Context, id string) (models.Task, error) {
	return m.UpdateStatus(ctx, id, string(models.StatusDone))
}

// Reopen sends a task back to todo.
func (m *TaskManager) Reopen(ctx context.Context, id string) (models.Task, error) {
	return m.UpdateStatus(ctx, id, string(models.StatusTodo))
}

// UpdateFields applies a partial update over the explicit field mask.
func (m *TaskManager) UpdateFields(ctx context.Context, id string, in TaskFieldsUpdate) (models.Task, error) {
	var zero models.Task

	if _, err := m.Get(ctx, id); err != nil {
		return zero, err
	}

	update := store.TaskUpdate{UpdatedAt: time.Now().UTC()}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return zero, validationErr(fmt.Errorf("task name cannot be empty"), ErrCodeMissingRequired)
		}
		update.Name = &trimmed
	}
	if in.Description != nil {
		update.Description = in.Description
	}
	if in.Status != nil {
		parsed, err := models.ParseTaskStatus(*in.Status)
		if err != nil {
			return zero, validationErr(err, ErrCodeInvalidStatus)
		}
		status := string(parsed)
		update.Status = &status
		update.CompletedAt = derivedCompletedAt(status, update.UpdatedAt)
	}
	if in.Priority != nil {
		if !models.IsValidPriority(*in.Priority) {
			return zero, validationErr(
				fmt.Errorf("priority must be between %d and %d", models.PriorityMin, models.PriorityMax),
				ErrCodeInvalidPriority)
		}
		update.Priority = in.Priority
	}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		update.DueDate = &due
	}
	update.ClearDue = in.ClearDue
	if in.Difficulty != nil || in.Mood != nil {
		difficultyRaw := ""
		if in.Difficulty != nil {
			difficultyRaw = *in.Difficulty
		}
		moodRaw := ""
		if in.Mood != nil {
			moodRaw = *in.Mood
		}
		difficulty, mood, err := normalizeTags(difficultyRaw, moodRaw)
		if err != nil {
			return zero, err
		}
		if in.Difficulty != nil {
			update.Difficulty = &difficulty
		}
		if in.Mood != nil {
			update.Mood = &mood
		}
	}
	update.Attachments = in.Attachments

	if err := m.store.UpdateTask(ctx, id, update); err != nil {
		return zero, storeErr(err)
	}
	return m.Get(ctx, id)
}

// Delete removes the task record only. Subtasks are not cascaded and
// attachment blobs stay in the blob store.
func (m *TaskManager) Delete(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	if err := m.store.DeleteTask(ctx, id); err != nil {
		return storeErr(err)
	}
	return nil
}

// AddAttachments uploads a batch through the AttachmentService and
// appends the resulting records to the task's list. Ids are unique
// within the task.
func (m *TaskManager) AddAttachments(ctx context.Context, id string, files []File) ([]models.Attachment, error) {
	if m.attachments == nil {
		return nil, internalErr(fmt.Errorf("attachment service is not configured"))
	}

	task, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	uploaded, err := m.attachments.UploadMany(ctx, files)
	if err != nil {
		return nil, err
	}

	taken := map[string]struct{}{}
	for _, existing := range task.Attachments {
		taken[existing.ID] = struct{}{}
	}
	for i := range uploaded {
		attachmentID, err := store.GenerateAttachmentID(func(candidate string) (bool, error) {
			_, exists := taken[candidate]
			return exists, nil
		})
		if err != nil {
			return nil, internalErr(err)
		}
		taken[attachmentID] = struct{}{}
		uploaded[i].ID = attachmentID
	}

	if err := m.store.AppendAttachments(ctx, id, uploaded); err != nil {
		return nil, storeErr(err)
	}
	return uploaded, nil
}

// RemoveAttachment deletes the blob, then removes the record. When
// the blob delete fails for any reason the record is retained and the
// error surfaces; no silent data loss.
func (m *TaskManager) RemoveAttachment(ctx context.Context, id, attachmentID string) error {
	attachment, err := m.findAttachment(ctx, id, attachmentID)
	if err != nil {
		return err
	}

	if err := m.attachments.DeleteByURL(ctx, attachment.FileURL); err != nil {
		return err
	}
	if err := m.store.RemoveAttachment(ctx, id, attachmentID); err != nil {
		return storeErr(err)
	}
	return nil
}

// PruneAttachment drops an attachment record without touching the
// blob store, for records whose URL can no longer be resolved. The
// orphaned blob, if any, is logged and left behind.
func (m *TaskManager) PruneAttachment(ctx context.Context, id, attachmentID string) error {
	attachment, err := m.findAttachment(ctx, id, attachmentID)
	if err != nil {
		return err
	}

	m.log.Warn("pruning attachment record without blob cleanup",
		"task_id", id, "attachment_id", attachmentID, "file_url", attachment.FileURL)
	if err := m.store.RemoveAttachment(ctx, id, attachmentID); err != nil {
		return storeErr(err)
	}
	return nil
}

// ListMainTasks returns every task without a parent.
func (m *TaskManager) ListMainTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := m.store.QueryByParent(ctx, "")
	if err != nil {
		return nil, storeErr(err)
	}
	return tasks, nil
}

// ListSubtasks returns the subtasks of one main task.
func (m *TaskManager) ListSubtasks(ctx context.Context, parentID string) ([]models.Task, error) {
	if strings.TrimSpace(parentID) == "" {
		return nil, validationErr(fmt.Errorf("parent id is required"), ErrCodeMissingRequired)
	}
	tasks, err := m.store.QueryByParent(ctx, parentID)
	if err != nil {
		return nil, storeErr(err)
	}
	return tasks, nil
}

// Overview loads all tasks once and returns the main tasks, the
// subtasks grouped by parent, and the per-filter counts.
func (m *TaskManager) Overview(ctx context.Context) ([]models.Task, map[string][]models.Task, map[string]int, error) {
	all, err := m.store.GetAll(ctx)
	if err != nil {
		return nil, nil, nil, storeErr(err)
	}

	var mains []models.Task
	byParent := make(map[string][]models.Task)
	for _, task := range all {
		if task.ParentID == "" {
			mains = append(mains, task)
			continue
		}
		byParent[task.ParentID] = append(byParent[task.ParentID], task)
	}

	return mains, byParent, AggregateCounts(mains, byParent), nil
}

func (m *TaskManager) findAttachment(ctx context.Context, id, attachmentID string) (models.Attachment, error) {
	var zero models.Attachment

	task, err := m.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	for _, attachment := range task.Attachments {
		if attachment.ID == attachmentID {
			return attachment, nil
		}
	}
	return zero, notFoundErr(fmt.Errorf("attachment %s not found on task %s", attachmentID, id), ErrCodeAttachmentNotFound)
}

func normalizeTags(difficultyRaw, moodRaw string) (string, string, error) {
	difficulty := strings.TrimSpace(difficultyRaw)
	if difficulty != "" {
		parsed, err := models.ParseDifficulty(difficulty)
		if err != nil {
			return "", "", validationErr(err, ErrCodeInvalidTag)
		}
		difficulty = string(parsed)
	}
	mood := strings.TrimSpace(moodRaw)
	if mood != "" {
		parsed, err := models.ParseMood(mood)
		if err != nil {
			return "", "", validationErr(err, ErrCodeInvalidTag)
		}
		mood = string(parsed)
	}
	return difficulty, mood, nil
}

// derivedCompletedAt enforces the invariant: completed_at is non-nil
// exactly when status is done.
func derivedCompletedAt(status string, at time.Time) *time.Time {
	if status == string(models.StatusDone) {
		return &at
	}
	return nil
}
