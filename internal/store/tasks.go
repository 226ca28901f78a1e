package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/models"
)

// TaskUpdate is the explicit field mask for task updates. Nil fields
// are left untouched; ParentID is deliberately absent because a
// subtask's parent is immutable after creation.
type TaskUpdate struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *int
	DueDate     *time.Time
	ClearDue    bool
	Difficulty  *string
	Mood        *string
	CompletedAt *time.Time
	Attachments *[]models.Attachment
	UpdatedAt   time.Time
}

// CreateTask inserts a task and its attachment rows. created_at and
// updated_at are stamped identically when unset.
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if task == nil {
		return fmt.Errorf("task is required")
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.UpdatedAt = task.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (
			id, name, description, parent_id, status, priority, due_date,
			difficulty_emoji, completion_mood, owner_uid, created_at, updated_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.Name,
		nullIfEmpty(task.Description),
		nullIfEmpty(task.ParentID),
		task.Status,
		task.Priority,
		nullTime(task.DueDate),
		nullIfEmpty(task.Difficulty),
		nullIfEmpty(task.Mood),
		nullIfEmpty(task.OwnerUID),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
		nullTime(task.CompletedAt),
	)
	if err != nil {
		return err
	}

	if err = insertAttachments(ctx, tx, task.ID, task.Attachments, 0); err != nil {
		return err
	}

	return tx.Commit()
}

// GetTask returns a task by id with its attachment list, or nil when
// no such task exists.
func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, parent_id, status, priority, due_date,
		       difficulty_emoji, completion_mood, owner_uid, created_at, updated_at, completed_at
		FROM tasks WHERE id = ?
	`, id)
	task, err := scanTask(row)
	if err != nil || task == nil {
		return task, err
	}

	attachments, err := s.ListAttachments(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Attachments = attachments
	return task, nil
}

// GetAll returns every task with attachments populated.
func (s *Store) GetAll(ctx context.Context) ([]models.Task, error) {
	return s.queryTasks(ctx, "", nil)
}

// QueryByParent returns main tasks when parentID is empty, otherwise
// the subtasks of parentID. Results are ordered oldest first.
func (s *Store) QueryByParent(ctx context.Context, parentID string) ([]models.Task, error) {
	if parentID == "" {
		return s.queryTasks(ctx, "WHERE parent_id IS NULL", nil)
	}
	return s.queryTasks(ctx, "WHERE parent_id = ?", []any{parentID})
}

// UpdateTask applies a field-mask update. updated_at is always
// stamped; when the mask includes Attachments the full list is
// replaced inside the same transaction.
func (s *Store) UpdateTask(ctx context.Context, id string, update TaskUpdate) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = time.Now().UTC()
	}

	set := []string{}
	args := []any{}

	if update.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		set = append(set, "description = ?")
		args = append(args, nullIfEmpty(*update.Description))
	}
	if update.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *update.Status)
	}
	if update.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, *update.Priority)
	}
	if update.DueDate != nil {
		set = append(set, "due_date = ?")
		args = append(args, nullTime(update.DueDate))
	} else if update.ClearDue {
		set = append(set, "due_date = NULL")
	}
	if update.Difficulty != nil {
		set = append(set, "difficulty_emoji = ?")
		args = append(args, nullIfEmpty(*update.Difficulty))
	}
	if update.Mood != nil {
		set = append(set, "completion_mood = ?")
		args = append(args, nullIfEmpty(*update.Mood))
	}
	if update.Status != nil {
		// completed_at is re-derived on every status write.
		set = append(set, "completed_at = ?")
		args = append(args, nullTime(update.CompletedAt))
	}

	set = append(set, "updated_at = ?")
	args = append(args, formatTime(update.UpdatedAt))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ?", strings.Join(set, ", "))
	_, err = tx.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return err
	}

	if update.Attachments != nil {
		if _, err = tx.ExecContext(ctx, "DELETE FROM attachments WHERE task_id = ?", id); err != nil {
			return err
		}
		if err = insertAttachments(ctx, tx, id, *update.Attachments, 0); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateTaskStatus writes status and the derived completed_at value
// and stamps updated_at.
func (s *Store) UpdateTaskStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?",
		status, nullTime(completedAt), formatTime(time.Now().UTC()), id)
	return err
}

// DeleteTask removes the task row only. Subtasks are not touched and
// attachment blobs stay in the blob store; cascade is a caller
// decision.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return err
}

// ListAttachments returns a task's attachments in upload order.
func (s *Store) ListAttachments(ctx context.Context, taskID string) ([]models.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, file_url, file_type, upload_path, uploaded_at
		FROM attachments WHERE task_id = ? ORDER BY position ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, *attachment)
	}
	return attachments, rows.Err()
}

// AppendAttachments appends records to the end of a task's list and
// stamps updated_at on the owning task.
func (s *Store) AppendAttachments(ctx context.Context, taskID string, attachments []models.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var next sql.NullInt64
	if err = tx.QueryRowContext(ctx, "SELECT MAX(position) FROM attachments WHERE task_id = ?", taskID).Scan(&next); err != nil {
		return err
	}
	start := 0
	if next.Valid {
		start = int(next.Int64) + 1
	}

	if err = insertAttachments(ctx, tx, taskID, attachments, start); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE tasks SET updated_at = ? WHERE id = ?", formatTime(time.Now().UTC()), taskID); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveAttachment deletes one attachment row and stamps updated_at.
func (s *Store) RemoveAttachment(ctx context.Context, taskID, attachmentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM attachments WHERE task_id = ? AND id = ?", taskID, attachmentID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE tasks SET updated_at = ? WHERE id = ?", formatTime(time.Now().UTC()), taskID); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) queryTasks(ctx context.Context, where string, args []any) ([]models.Task, error) {
	query := `
		SELECT id, name, description, parent_id, status, priority, due_date,
		       difficulty_emoji, completion_mood, owner_uid, created_at, updated_at, completed_at
		FROM tasks
	`
	if where != "" {
		query += " " + where
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return s.attachAttachments(ctx, tasks)
}

func (s *Store) attachAttachments(ctx context.Context, tasks []models.Task) ([]models.Task, error) {
	if len(tasks) == 0 {
		return tasks, nil
	}

	ids := make([]string, 0, len(tasks))
	args := make([]any, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
		args = append(args, task.ID)
	}

	query := fmt.Sprintf(`
		SELECT task_id, id, file_name, file_url, file_type, upload_path, uploaded_at
		FROM attachments WHERE task_id IN (%s) ORDER BY task_id, position ASC
	`, placeholders(len(ids)))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTask := make(map[string][]models.Attachment)
	for rows.Next() {
		var taskID string
		var attachment models.Attachment
		var fileType, uploadPath sql.NullString
		var uploadedAt string
		if err := rows.Scan(&taskID, &attachment.ID, &attachment.FileName, &attachment.FileURL, &fileType, &uploadPath, &uploadedAt); err != nil {
			return nil, err
		}
		attachment.FileType = fileType.String
		attachment.UploadPath = uploadPath.String
		parsed, err := parseTime(uploadedAt)
		if err != nil {
			return nil, err
		}
		attachment.UploadedAt = parsed
		byTask[taskID] = append(byTask[taskID], attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i].Attachments = byTask[tasks[i].ID]
	}
	return tasks, nil
}

func insertAttachments(ctx context.Context, tx *sql.Tx, taskID string, attachments []models.Attachment, start int) error {
	for i, attachment := range attachments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attachments (task_id, id, file_name, file_url, file_type, upload_path, uploaded_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			taskID,
			attachment.ID,
			attachment.FileName,
			attachment.FileURL,
			nullIfEmpty(attachment.FileType),
			nullIfEmpty(attachment.UploadPath),
			formatTime(attachment.UploadedAt),
			start+i,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*models.Task, error) {
	var task models.Task
	var description, parentID, difficulty, mood, ownerUID sql.NullString
	var dueDate, completedAt sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&task.ID,
		&task.Name,
		&description,
		&parentID,
		&task.Status,
		&task.Priority,
		&dueDate,
		&difficulty,
		&mood,
		&ownerUID,
		&createdAt,
		&updatedAt,
		&completedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	task.Description = description.String
	task.ParentID = parentID.String
	task.Difficulty = difficulty.String
	task.Mood = mood.String
	task.OwnerUID = ownerUID.String

	parsedCreated, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	parsedUpdated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	task.CreatedAt = parsedCreated
	task.UpdatedAt = parsedUpdated

	if dueDate.Valid {
		parsed, err := parseTime(dueDate.String)
		if err != nil {
			return nil, err
		}
		task.DueDate = &parsed
	}
	if completedAt.Valid {
		parsed, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		task.CompletedAt = &parsed
	}

	return &task, nil
}

func scanAttachment(scanner interface {
	Scan(dest ...any) error
}) (*models.Attachment, error) {
	var attachment models.Attachment
	var fileType, uploadPath sql.NullString
	var uploadedAt string

	if err := scanner.Scan(
		&attachment.ID,
		&attachment.FileName,
		&attachment.FileURL,
		&fileType,
		&uploadPath,
		&uploadedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	attachment.FileType = fileType.String
	attachment.UploadPath = uploadPath.String
	parsed, err := parseTime(uploadedAt)
	if err != nil {
		return nil, err
	}
	attachment.UploadedAt = parsed

	return &attachment, nil
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
