package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/blobstore"
	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

func newTaskManagerForTest(t *testing.T) (*TaskManager, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	blobs, err := blobstore.NewLocalStore(t.TempDir(), "taskdeck://blobs")
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	attachments := NewAttachmentService(blobs, NewFileValidator(DefaultLimits()))
	return NewTaskManager(st, attachments, nil), st
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreate_AppliesDefaults(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)

	task, err := manager.Create(context.Background(), TaskCreateInput{Name: "  Water the plants  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(task.ID, "td-") {
		t.Fatalf("id = %q, want td- prefix", task.ID)
	}
	if task.Name != "Water the plants" {
		t.Fatalf("name = %q, want trimmed", task.Name)
	}
	if task.Status != string(models.StatusTodo) {
		t.Fatalf("status = %q, want todo", task.Status)
	}
	if task.Priority != models.DefaultPriority {
		t.Fatalf("priority = %d, want %d", task.Priority, models.DefaultPriority)
	}
	if task.CompletedAt != nil {
		t.Fatalf("completed_at must be nil for %q", task.Status)
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("fresh task should have created_at == updated_at")
	}
}

func TestCreate_DoneStatusStampsCompletedAt(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)

	task, err := manager.Create(context.Background(), TaskCreateInput{
		Name:   "Already finished",
		Status: strPtr("done"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.CompletedAt == nil {
		t.Fatal("completed_at must be set for done")
	}
}

func TestCreate_ValidationRejections(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    TaskCreateInput
		wantCode int
	}{
		{"blank name", TaskCreateInput{Name: "   "}, ErrCodeMissingRequired},
		{"unknown status", TaskCreateInput{Name: "x", Status: strPtr("paused")}, ErrCodeInvalidStatus},
		{"priority too low", TaskCreateInput{Name: "x", Priority: intPtr(0)}, ErrCodeInvalidPriority},
		{"priority too high", TaskCreateInput{Name: "x", Priority: intPtr(5)}, ErrCodeInvalidPriority},
		{"negative priority", TaskCreateInput{Name: "x", Priority: intPtr(-1)}, ErrCodeInvalidPriority},
		{"unknown parent", TaskCreateInput{Name: "x", ParentID: "td-none"}, ErrCodeInvalidParentID},
		{"bad difficulty", TaskCreateInput{Name: "x", Difficulty: "hard"}, ErrCodeInvalidTag},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manager.Create(ctx, tc.input)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if KindOf(err) != KindValidation {
				t.Fatalf("kind = %q, want %q (%v)", KindOf(err), KindValidation, err)
			}
			if CodeOf(err) != tc.wantCode {
				t.Fatalf("code = %d, want %d (%v)", CodeOf(err), tc.wantCode, err)
			}
		})
	}
}

func TestCreate_EveryValidPriorityAccepted(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	for p := models.PriorityMin; p <= models.PriorityMax; p++ {
		task, err := manager.Create(ctx, TaskCreateInput{Name: "prio", Priority: intPtr(p)})
		if err != nil {
			t.Fatalf("priority %d rejected: %v", p, err)
		}
		if task.Priority != p {
			t.Fatalf("priority stored as %d, want %d", task.Priority, p)
		}
	}
}

func TestCreate_SubtaskCannotParentAnotherTask(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	main, err := manager.Create(ctx, TaskCreateInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create main: %v", err)
	}
	sub, err := manager.Create(ctx, TaskCreateInput{Name: "Sub", ParentID: main.ID})
	if err != nil {
		t.Fatalf("create sub: %v", err)
	}

	_, err = manager.Create(ctx, TaskCreateInput{Name: "Grandchild", ParentID: sub.ID})
	if err == nil {
		t.Fatal("expected one-level nesting to be enforced")
	}
	if CodeOf(err) != ErrCodeInvalidParentID {
		t.Fatalf("code = %d, want %d (%v)", CodeOf(err), ErrCodeInvalidParentID, err)
	}
}

func TestUpdateStatus_CompletedAtFollowsDone(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "Finish report"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done, err := manager.Complete(ctx, task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != string(models.StatusDone) || done.CompletedAt == nil {
		t.Fatalf("done task: status=%q completed_at=%v", done.Status, done.CompletedAt)
	}

	reopened, err := manager.Reopen(ctx, task.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != string(models.StatusTodo) {
		t.Fatalf("status = %q, want todo", reopened.Status)
	}
	if reopened.CompletedAt != nil {
		t.Fatal("leaving done must clear completed_at")
	}

	blocked, err := manager.UpdateStatus(ctx, task.ID, "blocked")
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if blocked.CompletedAt != nil {
		t.Fatal("blocked task must not carry completed_at")
	}
}

func TestUpdateStatus_RejectsUnknownStatusAndMissingTask(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	if _, err := manager.UpdateStatus(ctx, "td-none", "todo"); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	task, err := manager.Create(ctx, TaskCreateInput{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := manager.UpdateStatus(ctx, task.ID, "archived"); CodeOf(err) != ErrCodeInvalidStatus {
		t.Fatalf("expected invalid status code, got %v", err)
	}
}

func TestUpdateFields_TouchesOnlyMaskedFields(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	task, err := manager.Create(ctx, TaskCreateInput{
		Name:        "Original",
		Description: "keep me",
		Priority:    intPtr(3),
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := manager.UpdateFields(ctx, task.ID, TaskFieldsUpdate{Name: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("name = %q", updated.Name)
	}
	if updated.Description != "keep me" || updated.Priority != 3 {
		t.Fatalf("unmasked fields changed: %+v", updated)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Fatalf("due date changed: %v", updated.DueDate)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Fatalf("updated_at not advanced: %v <= %v", updated.UpdatedAt, task.UpdatedAt)
	}
}

func TestUpdateFields_ClearDueRemovesTheDate(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	task, err := manager.Create(ctx, TaskCreateInput{Name: "Dated", DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := manager.UpdateFields(ctx, task.ID, TaskFieldsUpdate{ClearDue: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DueDate != nil {
		t.Fatalf("due date should be cleared, got %v", updated.DueDate)
	}
}

func TestUpdateFields_StatusInMaskRederivesCompletedAt(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "x", Status: strPtr("done")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A non-status update must leave completed_at alone.
	updated, err := manager.UpdateFields(ctx, task.ID, TaskFieldsUpdate{Priority: intPtr(1)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("priority update must not clear completed_at")
	}

	updated, err = manager.UpdateFields(ctx, task.ID, TaskFieldsUpdate{Status: strPtr("in_progress")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CompletedAt != nil {
		t.Fatal("status update out of done must clear completed_at")
	}
}

func TestUpdateFields_RejectsEmptyName(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := manager.UpdateFields(ctx, task.ID, TaskFieldsUpdate{Name: strPtr("  ")}); CodeOf(err) != ErrCodeMissingRequired {
		t.Fatalf("expected missing required code, got %v", err)
	}
}

func TestDelete_DoesNotCascadeToSubtasks(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	main, err := manager.Create(ctx, TaskCreateInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create main: %v", err)
	}
	sub, err := manager.Create(ctx, TaskCreateInput{Name: "Sub", ParentID: main.ID})
	if err != nil {
		t.Fatalf("create sub: %v", err)
	}

	if err := manager.Delete(ctx, main.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := manager.Get(ctx, main.ID); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found for deleted task, got %v", err)
	}

	// The subtask survives with its parent_id intact.
	got, err := manager.Get(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get sub: %v", err)
	}
	if got.ParentID != main.ID {
		t.Fatalf("sub parent_id = %q, want %q", got.ParentID, main.ID)
	}
}

func TestAddAttachments_AssignsUniqueTaskScopedIDs(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "With files"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	attached, err := manager.AddAttachments(ctx, task.ID, []File{
		textFile("notes.txt", "hello"),
		textFile("more.txt", "world"),
	})
	if err != nil {
		t.Fatalf("add attachments: %v", err)
	}
	if len(attached) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(attached))
	}
	seen := map[string]struct{}{}
	for _, att := range attached {
		if !strings.HasPrefix(att.ID, "at-") {
			t.Fatalf("attachment id = %q, want at- prefix", att.ID)
		}
		if _, dup := seen[att.ID]; dup {
			t.Fatalf("duplicate attachment id %q", att.ID)
		}
		seen[att.ID] = struct{}{}
	}

	got, err := manager.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Attachments) != 2 {
		t.Fatalf("persisted %d attachments, want 2", len(got.Attachments))
	}
}

func TestAddAttachments_BatchRejectionLeavesTaskUnchanged(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = manager.AddAttachments(ctx, task.ID, []File{
		textFile("fine.txt", "ok"),
		textFile("nope.exe", "MZ"),
	})
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation failure, got %v", err)
	}

	got, err := manager.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("rejected batch must not attach anything, got %d", len(got.Attachments))
	}
}

func TestRemoveAttachment_DeletesBlobThenRecord(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	attached, err := manager.AddAttachments(ctx, task.ID, []File{textFile("doc.txt", "body")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := manager.RemoveAttachment(ctx, task.ID, attached[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err := manager.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("record survived removal: %v", got.Attachments)
	}
}

func TestRemoveAttachment_UnparsableURLLeavesTaskUnchanged(t *testing.T) {
	manager, st := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Seed a record whose url does not belong to our blob store.
	stale := models.Attachment{
		ID:         "at-dead",
		FileName:   "legacy.pdf",
		FileURL:    "https://old-bucket.example/legacy.pdf",
		FileType:   "application/pdf",
		UploadedAt: time.Now().UTC(),
	}
	if err := st.AppendAttachments(ctx, task.ID, []models.Attachment{stale}); err != nil {
		t.Fatalf("seed attachment: %v", err)
	}

	err = manager.RemoveAttachment(ctx, task.ID, "at-dead")
	if err == nil {
		t.Fatal("expected unparsable url error")
	}
	if KindOf(err) != KindInvalidURL {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindInvalidURL)
	}

	got, err := manager.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].ID != "at-dead" {
		t.Fatalf("failed removal must leave the record, got %v", got.Attachments)
	}
}

func TestPruneAttachment_DropsRecordWithoutBlobAccess(t *testing.T) {
	manager, st := newTaskManagerForTest(t)
	ctx := context.Background()

	task, err := manager.Create(ctx, TaskCreateInput{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stale := models.Attachment{
		ID:         "at-dead",
		FileName:   "legacy.pdf",
		FileURL:    "https://old-bucket.example/legacy.pdf",
		FileType:   "application/pdf",
		UploadedAt: time.Now().UTC(),
	}
	if err := st.AppendAttachments(ctx, task.ID, []models.Attachment{stale}); err != nil {
		t.Fatalf("seed attachment: %v", err)
	}

	if err := manager.PruneAttachment(ctx, task.ID, "at-dead"); err != nil {
		t.Fatalf("prune: %v", err)
	}
	got, err := manager.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Attachments) != 0 {
		t.Fatalf("pruned record survived: %v", got.Attachments)
	}
}

func TestOverview_PartitionsAndCounts(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	ctx := context.Background()

	main, err := manager.Create(ctx, TaskCreateInput{Name: "Main"})
	if err != nil {
		t.Fatalf("create main: %v", err)
	}
	if _, err := manager.Create(ctx, TaskCreateInput{Name: "Sub A", ParentID: main.ID, Status: strPtr("done")}); err != nil {
		t.Fatalf("create sub: %v", err)
	}
	if _, err := manager.Create(ctx, TaskCreateInput{Name: "Sub B", ParentID: main.ID}); err != nil {
		t.Fatalf("create sub: %v", err)
	}
	if _, err := manager.Create(ctx, TaskCreateInput{Name: "Loner"}); err != nil {
		t.Fatalf("create loner: %v", err)
	}

	mains, byParent, counts, err := manager.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(mains) != 2 {
		t.Fatalf("expected 2 main tasks, got %d", len(mains))
	}
	if len(byParent[main.ID]) != 2 {
		t.Fatalf("expected 2 subtasks under %s, got %d", main.ID, len(byParent[main.ID]))
	}
	if counts[CountFilterAll] != 2 || counts["done"] != 1 || counts["todo"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestListSubtasks_RequiresParentID(t *testing.T) {
	manager, _ := newTaskManagerForTest(t)
	if _, err := manager.ListSubtasks(context.Background(), "  "); CodeOf(err) != ErrCodeMissingRequired {
		t.Fatalf("expected missing required code, got %v", err)
	}
}
