package service

import (
	"testing"

	"taskdeck/internal/models"
)

func TestAggregateCounts_MainCountsOncePerStatus(t *testing.T) {
	mains := []models.Task{{ID: "td-0001"}}
	subs := map[string][]models.Task{
		"td-0001": {
			{ID: "td-1001", ParentID: "td-0001", Status: "done"},
			{ID: "td-1002", ParentID: "td-0001", Status: "todo"},
			{ID: "td-1003", ParentID: "td-0001", Status: "todo"},
		},
	}

	counts := AggregateCounts(mains, subs)
	want := map[string]int{
		CountFilterAll: 1,
		"todo":         1,
		"in_progress":  0,
		"blocked":      0,
		"done":         1,
	}
	for key, n := range want {
		if counts[key] != n {
			t.Fatalf("counts[%q] = %d, want %d (all: %v)", key, counts[key], n, counts)
		}
	}
}

func TestAggregateCounts_MainsWithoutSubtasksOnlyCountTowardAll(t *testing.T) {
	mains := []models.Task{
		{ID: "td-0001", Status: "done"},
		{ID: "td-0002", Status: "todo"},
	}

	counts := AggregateCounts(mains, map[string][]models.Task{})
	if counts[CountFilterAll] != 2 {
		t.Fatalf("all = %d, want 2", counts[CountFilterAll])
	}
	// The mains' own statuses never feed the status buckets.
	for _, status := range models.TaskStatusStrings() {
		if counts[status] != 0 {
			t.Fatalf("counts[%q] = %d, want 0", status, counts[status])
		}
	}
}

func TestAggregateCounts_SeparateMainsCountSeparately(t *testing.T) {
	mains := []models.Task{{ID: "td-0001"}, {ID: "td-0002"}}
	subs := map[string][]models.Task{
		"td-0001": {{ID: "td-1001", ParentID: "td-0001", Status: "in_progress"}},
		"td-0002": {{ID: "td-1002", ParentID: "td-0002", Status: "in_progress"}},
	}

	counts := AggregateCounts(mains, subs)
	if counts["in_progress"] != 2 {
		t.Fatalf("in_progress = %d, want 2", counts["in_progress"])
	}
}

func TestAggregateCounts_EmptyInputStillListsEveryBucket(t *testing.T) {
	counts := AggregateCounts(nil, nil)
	if counts[CountFilterAll] != 0 {
		t.Fatalf("all = %d, want 0", counts[CountFilterAll])
	}
	for _, status := range models.TaskStatusStrings() {
		if _, ok := counts[status]; !ok {
			t.Fatalf("missing bucket %q", status)
		}
	}
}
