package service

import "taskdeck/internal/models"

// CountFilterAll is the filter bucket counting every main task.
const CountFilterAll = "all"

// AggregateCounts computes per-filter counts for a hierarchical task
// view. A main task counts toward a status filter when at least one
// of its subtasks carries that status; main tasks without subtasks
// only ever count toward "all". This lets a single pending subtask
// surface its parent in a filtered view.
func AggregateCounts(mainTasks []models.Task, subtasksByParent map[string][]models.Task) map[string]int {
	counts := map[string]int{
		CountFilterAll: len(mainTasks),
	}
	for _, status := range models.TaskStatusStrings() {
		counts[status] = 0
	}

	for _, main := range mainTasks {
		seen := map[string]struct{}{}
		for _, sub := range subtasksByParent[main.ID] {
			if _, counted := seen[sub.Status]; counted {
				continue
			}
			seen[sub.Status] = struct{}{}
			counts[sub.Status]++
		}
	}

	return counts
}
