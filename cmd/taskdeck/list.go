package main

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/models"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

type listCmdOptions struct {
	parentID string
	counts   bool
	status   string
}

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &listCmdOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List main tasks, or the subtasks of one task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, cfg, opts, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&opts.parentID, "parent", "", "list subtasks of this task")
	cmd.Flags().BoolVar(&opts.counts, "counts", false, "show per-filter counts for the hierarchy view")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", "filter main tasks: keep those with a subtask in this status")
	return cmd
}

func runList(cmd *cobra.Command, cfg *config.Config, opts *listCmdOptions, jsonOutput *bool) error {
	return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
		if opts.parentID != "" {
			tasks, err := manager.ListSubtasks(cmd.Context(), opts.parentID)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(tasks)
			}
			return writeTaskList(tasks)
		}

		if opts.counts {
			_, _, counts, err := manager.Overview(cmd.Context())
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(counts)
			}
			return writeCounts(counts)
		}

		if opts.status != "" {
			status, err := models.ParseTaskStatus(opts.status)
			if err != nil {
				return err
			}
			mains, byParent, _, err := manager.Overview(cmd.Context())
			if err != nil {
				return err
			}
			filtered := filterMainsBySubtaskStatus(mains, byParent, string(status))
			if *jsonOutput {
				return writeJSON(filtered)
			}
			return writeTaskList(filtered)
		}

		tasks, err := manager.ListMainTasks(cmd.Context())
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(tasks)
		}
		return writeTaskList(tasks)
	})
}

// filterMainsBySubtaskStatus keeps main tasks with at least one
// subtask in the wanted status, mirroring the aggregate counts.
func filterMainsBySubtaskStatus(mains []models.Task, byParent map[string][]models.Task, status string) []models.Task {
	filtered := []models.Task{}
	for _, main := range mains {
		for _, sub := range byParent[main.ID] {
			if sub.Status == status {
				filtered = append(filtered, main)
				break
			}
		}
	}
	return filtered
}

func writeCounts(counts map[string]int) error {
	order := append([]string{service.CountFilterAll}, models.TaskStatusStrings()...)
	for _, key := range order {
		if err := writePlain("%s: %d\n", key, counts[key]); err != nil {
			return err
		}
	}
	return nil
}
