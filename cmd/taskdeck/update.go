package main

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

type updateCmdOptions struct {
	name        string
	description string
	status      string
	priority    int
	due         string
	clearDue    bool
	difficulty  string
	mood        string
}

func newUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &updateCmdOptions{}
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task fields; only flags you pass are touched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, cfg, args[0], opts, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "task name")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", "task status (todo, in_progress, blocked, done)")
	cmd.Flags().IntVarP(&opts.priority, "priority", "p", 0, "priority 1 (urgent) to 4 (low)")
	cmd.Flags().StringVar(&opts.due, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().BoolVar(&opts.clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", "", "difficulty emoji")
	cmd.Flags().StringVar(&opts.mood, "mood", "", "completion mood emoji")
	return cmd
}

func runUpdate(cmd *cobra.Command, cfg *config.Config, id string, opts *updateCmdOptions, jsonOutput *bool) error {
	in := service.TaskFieldsUpdate{ClearDue: opts.clearDue}

	if cmd.Flags().Changed("name") {
		in.Name = &opts.name
	}
	if cmd.Flags().Changed("description") {
		in.Description = &opts.description
	}
	if cmd.Flags().Changed("status") {
		in.Status = &opts.status
	}
	if cmd.Flags().Changed("priority") {
		in.Priority = &opts.priority
	}
	if cmd.Flags().Changed("due") {
		due, err := parseDueDate(opts.due)
		if err != nil {
			return err
		}
		in.DueDate = &due
	}
	if cmd.Flags().Changed("difficulty") {
		in.Difficulty = &opts.difficulty
	}
	if cmd.Flags().Changed("mood") {
		in.Mood = &opts.mood
	}

	return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
		task, err := manager.UpdateFields(cmd.Context(), id, in)
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(task)
		}
		return writeTaskDetail(task)
	})
}
