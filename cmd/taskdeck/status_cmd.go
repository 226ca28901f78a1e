package main

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

func newStatusCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task's status (todo, in_progress, blocked, done)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				task, err := manager.UpdateStatus(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s\n", formatTaskLine(task))
			})
		},
	}
}

func newDoneCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				task, err := manager.Complete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s\n", formatTaskLine(task))
			})
		},
	}
}

func newReopenCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <task-id>",
		Short: "Reopen a done task as todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				task, err := manager.Reopen(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s\n", formatTaskLine(task))
			})
		},
	}
}
