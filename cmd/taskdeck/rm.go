package main

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

func newRmCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task (subtasks and blobs are left alone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				if err := manager.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				return writePlain("deleted %s\n", args[0])
			})
		},
	}
}
