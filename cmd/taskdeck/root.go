package main

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "taskdeck",
		Short: "Taskdeck is a personal task manager with subtasks and attachments",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				cmd.PrintErrln(warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newCreateCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newListCmd(cfg, &jsonOutput),
		newUpdateCmd(cfg, &jsonOutput),
		newStatusCmd(cfg, &jsonOutput),
		newDoneCmd(cfg, &jsonOutput),
		newReopenCmd(cfg, &jsonOutput),
		newRmCmd(cfg),
		newAttachCmd(cfg, &jsonOutput),
		newInfoCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
	)

	return cmd
}
