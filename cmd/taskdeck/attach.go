package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

func newAttachCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Manage a task's file attachments",
	}
	cmd.AddCommand(
		newAttachAddCmd(cfg, jsonOutput),
		newAttachLsCmd(cfg, jsonOutput),
		newAttachRmCmd(cfg),
		newAttachPruneCmd(cfg),
	)
	return cmd
}

func newAttachAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task-id> <file>...",
		Short: "Validate and upload files, then attach them to the task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				files, closeAll, err := openAttachmentFiles(args[1:])
				if err != nil {
					return err
				}
				defer closeAll()

				attached, err := manager.AddAttachments(cmd.Context(), args[0], files)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(attached)
				}
				for _, att := range attached {
					if err := writePlain("%s  %s  %s\n", att.ID, att.FileType, att.FileName); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newAttachLsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <task-id>",
		Short: "List a task's attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				task, err := manager.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task.Attachments)
				}
				for _, att := range task.Attachments {
					if err := writePlain("%s  %s  %s  %s\n", att.ID, att.FileType, att.FileName, att.FileURL); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newAttachRmCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id> <attachment-id>",
		Short: "Delete an attachment's blob and drop its record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				if err := manager.RemoveAttachment(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				return writePlain("removed %s from %s\n", args[1], args[0])
			})
		},
	}
}

func newAttachPruneCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <task-id> <attachment-id>",
		Short: "Drop an attachment record without touching its blob",
		Long: "Drop an attachment record whose stored url no longer resolves.\n" +
			"The blob, if any, is left behind.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
				if err := manager.PruneAttachment(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				return writePlain("pruned %s from %s\n", args[1], args[0])
			})
		},
	}
}

// openAttachmentFiles stats and opens each path, guessing the MIME
// type from the extension. The caller closes via the returned func.
func openAttachmentFiles(paths []string) ([]service.File, func(), error) {
	files := make([]service.File, 0, len(paths))
	handles := make([]*os.File, 0, len(paths))
	closeAll := func() {
		for _, h := range handles {
			h.Close()
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("stat %s: %w", path, err)
		}
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		handles = append(handles, f)
		files = append(files, service.File{
			Meta: service.FileMeta{
				Name:      filepath.Base(path),
				MIMEType:  mime.TypeByExtension(filepath.Ext(path)),
				SizeBytes: info.Size(),
			},
			Content: f,
		})
	}
	return files, closeAll, nil
}
