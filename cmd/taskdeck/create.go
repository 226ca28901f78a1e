package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

type createCmdOptions struct {
	description string
	parentID    string
	priority    int
	status      string
	due         string
	difficulty  string
	mood        string
	owner       string
	filePath    string
}

func newCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &createCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new task or subtask",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, cfg, opts, jsonOutput, args)
		},
	}

	bindCreateFlags(cmd, opts)
	return cmd
}

func bindCreateFlags(cmd *cobra.Command, opts *createCmdOptions) {
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&opts.parentID, "parent", "", "parent task id (makes this a subtask)")
	cmd.Flags().IntVarP(&opts.priority, "priority", "p", 0, "priority 1-4")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", "initial status")
	cmd.Flags().StringVar(&opts.due, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&opts.difficulty, "difficulty", "", "difficulty tag")
	cmd.Flags().StringVar(&opts.mood, "mood", "", "completion mood tag")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "owner uid")
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "markdown file for batch create")
}

func runCreate(cmd *cobra.Command, cfg *config.Config, opts *createCmdOptions, jsonOutput *bool, args []string) error {
	return withManager(cfg, func(manager *service.TaskManager, _ *store.Store) error {
		if opts.filePath != "" {
			return runCreateFromFile(cmd, manager, opts.filePath, jsonOutput)
		}

		in, err := buildCreateInput(cmd, opts, args)
		if err != nil {
			return err
		}

		task, err := manager.Create(cmd.Context(), in)
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(task)
		}
		return writePlain("%s\n", task.ID)
	})
}

func buildCreateInput(cmd *cobra.Command, opts *createCmdOptions, args []string) (service.TaskCreateInput, error) {
	if len(args) == 0 {
		return service.TaskCreateInput{}, errors.New("task name is required")
	}

	in := service.TaskCreateInput{
		Name:        strings.Join(args, " "),
		Description: opts.description,
		ParentID:    opts.parentID,
		Difficulty:  opts.difficulty,
		Mood:        opts.mood,
		OwnerUID:    opts.owner,
	}
	if cmd.Flags().Changed("priority") {
		in.Priority = &opts.priority
	}
	if opts.status != "" {
		in.Status = &opts.status
	}
	if opts.due != "" {
		due, err := parseDueDate(opts.due)
		if err != nil {
			return service.TaskCreateInput{}, err
		}
		in.DueDate = &due
	}

	return in, nil
}

func runCreateFromFile(cmd *cobra.Command, manager *service.TaskManager, filePath string, jsonOutput *bool) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	frontMatter, items, err := parseMarkdown(string(data))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no list items found in %s", filePath)
	}

	defaults, err := frontMatterToInput(frontMatter)
	if err != nil {
		return err
	}

	created := make([]string, 0, len(items))
	for _, item := range items {
		in := defaults
		in.Name = item
		task, err := manager.Create(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("create %q: %w", item, err)
		}
		created = append(created, task.ID)
	}

	if *jsonOutput {
		return writeJSON(created)
	}
	for _, id := range created {
		if err := writePlain("%s\n", id); err != nil {
			return err
		}
	}
	return nil
}
