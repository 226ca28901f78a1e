package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"taskdeck/internal/models"
)

func writeJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeTaskList(tasks []models.Task) error {
	for _, task := range tasks {
		if err := writePlain("%s\n", formatTaskLine(task)); err != nil {
			return err
		}
	}
	return nil
}

func writeTaskDetail(task models.Task) error {
	lines := []string{
		fmt.Sprintf("id: %s", task.ID),
		fmt.Sprintf("name: %s", task.Name),
		fmt.Sprintf("status: %s", task.Status),
		fmt.Sprintf("priority: %d", task.Priority),
		fmt.Sprintf("created_at: %s", formatTimestamp(task.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTimestamp(task.UpdatedAt)),
	}

	if task.ParentID != "" {
		lines = append(lines, fmt.Sprintf("parent_id: %s", task.ParentID))
	}
	if task.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", task.Description))
	}
	if task.DueDate != nil {
		lines = append(lines, fmt.Sprintf("due_date: %s", formatTimestamp(*task.DueDate)))
	}
	if task.Difficulty != "" {
		lines = append(lines, fmt.Sprintf("difficulty: %s", task.Difficulty))
	}
	if task.Mood != "" {
		lines = append(lines, fmt.Sprintf("mood: %s", task.Mood))
	}
	if task.OwnerUID != "" {
		lines = append(lines, fmt.Sprintf("owner: %s", task.OwnerUID))
	}
	if task.CompletedAt != nil {
		lines = append(lines, fmt.Sprintf("completed_at: %s", formatTimestamp(*task.CompletedAt)))
	}

	if len(task.Attachments) > 0 {
		lines = append(lines, "attachments:")
		for _, attachment := range task.Attachments {
			lines = append(lines, fmt.Sprintf("  - %s %s (%s)", attachment.ID, attachment.FileName, attachment.FileType))
		}
	}

	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatTaskLine(task models.Task) string {
	marker := "○"
	if task.Status == string(models.StatusDone) {
		marker = "●"
	}
	line := fmt.Sprintf("%s %s [P%d] [%s] - %s", marker, task.ID, task.Priority, task.Status, task.Name)
	if count := len(task.Attachments); count > 0 {
		line += fmt.Sprintf(" (%d attachment(s))", count)
	}
	return line
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
