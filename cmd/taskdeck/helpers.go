package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskdeck/internal/blobstore"
	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

// withManager opens the store and blob store, wires the service
// layer, runs fn, and closes everything.
func withManager(cfg *config.Config, fn func(*service.TaskManager, *store.Store) error) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	defer st.Close()

	blobs, err := blobstore.NewLocalStore(cfg.BlobRoot, cfg.BlobBaseURL)
	if err != nil {
		return fmt.Errorf("open blob store %s: %w", cfg.BlobRoot, err)
	}

	validator := service.NewFileValidator(service.Limits{
		MaxImageBytes: cfg.Attachments.MaxImageBytes,
		MaxFileBytes:  cfg.Attachments.MaxFileBytes,
		MaxBatchBytes: cfg.Attachments.MaxBatchBytes,
	})
	attachments := service.NewAttachmentService(blobs, validator)
	manager := service.NewTaskManager(st, attachments, slog.Default())

	return fn(manager, st)
}

// parseDueDate accepts a bare date or a full RFC 3339 timestamp.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q (want YYYY-MM-DD or RFC 3339)", raw)
	}
	return t.UTC(), nil
}

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	switch service.KindOf(err) {
	case service.KindValidation:
		return []string{fmt.Sprintf("error: %v", err)}
	case service.KindNotFound:
		return []string{fmt.Sprintf("error: %v", err)}
	case service.KindInvalidURL:
		return []string{
			fmt.Sprintf("error: %v", err),
			"hint: the stored url no longer resolves; `taskdeck attach prune` drops the dead record",
		}
	default:
		return []string{fmt.Sprintf("error: %v", err)}
	}
}
