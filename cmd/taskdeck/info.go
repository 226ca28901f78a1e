package main

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/service"
	"taskdeck/internal/store"
)

type infoPayload struct {
	Version    string                `json:"version"`
	DBPath     string                `json:"db_path"`
	BlobRoot   string                `json:"blob_root"`
	Migrations store.MigrationStatus `json:"migrations"`
}

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database, blob store, and schema details",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cfg, func(_ *service.TaskManager, st *store.Store) error {
				status, err := st.Status()
				if err != nil {
					return err
				}
				payload := infoPayload{
					Version:    version,
					DBPath:     cfg.DBPath,
					BlobRoot:   cfg.BlobRoot,
					Migrations: status,
				}
				if *jsonOutput {
					return writeJSON(payload)
				}
				if err := writePlain("version:   %s\n", payload.Version); err != nil {
					return err
				}
				if err := writePlain("database:  %s\n", payload.DBPath); err != nil {
					return err
				}
				if err := writePlain("blobs:     %s\n", payload.BlobRoot); err != nil {
					return err
				}
				if err := writePlain("schema:    v%d (latest v%d)\n", status.CurrentVersion, status.AvailableVersion); err != nil {
					return err
				}
				for _, pending := range status.Pending {
					if err := writePlain("pending:   v%d %s\n", pending.Version, pending.Description); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
