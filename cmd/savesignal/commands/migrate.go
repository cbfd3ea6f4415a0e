package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"savesignal/internal/database"
	"savesignal/internal/database/migration"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the records schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, dialect, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			return migration.EnsureMigrated(cmd.Context(), db, dialect, logger)
		},
	}
}
