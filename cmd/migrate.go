package cmd

import (
	"taskboard/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}

		log.Info("Schema is up to date")
		return nil
	},
}
