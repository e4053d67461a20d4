package main

import (
	"github.com/spf13/cobra"

	"talenttrack/internal/app"
	"talenttrack/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the vacancies, candidates and applications tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.LoadConfig()
		cfg.Migrate = true

		db, err := app.OpenDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		db.Close()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
