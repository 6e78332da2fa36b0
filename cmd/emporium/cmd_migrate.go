package main

import (
	"log/slog"

	sqlrepo "github.com/iyhunko/magical-emporium/internal/repository/sql"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := sqlrepo.StartDB(cmd.Context(), conf.Database)
		if err != nil {
			return err
		}
		slog.Info("Database is up to date", slog.String("driver", db.Driver))
		return db.Close()
	},
}
