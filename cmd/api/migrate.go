package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fkhayef/splitsettle/internal/config"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer db.Close()

			slog.Info("Migrations applied")
			return nil
		},
	}
}
