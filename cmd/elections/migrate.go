package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"
	"github.com/MinnPost/minnpost-elections-dashboard/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Apply database migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sql.Open("pgx", viper.GetString(constants.ViperDatabaseURL))
			if err != nil {
				return fmt.Errorf("sql.Open: %w", err)
			}
			defer db.Close()

			goose.SetBaseFS(migrations.FS)
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}

			switch args[0] {
			case "up":
				return goose.Up(db, ".")
			case "down":
				return goose.Down(db, ".")
			case "status":
				return goose.Status(db, ".")
			default:
				return fmt.Errorf("unknown migrate command %q", args[0])
			}
		},
	}
}
