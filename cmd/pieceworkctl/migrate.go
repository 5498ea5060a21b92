package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/piecework-api/internal/infrastructure/postgres"
	"github.com/jhoicas/piecework-api/pkg/config"
)

func newMigrateCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes en PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.DB.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requiere DB_DRIVER=postgres (actual: %s)", app.cfg.DB.Driver)
			}
			dsn := app.cfg.DB.ConnectionString()
			if err := postgres.Migrate(cmd.Context(), dsn); err != nil {
				return err
			}
			version, err := postgres.MigrationVersion(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "migraciones aplicadas, versión %d\n", version)
			return nil
		},
	}
}
