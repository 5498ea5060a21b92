package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/piecework-api/internal/bootstrap"
	"github.com/jhoicas/piecework-api/pkg/config"
	"github.com/jhoicas/piecework-api/pkg/logger"
)

// cli estado compartido por los subcomandos, cargado en PersistentPreRunE.
type cli struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{}
	root := &cobra.Command{
		Use:           "pieceworkctl",
		Short:         "Tareas operativas del servicio a destajo",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.log = logger.New(logger.Config{
				Env:     cfg.App.Env,
				Level:   cfg.App.LogLevel,
				Service: "pieceworkctl",
				Out:     cmd.ErrOrStderr(),
			}).Zerolog()
			return nil
		},
	}
	root.AddCommand(newMigrateCmd(app), newCategoriesCmd(app), newReportCmd(app))
	return root
}

// container construye los casos de uso sin métricas.
func (a *cli) container(cmd *cobra.Command) (*bootstrap.Container, error) {
	return bootstrap.Build(cmd.Context(), a.cfg, a.log, false)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
