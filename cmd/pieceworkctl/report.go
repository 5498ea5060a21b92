package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/piecework-api/internal/domain/entity"
)

func newReportCmd(app *cli) *cobra.Command {
	report := &cobra.Command{
		Use:   "report",
		Short: "Reportes de trabajo a destajo",
	}

	var warehouseID, from, to, format, outDir string
	export := &cobra.Command{
		Use:   "export",
		Short: "Genera el reporte de una bodega en xlsx o pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := parseRange(from, to)
			if err != nil {
				return err
			}
			c, err := app.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			file, err := c.Reports.Export(cmd.Context(), warehouseID, rng, format)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, file.Name)
			if err := os.WriteFile(path, file.Content, 0o644); err != nil {
				return fmt.Errorf("escribir %s: %w", path, err)
			}
			printf(cmd.OutOrStdout(), "%s\n", path)
			return nil
		},
	}
	export.Flags().StringVar(&warehouseID, "warehouse", "", "ID de la bodega")
	export.Flags().StringVar(&from, "from", "", "fecha inicial YYYY-MM-DD")
	export.Flags().StringVar(&to, "to", "", "fecha final YYYY-MM-DD")
	export.Flags().StringVar(&format, "format", "xlsx", "xlsx | pdf")
	export.Flags().StringVar(&outDir, "out", ".", "directorio de salida")
	_ = export.MarkFlagRequired("warehouse")

	report.AddCommand(export)
	return report
}

func parseRange(from, to string) (entity.DateRange, error) {
	var rng entity.DateRange
	parse := func(name, s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		d, err := entity.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("--%s: formato YYYY-MM-DD: %w", name, err)
		}
		return &d, nil
	}
	var err error
	if rng.From, err = parse("from", from); err != nil {
		return rng, err
	}
	if rng.To, err = parse("to", to); err != nil {
		return rng, err
	}
	return rng, nil
}
