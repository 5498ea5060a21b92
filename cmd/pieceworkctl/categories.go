package main

import (
	"github.com/spf13/cobra"
)

func newCategoriesCmd(app *cli) *cobra.Command {
	categories := &cobra.Command{
		Use:   "categories",
		Short: "Administración de categorías",
	}

	var dryRun bool
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Elimina las categorías sin ningún precio configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			if dryRun {
				unused, err := c.Catalog.FindUnused(cmd.Context())
				if err != nil {
					return err
				}
				for _, cat := range unused {
					printf(out, "%s\t%s\n", cat.ID, cat.Name)
				}
				printf(out, "%d categorías sin precio (dry-run, nada eliminado)\n", len(unused))
				return nil
			}
			res, err := c.Catalog.DeleteUnused(cmd.Context())
			if err != nil {
				return err
			}
			printf(out, "%d categorías eliminadas\n", res.DeletedCount)
			return nil
		},
	}
	cleanup.Flags().BoolVar(&dryRun, "dry-run", false, "solo listar las categorías que se eliminarían")

	categories.AddCommand(cleanup)
	return categories
}
