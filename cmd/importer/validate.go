package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finance-tracker/importer/internal/application/usecase/statementimport"
)

func validateCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a profile without reading a statement or touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadProfile()
			if err != nil {
				return err
			}

			cfg = statementimport.WithDefaults(cfg, statementimport.Defaults{Locale: app.cfg.Import.DefaultLocale})
			if err := statementimport.ValidateConfiguration(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", app.profilePath)
			return nil
		},
	}
}
