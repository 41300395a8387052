package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/importer/internal/application/usecase/statementimport"
	"github.com/finance-tracker/importer/internal/domain/entity"
	"github.com/finance-tracker/importer/internal/infra/dependency"
	"github.com/finance-tracker/importer/internal/integration/adapters"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/importer/internal/integration/profile"
)

func runCommand(app *cli) *cobra.Command {
	var (
		dryRun bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "run <statement-file>",
		Short: "Import a statement file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadProfile()
			if err != nil {
				return err
			}
			if dryRun {
				cfg.DryRun = true
			}
			if format != "" {
				cfg.Format = entity.ImportFormat(strings.ToUpper(format))
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read statement: %w", err)
			}

			database, err := app.openDatabase(&app.cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					slog.Error("Failed to close database connection", "error", err)
				}
			}()
			if err := database.Migrate(); err != nil {
				return err
			}

			useCase := dependency.NewImportStatementUseCase(app.cfg, database.DB(), adapters.NewStaticUserProvider(cfg.UserID))
			result, err := useCase.Execute(cmd.Context(), statementimport.ImportStatementInput{
				FileName: filepath.Base(args[0]),
				Content:  content,
				Config:   cfg,
			})
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(dto.ToImportResultResponse(result))
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without writing anything")
	cmd.Flags().StringVar(&format, "format", "", "override the profile format (AUTO, OFX, CSV)")

	return cmd
}

// loadProfile reads the profile and applies the --user override.
func (app *cli) loadProfile() (*entity.ImportConfiguration, error) {
	if app.profilePath == "" {
		return nil, fmt.Errorf("--profile is required")
	}

	cfg, err := profile.LoadFromFile(app.profilePath)
	if err != nil {
		return nil, err
	}

	if app.userID != "" {
		userID, err := uuid.Parse(app.userID)
		if err != nil {
			return nil, fmt.Errorf("invalid --user: %w", err)
		}
		cfg.UserID = userID
	}

	return cfg, nil
}
