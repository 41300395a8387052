// Package main is the command-line statement importer. It runs the same import engine as the
// API directly against the database, reading the import configuration from a YAML profile.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/importer/config"
	"github.com/finance-tracker/importer/internal/infra/db"
)

// cli carries state shared by the sub-commands.
type cli struct {
	cfg         *config.Config
	profilePath string
	userID      string

	openDatabase func(cfg *config.DatabaseConfig) (*db.Database, error)
}

func newRootCommand() *cobra.Command {
	return newRootCommandWithDatabase(db.NewPostgresConnection)
}

func newRootCommandWithDatabase(openDatabase func(cfg *config.DatabaseConfig) (*db.Database, error)) *cobra.Command {
	app := &cli{openDatabase: openDatabase}

	rootCmd := &cobra.Command{
		Use:           "importer",
		Short:         "Import bank statements into the finance tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if it exists (development only)
			_ = godotenv.Load()
			app.cfg = config.Load()

			// stdout is reserved for command output
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: app.cfg.Log.SlogLevel(),
			})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.profilePath, "profile", "p", "", "YAML import profile")
	rootCmd.PersistentFlags().StringVarP(&app.userID, "user", "u", "", "acting user id, overrides the profile's userId")

	rootCmd.AddCommand(runCommand(app))
	rootCmd.AddCommand(validateCommand(app))
	rootCmd.AddCommand(tokenCommand(app))

	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
