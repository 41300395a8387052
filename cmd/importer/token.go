package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/importer/internal/integration/adapters"
)

// tokenCommand mints an access token signed with JWT_SECRET, for calling the API in development.
func tokenCommand(app *cli) *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a development access token for --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(app.userID)
			if err != nil {
				return fmt.Errorf("--user must be a valid id: %w", err)
			}

			token, err := adapters.NewTokenService(app.cfg.JWT.Secret).GenerateAccessToken(userID, email, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	return cmd
}
