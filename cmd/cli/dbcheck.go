package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inflationfighter/price-service/config"
	"github.com/inflationfighter/price-service/internal/database"
)

var dbcheckTimeout time.Duration

var dbcheckCmd = &cobra.Command{
	Use:   "dbcheck",
	Short: "Verify the database connection string",
	Long: `Open a single connection with the configured DATABASE_URL, ping it and print the
server version. The shared pool is not used, so a bad DSN is reported plainly.`,
	Args: cobra.NoArgs,
	RunE: runDBCheck,
}

func init() {
	rootCmd.AddCommand(dbcheckCmd)

	dbcheckCmd.Flags().DurationVar(&dbcheckTimeout, "timeout", 5*time.Second, "Connection timeout")
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), dbcheckTimeout)
	defer cancel()

	version, err := database.CheckConnection(ctx, dbURL)
	if err != nil {
		logger.Error().Err(err).Msg("Database check failed")
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), version)
	return nil
}
