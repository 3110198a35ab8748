package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inflationfighter/price-service/internal/database"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the catalog schema",
	Long: `Create the stores, categories, prices and deals tables if they do not exist.
Statements are idempotent, so the command is safe to run on every deploy.`,
	Example: `  price-service migrate
  price-service migrate --print > schema.sql`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if migratePrint {
		fmt.Fprint(cmd.OutOrStdout(), database.Schema())
		return nil
	}

	if cfg == nil {
		return fmt.Errorf("config required for migrate command but not loaded")
	}
	if err := initDatabase(cmd.Context()); err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	if err := database.Migrate(cmd.Context(), database.Pool()); err != nil {
		return err
	}
	logger.Info().Msg("Schema applied")
	return nil
}
