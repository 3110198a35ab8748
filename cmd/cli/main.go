package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/inflationfighter/price-service/config"
	"github.com/inflationfighter/price-service/internal/database"
	"github.com/inflationfighter/price-service/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "price-service",
	Short: "Price Service CLI - catalog maintenance and offline optimization",
	Long: `A CLI tool for maintaining the grocery price catalog: applying the schema,
importing stores and prices from CSV or XLSX files, rebuilding the search index,
and running basket analyses or route decisions without the HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for some commands, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logCfg := config.LoggingConfig{Level: "info"}
	if cfg != nil {
		logCfg = cfg.Logging
	}
	// Logs go to stderr so command output on stdout stays machine readable
	l := logging.SetupWriter(logCfg, "price-service-cli", os.Stderr)
	logger = &l

	if needsDatabase(cmd) {
		if cfg == nil {
			return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
		}
		if err := initDatabase(cmd.Context()); err != nil {
			return fmt.Errorf("database initialization failed: %w", err)
		}
		logger.Info().Msg("Database connected")
	}

	return nil
}

// needsDatabase reports whether a command reads or writes the shared pool.
// Commands opt in through the "database" annotation.
func needsDatabase(cmd *cobra.Command) bool {
	if cmd.Annotations["database"] == "optional" {
		return !offlineCatalog()
	}
	return cmd.Annotations["database"] == "required"
}

func initDatabase(ctx context.Context) error {
	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := database.Connect(ctx, database.PoolConfig{
		URL:             dbURL,
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return nil
}

func main() {
	defer database.Close()
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
