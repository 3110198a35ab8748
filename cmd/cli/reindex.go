package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/database"
	"github.com/inflationfighter/price-service/internal/search"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the category search index from the database",
	Long: `Create the Elasticsearch index if needed and index every category with its
search terms. Run it after importing prices when search is enabled.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"database": "required"},
	RunE:        runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if !cfg.Search.Enabled {
		return fmt.Errorf("search is disabled (set search.enabled)")
	}

	client, err := search.NewClient(cfg.Search.Addresses...)
	if err != nil {
		return fmt.Errorf("create search client: %w", err)
	}
	index := search.NewCategoryIndex(client, cfg.Search.Index)

	ctx := cmd.Context()
	categories, err := catalog.NewPostgresRepository(database.Pool()).Categories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	if err := index.EnsureIndex(ctx); err != nil {
		return err
	}
	if err := index.IndexCategories(ctx, categories); err != nil {
		return err
	}

	logger.Info().Int("categories", len(categories)).Str("index", cfg.Search.Index).Msg("Search index rebuilt")
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d categories\n", len(categories))
	return nil
}
