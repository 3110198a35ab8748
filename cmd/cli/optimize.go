package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/catalog/importer"
	"github.com/inflationfighter/price-service/internal/database"
	"github.com/inflationfighter/price-service/internal/handlers"
	"github.com/inflationfighter/price-service/internal/optimizer"
	"github.com/inflationfighter/price-service/internal/routing"
)

var (
	optimizeAnalyze bool
	optimizeStores  string
	optimizePrices  string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <request.json|->",
	Short: "Run a route decision or basket analysis and print the JSON result",
	Long: `Read a request body in the same shape the HTTP API accepts and print the response.
By default the request is a route optimization; --analyze treats it as a basket analysis.

With --stores and --prices the catalog is loaded from files into memory and the
database is not used.`,
	Example: `  price-service optimize request.json
  price-service optimize --analyze basket.json
  cat request.json | price-service optimize - --stores stores.csv --prices prices.xlsx`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"database": "optional"},
	RunE:        runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().BoolVar(&optimizeAnalyze, "analyze", false, "Analyze the basket only (no travel)")
	optimizeCmd.Flags().StringVar(&optimizeStores, "stores", "", "Stores file for an in-memory catalog")
	optimizeCmd.Flags().StringVar(&optimizePrices, "prices", "", "Prices file for an in-memory catalog")
}

func offlineCatalog() bool {
	return optimizeStores != "" || optimizePrices != ""
}

func runOptimize(cmd *cobra.Command, args []string) error {
	body, err := readRequest(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reader, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	optimizerCfg := optimizer.Defaults()
	if cfg != nil {
		optimizerCfg = &cfg.Optimizer
	}
	engine := optimizer.NewEngine(travelEstimator(optimizerCfg), optimizerCfg, optimizer.NewMetricsRecorder())

	var result any
	if optimizeAnalyze {
		var req handlers.BasketRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("decode request: %w", err)
		}
		result, err = handlers.PlanBasket(ctx, reader, engine, req)
	} else {
		var req handlers.RouteOptimizeRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("decode request: %w", err)
		}
		result, err = handlers.PlanRoute(ctx, reader, engine, optimizerCfg.DefaultRouteSettings(), req)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readRequest(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// loadCatalog returns the database catalog, or an in-memory one built from
// the --stores and --prices files.
func loadCatalog(ctx context.Context) (catalog.Reader, error) {
	if !offlineCatalog() {
		return catalog.NewPostgresRepository(database.Pool()), nil
	}

	repo := catalog.NewMemoryRepository(nil, nil)
	im := importer.New(repo)

	if optimizeStores != "" {
		opts, data, err := readImportFile(optimizeStores)
		if err != nil {
			return nil, err
		}
		if _, err := im.ImportStores(ctx, data, opts); err != nil {
			return nil, fmt.Errorf("import %s: %w", optimizeStores, err)
		}
	}
	if optimizePrices != "" {
		opts, data, err := readImportFile(optimizePrices)
		if err != nil {
			return nil, err
		}
		if _, err := im.ImportPrices(ctx, data, opts); err != nil {
			return nil, fmt.Errorf("import %s: %w", optimizePrices, err)
		}
	}
	return repo, nil
}

// travelEstimator uses the routing provider when an API key is configured.
func travelEstimator(optimizerCfg *optimizer.Config) *optimizer.TravelEstimator {
	metrics := optimizer.NewMetricsRecorder()
	if cfg == nil || cfg.Routing.APIKey == "" {
		return optimizer.NewTravelEstimator(nil, optimizerCfg, metrics)
	}
	ors, err := routing.NewORSClient(cfg.Routing)
	if err != nil {
		logger.Warn().Err(err).Msg("Routing provider unavailable, travel costs will be estimated")
		return optimizer.NewTravelEstimator(nil, optimizerCfg, metrics)
	}
	return optimizer.NewTravelEstimator(ors, optimizerCfg, metrics)
}
