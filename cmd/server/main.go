package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/inflationfighter/price-service/config"
	_ "github.com/inflationfighter/price-service/docs"
	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/database"
	"github.com/inflationfighter/price-service/internal/handlers"
	"github.com/inflationfighter/price-service/internal/jobs"
	"github.com/inflationfighter/price-service/internal/logging"
	"github.com/inflationfighter/price-service/internal/middleware"
	"github.com/inflationfighter/price-service/internal/optimizer"
	"github.com/inflationfighter/price-service/internal/routing"
	"github.com/inflationfighter/price-service/internal/search"
	"github.com/inflationfighter/price-service/internal/telemetry"
)

// @title InflationFighter Price Service API
// @version 1.0
// @description Grocery price comparison, basket analysis and shopping route optimization.
// @BasePath /
// @securityDefinitions.apikey InternalAPIKey
// @in header
// @name X-Internal-API-Key
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Logging, cfg.Telemetry.ServiceName)

	logger.Info().Msg("Starting price service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	if err := database.Connect(ctx, database.PoolConfig{
		URL:             dbURL,
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	repo := catalog.NewPostgresRepository(database.Pool())
	initHandlers(cfg, repo, logger)

	cleanup := jobs.NewCleanupManager(jobs.CleanupConfig{
		Enabled:           cfg.Jobs.DealCleanupEnabled,
		DealPruneInterval: cfg.Jobs.DealCleanupInterval,
	}, repo, logger)
	cleanup.Start(ctx)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(ctx, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	cleanup.Wait(5 * time.Second)
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

// initHandlers wires the catalog, the optional search index and the decision
// engine into the handlers package.
func initHandlers(cfg *config.Config, repo *catalog.PostgresRepository, logger zerolog.Logger) {
	var reader catalog.Reader = repo

	var indexer handlers.CategoryIndexer
	if cfg.Search.Enabled {
		client, err := search.NewClient(cfg.Search.Addresses...)
		if err != nil {
			logger.Warn().Err(err).Msg("Search disabled, using database text search")
		} else {
			index := search.NewCategoryIndex(client, cfg.Search.Index)
			reader = catalog.NewSearchingReader(reader, index)
			indexer = index
		}
	}

	metrics := optimizer.NewMetricsRecorder()

	var provider optimizer.RouteProvider
	if cfg.Routing.APIKey != "" {
		ors, err := routing.NewORSClient(cfg.Routing)
		if err != nil {
			logger.Warn().Err(err).Msg("Routing provider unavailable, travel costs will be estimated")
		} else {
			provider = ors
		}
	} else {
		logger.Info().Msg("No routing API key configured, travel costs will be estimated")
	}

	estimator := optimizer.NewTravelEstimator(provider, &cfg.Optimizer, metrics)
	engine := optimizer.NewEngine(estimator, &cfg.Optimizer, metrics)

	handlers.InitCatalog(reader)
	handlers.InitPlanner(engine, &cfg.Optimizer)
	handlers.InitSearch(indexer)
}

// newRouter registers middleware and routes. Background work started by the
// middleware stops when ctx is done.
func newRouter(ctx context.Context, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(telemetry.Middleware())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	}))
	{
		stores := api.Group("/stores")
		{
			stores.GET("", handlers.ListStores)
			stores.GET("/locations", handlers.ListStoreLocations)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", handlers.ListCategories)
			categories.GET("/search", handlers.SearchCategories)
			categories.GET("/:id", handlers.GetCategory)
		}

		api.POST("/basket/analyze", handlers.AnalyzeBasket)
		api.POST("/routes/optimize", handlers.OptimizeRoute)
	}

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Internal.APIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(50, 100))
	{
		internal.GET("/health", handlers.InternalHealthCheck)
		internal.POST("/search/reindex", handlers.ReindexCategories)
	}

	return router
}
