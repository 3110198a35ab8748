package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inflationfighter/price-service/config"
	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/handlers"
	"github.com/inflationfighter/price-service/internal/middleware"
	"github.com/inflationfighter/price-service/internal/optimizer"
)

func testConfig() *config.Config {
	return &config.Config{
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Optimizer: *optimizer.Defaults(),
		Internal:  config.InternalConfig{APIKey: "secret"},
	}
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	metrics := optimizer.NewMetricsRecorder()
	engine := optimizer.NewEngine(optimizer.NewTravelEstimator(nil, &cfg.Optimizer, metrics), &cfg.Optimizer, metrics)

	handlers.InitCatalog(catalog.NewMemoryRepository([]catalog.Store{
		{ID: "a", Name: "Store A", Color: "#111111", Location: &catalog.Location{Latitude: 1, Longitude: 1}},
	}, nil))
	handlers.InitPlanner(engine, &cfg.Optimizer)
	handlers.InitSearch(nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return newRouter(ctx, cfg)
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterPublicRoutes(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{"/health", "/api/stores", "/api/stores/locations", "/api/categories", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			w := serve(router, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouterCategorySearchIsNotAnID(t *testing.T) {
	router := setupTestRouter(t)

	w := serve(router, http.MethodGet, "/api/categories/search?q=milk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":[]}`, w.Body.String())
}

func TestRouterInternalRequiresKey(t *testing.T) {
	router := setupTestRouter(t)

	w := serve(router, http.MethodGet, "/internal/health", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, http.MethodGet, "/internal/health", http.Header{middleware.InternalAPIKeyHeader: {"secret"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterServesDocs(t *testing.T) {
	router := setupTestRouter(t)

	w := serve(router, http.MethodGet, "/docs/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/basket/analyze")
}
