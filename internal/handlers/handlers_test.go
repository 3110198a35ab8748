package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/optimizer"
)

func testCatalog() *catalog.MemoryRepository {
	stores := []catalog.Store{
		{ID: "fresh", Name: "FreshCo", Color: "#00aa00", Address: "1 Main St", Location: &catalog.Location{Latitude: 43.65, Longitude: -79.38}},
		{ID: "value", Name: "ValueMart", Color: "#0000aa", Address: "2 King St", Location: &catalog.Location{Latitude: 43.70, Longitude: -79.40}},
		{ID: "corner", Name: "Corner Store", Color: "#aa0000"},
	}
	categories := []*catalog.Category{
		{
			ID: "milk", Name: "Milk", Icon: "milk", Unit: "4L", SearchTerms: []string{"dairy"},
			Prices: catalog.NewPriceTable(
				catalog.PriceEntry{StoreID: "fresh", Price: 549},
				catalog.PriceEntry{StoreID: "value", Price: 499},
				catalog.PriceEntry{StoreID: "corner", Price: 699},
			),
			Deals: map[string]catalog.Deal{
				"fresh": {SalePrice: 399, RegularPrice: 549, Ends: "2025-01-31"},
			},
		},
		{
			ID: "bread", Name: "Bread", Icon: "bread", Unit: "loaf", ImageURL: "/images/bread.png",
			Prices: catalog.NewPriceTable(
				catalog.PriceEntry{StoreID: "fresh", Price: 299},
				catalog.PriceEntry{StoreID: "value", Price: 349},
				catalog.PriceEntry{StoreID: "corner", Price: 399},
			),
		},
		{
			ID: "gum", Name: "Gum", Unit: "pack",
			Prices: catalog.NewPriceTable(catalog.PriceEntry{StoreID: "corner", Price: 150}),
		},
		{ID: "eggs", Name: "Eggs", Unit: "dozen"},
	}
	return catalog.NewMemoryRepository(stores, categories)
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config := optimizer.Defaults()
	metrics := optimizer.NewMetricsRecorder()
	estimator := optimizer.NewTravelEstimator(nil, config, metrics)

	InitCatalog(testCatalog())
	InitPlanner(optimizer.NewEngine(estimator, config, metrics), config)
	InitSearch(nil)
	t.Cleanup(func() {
		InitCatalog(nil)
		InitSearch(nil)
		planner = nil
	})

	router := gin.New()
	api := router.Group("/api")
	api.GET("/stores", ListStores)
	api.GET("/stores/locations", ListStoreLocations)
	api.GET("/categories", ListCategories)
	api.GET("/categories/search", SearchCategories)
	api.GET("/categories/:id", GetCategory)
	api.POST("/basket/analyze", AnalyzeBasket)
	api.POST("/routes/optimize", OptimizeRoute)
	router.POST("/internal/search/reindex", ReindexCategories)
	router.GET("/health", HealthCheck)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestListStores(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/stores", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[StoresResponse](t, w)
	require.Len(t, resp.Stores, 3)
	assert.Equal(t, StoreResponse{StoreID: "fresh", Name: "FreshCo", Color: "#00aa00"}, resp.Stores[0])
}

func TestListStoreLocationsSkipsUnlocated(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/stores/locations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[StoreLocationsResponse](t, w)
	require.Len(t, resp.Stores, 2)
	assert.Equal(t, "value", resp.Stores[1].StoreID)
	assert.Equal(t, 43.70, resp.Stores[1].Lat)
	assert.Equal(t, -79.40, resp.Stores[1].Lng)
	assert.Equal(t, "2 King St", resp.Stores[1].Address)
}

func TestListCategoriesSummaries(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[CategoriesResponse](t, w)
	// eggs has no prices and is omitted
	require.Len(t, resp.Categories, 3)

	milk := resp.Categories[0]
	assert.Equal(t, "milk", milk.CategoryID)
	assert.Equal(t, "value", milk.CheapestStore)
	assert.InDelta(t, 4.99, milk.CheapestPrice, 1e-9)
	assert.InDelta(t, 6.99, milk.MostExpensivePrice, 1e-9)
	assert.Equal(t, 29, milk.SavingsPercent)
	assert.Nil(t, milk.ImageURL)

	bread := resp.Categories[1]
	assert.Equal(t, "fresh", bread.CheapestStore)
	assert.Equal(t, 25, bread.SavingsPercent)
	require.NotNil(t, bread.ImageURL)
	assert.Equal(t, "/images/bread.png", *bread.ImageURL)

	gum := resp.Categories[2]
	assert.Equal(t, 0, gum.SavingsPercent)
}

func TestSearchCategories(t *testing.T) {
	router := setupRouter(t)

	t.Run("matches search terms", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/categories/search?q=DAIRY", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[CategoriesResponse](t, w)
		require.Len(t, resp.Categories, 1)
		assert.Equal(t, "milk", resp.Categories[0].CategoryID)
	})

	t.Run("no match returns empty list", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/categories/search?q=caviar", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"categories":[]}`, w.Body.String())
	})

	t.Run("missing query", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/categories/search?q=%20", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetCategoryDetail(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/categories/milk", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[CategoryDetail](t, w)
	require.Len(t, resp.Prices, 3)

	// fresh shows its 3.99 sale price and sorts first
	assert.Equal(t, "fresh", resp.Prices[0].StoreID)
	assert.InDelta(t, 3.99, resp.Prices[0].Price, 1e-9)
	require.NotNil(t, resp.Prices[0].Deal)
	assert.InDelta(t, 5.49, resp.Prices[0].Deal.RegularPrice, 1e-9)
	assert.Equal(t, "2025-01-31", resp.Prices[0].Deal.Ends)

	assert.Equal(t, "value", resp.Prices[1].StoreID)
	assert.Equal(t, "ValueMart", resp.Prices[1].StoreName)
	assert.Nil(t, resp.Prices[1].Deal)
	assert.Equal(t, "corner", resp.Prices[2].StoreID)
}

func TestGetCategoryNotFound(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/categories/caviar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Category not found"}`, w.Body.String())
}

func TestAnalyzeBasket(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/basket/analyze", BasketRequest{
		Items: []BasketItemRequest{
			{CategoryID: "milk", Quantity: 2},
			{CategoryID: "bread", Quantity: 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[BasketAnalysisResponse](t, w)
	assert.Equal(t, "value", resp.SingleStoreBest.StoreID)
	assert.InDelta(t, 13.47, resp.SingleStoreBest.Total, 1e-9)
	assert.Equal(t, "corner", resp.SingleStoreWorst.StoreID)
	assert.InDelta(t, 17.97, resp.SingleStoreWorst.Total, 1e-9)

	require.Len(t, resp.MultiStoreOptimal, 2)
	assert.Equal(t, "value", resp.MultiStoreOptimal[0].StoreID)
	// the deal at fresh does not win the line
	assert.InDelta(t, 4.99, resp.MultiStoreOptimal[0].Price, 1e-9)
	assert.Equal(t, "fresh", resp.MultiStoreOptimal[1].StoreID)

	assert.InDelta(t, 12.97, resp.MultiStoreTotal, 1e-9)
	assert.InDelta(t, 5.00, resp.SavingsVsWorst, 1e-9)
	assert.Equal(t, 28, resp.SavingsPercent)
	assert.InDelta(t, 260.00, resp.AnnualProjection, 1e-9)
}

func TestAnalyzeBasketErrors(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{
			name:     "empty basket",
			body:     BasketRequest{},
			wantCode: http.StatusBadRequest,
			wantErr:  "basket is empty",
		},
		{
			name:     "invalid quantity",
			body:     BasketRequest{Items: []BasketItemRequest{{CategoryID: "milk", Quantity: 0}}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed json",
			body:     "not an object",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "nothing priced",
			body:     BasketRequest{Items: []BasketItemRequest{{CategoryID: "eggs", Quantity: 1}}},
			wantCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/basket/analyze", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantErr != "" {
				resp := decode[ErrorResponse](t, w)
				assert.Equal(t, tt.wantErr, resp.Error)
			}
		})
	}
}

func TestAnalyzeBasketUnknownCategories(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/basket/analyze", BasketRequest{
		Items: []BasketItemRequest{
			{CategoryID: "milk", Quantity: 1},
			{CategoryID: "zucchini", Quantity: 1},
			{CategoryID: "caviar", Quantity: 1},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, []string{"caviar", "zucchini"}, resp.CategoryIDs)
}

func routeRequest(items ...BasketItemRequest) RouteOptimizeRequest {
	return RouteOptimizeRequest{
		Items:        items,
		UserLocation: &LocationRequest{Lat: 43.65, Lng: -79.38},
	}
}

func TestOptimizeRouteMultiStore(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/routes/optimize", routeRequest(
		BasketItemRequest{CategoryID: "milk", Quantity: 2},
		BasketItemRequest{CategoryID: "bread", Quantity: 1},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[RouteOptimizeResponse](t, w)
	require.Len(t, resp.StoresToVisit, 2)
	// the start is at fresh, so it is visited first
	assert.Equal(t, "fresh", resp.StoresToVisit[0].Store.StoreID)
	assert.Equal(t, "value", resp.StoresToVisit[1].Store.StoreID)
	assert.InDelta(t, 2.99, resp.StoresToVisit[0].StoreSubtotal, 1e-9)
	assert.InDelta(t, 9.98, resp.StoresToVisit[1].StoreSubtotal, 1e-9)
	assert.Equal(t, 30, resp.StoresToVisit[0].VisitDurationMinutes)

	assert.Equal(t, "ValueMart", resp.SingleStoreBestName)
	assert.InDelta(t, 13.47, resp.SingleStoreBestTotal, 1e-9)
	assert.InDelta(t, 12.97, resp.GroceryTotal, 1e-9)
	assert.Equal(t, resp.GroceryTotal, resp.MultiStoreTotal)
	assert.InDelta(t, 0.50, resp.GrocerySavings, 1e-9)

	assert.Equal(t, "estimate", resp.TravelCost.Source)
	assert.Greater(t, resp.TravelCost.TotalDistanceKm, 0.0)
	assert.Equal(t, 60.0, resp.TravelCost.TotalStoreTimeMinutes)
	assert.InDelta(t, resp.GrocerySavings-resp.TravelCost.TotalTravelCost, resp.NetSavings, 1e-9)
	assert.False(t, resp.IsWorthIt)
	assert.Nil(t, resp.RoutePolyline)
	assert.Contains(t, resp.Recommendation, "Not worth it")
	assert.Contains(t, resp.Recommendation, "ValueMart")
}

func TestOptimizeRouteSingleStore(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/routes/optimize", routeRequest(
		BasketItemRequest{CategoryID: "milk", Quantity: 1},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[RouteOptimizeResponse](t, w)
	require.Len(t, resp.StoresToVisit, 1)
	assert.Equal(t, "value", resp.StoresToVisit[0].Store.StoreID)
	assert.Equal(t, "none", resp.TravelCost.Source)
	assert.Zero(t, resp.TravelCost.TotalTravelCost)
	assert.Equal(t, resp.GrocerySavings, resp.NetSavings)
}

func TestOptimizeRouteSettings(t *testing.T) {
	router := setupRouter(t)

	cheapTime := 0.01
	cheapGas := 0.01
	quick := 1
	req := routeRequest(
		BasketItemRequest{CategoryID: "milk", Quantity: 20},
		BasketItemRequest{CategoryID: "bread", Quantity: 20},
	)
	req.Settings = &RouteSettingsRequest{
		GasPricePerLiter:    &cheapGas,
		TimeValuePerHour:    &cheapTime,
		TimePerStoreMinutes: &quick,
	}

	w := doRequest(t, router, http.MethodPost, "/api/routes/optimize", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[RouteOptimizeResponse](t, w)
	assert.True(t, resp.IsWorthIt)
	assert.Equal(t, 2.0, resp.TravelCost.TotalStoreTimeMinutes)
	assert.Equal(t, 1, resp.StoresToVisit[0].VisitDurationMinutes)
	assert.Contains(t, resp.Recommendation, "Worth it!")
}

func TestOptimizeRouteErrors(t *testing.T) {
	router := setupRouter(t)

	zero := 0.0
	badSettings := routeRequest(BasketItemRequest{CategoryID: "milk", Quantity: 1})
	badSettings.Settings = &RouteSettingsRequest{FuelEfficiency: &zero}

	badLocation := routeRequest(BasketItemRequest{CategoryID: "milk", Quantity: 1})
	badLocation.UserLocation = &LocationRequest{Lat: 95, Lng: 0}

	noLocation := routeRequest(BasketItemRequest{CategoryID: "milk", Quantity: 1})
	noLocation.UserLocation = nil

	tests := []struct {
		name     string
		body     any
		wantCode int
	}{
		{"empty basket", routeRequest(), http.StatusBadRequest},
		{"zero setting", badSettings, http.StatusBadRequest},
		{"latitude out of range", badLocation, http.StatusBadRequest},
		{"missing user location", noLocation, http.StatusBadRequest},
		{"unknown category", routeRequest(BasketItemRequest{CategoryID: "caviar", Quantity: 1}), http.StatusBadRequest},
		{"nothing priced", routeRequest(BasketItemRequest{CategoryID: "eggs", Quantity: 1}), http.StatusUnprocessableEntity},
		{"only unlocated store carries it", routeRequest(BasketItemRequest{CategoryID: "gum", Quantity: 1}), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/routes/optimize", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)
		})
	}
}

type fakeIndexer struct {
	indexed []*catalog.Category
	err     error
}

func (f *fakeIndexer) EnsureIndex(ctx context.Context) error {
	return f.err
}

func (f *fakeIndexer) IndexCategories(ctx context.Context, categories []*catalog.Category) error {
	f.indexed = categories
	return nil
}

func TestReindexCategories(t *testing.T) {
	router := setupRouter(t)

	t.Run("not configured", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPost, "/internal/search/reindex", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("indexes every category", func(t *testing.T) {
		indexer := &fakeIndexer{}
		InitSearch(indexer)

		w := doRequest(t, router, http.MethodPost, "/internal/search/reindex", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"indexed":4}`, w.Body.String())
		assert.Len(t, indexer.indexed, 4)
	})

	t.Run("index failure", func(t *testing.T) {
		InitSearch(&fakeIndexer{err: errors.New("cluster unavailable")})

		w := doRequest(t, router, http.MethodPost, "/internal/search/reindex", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHealthCheckWithoutDatabase(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"not configured"}`, w.Body.String())
}

func TestHandlersRequireCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	InitCatalog(nil)

	router := gin.New()
	router.GET("/api/stores", ListStores)

	w := doRequest(t, router, http.MethodGet, "/api/stores", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestInternalHealthCheckWithoutDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/internal/health", InternalHealthCheck)

	w := doRequest(t, router, http.MethodGet, "/internal/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"not configured"}`, w.Body.String())
}
