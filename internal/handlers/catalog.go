package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/optimizer"
)

// defaultStoreColor is shown for price entries whose store is not in the catalog.
const defaultStoreColor = "#000000"

// StoreResponse is a store as listed by /api/stores.
type StoreResponse struct {
	StoreID string `json:"store_id" jsonschema:"required"`
	Name    string `json:"name" jsonschema:"required"`
	Color   string `json:"color" jsonschema:"required"`
}

// StoresResponse represents the response for the store list
type StoresResponse struct {
	Stores []StoreResponse `json:"stores" jsonschema:"required"`
}

// StoreLocationResponse is a store that can be part of a route.
type StoreLocationResponse struct {
	StoreID string  `json:"store_id" jsonschema:"required"`
	Name    string  `json:"name" jsonschema:"required"`
	Color   string  `json:"color" jsonschema:"required"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat" jsonschema:"required,minimum=-90,maximum=90"`
	Lng     float64 `json:"lng" jsonschema:"required,minimum=-180,maximum=180"`
}

// StoreLocationsResponse represents the response for /api/stores/locations
type StoreLocationsResponse struct {
	Stores []StoreLocationResponse `json:"stores" jsonschema:"required"`
}

// CategorySummary is one row of the category list.
type CategorySummary struct {
	CategoryID         string  `json:"category_id" jsonschema:"required"`
	Name               string  `json:"name" jsonschema:"required"`
	Icon               string  `json:"icon"`
	Unit               string  `json:"unit"`
	ImageURL           *string `json:"image_url"`
	CheapestStore      string  `json:"cheapest_store" jsonschema:"required"`
	CheapestPrice      float64 `json:"cheapest_price" jsonschema:"required"`
	MostExpensivePrice float64 `json:"most_expensive_price" jsonschema:"required"`
	SavingsPercent     int     `json:"savings_percent" jsonschema:"required,minimum=0,maximum=100"`
}

// CategoriesResponse represents the response for category listings
type CategoriesResponse struct {
	Categories []CategorySummary `json:"categories" jsonschema:"required"`
}

// DealInfo describes an active promotion.
type DealInfo struct {
	SalePrice    float64 `json:"sale_price" jsonschema:"required"`
	RegularPrice float64 `json:"regular_price" jsonschema:"required"`
	Ends         string  `json:"ends" jsonschema:"required"`
}

// PriceEntryResponse is one store's price for a category.
type PriceEntryResponse struct {
	StoreID   string    `json:"store_id" jsonschema:"required"`
	StoreName string    `json:"store_name" jsonschema:"required"`
	Price     float64   `json:"price" jsonschema:"required"`
	Color     string    `json:"color" jsonschema:"required"`
	Deal      *DealInfo `json:"deal"`
}

// CategoryDetail is the full price comparison for one category.
type CategoryDetail struct {
	CategoryID string               `json:"category_id" jsonschema:"required"`
	Name       string               `json:"name" jsonschema:"required"`
	Icon       string               `json:"icon"`
	Unit       string               `json:"unit"`
	ImageURL   *string              `json:"image_url"`
	Prices     []PriceEntryResponse `json:"prices" jsonschema:"required"`
}

// ListStores returns every store
// @Summary List stores
// @Tags catalog
// @Produce json
// @Success 200 {object} StoresResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/stores [get]
func ListStores(c *gin.Context) {
	if !ready(c) {
		return
	}
	stores, err := catalogReader.Stores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StoresResponse{Stores: make([]StoreResponse, 0, len(stores))}
	for _, s := range stores {
		resp.Stores = append(resp.Stores, StoreResponse{StoreID: s.ID, Name: s.Name, Color: s.Color})
	}
	c.JSON(http.StatusOK, resp)
}

// ListStoreLocations returns the stores that have coordinates
// @Summary List store locations
// @Description Stores without coordinates are omitted since they cannot be routed to
// @Tags catalog
// @Produce json
// @Success 200 {object} StoreLocationsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/stores/locations [get]
func ListStoreLocations(c *gin.Context) {
	if !ready(c) {
		return
	}
	stores, err := catalogReader.Stores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := StoreLocationsResponse{Stores: []StoreLocationResponse{}}
	for _, s := range stores {
		if !s.HasLocation() {
			continue
		}
		resp.Stores = append(resp.Stores, storeLocation(s))
	}
	c.JSON(http.StatusOK, resp)
}

// ListCategories returns price summaries for all categories
// @Summary List categories
// @Description Categories without any price are omitted
// @Tags catalog
// @Produce json
// @Success 200 {object} CategoriesResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/categories [get]
func ListCategories(c *gin.Context) {
	if !ready(c) {
		return
	}
	categories, err := catalogReader.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: summarize(categories)})
}

// SearchCategories returns price summaries for categories matching q
// @Summary Search categories
// @Description Matches the category name or its search terms, case-insensitively
// @Tags catalog
// @Produce json
// @Param q query string true "Search text" minlength(1)
// @Success 200 {object} CategoriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/categories/search [get]
func SearchCategories(c *gin.Context) {
	if !ready(c) {
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "q is required"})
		return
	}

	categories, err := catalogReader.SearchCategories(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: summarize(categories)})
}

// GetCategory returns every store's price for one category
// @Summary Get category
// @Description Prices are sorted by displayed price, which is the sale price when a deal is active
// @Tags catalog
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} CategoryDetail
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/categories/{id} [get]
func GetCategory(c *gin.Context) {
	if !ready(c) {
		return
	}
	ctx := c.Request.Context()

	category, err := catalogReader.Category(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	stores, err := catalogReader.Stores(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryDetail(category, stores))
}

// summarize builds list rows, skipping categories nobody prices.
func summarize(categories []*catalog.Category) []CategorySummary {
	out := make([]CategorySummary, 0, len(categories))
	for _, cat := range categories {
		cheapest, ok := cat.Prices.Cheapest()
		if !ok {
			continue
		}
		priciest, _ := cat.Prices.MostExpensive()

		out = append(out, CategorySummary{
			CategoryID:         cat.ID,
			Name:               cat.Name,
			Icon:               cat.Icon,
			Unit:               cat.Unit,
			ImageURL:           optionalString(cat.ImageURL),
			CheapestStore:      cheapest.StoreID,
			CheapestPrice:      cheapest.Price.Float(),
			MostExpensivePrice: priciest.Price.Float(),
			SavingsPercent:     optimizer.SavingsPercent(cheapest.Price, priciest.Price),
		})
	}
	return out
}

func categoryDetail(cat *catalog.Category, stores []catalog.Store) CategoryDetail {
	byID := make(map[string]catalog.Store, len(stores))
	for _, s := range stores {
		byID[s.ID] = s
	}

	entries := make([]PriceEntryResponse, 0, cat.Prices.Len())
	for _, p := range cat.Prices.Entries() {
		entry := PriceEntryResponse{
			StoreID:   p.StoreID,
			StoreName: p.StoreID,
			Price:     p.Price.Float(),
			Color:     defaultStoreColor,
		}
		if s, ok := byID[p.StoreID]; ok {
			entry.StoreName = s.Name
			entry.Color = s.Color
		}
		if d, ok := cat.Deal(p.StoreID); ok {
			entry.Price = d.SalePrice.Float()
			entry.Deal = &DealInfo{
				SalePrice:    d.SalePrice.Float(),
				RegularPrice: d.RegularPrice.Float(),
				Ends:         d.Ends,
			}
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Price < entries[j].Price
	})

	return CategoryDetail{
		CategoryID: cat.ID,
		Name:       cat.Name,
		Icon:       cat.Icon,
		Unit:       cat.Unit,
		ImageURL:   optionalString(cat.ImageURL),
		Prices:     entries,
	}
}

func storeLocation(s catalog.Store) StoreLocationResponse {
	out := StoreLocationResponse{StoreID: s.ID, Name: s.Name, Color: s.Color, Address: s.Address}
	if s.Location != nil {
		out.Lat = s.Location.Latitude
		out.Lng = s.Location.Longitude
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
