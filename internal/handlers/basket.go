package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/optimizer"
)

// ============================================================================
// Basket Analysis Endpoint
// ============================================================================

// BasketItemRequest is one basket line.
type BasketItemRequest struct {
	CategoryID string `json:"category_id" jsonschema:"required"`
	Quantity   int    `json:"quantity" jsonschema:"required,minimum=1"`
}

// BasketRequest represents the basket analysis request
type BasketRequest struct {
	Items []BasketItemRequest `json:"items" jsonschema:"required,minItems=1,maxItems=100"`
}

// StoreTotalResponse is the cost of the whole basket at one store.
type StoreTotalResponse struct {
	StoreID   string  `json:"store_id" jsonschema:"required"`
	StoreName string  `json:"store_name" jsonschema:"required"`
	Total     float64 `json:"total" jsonschema:"required"`
	Color     string  `json:"color" jsonschema:"required"`
}

// MultiStoreItem is one basket line assigned to its cheapest store.
type MultiStoreItem struct {
	CategoryID string  `json:"category_id" jsonschema:"required"`
	Name       string  `json:"name" jsonschema:"required"`
	StoreID    string  `json:"store_id" jsonschema:"required"`
	StoreName  string  `json:"store_name" jsonschema:"required"`
	Price      float64 `json:"price" jsonschema:"required"`
	Quantity   int     `json:"quantity" jsonschema:"required,minimum=1"`
	Color      string  `json:"color" jsonschema:"required"`
}

// BasketAnalysisResponse compares single-store and split shopping
type BasketAnalysisResponse struct {
	SingleStoreBest   StoreTotalResponse `json:"single_store_best" jsonschema:"required"`
	SingleStoreWorst  StoreTotalResponse `json:"single_store_worst" jsonschema:"required"`
	MultiStoreOptimal []MultiStoreItem   `json:"multi_store_optimal" jsonschema:"required"`
	MultiStoreTotal   float64            `json:"multi_store_total" jsonschema:"required"`
	SavingsVsWorst    float64            `json:"savings_vs_worst" jsonschema:"required"`
	SavingsPercent    int                `json:"savings_percent" jsonschema:"required"`
	AnnualProjection  float64            `json:"annual_projection" jsonschema:"required"`
}

// AnalyzeBasket compares the cheapest and most expensive single store with
// buying every line at its cheapest store.
// @Summary Analyze basket
// @Description Travel is not considered. Savings are measured against the most expensive single store
// @Tags basket
// @Accept json
// @Produce json
// @Param request body BasketRequest true "Basket"
// @Success 200 {object} BasketAnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/basket/analyze [post]
func AnalyzeBasket(c *gin.Context) {
	if !ready(c) || !plannerReady(c) {
		return
	}

	var req BasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	resp, err := PlanBasket(c.Request.Context(), catalogReader, planner, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PlanBasket loads the catalog slice a basket needs and analyzes it.
// It backs both the HTTP handler and the CLI.
func PlanBasket(ctx context.Context, reader catalog.Reader, p optimizer.Planner, req BasketRequest) (*BasketAnalysisResponse, error) {
	if len(req.Items) == 0 {
		return nil, optimizer.ErrEmptyBasket
	}
	basket := toBasket(req.Items)

	snap, err := catalog.LoadSnapshot(ctx, reader, categoryIDs(basket))
	if err != nil {
		return nil, err
	}

	analysis, err := p.Analyze(ctx, snap, basket)
	if err != nil {
		return nil, err
	}

	return &BasketAnalysisResponse{
		SingleStoreBest:   storeTotal(analysis.Best),
		SingleStoreWorst:  storeTotal(analysis.Worst),
		MultiStoreOptimal: multiStoreItems(analysis.Allocation.Lines),
		MultiStoreTotal:   analysis.Allocation.Total.Float(),
		SavingsVsWorst:    analysis.SavingsVsWorst.Float(),
		SavingsPercent:    analysis.SavingsPercent,
		AnnualProjection:  analysis.AnnualProjection.Float(),
	}, nil
}

func plannerReady(c *gin.Context) bool {
	if planner == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "optimizer not initialized"})
		return false
	}
	return true
}

func toBasket(items []BasketItemRequest) []optimizer.BasketItem {
	out := make([]optimizer.BasketItem, len(items))
	for i, item := range items {
		out[i] = optimizer.BasketItem{CategoryID: item.CategoryID, Quantity: item.Quantity}
	}
	return out
}

// categoryIDs skips empty IDs so that validation reports them, not the catalog lookup.
func categoryIDs(basket []optimizer.BasketItem) []string {
	ids := make([]string, 0, len(basket))
	for _, item := range basket {
		if item.CategoryID != "" {
			ids = append(ids, item.CategoryID)
		}
	}
	return ids
}

func storeTotal(t optimizer.StoreTotal) StoreTotalResponse {
	return StoreTotalResponse{StoreID: t.StoreID, StoreName: t.StoreName, Total: t.Total.Float(), Color: t.Color}
}

func multiStoreItems(lines []optimizer.AllocationLine) []MultiStoreItem {
	out := make([]MultiStoreItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, MultiStoreItem{
			CategoryID: l.CategoryID,
			Name:       l.Name,
			StoreID:    l.StoreID,
			StoreName:  l.StoreName,
			Price:      l.Price.Float(),
			Quantity:   l.Quantity,
			Color:      l.Color,
		})
	}
	return out
}
