package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/optimizer"
)

// ============================================================================
// Route Optimization Endpoint
// ============================================================================

// LocationRequest represents a geographic location
type LocationRequest struct {
	Lat float64 `json:"lat" jsonschema:"required,minimum=-90,maximum=90"`
	Lng float64 `json:"lng" jsonschema:"required,minimum=-180,maximum=180"`
}

// RouteSettingsRequest holds the shopper's cost assumptions.
// Omitted fields take the configured defaults; supplied values must be positive.
type RouteSettingsRequest struct {
	GasPricePerLiter    *float64 `json:"gas_price_per_liter,omitempty" jsonschema:"exclusiveMinimum=0,default=1.5"`
	FuelEfficiency      *float64 `json:"fuel_efficiency_l_per_100km,omitempty" jsonschema:"exclusiveMinimum=0,default=10"`
	TimeValuePerHour    *float64 `json:"time_value_per_hour,omitempty" jsonschema:"exclusiveMinimum=0,default=15"`
	TimePerStoreMinutes *int     `json:"time_per_store_minutes,omitempty" jsonschema:"minimum=1,default=30"`
}

// RouteOptimizeRequest represents the route optimization request
type RouteOptimizeRequest struct {
	Items        []BasketItemRequest   `json:"items" jsonschema:"required,minItems=1,maxItems=100"`
	UserLocation *LocationRequest      `json:"user_location" binding:"required" jsonschema:"required"`
	Settings     *RouteSettingsRequest `json:"settings,omitempty"`
}

// TravelCostResponse breaks down the cost of the trip.
type TravelCostResponse struct {
	TotalDistanceKm       float64 `json:"total_distance_km" jsonschema:"required"`
	TotalDriveTimeMinutes float64 `json:"total_drive_time_minutes" jsonschema:"required"`
	TotalStoreTimeMinutes float64 `json:"total_store_time_minutes" jsonschema:"required"`
	TotalTripTimeMinutes  float64 `json:"total_trip_time_minutes" jsonschema:"required"`
	GasCost               float64 `json:"gas_cost" jsonschema:"required"`
	TimeCost              float64 `json:"time_cost" jsonschema:"required"`
	TotalTravelCost       float64 `json:"total_travel_cost" jsonschema:"required"`
	Source                string  `json:"source" jsonschema:"required,enum=none,enum=provider,enum=estimate"`
}

// StoreVisitResponse is one stop of the trip.
type StoreVisitResponse struct {
	Store                StoreLocationResponse `json:"store" jsonschema:"required"`
	ItemsToBuy           []MultiStoreItem      `json:"items_to_buy" jsonschema:"required"`
	StoreSubtotal        float64               `json:"store_subtotal" jsonschema:"required"`
	VisitDurationMinutes int                   `json:"visit_duration_minutes" jsonschema:"required"`
}

// RouteOptimizeResponse is the recommendation for a basket and a starting point
type RouteOptimizeResponse struct {
	StoresToVisit        []StoreVisitResponse `json:"stores_to_visit" jsonschema:"required"`
	RoutePolyline        *string              `json:"route_polyline"`
	TravelCost           TravelCostResponse   `json:"travel_cost" jsonschema:"required"`
	GroceryTotal         float64              `json:"grocery_total" jsonschema:"required"`
	SingleStoreBestTotal float64              `json:"single_store_best_total" jsonschema:"required"`
	SingleStoreBestName  string               `json:"single_store_best_name" jsonschema:"required"`
	MultiStoreTotal      float64              `json:"multi_store_total" jsonschema:"required"`
	GrocerySavings       float64              `json:"grocery_savings" jsonschema:"required"`
	NetSavings           float64              `json:"net_savings" jsonschema:"required"`
	IsWorthIt            bool                 `json:"is_worth_it" jsonschema:"required"`
	Recommendation       string               `json:"recommendation" jsonschema:"required"`
}

// OptimizeRoute decides whether splitting the basket across stores pays for the trip
// @Summary Optimize shopping route
// @Description Compares the cheapest single store with the cheapest per-item split, net of gas and time
// @Tags routes
// @Accept json
// @Produce json
// @Param request body RouteOptimizeRequest true "Basket, start location and cost settings"
// @Success 200 {object} RouteOptimizeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/routes/optimize [post]
func OptimizeRoute(c *gin.Context) {
	if !ready(c) || !plannerReady(c) {
		return
	}

	var req RouteOptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	resp, err := PlanRoute(c.Request.Context(), catalogReader, planner, routeDefaults, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PlanRoute resolves a route request against the catalog and decides whether
// the multi-store trip pays off. Settings missing from req take defaults.
func PlanRoute(ctx context.Context, reader catalog.Reader, p optimizer.Planner, defaults optimizer.RouteSettings, req RouteOptimizeRequest) (*RouteOptimizeResponse, error) {
	if len(req.Items) == 0 {
		return nil, optimizer.ErrEmptyBasket
	}
	if req.UserLocation == nil {
		return nil, optimizer.ErrInvalidRequest{Field: "user_location", Reason: "is required", Index: -1}
	}

	routeReq := &optimizer.RouteRequest{
		Basket: toBasket(req.Items),
		UserLocation: catalog.Location{
			Latitude:  req.UserLocation.Lat,
			Longitude: req.UserLocation.Lng,
		},
		Settings: mergeSettings(req.Settings, defaults),
	}

	snap, err := catalog.LoadSnapshot(ctx, reader, categoryIDs(routeReq.Basket))
	if err != nil {
		return nil, err
	}

	rec, err := p.Decide(ctx, snap, routeReq)
	if err != nil {
		return nil, err
	}

	resp := routeResponse(rec)
	return &resp, nil
}

// mergeSettings overlays the supplied settings on the defaults.
// Zero and negative values are kept so that validation rejects them.
func mergeSettings(in *RouteSettingsRequest, defaults optimizer.RouteSettings) optimizer.RouteSettings {
	out := defaults
	if in == nil {
		return out
	}
	if in.GasPricePerLiter != nil {
		out.GasPricePerLiter = *in.GasPricePerLiter
	}
	if in.FuelEfficiency != nil {
		out.FuelEfficiency = *in.FuelEfficiency
	}
	if in.TimeValuePerHour != nil {
		out.TimeValuePerHour = *in.TimeValuePerHour
	}
	if in.TimePerStoreMinutes != nil {
		out.TimePerStoreMinutes = *in.TimePerStoreMinutes
	}
	return out
}

func routeResponse(rec *optimizer.Recommendation) RouteOptimizeResponse {
	visits := make([]StoreVisitResponse, 0, len(rec.Visits))
	for _, v := range rec.Visits {
		visits = append(visits, StoreVisitResponse{
			Store:                storeLocation(v.Store),
			ItemsToBuy:           multiStoreItems(v.Items),
			StoreSubtotal:        v.Subtotal.Float(),
			VisitDurationMinutes: v.VisitMinutes,
		})
	}

	t := rec.Travel
	return RouteOptimizeResponse{
		StoresToVisit: visits,
		RoutePolyline: optionalString(rec.Polyline),
		TravelCost: TravelCostResponse{
			TotalDistanceKm:       t.DistanceKm,
			TotalDriveTimeMinutes: t.DriveMinutes,
			TotalStoreTimeMinutes: t.StoreMinutes,
			TotalTripTimeMinutes:  t.TripMinutes,
			GasCost:               t.GasCost.Float(),
			TimeCost:              t.TimeCost.Float(),
			TotalTravelCost:       t.Total.Float(),
			Source:                string(t.Source),
		},
		GroceryTotal:         rec.MultiStoreTotal.Float(),
		SingleStoreBestTotal: rec.SingleStoreBest.Total.Float(),
		SingleStoreBestName:  rec.SingleStoreBest.StoreName,
		MultiStoreTotal:      rec.MultiStoreTotal.Float(),
		GrocerySavings:       rec.GrocerySavings.Float(),
		NetSavings:           rec.NetSavings.Float(),
		IsWorthIt:            rec.IsWorthIt,
		Recommendation:       rec.Text,
	}
}
