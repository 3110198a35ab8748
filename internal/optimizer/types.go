package optimizer

import (
	"errors"
	"fmt"

	"github.com/inflationfighter/price-service/internal/catalog"
)

var (
	// ErrEmptyBasket is returned when a request carries no basket lines.
	ErrEmptyBasket = errors.New("basket is empty")

	// ErrNoPricedItems is returned when no store can price any basket line.
	ErrNoPricedItems = errors.New("no store carries a price for any item in the basket")

	// ErrNoStoreLocations is returned when no store has location data.
	ErrNoStoreLocations = errors.New("no store has location data")

	// ErrNoRoutableItems is returned when stores with a location cannot price any basket line.
	ErrNoRoutableItems = errors.New("no store with a known location carries any item in the basket")

	// ErrProviderBusy is returned by route providers that refuse a call locally
	// (e.g. an exhausted request budget). It never trips the circuit breaker.
	ErrProviderBusy = errors.New("route provider busy")
)

// BasketItem is one line of the shopper's basket.
// Lines are evaluated independently, repeated category IDs are not merged.
type BasketItem struct {
	CategoryID string
	Quantity   int
}

// RouteSettings are the caller's cost assumptions for a trip.
type RouteSettings struct {
	GasPricePerLiter    float64 // currency per litre
	FuelEfficiency      float64 // litres per 100 km
	TimeValuePerHour    float64 // currency per hour
	TimePerStoreMinutes int     // minutes spent inside each store
}

// Validate rejects zero and negative settings.
func (s RouteSettings) Validate() error {
	if s.GasPricePerLiter <= 0 {
		return ErrInvalidRequest{Field: "settings.gas_price_per_liter", Reason: "must be positive", Index: -1}
	}
	if s.FuelEfficiency <= 0 {
		return ErrInvalidRequest{Field: "settings.fuel_efficiency_l_per_100km", Reason: "must be positive", Index: -1}
	}
	if s.TimeValuePerHour <= 0 {
		return ErrInvalidRequest{Field: "settings.time_value_per_hour", Reason: "must be positive", Index: -1}
	}
	if s.TimePerStoreMinutes <= 0 {
		return ErrInvalidRequest{Field: "settings.time_per_store_minutes", Reason: "must be positive", Index: -1}
	}
	return nil
}

// StoreTotal is the cost of buying the whole basket at one store.
type StoreTotal struct {
	StoreID     string
	StoreName   string
	Color       string
	Total       catalog.Cents
	ItemsPriced int // basket lines the store carries a price for
}

// AllocationLine is one basket line assigned to its cheapest store.
type AllocationLine struct {
	CategoryID string
	Name       string
	StoreID    string
	StoreName  string
	Color      string
	Price      catalog.Cents // regular (non-deal) unit price
	Quantity   int
	Deal       *catalog.Deal // informational only
}

// LineTotal returns Price * Quantity.
func (l AllocationLine) LineTotal() catalog.Cents {
	return l.Price * catalog.Cents(l.Quantity)
}

// Allocation is the cheapest independent per-line assignment across stores.
type Allocation struct {
	Lines []AllocationLine
	Total catalog.Cents
}

// RequiredStores returns the distinct winning store IDs in order of first appearance.
func (a Allocation) RequiredStores() []string {
	seen := make(map[string]struct{}, len(a.Lines))
	var out []string
	for _, l := range a.Lines {
		if _, ok := seen[l.StoreID]; ok {
			continue
		}
		seen[l.StoreID] = struct{}{}
		out = append(out, l.StoreID)
	}
	return out
}

// LinesAt returns the lines assigned to a store and their subtotal.
func (a Allocation) LinesAt(storeID string) ([]AllocationLine, catalog.Cents) {
	var (
		lines    []AllocationLine
		subtotal catalog.Cents
	)
	for _, l := range a.Lines {
		if l.StoreID == storeID {
			lines = append(lines, l)
			subtotal += l.LineTotal()
		}
	}
	return lines, subtotal
}

// TravelSource tells where the distance and duration figures came from.
type TravelSource string

const (
	TravelSourceNone     TravelSource = "none"     // single store, no trip costed
	TravelSourceProvider TravelSource = "provider" // external routing provider
	TravelSourceEstimate TravelSource = "estimate" // local straight-line estimate
)

// TravelCost is the cost breakdown of a closed trip start -> stores -> start.
type TravelCost struct {
	DistanceKm   float64
	DriveMinutes float64
	StoreMinutes float64
	TripMinutes  float64
	GasCost      catalog.Cents
	TimeCost     catalog.Cents
	Total        catalog.Cents
	Source       TravelSource
}

// Directions is what a route provider (or the fallback) reports for a coordinate sequence.
type Directions struct {
	DistanceKm      float64
	DurationMinutes float64
	Polyline        string // encoded route geometry, empty for estimates
}

// StoreVisit is one stop of the recommended trip.
type StoreVisit struct {
	Store        catalog.Store
	Items        []AllocationLine
	Subtotal     catalog.Cents
	VisitMinutes int
}

// RouteRequest is the input of Engine.Decide.
type RouteRequest struct {
	Basket       []BasketItem
	UserLocation catalog.Location
	Settings     RouteSettings
}

// Recommendation is the outcome of Engine.Decide.
type Recommendation struct {
	Visits          []StoreVisit
	Polyline        string
	Travel          TravelCost
	SingleStoreBest StoreTotal
	MultiStoreTotal catalog.Cents
	GrocerySavings  catalog.Cents
	NetSavings      catalog.Cents
	IsWorthIt       bool
	Text            string
}

// BasketAnalysis is the outcome of Engine.Analyze.
type BasketAnalysis struct {
	Best             StoreTotal
	Worst            StoreTotal
	Allocation       Allocation
	SavingsVsWorst   catalog.Cents
	SavingsPercent   int
	AnnualProjection catalog.Cents
}

// validateBasket checks the basket lines of a request.
func validateBasket(basket []BasketItem, maxItems int) error {
	if len(basket) == 0 {
		return ErrEmptyBasket
	}
	if len(basket) > maxItems {
		return ErrInvalidRequest{Field: "items", Reason: fmt.Sprintf("exceeds maximum of %d lines", maxItems), Index: -1}
	}
	for i, item := range basket {
		if item.CategoryID == "" {
			return ErrInvalidRequest{Field: "items", Reason: fmt.Sprintf("item at index %d has empty category_id", i), Index: i}
		}
		if item.Quantity <= 0 {
			return ErrInvalidRequest{Field: "items", Reason: fmt.Sprintf("item at index %d has invalid quantity", i), Index: i}
		}
	}
	return nil
}

// Validate validates a route request.
func (r *RouteRequest) Validate(maxItems int) error {
	if err := validateBasket(r.Basket, maxItems); err != nil {
		return err
	}
	if r.UserLocation.Latitude < -90 || r.UserLocation.Latitude > 90 {
		return ErrInvalidRequest{Field: "user_location.lat", Reason: "must be between -90 and 90", Index: -1}
	}
	if r.UserLocation.Longitude < -180 || r.UserLocation.Longitude > 180 {
		return ErrInvalidRequest{Field: "user_location.lng", Reason: "must be between -180 and 180", Index: -1}
	}
	return r.Settings.Validate()
}

// ErrInvalidRequest is returned when an optimization request is invalid.
// Index is the offending basket line, or -1 when the error is not about a line.
type ErrInvalidRequest struct {
	Field  string
	Reason string
	Index  int
}

func (e ErrInvalidRequest) Error() string {
	return e.Field + ": " + e.Reason
}
