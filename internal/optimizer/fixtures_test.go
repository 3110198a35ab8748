package optimizer

import (
	"context"
	"sync"

	"github.com/inflationfighter/price-service/internal/catalog"
)

func locatedStore(id, name string, lat, lng float64) catalog.Store {
	return catalog.Store{
		ID:       id,
		Name:     name,
		Color:    "#" + id,
		Location: &catalog.Location{Latitude: lat, Longitude: lng},
	}
}

func unlocatedStore(id, name string) catalog.Store {
	return catalog.Store{ID: id, Name: name, Color: "#" + id}
}

func category(id string, prices ...catalog.PriceEntry) *catalog.Category {
	return &catalog.Category{
		ID:     id,
		Name:   id,
		Unit:   "each",
		Prices: catalog.NewPriceTable(prices...),
		Deals:  map[string]catalog.Deal{},
	}
}

func price(storeID string, cents int64) catalog.PriceEntry {
	return catalog.PriceEntry{StoreID: storeID, Price: catalog.Cents(cents)}
}

func snapshot(stores []catalog.Store, cats ...*catalog.Category) *catalog.Snapshot {
	m := make(map[string]*catalog.Category, len(cats))
	for _, c := range cats {
		m[c.ID] = c
	}
	return &catalog.Snapshot{Stores: stores, Categories: m}
}

// milkAndBread is the two-store example: A {5.49, 3.49}, B {4.97, 2.29}.
func milkAndBread() *catalog.Snapshot {
	return snapshot(
		[]catalog.Store{
			locatedStore("a", "Store A", 43.70, -79.40),
			locatedStore("b", "Store B", 43.71, -79.41),
		},
		category("milk", price("a", 549), price("b", 497)),
		category("bread", price("a", 349), price("b", 229)),
	)
}

func basket(ids ...string) []BasketItem {
	items := make([]BasketItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, BasketItem{CategoryID: id, Quantity: 1})
	}
	return items
}

// fakeProvider is a RouteProvider returning canned directions.
type fakeProvider struct {
	mu         sync.Mutex
	directions Directions
	err        error
	block      bool
	calls      int
	lastPoints []catalog.Location
}

func (f *fakeProvider) Directions(ctx context.Context, points []catalog.Location) (Directions, error) {
	f.mu.Lock()
	f.calls++
	f.lastPoints = append([]catalog.Location(nil), points...)
	block, d, err := f.block, f.directions, f.err
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return Directions{}, ctx.Err()
	}
	return d, err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeEstimator is a TravelCostEstimator returning a fixed cost.
type fakeEstimator struct {
	cost      TravelCost
	polyline  string
	calls     int
	lastStops []catalog.Location
}

func (f *fakeEstimator) Estimate(ctx context.Context, start catalog.Location, stops []catalog.Location, settings RouteSettings) (TravelCost, string) {
	f.calls++
	f.lastStops = stops
	return f.cost, f.polyline
}
