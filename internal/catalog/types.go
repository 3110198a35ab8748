package catalog

import (
	"math"
	"strings"
)

// Cents is a money amount in minor currency units.
// All prices in the catalog and the optimizer are carried as Cents so that
// sums and differences stay exact.
type Cents int64

// CentsFromFloat converts a major-unit amount (e.g. 5.49) to Cents, rounding half away from zero.
func CentsFromFloat(v float64) Cents {
	return Cents(math.Round(v * 100))
}

// Float returns the amount in major units.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// Location represents geographic coordinates in decimal degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the coordinates are within latitude/longitude bounds.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Store is a retailer the shopper can visit.
type Store struct {
	ID       string
	Name     string
	Color    string
	Location *Location // nil when the store has no known coordinates
	Address  string
}

// HasLocation reports whether the store can be part of a route.
func (s Store) HasLocation() bool {
	return s.Location != nil
}

// Deal is an active promotion for a category at one store.
// Deals are informational; the optimizer always ranks on the regular price.
type Deal struct {
	SalePrice    Cents
	RegularPrice Cents
	Ends         string // date string, e.g. "2025-01-31"
}

// PriceEntry is one store's price inside a PriceTable.
type PriceEntry struct {
	StoreID string
	Price   Cents
}

// PriceTable maps store IDs to prices and remembers insertion order.
// Iteration order is stable so tie-breaking is reproducible.
type PriceTable struct {
	entries []PriceEntry
	index   map[string]int
}

// NewPriceTable builds a table from entries in the given order.
// A repeated store ID overwrites the earlier price but keeps its position.
func NewPriceTable(entries ...PriceEntry) PriceTable {
	var t PriceTable
	for _, e := range entries {
		t.Set(e.StoreID, e.Price)
	}
	return t
}

// Set stores a price for a store.
func (t *PriceTable) Set(storeID string, price Cents) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[storeID]; ok {
		t.entries[i].Price = price
		return
	}
	t.index[storeID] = len(t.entries)
	t.entries = append(t.entries, PriceEntry{StoreID: storeID, Price: price})
}

// Get returns the price at a store.
func (t PriceTable) Get(storeID string) (Cents, bool) {
	i, ok := t.index[storeID]
	if !ok {
		return 0, false
	}
	return t.entries[i].Price, true
}

// Len returns the number of stores carrying a price.
func (t PriceTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in insertion order.
func (t PriceTable) Entries() []PriceEntry {
	out := make([]PriceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Cheapest returns the lowest-priced entry. The first entry wins ties.
func (t PriceTable) Cheapest() (PriceEntry, bool) {
	if len(t.entries) == 0 {
		return PriceEntry{}, false
	}
	best := t.entries[0]
	for _, e := range t.entries[1:] {
		if e.Price < best.Price {
			best = e
		}
	}
	return best, true
}

// MostExpensive returns the highest-priced entry. The first entry wins ties.
func (t PriceTable) MostExpensive() (PriceEntry, bool) {
	if len(t.entries) == 0 {
		return PriceEntry{}, false
	}
	worst := t.entries[0]
	for _, e := range t.entries[1:] {
		if e.Price > worst.Price {
			worst = e
		}
	}
	return worst, true
}

// Category is a grocery item type priced across stores.
type Category struct {
	ID          string
	Name        string
	Icon        string
	Unit        string
	ImageURL    string
	SearchTerms []string
	Prices      PriceTable
	Deals       map[string]Deal // store ID -> active deal
}

// Deal returns the active deal at a store, if any.
func (c *Category) Deal(storeID string) (Deal, bool) {
	d, ok := c.Deals[storeID]
	return d, ok
}

// Matches reports whether the category name or one of its search terms
// contains q, ignoring case and accents.
func (c *Category) Matches(q string) bool {
	q = Fold(q)
	if q == "" {
		return false
	}
	if strings.Contains(Fold(c.Name), q) {
		return true
	}
	for _, term := range c.SearchTerms {
		if strings.Contains(Fold(term), q) {
			return true
		}
	}
	return false
}

// Snapshot is the read-only view of stores and categories used by one request.
// Nothing in the optimizer mutates a Snapshot.
type Snapshot struct {
	Stores     []Store
	Categories map[string]*Category
}

// Store returns the store with the given ID.
func (s *Snapshot) Store(id string) (Store, bool) {
	for _, st := range s.Stores {
		if st.ID == id {
			return st, true
		}
	}
	return Store{}, false
}

// LocatedStores returns the stores that carry a location, in snapshot order.
func (s *Snapshot) LocatedStores() []Store {
	out := make([]Store, 0, len(s.Stores))
	for _, st := range s.Stores {
		if st.HasLocation() {
			out = append(out, st)
		}
	}
	return out
}
