package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inflationfighter/price-service/internal/catalog"
)

func TestSingleStoreTotals(t *testing.T) {
	snap := milkAndBread()

	totals := SingleStoreTotals(snap.Stores, snap.Categories, basket("milk", "bread"))

	require.Len(t, totals, 2)
	assert.Equal(t, "a", totals[0].StoreID)
	assert.Equal(t, catalog.Cents(898), totals[0].Total)
	assert.Equal(t, 2, totals[0].ItemsPriced)
	assert.Equal(t, "b", totals[1].StoreID)
	assert.Equal(t, catalog.Cents(726), totals[1].Total)
}

func TestSingleStoreTotalsQuantity(t *testing.T) {
	snap := milkAndBread()

	totals := SingleStoreTotals(snap.Stores, snap.Categories, []BasketItem{{CategoryID: "milk", Quantity: 3}})

	assert.Equal(t, catalog.Cents(3*549), totals[0].Total)
	assert.Equal(t, catalog.Cents(3*497), totals[1].Total)
}

// TestSingleStoreTotalsPartialCoverage verifies that a missing price contributes zero.
func TestSingleStoreTotalsPartialCoverage(t *testing.T) {
	snap := snapshot(
		[]catalog.Store{locatedStore("a", "A", 0, 0), locatedStore("b", "B", 0, 1)},
		category("milk", price("a", 500), price("b", 450)),
		category("eggs", price("a", 300)),
	)

	totals := SingleStoreTotals(snap.Stores, snap.Categories, basket("milk", "eggs"))

	assert.Equal(t, catalog.Cents(800), totals[0].Total)
	assert.Equal(t, 2, totals[0].ItemsPriced)
	assert.Equal(t, catalog.Cents(450), totals[1].Total)
	assert.Equal(t, 1, totals[1].ItemsPriced)

	best, worst, err := RankSingleStores(totals)
	require.NoError(t, err)
	assert.Equal(t, "b", best.StoreID, "partially covered store is still a candidate")
	assert.Equal(t, "a", worst.StoreID)
}

func TestRankSingleStoresTieKeepsFirst(t *testing.T) {
	totals := []StoreTotal{
		{StoreID: "x", Total: 500, ItemsPriced: 1},
		{StoreID: "y", Total: 300, ItemsPriced: 1},
		{StoreID: "z", Total: 300, ItemsPriced: 1},
		{StoreID: "w", Total: 500, ItemsPriced: 1},
	}

	best, worst, err := RankSingleStores(totals)
	require.NoError(t, err)
	assert.Equal(t, "y", best.StoreID)
	assert.Equal(t, "x", worst.StoreID)
}

// TestRankSingleStoresSkipsEmptyStores verifies a store pricing nothing never wins with a 0 total.
func TestRankSingleStoresSkipsEmptyStores(t *testing.T) {
	totals := []StoreTotal{
		{StoreID: "empty", Total: 0, ItemsPriced: 0},
		{StoreID: "full", Total: 700, ItemsPriced: 2},
	}

	best, worst, err := RankSingleStores(totals)
	require.NoError(t, err)
	assert.Equal(t, "full", best.StoreID)
	assert.Equal(t, "full", worst.StoreID)
}

func TestRankSingleStoresNoPricedItems(t *testing.T) {
	_, _, err := RankSingleStores([]StoreTotal{{StoreID: "a"}, {StoreID: "b"}})
	assert.ErrorIs(t, err, ErrNoPricedItems)

	_, _, err = RankSingleStores(nil)
	assert.ErrorIs(t, err, ErrNoPricedItems)
}

func TestMultiStoreAllocationCheapestPerLine(t *testing.T) {
	snap := snapshot(
		[]catalog.Store{locatedStore("a", "A", 0, 0), locatedStore("b", "B", 0, 1)},
		category("milk", price("a", 400), price("b", 450)),
		category("bread", price("a", 300), price("b", 250)),
	)

	alloc := MultiStoreAllocation(snap.Categories, []BasketItem{
		{CategoryID: "milk", Quantity: 2},
		{CategoryID: "bread", Quantity: 1},
	}, snap.Stores)

	require.Len(t, alloc.Lines, 2)
	assert.Equal(t, "a", alloc.Lines[0].StoreID)
	assert.Equal(t, catalog.Cents(400), alloc.Lines[0].Price)
	assert.Equal(t, 2, alloc.Lines[0].Quantity)
	assert.Equal(t, "#a", alloc.Lines[0].Color)
	assert.Equal(t, "b", alloc.Lines[1].StoreID)
	assert.Equal(t, catalog.Cents(800+250), alloc.Total)
	assert.Equal(t, []string{"a", "b"}, alloc.RequiredStores())
}

func TestMultiStoreAllocationTieGoesToFirstEligible(t *testing.T) {
	snap := snapshot(
		[]catalog.Store{locatedStore("a", "A", 0, 0), locatedStore("b", "B", 0, 1)},
		// price table order differs from store order on purpose
		category("milk", price("b", 400), price("a", 400)),
	)

	alloc := MultiStoreAllocation(snap.Categories, basket("milk"), snap.Stores)

	require.Len(t, alloc.Lines, 1)
	assert.Equal(t, "a", alloc.Lines[0].StoreID)

	reversed := []catalog.Store{snap.Stores[1], snap.Stores[0]}
	alloc = MultiStoreAllocation(snap.Categories, basket("milk"), reversed)
	assert.Equal(t, "b", alloc.Lines[0].StoreID)
}

func TestMultiStoreAllocationDropsUnpricedLines(t *testing.T) {
	snap := snapshot(
		[]catalog.Store{locatedStore("a", "A", 0, 0), unlocatedStore("c", "C")},
		category("milk", price("a", 400)),
		category("caviar", price("c", 9900)),
	)

	eligible := snap.LocatedStores()
	alloc := MultiStoreAllocation(snap.Categories, basket("milk", "caviar", "unknown"), eligible)

	require.Len(t, alloc.Lines, 1)
	assert.Equal(t, "milk", alloc.Lines[0].CategoryID)
	assert.Equal(t, catalog.Cents(400), alloc.Total)
}

// TestMultiStoreAllocationIgnoresDeals verifies that sale prices never change the choice.
func TestMultiStoreAllocationIgnoresDeals(t *testing.T) {
	milk := category("milk", price("a", 400), price("b", 450))
	milk.Deals["b"] = catalog.Deal{SalePrice: 199, RegularPrice: 450, Ends: "2025-01-31"}
	milk.Deals["a"] = catalog.Deal{SalePrice: 350, RegularPrice: 400, Ends: "2025-02-01"}
	snap := snapshot([]catalog.Store{locatedStore("a", "A", 0, 0), locatedStore("b", "B", 0, 1)}, milk)

	alloc := MultiStoreAllocation(snap.Categories, basket("milk"), snap.Stores)

	require.Len(t, alloc.Lines, 1)
	line := alloc.Lines[0]
	assert.Equal(t, "a", line.StoreID)
	assert.Equal(t, catalog.Cents(400), line.Price)
	require.NotNil(t, line.Deal)
	assert.Equal(t, catalog.Cents(350), line.Deal.SalePrice)
	assert.Equal(t, catalog.Cents(400), alloc.Total)
}

// TestMultiStoreAllocationDuplicateLinesNotMerged pins the per-line behaviour
// for a basket that lists the same category twice.
func TestMultiStoreAllocationDuplicateLinesNotMerged(t *testing.T) {
	snap := milkAndBread()
	items := []BasketItem{
		{CategoryID: "milk", Quantity: 1},
		{CategoryID: "milk", Quantity: 2},
	}

	alloc := MultiStoreAllocation(snap.Categories, items, snap.Stores)

	require.Len(t, alloc.Lines, 2)
	assert.Equal(t, 1, alloc.Lines[0].Quantity)
	assert.Equal(t, 2, alloc.Lines[1].Quantity)
	assert.Equal(t, catalog.Cents(3*497), alloc.Total)
	assert.Equal(t, []string{"b"}, alloc.RequiredStores())

	totals := SingleStoreTotals(snap.Stores, snap.Categories, items)
	assert.Equal(t, 2, totals[1].ItemsPriced)
}

// TestMultiStoreNeverExceedsBestSingleStore checks the allocation bound on
// random fully-priced catalogs.
func TestMultiStoreNeverExceedsBestSingleStore(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		nStores := 1 + rng.Intn(6)
		nCats := 1 + rng.Intn(8)

		stores := make([]catalog.Store, nStores)
		for i := range stores {
			stores[i] = locatedStore(string(rune('a'+i)), "S", rng.Float64(), rng.Float64())
		}
		cats := make([]*catalog.Category, nCats)
		items := make([]BasketItem, nCats)
		for i := range cats {
			var prices []catalog.PriceEntry
			for _, s := range stores {
				prices = append(prices, price(s.ID, int64(50+rng.Intn(1000))))
			}
			cats[i] = category(string(rune('m'+i)), prices...)
			items[i] = BasketItem{CategoryID: cats[i].ID, Quantity: 1 + rng.Intn(3)}
		}
		snap := snapshot(stores, cats...)

		best, worst, err := RankSingleStores(SingleStoreTotals(snap.Stores, snap.Categories, items))
		require.NoError(t, err)
		alloc := MultiStoreAllocation(snap.Categories, items, snap.Stores)

		assert.LessOrEqual(t, alloc.Total, best.Total)
		assert.GreaterOrEqual(t, worst.Total-alloc.Total, catalog.Cents(0))
		pct := SavingsPercent(alloc.Total, worst.Total)
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
	}
}
