package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inflationfighter/price-service/internal/catalog"
)

func testRepository() *catalog.MemoryRepository {
	return catalog.NewMemoryRepository(nil, []*catalog.Category{
		{
			ID:     "milk",
			Name:   "Milk",
			Prices: catalog.NewPriceTable(catalog.PriceEntry{StoreID: "a", Price: 549}, catalog.PriceEntry{StoreID: "b", Price: 499}),
			Deals: map[string]catalog.Deal{
				"a": {SalePrice: 399, RegularPrice: 549, Ends: "2025-01-31"},
				"b": {SalePrice: 449, RegularPrice: 499, Ends: "2025-02-01"},
			},
		},
		{
			ID:     "bread",
			Name:   "Bread",
			Prices: catalog.NewPriceTable(catalog.PriceEntry{StoreID: "a", Price: 299}),
			Deals:  map[string]catalog.Deal{"a": {SalePrice: 249, RegularPrice: 299}},
		},
	})
}

func newTestManager(pruner catalog.DealPruner, cfg CleanupConfig) *CleanupManager {
	cm := NewCleanupManager(cfg, pruner, zerolog.New(io.Discard))
	cm.now = func() time.Time { return time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC) }
	return cm
}

func TestPruneDealsRemovesOnlyEndedDeals(t *testing.T) {
	repo := testRepository()
	cm := newTestManager(repo, DefaultCleanupConfig())

	assert.Equal(t, 1, cm.PruneDeals(context.Background()))

	milk, err := repo.Category(context.Background(), "milk")
	require.NoError(t, err)
	_, ok := milk.Deal("a")
	assert.False(t, ok, "ended yesterday")
	_, ok = milk.Deal("b")
	assert.True(t, ok, "ends today")

	bread, err := repo.Category(context.Background(), "bread")
	require.NoError(t, err)
	_, ok = bread.Deal("a")
	assert.True(t, ok, "no end date")

	assert.Equal(t, 0, cm.PruneDeals(context.Background()))
}

type failingPruner struct{}

func (failingPruner) PruneExpiredDeals(context.Context, string) (int, error) {
	return 0, errors.New("db down")
}

func TestPruneDealsSurvivesErrors(t *testing.T) {
	cm := newTestManager(failingPruner{}, DefaultCleanupConfig())
	assert.Equal(t, 0, cm.PruneDeals(context.Background()))
}

type countingPruner struct {
	calls chan string
}

func (p countingPruner) PruneExpiredDeals(_ context.Context, before string) (int, error) {
	p.calls <- before
	return 0, nil
}

func TestStartRunsImmediatelyAndStopsWithContext(t *testing.T) {
	pruner := countingPruner{calls: make(chan string, 10)}
	cm := newTestManager(pruner, CleanupConfig{Enabled: true, DealPruneInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cm.Start(ctx)

	select {
	case before := <-pruner.calls:
		assert.Equal(t, "2025-02-01", before)
	case <-time.After(time.Second):
		t.Fatal("prune did not run on start")
	}

	cancel()
	select {
	case <-cm.done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}

func TestStartDisabled(t *testing.T) {
	pruner := countingPruner{calls: make(chan string, 1)}
	cm := newTestManager(pruner, CleanupConfig{Enabled: false})

	cm.Start(context.Background())
	cm.Wait(time.Second)

	assert.Empty(t, pruner.calls)
}
