package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/database"
)

func setupTestDatabase(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(60*time.Second),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return connStr
}

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	connStr := setupTestDatabase(ctx, t)

	version, err := database.CheckConnection(ctx, connStr)
	require.NoError(t, err)
	assert.Contains(t, version, "PostgreSQL")

	pool, err := database.Open(ctx, database.PoolConfig{URL: connStr, MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, database.Migrate(ctx, pool))
	require.NoError(t, database.Migrate(ctx, pool), "migrations are idempotent")

	repo := catalog.NewPostgresRepository(pool)

	stores := []catalog.Store{
		{ID: "metro", Name: "Metro", Color: "#e31837", Location: &catalog.Location{Latitude: 43.65, Longitude: -79.38}, Address: "444 Yonge St"},
		{ID: "online", Name: "Online", Color: "#000000"},
		{ID: "nofrills", Name: "No Frills", Color: "#ffd200", Location: &catalog.Location{Latitude: 43.66, Longitude: -79.39}},
	}
	require.NoError(t, repo.UpsertStores(ctx, stores))

	milk := &catalog.Category{
		ID: "milk", Name: "Milk 2% 4L", Icon: "🥛", Unit: "4L",
		SearchTerms: []string{"dairy", "lait"},
		Prices:      catalog.NewPriceTable(catalog.PriceEntry{StoreID: "nofrills", Price: 497}, catalog.PriceEntry{StoreID: "metro", Price: 549}),
		Deals:       map[string]catalog.Deal{"metro": {SalePrice: 449, RegularPrice: 549, Ends: "2025-02-01"}},
	}
	bread := &catalog.Category{
		ID: "bread", Name: "White Bread", Unit: "675g",
		Prices: catalog.NewPriceTable(catalog.PriceEntry{StoreID: "metro", Price: 349}),
	}
	require.NoError(t, repo.UpsertCategories(ctx, []*catalog.Category{milk, bread}))

	t.Run("Stores", func(t *testing.T) {
		got, err := repo.Stores(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "metro", got[0].ID)
		assert.Equal(t, "444 Yonge St", got[0].Address)
		require.NotNil(t, got[0].Location)
		assert.InDelta(t, 43.65, got[0].Location.Latitude, 1e-9)
		assert.Nil(t, got[1].Location)
	})

	t.Run("CategoryWithPricesInStoreOrder", func(t *testing.T) {
		got, err := repo.Category(ctx, "milk")
		require.NoError(t, err)
		assert.Equal(t, "Milk 2% 4L", got.Name)
		assert.Equal(t, []string{"dairy", "lait"}, got.SearchTerms)

		entries := got.Prices.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "metro", entries[0].StoreID, "prices follow store position")
		assert.Equal(t, catalog.Cents(549), entries[0].Price)

		deal, ok := got.Deal("metro")
		require.True(t, ok)
		assert.Equal(t, catalog.Cents(449), deal.SalePrice)
	})

	t.Run("CategoryNotFound", func(t *testing.T) {
		_, err := repo.Category(ctx, "caviar")
		assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	})

	t.Run("Search", func(t *testing.T) {
		got, err := repo.SearchCategories(ctx, "DAIRY")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "milk", got[0].ID)

		got, err = repo.SearchCategories(ctx, "bread")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("PruneExpiredDeals", func(t *testing.T) {
		deleted, err := repo.PruneExpiredDeals(ctx, "2025-02-01")
		require.NoError(t, err)
		assert.Equal(t, 0, deleted, "deal ending today is kept")

		deleted, err = repo.PruneExpiredDeals(ctx, "2025-02-02")
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		got, err := repo.Category(ctx, "milk")
		require.NoError(t, err)
		assert.Empty(t, got.Deals)
	})

	t.Run("UpsertReplacesPrices", func(t *testing.T) {
		milk.Prices = catalog.NewPriceTable(catalog.PriceEntry{StoreID: "online", Price: 399})
		milk.Deals = nil
		require.NoError(t, repo.UpsertCategories(ctx, []*catalog.Category{milk}))

		got, err := repo.Category(ctx, "milk")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Prices.Len())
		assert.Empty(t, got.Deals)
	})

	t.Run("LoadSnapshot", func(t *testing.T) {
		snap, err := catalog.LoadSnapshot(ctx, repo, []string{"milk", "bread", "milk"})
		require.NoError(t, err)
		assert.Len(t, snap.Stores, 3)
		assert.Len(t, snap.Categories, 2)
		assert.Len(t, snap.LocatedStores(), 2)

		_, err = catalog.LoadSnapshot(ctx, repo, []string{"milk", "unicorn"})
		var unknown *catalog.UnknownCategoriesError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, []string{"unicorn"}, unknown.IDs)
	})
}
