package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository reads and writes the catalog tables created by database.Migrate.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository on top of a connection pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Stores implements Reader.
func (r *PostgresRepository) Stores(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT store_id, name, color, latitude, longitude, address
		FROM stores
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		var (
			s        Store
			lat, lng *float64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &lat, &lng, &s.Address); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		if lat != nil && lng != nil {
			s.Location = &Location{Latitude: *lat, Longitude: *lng}
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}
	return stores, nil
}

// Categories implements Reader.
func (r *PostgresRepository) Categories(ctx context.Context) ([]*Category, error) {
	return r.queryCategories(ctx, `TRUE`)
}

// CategoriesByID implements Reader.
func (r *PostgresRepository) CategoriesByID(ctx context.Context, ids []string) (map[string]*Category, error) {
	if len(ids) == 0 {
		return map[string]*Category{}, nil
	}
	cats, err := r.queryCategories(ctx, `c.category_id = ANY($1::text[])`, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Category, len(cats))
	for _, c := range cats {
		out[c.ID] = c
	}
	return out, nil
}

// Category implements Reader.
func (r *PostgresRepository) Category(ctx context.Context, id string) (*Category, error) {
	cats, err := r.queryCategories(ctx, `c.category_id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, ErrCategoryNotFound
	}
	return cats[0], nil
}

// SearchCategories implements Reader with a case-insensitive substring match
// on the name and the search terms.
func (r *PostgresRepository) SearchCategories(ctx context.Context, q string) ([]*Category, error) {
	return r.queryCategories(ctx, `
		c.name ILIKE '%' || $1 || '%'
		OR EXISTS (SELECT 1 FROM unnest(c.search_terms) AS t WHERE t ILIKE '%' || $1 || '%')
	`, q)
}

// queryCategories loads categories matching the where clause together with
// their prices and deals. Prices are ordered by store position.
func (r *PostgresRepository) queryCategories(ctx context.Context, where string, args ...any) ([]*Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.category_id, c.name, c.icon, c.unit, c.image_url, c.search_terms
		FROM categories c
		WHERE `+where+`
		ORDER BY c.position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var (
		cats []*Category
		ids  []string
		byID = make(map[string]*Category)
	)
	for rows.Next() {
		c := &Category{Deals: make(map[string]Deal)}
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Unit, &c.ImageURL, &c.SearchTerms); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	if len(cats) == 0 {
		return cats, nil
	}

	if err := r.attachPrices(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := r.attachDeals(ctx, ids, byID); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *PostgresRepository) attachPrices(ctx context.Context, ids []string, byID map[string]*Category) error {
	rows, err := r.pool.Query(ctx, `
		SELECT p.category_id, p.store_id, p.price_cents
		FROM category_prices p
		LEFT JOIN stores s ON s.store_id = p.store_id
		WHERE p.category_id = ANY($1::text[])
		ORDER BY p.category_id, s.position NULLS LAST, p.store_id
	`, ids)
	if err != nil {
		return fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			categoryID, storeID string
			price               int64
		)
		if err := rows.Scan(&categoryID, &storeID, &price); err != nil {
			return fmt.Errorf("scan price: %w", err)
		}
		if c, ok := byID[categoryID]; ok {
			c.Prices.Set(storeID, Cents(price))
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate prices: %w", err)
	}
	return nil
}

func (r *PostgresRepository) attachDeals(ctx context.Context, ids []string, byID map[string]*Category) error {
	rows, err := r.pool.Query(ctx, `
		SELECT category_id, store_id, sale_price_cents, regular_price_cents, ends
		FROM category_deals
		WHERE category_id = ANY($1::text[])
	`, ids)
	if err != nil {
		return fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			categoryID, storeID string
			sale, regular       int64
			ends                string
		)
		if err := rows.Scan(&categoryID, &storeID, &sale, &regular, &ends); err != nil {
			return fmt.Errorf("scan deal: %w", err)
		}
		if c, ok := byID[categoryID]; ok {
			c.Deals[storeID] = Deal{SalePrice: Cents(sale), RegularPrice: Cents(regular), Ends: ends}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate deals: %w", err)
	}
	return nil
}

// UpsertStores implements Writer.
func (r *PostgresRepository) UpsertStores(ctx context.Context, stores []Store) error {
	batch := &pgx.Batch{}
	for _, s := range stores {
		var lat, lng *float64
		if s.Location != nil {
			lat, lng = &s.Location.Latitude, &s.Location.Longitude
		}
		batch.Queue(`
			INSERT INTO stores (store_id, name, color, latitude, longitude, address)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (store_id) DO UPDATE
			SET name = EXCLUDED.name,
			    color = EXCLUDED.color,
			    latitude = EXCLUDED.latitude,
			    longitude = EXCLUDED.longitude,
			    address = EXCLUDED.address
		`, s.ID, s.Name, s.Color, lat, lng, s.Address)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := range stores {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert store %s: %w", stores[i].ID, err)
		}
	}
	return nil
}

// UpsertCategories implements Writer. Prices and deals of each category are
// replaced as a whole inside one transaction.
func (r *PostgresRepository) UpsertCategories(ctx context.Context, categories []*Category) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	for _, c := range categories {
		terms := c.SearchTerms
		if terms == nil {
			terms = []string{}
		}
		if _, err = tx.Exec(ctx, `
			INSERT INTO categories (category_id, name, icon, unit, image_url, search_terms)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (category_id) DO UPDATE
			SET name = EXCLUDED.name,
			    icon = EXCLUDED.icon,
			    unit = EXCLUDED.unit,
			    image_url = EXCLUDED.image_url,
			    search_terms = EXCLUDED.search_terms
		`, c.ID, c.Name, c.Icon, c.Unit, c.ImageURL, terms); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}

		if _, err = tx.Exec(ctx, `DELETE FROM category_prices WHERE category_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear prices for %s: %w", c.ID, err)
		}
		for _, p := range c.Prices.Entries() {
			if _, err = tx.Exec(ctx, `
				INSERT INTO category_prices (category_id, store_id, price_cents)
				VALUES ($1, $2, $3)
			`, c.ID, p.StoreID, int64(p.Price)); err != nil {
				return fmt.Errorf("insert price %s/%s: %w", c.ID, p.StoreID, err)
			}
		}

		if _, err = tx.Exec(ctx, `DELETE FROM category_deals WHERE category_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear deals for %s: %w", c.ID, err)
		}
		for storeID, d := range c.Deals {
			if _, err = tx.Exec(ctx, `
				INSERT INTO category_deals (category_id, store_id, sale_price_cents, regular_price_cents, ends)
				VALUES ($1, $2, $3, $4, $5)
			`, c.ID, storeID, int64(d.SalePrice), int64(d.RegularPrice), d.Ends); err != nil {
				return fmt.Errorf("insert deal %s/%s: %w", c.ID, storeID, err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// PruneExpiredDeals implements DealPruner. End dates are stored as
// YYYY-MM-DD text, so they compare lexically.
func (r *PostgresRepository) PruneExpiredDeals(ctx context.Context, before string) (int, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM category_deals
		WHERE ends <> '' AND ends < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune expired deals: %w", err)
	}
	return int(result.RowsAffected()), nil
}
