// Package catalog holds the store and price data the optimizer reads.
//
// The catalog is an external collaborator of the optimizer: handlers fetch a
// fresh Snapshot per request and pass it down by value. Implementations
// exist for Postgres, Elasticsearch-backed text search and an in-memory
// repository used by tests and the offline CLI.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ErrCategoryNotFound is returned when a category ID does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// Reader is the read side of the catalog.
type Reader interface {
	// Stores returns every store in a stable order.
	Stores(ctx context.Context) ([]Store, error)

	// Categories returns every category in a stable order.
	Categories(ctx context.Context) ([]*Category, error)

	// CategoriesByID returns the categories whose IDs are in ids.
	// Unknown IDs are simply absent from the result.
	CategoriesByID(ctx context.Context, ids []string) (map[string]*Category, error)

	// Category returns a single category or ErrCategoryNotFound.
	Category(ctx context.Context, id string) (*Category, error)

	// SearchCategories returns categories whose name or search terms match q.
	SearchCategories(ctx context.Context, q string) ([]*Category, error)
}

// Writer is the write side used by the importer.
type Writer interface {
	UpsertStores(ctx context.Context, stores []Store) error
	UpsertCategories(ctx context.Context, categories []*Category) error
}

// DealPruner removes deals whose end date has passed.
type DealPruner interface {
	// PruneExpiredDeals deletes deals ending strictly before the given
	// YYYY-MM-DD date. Deals without an end date are kept.
	PruneExpiredDeals(ctx context.Context, before string) (int, error)
}

// UnknownCategoriesError lists basket category IDs that do not resolve.
type UnknownCategoriesError struct {
	IDs []string
}

func (e *UnknownCategoriesError) Error() string {
	return fmt.Sprintf("unknown categories: %v", e.IDs)
}

// LoadSnapshot reads all stores and the categories named by categoryIDs
// concurrently. If any ID does not resolve an *UnknownCategoriesError is returned.
func LoadSnapshot(ctx context.Context, r Reader, categoryIDs []string) (*Snapshot, error) {
	var (
		stores     []Store
		categories map[string]*Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stores, err = r.Stores(gctx)
		if err != nil {
			return fmt.Errorf("load stores: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = r.CategoriesByID(gctx, uniqueIDs(categoryIDs))
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range uniqueIDs(categoryIDs) {
		if _, ok := categories[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &UnknownCategoriesError{IDs: missing}
	}

	return &Snapshot{Stores: stores, Categories: categories}, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
