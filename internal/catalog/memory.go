package catalog

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Reader and Writer.
// Stores and categories keep the order in which they were first upserted.
type MemoryRepository struct {
	mu         sync.RWMutex
	stores     []Store
	categories []*Category
}

// NewMemoryRepository creates a repository pre-filled with the given data.
func NewMemoryRepository(stores []Store, categories []*Category) *MemoryRepository {
	m := &MemoryRepository{}
	_ = m.UpsertStores(context.Background(), stores)
	_ = m.UpsertCategories(context.Background(), categories)
	return m
}

// Stores implements Reader.
func (m *MemoryRepository) Stores(ctx context.Context) ([]Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Store, len(m.stores))
	copy(out, m.stores)
	return out, nil
}

// Categories implements Reader.
func (m *MemoryRepository) Categories(ctx context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

// CategoriesByID implements Reader.
func (m *MemoryRepository) CategoriesByID(ctx context.Context, ids []string) (map[string]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Category, len(ids))
	for _, id := range ids {
		for _, c := range m.categories {
			if c.ID == id {
				out[id] = c
				break
			}
		}
	}
	return out, nil
}

// Category implements Reader.
func (m *MemoryRepository) Category(ctx context.Context, id string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrCategoryNotFound
}

// SearchCategories implements Reader.
func (m *MemoryRepository) SearchCategories(ctx context.Context, q string) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Category
	for _, c := range m.categories {
		if c.Matches(q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// UpsertStores implements Writer.
func (m *MemoryRepository) UpsertStores(ctx context.Context, stores []Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range stores {
		replaced := false
		for i := range m.stores {
			if m.stores[i].ID == s.ID {
				m.stores[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			m.stores = append(m.stores, s)
		}
	}
	return nil
}

// UpsertCategories implements Writer.
func (m *MemoryRepository) UpsertCategories(ctx context.Context, categories []*Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range categories {
		replaced := false
		for i := range m.categories {
			if m.categories[i].ID == c.ID {
				m.categories[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			m.categories = append(m.categories, c)
		}
	}
	return nil
}

// PruneExpiredDeals implements DealPruner.
func (m *MemoryRepository) PruneExpiredDeals(ctx context.Context, before string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, c := range m.categories {
		for storeID, d := range c.Deals {
			if d.Ends != "" && d.Ends < before {
				delete(c.Deals, storeID)
				removed++
			}
		}
	}
	return removed, nil
}
