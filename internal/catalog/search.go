package catalog

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CategoryIndex is a full-text index over categories.
type CategoryIndex interface {
	// SearchIDs returns matching category IDs ordered by relevance.
	SearchIDs(ctx context.Context, q string) ([]string, error)
}

// SearchingReader serves text search from a CategoryIndex and everything
// else from the wrapped Reader. When the index fails the wrapped Reader's
// own search is used instead.
type SearchingReader struct {
	Reader
	index  CategoryIndex
	logger zerolog.Logger
}

// NewSearchingReader wraps r so that SearchCategories goes through index.
func NewSearchingReader(r Reader, index CategoryIndex) *SearchingReader {
	return &SearchingReader{
		Reader: r,
		index:  index,
		logger: log.With().Str("component", "category_search").Logger(),
	}
}

// SearchCategories implements Reader.
func (s *SearchingReader) SearchCategories(ctx context.Context, q string) ([]*Category, error) {
	ids, err := s.index.SearchIDs(ctx, q)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", q).Msg("Search index unavailable, falling back to repository search")
		return s.Reader.SearchCategories(ctx, q)
	}
	if len(ids) == 0 {
		return []*Category{}, nil
	}

	byID, err := s.Reader.CategoriesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
