package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/optimizer"
)

// CategoryIndexer rebuilds the text search index.
type CategoryIndexer interface {
	EnsureIndex(ctx context.Context) error
	IndexCategories(ctx context.Context, categories []*catalog.Category) error
}

// Global dependencies (initialized by the application)
var (
	catalogReader   catalog.Reader
	planner         optimizer.Planner
	routeDefaults   optimizer.RouteSettings
	categoryIndexer CategoryIndexer
)

// InitCatalog sets the catalog the browse, basket and route handlers read from.
func InitCatalog(reader catalog.Reader) {
	catalogReader = reader
}

// InitPlanner sets the decision engine and the route settings applied
// when a request omits them.
func InitPlanner(p optimizer.Planner, config *optimizer.Config) {
	planner = p
	routeDefaults = config.DefaultRouteSettings()
}

// InitSearch sets the index rebuilt by /internal/search/reindex.
// Passing nil disables the endpoint.
func InitSearch(indexer CategoryIndexer) {
	categoryIndexer = indexer
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string   `json:"error" jsonschema:"required"`
	CategoryIDs []string `json:"category_ids,omitempty"`
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var (
		invalid optimizer.ErrInvalidRequest
		unknown *catalog.UnknownCategoriesError
	)

	switch {
	case errors.Is(err, optimizer.ErrEmptyBasket), errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), CategoryIDs: unknown.IDs})
	case errors.Is(err, catalog.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Category not found"})
	case errors.Is(err, optimizer.ErrNoPricedItems),
		errors.Is(err, optimizer.ErrNoStoreLocations),
		errors.Is(err, optimizer.ErrNoRoutableItems):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(499)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// ready reports whether the catalog has been initialized.
func ready(c *gin.Context) bool {
	if catalogReader == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "catalog not initialized"})
		return false
	}
	return true
}
