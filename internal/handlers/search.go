package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ReindexResponse reports how many categories were pushed to the index.
type ReindexResponse struct {
	Indexed int `json:"indexed" jsonschema:"required,minimum=0"`
}

// ReindexCategories rebuilds the category search index from the catalog
// @Summary Rebuild category search index
// @Tags internal
// @Produce json
// @Security InternalAPIKey
// @Success 200 {object} ReindexResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Search is not configured"
// @Failure 500 {object} ErrorResponse
// @Router /internal/search/reindex [post]
func ReindexCategories(c *gin.Context) {
	if !ready(c) {
		return
	}
	if categoryIndexer == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "search index not configured"})
		return
	}

	ctx := c.Request.Context()
	categories, err := catalogReader.Categories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := categoryIndexer.EnsureIndex(ctx); err != nil {
		respondError(c, err)
		return
	}
	if err := categoryIndexer.IndexCategories(ctx, categories); err != nil {
		respondError(c, err)
		return
	}

	log.Info().Int("categories", len(categories)).Msg("Search index rebuilt")
	c.JSON(http.StatusOK, ReindexResponse{Indexed: len(categories)})
}
