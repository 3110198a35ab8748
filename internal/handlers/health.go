package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inflationfighter/price-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status" jsonschema:"required"`
	Database string `json:"database" jsonschema:"required,enum=connected,enum=disconnected,enum=not configured"`
}

// HealthCheck handles the health check endpoint
// @Summary Health check
// @Description Reports liveness and database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}

	// Check database connection
	if database.Pool() != nil {
		err := database.Status(c.Request.Context())
		if err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}

// PoolStats is a snapshot of the database connection pool
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// InternalHealthResponse adds pool statistics to HealthResponse
type InternalHealthResponse struct {
	HealthResponse
	Pool *PoolStats `json:"pool,omitempty"`
}

// InternalHealthCheck reports health with connection pool details
// @Summary Internal health check
// @Description Health check with database pool statistics
// @Tags internal
// @Produce json
// @Security InternalAPIKey
// @Success 200 {object} InternalHealthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} InternalHealthResponse
// @Router /internal/health [get]
func InternalHealthCheck(c *gin.Context) {
	response := InternalHealthResponse{HealthResponse: HealthResponse{Status: "ok", Database: "not configured"}}

	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
		if stat := database.Stats(); stat != nil {
			response.Pool = &PoolStats{
				TotalConns:    stat.TotalConns(),
				IdleConns:     stat.IdleConns(),
				AcquiredConns: stat.AcquiredConns(),
				MaxConns:      stat.MaxConns(),
			}
		}
	}

	c.JSON(http.StatusOK, response)
}
