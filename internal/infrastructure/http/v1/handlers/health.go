package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"facturago/internal/infrastructure/storage/postgres"
)

// HealthHandler provides liveness and readiness probes.
type HealthHandler struct {
	pool    *pgxpool.Pool
	version string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(pool *pgxpool.Pool, version string) *HealthHandler {
	return &HealthHandler{pool: pool, version: version}
}

// Live reports process liveness. Always 200 while the process runs.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports readiness: database must answer a ping.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Info returns build info and pool statistics.
func (h *HealthHandler) Info(c *gin.Context) {
	stats := postgres.GetPoolStats(h.pool)

	c.JSON(http.StatusOK, gin.H{
		"version": h.version,
		"db_pool": gin.H{
			"total":    stats.TotalConns,
			"acquired": stats.AcquiredConns,
			"idle":     stats.IdleConns,
			"max":      stats.MaxConns,
		},
	})
}
