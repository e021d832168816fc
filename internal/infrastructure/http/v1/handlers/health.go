// Package handlers provides the HTTP request handlers of the job board API.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsFunc reports the state of one component.
type StatsFunc func() any

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	app     string
	version string
	db      Pinger // Nil when running on the in-memory store
	stats   map[string]StatsFunc
}

// NewHealthHandler creates a health handler. stats are reported by Info.
func NewHealthHandler(app, version string, db Pinger, stats map[string]StatsFunc) *HealthHandler {
	return &HealthHandler{app: app, version: version, db: db, stats: stats}
}

// Live handles the liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles the readiness probe.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{"database": "in-memory"}
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": map[string]string{"database": "unhealthy: " + err.Error()},
			})
			return
		}
		checks["database"] = "healthy"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

// Info returns the application version and component statistics.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	stats := make(map[string]any, len(h.stats))
	for name, fn := range h.stats {
		stats[name] = fn()
	}
	c.JSON(http.StatusOK, gin.H{
		"app":     h.app,
		"version": h.version,
		"stats":   stats,
	})
}
